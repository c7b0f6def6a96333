package dto

import (
	"time"

	"linksoc/internal/domain/labels"
)

// --- Request DTOs ---

// GenerateRequest for POST /labels/generate.
type GenerateRequest struct {
	Quantity int    `json:"quantity"`
	Mode     string `json:"mode,omitempty"`
}

// LinkRequest for POST /labels/link.
type LinkRequest struct {
	QRCode string  `json:"qrcode" binding:"required"`
	IDUm   *string `json:"id_um,omitempty"`
	IDDois *string `json:"id_dois,omitempty"`
}

// ToDomain converts to domain request. An omitted identifier is left untouched;
// one sent as "" is cleared.
func (r *LinkRequest) ToDomain() labels.LinkRequest {
	return labels.LinkRequest{
		QRCode: r.QRCode,
		IDUm:   r.IDUm,
		IDDois: r.IDDois,
	}
}

// ClearRequest for POST /labels/clear.
type ClearRequest struct {
	QRCode string `json:"qrcode" binding:"required"`
}

// UpdateRequest for PUT /labels/:qrcode.
type UpdateRequest struct {
	IDUm   string `json:"id_um"`
	IDDois string `json:"id_dois"`
}

// PrintRequest for POST /print.
type PrintRequest struct {
	QRCodes []string `json:"qrcodes" binding:"required,min=1"`
}

// --- Response DTOs ---

// LabelResponse represents a label in API responses.
type LabelResponse struct {
	QRCode        string     `json:"qrcode"`
	IDUm          string     `json:"id_um"`
	IDDois        string     `json:"id_dois"`
	Serie         string     `json:"serie"`
	PrintCount    int        `json:"print_count"`
	LastPrintedAt *time.Time `json:"last_printed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// FromLabel converts a domain label to response.
func FromLabel(l *labels.Label) LabelResponse {
	return LabelResponse{
		QRCode:        l.QRCode,
		IDUm:          l.IDUm,
		IDDois:        l.IDDois,
		Serie:         l.Serie,
		PrintCount:    l.PrintCount,
		LastPrintedAt: l.LastPrintedAt,
		CreatedAt:     l.CreatedAt,
	}
}

// FromLabels converts a slice of labels, never returning nil.
func FromLabels(ls []labels.Label) []LabelResponse {
	out := make([]LabelResponse, len(ls))
	for i := range ls {
		out[i] = FromLabel(&ls[i])
	}
	return out
}

// GenerateResponse for POST /labels/generate.
type GenerateResponse struct {
	Success   bool            `json:"success"`
	Mode      string          `json:"mode"`
	Requested int             `json:"requested"`
	Count     int             `json:"count"`
	Shortfall int             `json:"shortfall"`
	Data      []LabelResponse `json:"data"`
}

// FromGenerateResult converts a generate result to response.
func FromGenerateResult(r *labels.GenerateResult) GenerateResponse {
	return GenerateResponse{
		Success:   true,
		Mode:      string(r.Mode),
		Requested: r.Requested,
		Count:     len(r.Labels),
		Shortfall: r.Shortfall,
		Data:      FromLabels(r.Labels),
	}
}

// ValidationResponse for GET /labels/:qrcode/validate.
type ValidationResponse struct {
	QRCode  string         `json:"qrcode"`
	Valid   bool           `json:"valid"`
	Reason  string         `json:"reason,omitempty"`
	Matches int            `json:"matches"`
	Series  []string       `json:"series,omitempty"`
	Label   *LabelResponse `json:"label,omitempty"`
}

// FromValidation converts a validator outcome to response.
func FromValidation(v labels.Validation) ValidationResponse {
	resp := ValidationResponse{
		QRCode:  v.Code,
		Valid:   v.Valid,
		Reason:  v.Reason,
		Matches: v.Matches,
		Series:  v.Series,
	}
	if v.Label != nil {
		l := FromLabel(v.Label)
		resp.Label = &l
	}
	return resp
}

// LabelDataResponse wraps a single label.
type LabelDataResponse struct {
	Success bool          `json:"success"`
	Data    LabelResponse `json:"data"`
}

// LookupResponse for GET /lookup?id=.
type LookupResponse struct {
	Found   bool           `json:"found"`
	Data    *LabelResponse `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}

// LookupManyResponse for GET /lookup?ids=.
type LookupManyResponse struct {
	Found         bool            `json:"found"`
	Count         int             `json:"count"`
	NotFoundCount int             `json:"notFoundCount"`
	Data          []LabelResponse `json:"data"`
	NotFoundIDs   []string        `json:"notFoundIds"`
}

// FromLookupResult converts a multi-ID lookup to response.
func FromLookupResult(r *labels.LookupResult) LookupManyResponse {
	return LookupManyResponse{
		Found:         len(r.Found) > 0,
		Count:         len(r.Found),
		NotFoundCount: len(r.NotFound),
		Data:          FromLabels(r.Found),
		NotFoundIDs:   nonNil(r.NotFound),
	}
}

// ListResponse for GET /labels.
type ListResponse struct {
	Data       []LabelResponse    `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
	Stats      labels.ListStats   `json:"stats"`
	Exceeded   bool               `json:"exceeded"`
}

// FromListResult converts a list result to response.
func FromListResult(r *labels.ListResult) ListResponse {
	return ListResponse{
		Data:       FromLabels(r.Labels),
		Pagination: fromPage(&r.Page),
		Stats:      r.Stats,
		Exceeded:   r.Exceeded,
	}
}

// HistoryResponse for GET /history.
type HistoryResponse struct {
	Success    bool               `json:"success"`
	Data       []LabelResponse    `json:"data"`
	Pagination PaginationResponse `json:"pagination"`
}

// FromHistoryPage converts a print history page to response.
func FromHistoryPage(p *labels.Page) HistoryResponse {
	return HistoryResponse{
		Success:    true,
		Data:       FromLabels(p.Labels),
		Pagination: fromPage(p),
	}
}

// PrintResponse for POST /print.
type PrintResponse struct {
	Success bool `json:"success"`
	Marked  int  `json:"marked"`
}

func fromPage(p *labels.Page) PaginationResponse {
	return PaginationResponse{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: p.Total,
		TotalPages: p.TotalPages,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
