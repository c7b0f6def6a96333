package handlers

import (
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"linksoc/internal/core/apperror"
	"linksoc/internal/domain/labels"
	"linksoc/internal/infrastructure/http/v1/dto"
)

// LabelHandler handles label endpoints.
type LabelHandler struct {
	*BaseHandler
	service *labels.Service
}

// NewLabelHandler creates a new label handler.
func NewLabelHandler(base *BaseHandler, service *labels.Service) *LabelHandler {
	return &LabelHandler{
		BaseHandler: base,
		service:     service,
	}
}

var idSeparators = regexp.MustCompile(`[\n,]`)

// splitIDs splits a batch of scanned identifiers on commas and newlines.
func splitIDs(raw string) []string {
	parts := idSeparators.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Lookup handles GET /lookup?id= and GET /lookup?ids=
func (h *LabelHandler) Lookup(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("ids"); raw != "" {
		res, err := h.service.LookupMany(ctx, splitIDs(raw))
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.FromLookupResult(res))
		return
	}

	id := c.Query("id")
	if id == "" {
		h.Error(c, apperror.NewValidation("id or ids parameter is required"))
		return
	}

	label, err := h.service.Lookup(ctx, id)
	if err != nil {
		if apperror.IsNotFound(err) {
			h.OK(c, dto.LookupResponse{Found: false, Message: "id not found"})
			return
		}
		h.Error(c, err)
		return
	}

	resp := dto.FromLabel(label)
	h.OK(c, dto.LookupResponse{Found: true, Data: &resp})
}

// List handles GET /labels
func (h *LabelHandler) List(c *gin.Context) {
	var q dto.PaginationRequest
	if !h.BindQuery(c, &q) {
		return
	}

	res, err := h.service.List(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.NoStore(c)
	h.OK(c, dto.FromListResult(res))
}

// Generate handles POST /labels/generate
func (h *LabelHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	mode, err := labels.ParseMode(req.Mode)
	if err != nil {
		h.Error(c, err)
		return
	}

	res, err := h.service.Generate(c.Request.Context(), req.Quantity, mode)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, dto.FromGenerateResult(res))
}

// Validate handles GET /labels/:qrcode/validate
func (h *LabelHandler) Validate(c *gin.Context) {
	v, err := h.service.Validate(c.Request.Context(), c.Param("qrcode"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromValidation(v))
}

// Link handles POST /labels/link
func (h *LabelHandler) Link(c *gin.Context) {
	var req dto.LinkRequest
	if !h.BindJSON(c, &req) {
		return
	}

	label, err := h.service.Link(c.Request.Context(), req.ToDomain())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.LabelDataResponse{Success: true, Data: dto.FromLabel(label)})
}

// Clear handles POST /labels/clear
func (h *LabelHandler) Clear(c *gin.Context) {
	var req dto.ClearRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.Clear(c.Request.Context(), req.QRCode); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "identifiers cleared")
}

// Update handles PUT /labels/:qrcode
func (h *LabelHandler) Update(c *gin.Context) {
	var req dto.UpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	label, err := h.service.Update(c.Request.Context(), c.Param("qrcode"), req.IDUm, req.IDDois)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.LabelDataResponse{Success: true, Data: dto.FromLabel(label)})
}

// Print handles POST /print
func (h *LabelHandler) Print(c *gin.Context) {
	var req dto.PrintRequest
	if !h.BindJSON(c, &req) {
		return
	}

	marked, err := h.service.MarkPrinted(c.Request.Context(), req.QRCodes)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.PrintResponse{Success: true, Marked: marked})
}

// History handles GET /history
func (h *LabelHandler) History(c *gin.Context) {
	var q dto.PaginationRequest
	if !h.BindQuery(c, &q) {
		return
	}

	page, err := h.service.PrintHistory(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.NoStore(c)
	h.OK(c, dto.FromHistoryPage(page))
}
