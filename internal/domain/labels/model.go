// Package labels implements FIFO cage label management: code allocation,
// duplicate/link validation and the operations operators run against the label table.
package labels

import (
	"strings"
	"time"

	"linksoc/internal/core/apperror"
)

// Mode selects how Generate picks free codes.
type Mode string

const (
	// ModeSequential fills the lowest free codes in ascending order.
	ModeSequential Mode = "sequential"

	// ModeRandom samples free codes uniformly without replacement.
	ModeRandom Mode = "random"
)

// ParseMode converts user input to a Mode. Empty input means sequential.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeSequential:
		return ModeSequential, nil
	case ModeRandom:
		return ModeRandom, nil
	default:
		return "", apperror.NewValidation("unknown generate mode").
			WithDetail("mode", s).
			WithDetail("allowed", []string{string(ModeSequential), string(ModeRandom)})
	}
}

// Label is one row of the label table.
type Label struct {
	QRCode        string     `db:"qr_code" json:"qrcode"`
	IDUm          string     `db:"id_um" json:"id_um"`
	IDDois        string     `db:"id_dois" json:"id_dois"`
	Serie         string     `db:"serie" json:"serie"`
	PrintCount    int        `db:"print_count" json:"print_count"`
	LastPrintedAt *time.Time `db:"last_printed_at" json:"last_printed_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
}

// Unlinked reports whether no cage identifier is attached to the label.
func (l *Label) Unlinked() bool {
	return l.IDUm == "" && l.IDDois == ""
}

// HasID reports whether id equals one of the attached cage identifiers.
func (l *Label) HasID(id string) bool {
	return id != "" && (l.IDUm == id || l.IDDois == id)
}

// Allocation is a code/serie pair produced by the allocator.
type Allocation struct {
	Code  int
	Serie int
}

// GenerateResult is the outcome of a Generate call.
// Shortfall > 0 means the code range or the random attempt budget ran out.
type GenerateResult struct {
	Mode      Mode
	Requested int
	Labels    []Label
	Shortfall int
}

// Validation is the classification of a code before linking.
type Validation struct {
	Code    string
	Valid   bool
	Label   *Label
	Reason  string
	Matches int
	Series  []string
}

// LinkRequest attaches cage identifiers to a code. Nil fields are left untouched;
// a non-nil empty field clears the stored identifier.
type LinkRequest struct {
	QRCode string
	IDUm   *string
	IDDois *string
}

// LookupResult is returned by multi-ID lookups.
type LookupResult struct {
	Found    []Label
	NotFound []string
}

// ListStats summarizes the whole label table.
type ListStats struct {
	Total      int `json:"total"`
	Unlinked   int `json:"unlinked"`
	Unique     int `json:"unique"`
	Duplicates int `json:"duplicates"`
}

// Page holds one page of labels.
type Page struct {
	Labels     []Label
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ListResult is a page of the label table plus table-wide stats.
type ListResult struct {
	Page
	Stats    ListStats
	Exceeded bool
}
