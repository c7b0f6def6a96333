package labels

import (
	"context"
	"time"
)

// MatchMode selects how a code argument is compared to stored codes.
type MatchMode int

const (
	// MatchExact compares codes byte for byte.
	MatchExact MatchMode = iota
	// MatchFold compares codes case-insensitively.
	MatchFold
)

// Repository defines persistence for the label table.
// Implementations return rows in store (insertion) order.
// Methods that locate a single row act on the first match in store order.
type Repository interface {
	// All returns every label. The table is bounded by the code range, so
	// callers index it in memory rather than issuing per-item queries.
	All(ctx context.Context) ([]Label, error)

	// FindByCode returns every row carrying code (exact match).
	FindByCode(ctx context.Context, code string) ([]Label, error)

	// ExistingCodes returns the subset of codes already stored (case-insensitive).
	ExistingCodes(ctx context.Context, codes []string) ([]string, error)

	// LockForAllocation serializes concurrent generators until the transaction ends.
	LockForAllocation(ctx context.Context) error

	// AppendBatch writes all labels in one batch: all-or-nothing.
	AppendBatch(ctx context.Context, labels []Label) error

	// SetIDs updates the identifiers of the first row matching code.
	// Nil arguments keep the stored value. Returns apperror NotFound when no row matches.
	SetIDs(ctx context.Context, code string, match MatchMode, idUm, idDois *string) (*Label, error)

	// MarkPrinted increments the print counter of the first row matching each code
	// (case-insensitive) and returns how many codes were found.
	MarkPrinted(ctx context.Context, codes []string, at time.Time) (int, error)
}
