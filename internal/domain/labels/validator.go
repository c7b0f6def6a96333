package labels

import (
	"fmt"
	"strings"

	"linksoc/internal/core/apperror"
)

// EmptySerie stands in for a blank serie when conflicting series are listed.
const EmptySerie = "EMPTY"

// Reasons reported by ValidateForLink.
const (
	ReasonNotFound = "not found"
)

// ValidateForLink classifies the rows found for code before identifiers are linked to it.
// Exactly one row is valid. Zero rows is "not found". Several rows are a duplicate,
// reported either as repeated copies of one serie or as a serie conflict listing the
// distinct series in first-seen order.
func ValidateForLink(code string, matches []Label) Validation {
	v := Validation{Code: code, Matches: len(matches)}

	switch len(matches) {
	case 0:
		v.Reason = ReasonNotFound
		return v
	case 1:
		v.Valid = true
		label := matches[0]
		v.Label = &label
		return v
	}

	// Whitespace-only series count as blank.
	seen := make(map[string]struct{}, len(matches))
	for _, m := range matches {
		serie := strings.TrimSpace(m.Serie)
		if _, ok := seen[serie]; ok {
			continue
		}
		seen[serie] = struct{}{}
		v.Series = append(v.Series, serie)
	}

	if len(v.Series) == 1 {
		v.Reason = fmt.Sprintf("duplicate entry, same serie, %d occurrences", len(matches))
		return v
	}

	display := make([]string, len(v.Series))
	for i, s := range v.Series {
		if s == "" {
			s = EmptySerie
		}
		display[i] = s
	}
	v.Reason = "duplicate entry, conflicting series: " + strings.Join(display, ", ")
	return v
}

// Err converts a rejected validation to an AppError. Returns nil when valid.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	if v.Matches == 0 {
		return apperror.NewNotFound("label", v.Code)
	}
	return apperror.NewDuplicate("label", v.Code, v.Reason).
		WithDetail("occurrences", v.Matches).
		WithDetail("series", v.Series)
}
