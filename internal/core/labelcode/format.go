// Package labelcode provides the value rules for FIFO cage label identifiers:
// the bounded numeric code rendered as PREFIX+digits and the zero-padded serie.
package labelcode

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultPrefix is prepended to every cage code (e.g., "CG7").
	DefaultPrefix = "CG"

	// MaxCode is the highest code a label may carry.
	MaxCode = 5000

	// DefaultSeriePadWidth is the minimum rendered width of a serie.
	DefaultSeriePadWidth = 4
)

// Format holds rendering configuration for codes and series.
type Format struct {
	// Prefix added to every code (e.g., "CG")
	Prefix string

	// SeriePadWidth is the minimum serie width (default 4)
	SeriePadWidth int
}

// DefaultFormat returns the format used on printed cage labels.
func DefaultFormat() Format {
	return Format{
		Prefix:        DefaultPrefix,
		SeriePadWidth: DefaultSeriePadWidth,
	}
}

// Code renders a code as PREFIX + decimal digits, without padding.
func (f Format) Code(code int) string {
	return f.Prefix + strconv.Itoa(code)
}

// Serie renders a serie zero-padded to SeriePadWidth.
// Values wider than the pad width are rendered in full.
func (f Format) Serie(serie int) string {
	width := f.SeriePadWidth
	if width == 0 {
		width = DefaultSeriePadWidth
	}
	return fmt.Sprintf("%0*d", width, serie)
}

// ParseCode extracts the numeric part of a tag such as "CG45" or "cg0045".
// The prefix may appear anywhere in the tag and is matched case-insensitively;
// the digits immediately after it are the code. Returns false when no digits follow.
func (f Format) ParseCode(tag string) (int, bool) {
	upper := strings.ToUpper(tag)
	prefix := strings.ToUpper(f.Prefix)

	for from := 0; from <= len(upper); {
		idx := strings.Index(upper[from:], prefix)
		if idx < 0 {
			return 0, false
		}
		start := from + idx + len(prefix)
		end := start
		for end < len(upper) && upper[end] >= '0' && upper[end] <= '9' {
			end++
		}
		if end > start {
			n, err := strconv.Atoi(upper[start:end])
			if err != nil {
				return 0, false
			}
			return n, true
		}
		from = start
		if len(prefix) == 0 {
			from++
		}
	}
	return 0, false
}

// ParseSerie reads the leading decimal digits of a serie cell ("0012" -> 12).
// Surrounding whitespace is ignored. Returns false for blank or non-numeric cells.
func ParseSerie(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// SameCode compares two rendered codes ignoring case and surrounding whitespace.
func SameCode(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
