package memory

import (
	"context"
	"strings"
	"time"

	"linksoc/internal/core/apperror"
	"linksoc/internal/domain/labels"
)

// LabelRepo implements labels.Repository.
type LabelRepo struct {
	s *Store
}

// Labels returns the label repository of the store.
func (s *Store) Labels() *LabelRepo {
	return &LabelRepo{s: s}
}

var _ labels.Repository = (*LabelRepo)(nil)

// All implements labels.Repository.
func (r *LabelRepo) All(ctx context.Context) ([]labels.Label, error) {
	var out []labels.Label
	err := r.s.do(ctx, "labels.All", func(st *state) error {
		out = append([]labels.Label(nil), st.labels...)
		return nil
	})
	return out, err
}

// FindByCode implements labels.Repository.
func (r *LabelRepo) FindByCode(ctx context.Context, code string) ([]labels.Label, error) {
	var out []labels.Label
	err := r.s.do(ctx, "labels.FindByCode", func(st *state) error {
		for _, l := range st.labels {
			if l.QRCode == code {
				out = append(out, l)
			}
		}
		return nil
	})
	return out, err
}

// ExistingCodes implements labels.Repository.
func (r *LabelRepo) ExistingCodes(ctx context.Context, codes []string) ([]string, error) {
	var out []string
	err := r.s.do(ctx, "labels.ExistingCodes", func(st *state) error {
		stored := make(map[string]struct{}, len(st.labels))
		for _, l := range st.labels {
			stored[strings.ToUpper(l.QRCode)] = struct{}{}
		}
		for _, c := range codes {
			if _, ok := stored[strings.ToUpper(c)]; ok {
				out = append(out, c)
			}
		}
		return nil
	})
	return out, err
}

// LockForAllocation implements labels.Repository. The store mutex already
// serializes transactions.
func (r *LabelRepo) LockForAllocation(ctx context.Context) error {
	return r.s.do(ctx, "labels.LockForAllocation", func(*state) error { return nil })
}

// AppendBatch implements labels.Repository.
func (r *LabelRepo) AppendBatch(ctx context.Context, batch []labels.Label) error {
	return r.s.do(ctx, "labels.AppendBatch", func(st *state) error {
		st.labels = append(st.labels, batch...)
		return nil
	})
}

// SetIDs implements labels.Repository.
func (r *LabelRepo) SetIDs(ctx context.Context, code string, match labels.MatchMode, idUm, idDois *string) (*labels.Label, error) {
	var out *labels.Label
	err := r.s.do(ctx, "labels.SetIDs", func(st *state) error {
		for i := range st.labels {
			l := &st.labels[i]
			if !matches(l.QRCode, code, match) {
				continue
			}
			if idUm != nil {
				l.IDUm = *idUm
			}
			if idDois != nil {
				l.IDDois = *idDois
			}
			cp := *l
			out = &cp
			return nil
		}
		return apperror.NewNotFound("label", code)
	})
	return out, err
}

// MarkPrinted implements labels.Repository.
func (r *LabelRepo) MarkPrinted(ctx context.Context, codes []string, at time.Time) (int, error) {
	marked := 0
	err := r.s.do(ctx, "labels.MarkPrinted", func(st *state) error {
		for _, c := range codes {
			for i := range st.labels {
				l := &st.labels[i]
				if !strings.EqualFold(l.QRCode, c) {
					continue
				}
				l.PrintCount++
				printedAt := at
				l.LastPrintedAt = &printedAt
				marked++
				break
			}
		}
		return nil
	})
	return marked, err
}

func matches(stored, code string, mode labels.MatchMode) bool {
	if mode == labels.MatchFold {
		return strings.EqualFold(stored, code)
	}
	return stored == code
}
