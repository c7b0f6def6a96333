// Package reprint manages the queue of scanned identifiers waiting for a label reprint.
package reprint

import (
	"context"
	"strings"
	"time"

	"linksoc/internal/core/apperror"
	"linksoc/internal/core/tx"
	"linksoc/internal/domain/audit"
	"linksoc/internal/domain/labels"
	"linksoc/pkg/logger"
)

// Item is one scan waiting in the reprint queue.
// ID may be a QR code, an ID_UM or an ID_DOIS.
type Item struct {
	ID        string    `db:"scan_id" json:"id"`
	ScannedAt time.Time `db:"scanned_at" json:"timestamp"`
	Position  int       `db:"position" json:"row_index"`
}

// Repository defines persistence for the reprint queue.
type Repository interface {
	// List returns queue items in scan order.
	List(ctx context.Context) ([]Item, error)

	// Enqueue appends a scanned identifier.
	Enqueue(ctx context.Context, id string, at time.Time) error

	// Delete removes items whose ID is in ids, or every item when ids is empty.
	// Returns the number removed.
	Delete(ctx context.Context, ids []string) (int, error)
}

// LabelResolver resolves identifiers to labels.
type LabelResolver interface {
	LookupMany(ctx context.Context, ids []string) (*labels.LookupResult, error)
}

// Labels is the reprint queue resolved to labels.
type Labels struct {
	labels.LookupResult
	Total int
}

// Service provides reprint queue operations.
type Service struct {
	repo      Repository
	resolver  LabelResolver
	txManager tx.Manager
	audit     audit.Recorder
	now       func() time.Time
}

// NewService creates a new reprint service.
func NewService(repo Repository, resolver LabelResolver, txManager tx.Manager, recorder audit.Recorder) *Service {
	if recorder == nil {
		recorder = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		resolver:  resolver,
		txManager: txManager,
		audit:     recorder,
		now:       time.Now,
	}
}

// Queue returns the non-blank items of the queue.
func (s *Service) Queue(ctx context.Context) ([]Item, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.NewDatabase("reprint queue", err)
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.ID) != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

// Enqueue adds a scanned identifier to the queue.
func (s *Service) Enqueue(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.NewValidation("id is required").WithDetail("field", "id")
	}
	if err := s.repo.Enqueue(ctx, id, s.now().UTC()); err != nil {
		return apperror.NewDatabase("reprint enqueue", err)
	}
	return nil
}

// Labels resolves every queued identifier to its label.
// Total is the number of queued items, not the number of labels found.
func (s *Service) Labels(ctx context.Context) (*Labels, error) {
	queue, err := s.Queue(ctx)
	if err != nil {
		return nil, err
	}
	if len(queue) == 0 {
		return &Labels{LookupResult: labels.LookupResult{Found: []labels.Label{}, NotFound: []string{}}}, nil
	}

	ids := make([]string, len(queue))
	for i, it := range queue {
		ids[i] = it.ID
	}

	res, err := s.resolver.LookupMany(ctx, ids)
	if err != nil {
		return nil, err
	}
	return &Labels{LookupResult: *res, Total: len(queue)}, nil
}

// Clear removes the given identifiers from the queue, or all items when ids is empty.
func (s *Service) Clear(ctx context.Context, ids []string) (int, error) {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}

	var cleared int
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		cleared, err = s.repo.Delete(ctx, clean)
		if err != nil {
			return apperror.NewDatabase("reprint clear", err)
		}
		if err := s.audit.Record(ctx, audit.Entry{
			Entity:   "reprint_queue",
			Action:   audit.ActionReprintClear,
			Operator: labels.OperatorName(ctx),
			Changes:  map[string]any{"ids": clean, "cleared": cleared},
		}); err != nil {
			return apperror.NewDatabase("audit", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Info(ctx, "reprint queue cleared", "cleared", cleared, "all", len(clean) == 0)
	return cleared, nil
}
