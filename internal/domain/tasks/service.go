// Package tasks exposes completed field tasks and the labels of their sealed items.
package tasks

import (
	"context"
	"strings"
	"time"

	"linksoc/internal/core/apperror"
	"linksoc/internal/domain/labels"
)

// Task is a field task recorded by the mobile app.
type Task struct {
	ID          string    `db:"task_id" json:"tarefa_id"`
	CreatedAt   time.Time `db:"created_at" json:"data_criacao"`
	Status      string    `db:"status" json:"status"`
	Responsible string    `db:"responsible" json:"responsavel"`
}

// Completed reports whether the task status is "concluída" (accent optional, any case).
func (t Task) Completed() bool {
	s := strings.ToLower(strings.TrimSpace(t.Status))
	return s == "concluída" || s == "concluida"
}

// Item is one sealed item of a task. LacreID is matched against ID_UM / ID_DOIS.
type Item struct {
	ItemID  string `db:"item_id" json:"item_id"`
	TaskID  string `db:"task_id" json:"tarefa_id"`
	LacreID string `db:"lacre_id" json:"lacre_id"`
}

// Repository defines read access to tasks.
type Repository interface {
	List(ctx context.Context) ([]Task, error)
	Items(ctx context.Context, taskID string) ([]Item, error)
}

// LabelResolver resolves lacre identifiers to labels, one result per identifier.
type LabelResolver interface {
	LookupEach(ctx context.Context, ids []string) (*labels.LookupResult, error)
}

// Labels is the set of labels for one task.
type Labels struct {
	labels.LookupResult
	Total int
}

// Service provides task queries.
type Service struct {
	repo     Repository
	resolver LabelResolver
}

// NewService creates a new task service.
func NewService(repo Repository, resolver LabelResolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// Completed lists completed tasks in store order.
func (s *Service) Completed(ctx context.Context) ([]Task, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperror.NewDatabase("tasks", err)
	}

	out := make([]Task, 0, len(all))
	for _, t := range all {
		if t.Completed() {
			out = append(out, t)
		}
	}
	return out, nil
}

// Labels returns the labels of every non-blank lacre ID of the task's items.
// Total is the number of lacre IDs considered.
func (s *Service) Labels(ctx context.Context, taskID string) (*Labels, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, apperror.NewValidation("task id is required").WithDetail("field", "id")
	}

	items, err := s.repo.Items(ctx, taskID)
	if err != nil {
		return nil, apperror.NewDatabase("task items", err)
	}

	lacres := make([]string, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(it.LacreID) != "" {
			lacres = append(lacres, it.LacreID)
		}
	}
	if len(lacres) == 0 {
		return &Labels{LookupResult: labels.LookupResult{Found: []labels.Label{}, NotFound: []string{}}}, nil
	}

	res, err := s.resolver.LookupEach(ctx, lacres)
	if err != nil {
		return nil, err
	}
	return &Labels{LookupResult: *res, Total: len(lacres)}, nil
}
