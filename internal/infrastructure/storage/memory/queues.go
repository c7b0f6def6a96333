package memory

import (
	"context"
	"time"

	"linksoc/internal/domain/reprint"
	"linksoc/internal/domain/rules"
	"linksoc/internal/domain/tasks"
)

// ReprintRepo implements reprint.Repository.
type ReprintRepo struct {
	s *Store
}

// Reprint returns the reprint queue repository of the store.
func (s *Store) Reprint() *ReprintRepo {
	return &ReprintRepo{s: s}
}

var _ reprint.Repository = (*ReprintRepo)(nil)

// List implements reprint.Repository.
func (r *ReprintRepo) List(ctx context.Context) ([]reprint.Item, error) {
	var out []reprint.Item
	err := r.s.do(ctx, "reprint.List", func(st *state) error {
		out = append([]reprint.Item(nil), st.reprint...)
		return nil
	})
	return out, err
}

// Enqueue implements reprint.Repository.
func (r *ReprintRepo) Enqueue(ctx context.Context, id string, at time.Time) error {
	return r.s.do(ctx, "reprint.Enqueue", func(st *state) error {
		st.reprint = append(st.reprint, reprint.Item{ID: id, ScannedAt: at, Position: st.nextPos})
		st.nextPos++
		return nil
	})
}

// Delete implements reprint.Repository.
func (r *ReprintRepo) Delete(ctx context.Context, ids []string) (int, error) {
	removed := 0
	err := r.s.do(ctx, "reprint.Delete", func(st *state) error {
		if len(ids) == 0 {
			removed = len(st.reprint)
			st.reprint = nil
			return nil
		}

		drop := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			drop[id] = struct{}{}
		}
		kept := st.reprint[:0]
		for _, it := range st.reprint {
			if _, ok := drop[it.ID]; ok {
				removed++
				continue
			}
			kept = append(kept, it)
		}
		st.reprint = kept
		return nil
	})
	return removed, err
}

// TaskRepo implements tasks.Repository.
type TaskRepo struct {
	s *Store
}

// Tasks returns the task repository of the store.
func (s *Store) Tasks() *TaskRepo {
	return &TaskRepo{s: s}
}

var _ tasks.Repository = (*TaskRepo)(nil)

// List implements tasks.Repository.
func (r *TaskRepo) List(ctx context.Context) ([]tasks.Task, error) {
	var out []tasks.Task
	err := r.s.do(ctx, "tasks.List", func(st *state) error {
		out = append([]tasks.Task(nil), st.tasks...)
		return nil
	})
	return out, err
}

// Items implements tasks.Repository.
func (r *TaskRepo) Items(ctx context.Context, taskID string) ([]tasks.Item, error) {
	var out []tasks.Item
	err := r.s.do(ctx, "tasks.Items", func(st *state) error {
		for _, it := range st.items {
			if it.TaskID == taskID {
				out = append(out, it)
			}
		}
		return nil
	})
	return out, err
}

// AddTask appends a task and its items. Tasks are written by the field app,
// so only seeding and tests call this.
func (r *TaskRepo) AddTask(ctx context.Context, t tasks.Task, items ...tasks.Item) error {
	return r.s.do(ctx, "tasks.AddTask", func(st *state) error {
		st.tasks = append(st.tasks, t)
		st.items = append(st.items, items...)
		return nil
	})
}

// RuleRepo implements rules.Repository.
type RuleRepo struct {
	s *Store
}

// Rules returns the rule repository of the store.
func (s *Store) Rules() *RuleRepo {
	return &RuleRepo{s: s}
}

var _ rules.Repository = (*RuleRepo)(nil)

// List implements rules.Repository.
func (r *RuleRepo) List(ctx context.Context) ([]rules.Rule, error) {
	var out []rules.Rule
	err := r.s.do(ctx, "rules.List", func(st *state) error {
		out = append([]rules.Rule(nil), st.rules...)
		return nil
	})
	return out, err
}

// Add appends rules.
func (r *RuleRepo) Add(ctx context.Context, rs ...rules.Rule) error {
	return r.s.do(ctx, "rules.Add", func(st *state) error {
		st.rules = append(st.rules, rs...)
		return nil
	})
}

// AuthRepo implements auth.Repository.
type AuthRepo struct {
	s *Store
}

// Auth returns the password repository of the store.
func (s *Store) Auth() *AuthRepo {
	return &AuthRepo{s: s}
}

// PasswordHashes implements auth.Repository.
func (r *AuthRepo) PasswordHashes(ctx context.Context) ([]string, error) {
	var out []string
	err := r.s.do(ctx, "auth.PasswordHashes", func(st *state) error {
		out = append([]string(nil), st.hashes...)
		return nil
	})
	return out, err
}

// AddPasswordHash implements auth.Repository.
func (r *AuthRepo) AddPasswordHash(ctx context.Context, hash string) error {
	return r.s.do(ctx, "auth.AddPasswordHash", func(st *state) error {
		st.hashes = append(st.hashes, hash)
		return nil
	})
}
