// Package memory provides an in-memory implementation of every store the service uses.
// It backs development mode (no database configured) and tests.
package memory

import (
	"context"
	"sync"

	"linksoc/internal/domain/audit"
	"linksoc/internal/domain/labels"
	"linksoc/internal/domain/reprint"
	"linksoc/internal/domain/rules"
	"linksoc/internal/domain/tasks"
)

type state struct {
	labels  []labels.Label
	reprint []reprint.Item
	tasks   []tasks.Task
	items   []tasks.Item
	rules   []rules.Rule
	hashes  []string
	audit   []audit.Entry
	nextPos int
}

func (s *state) clone() *state {
	return &state{
		labels:  append([]labels.Label(nil), s.labels...),
		reprint: append([]reprint.Item(nil), s.reprint...),
		tasks:   append([]tasks.Task(nil), s.tasks...),
		items:   append([]tasks.Item(nil), s.items...),
		rules:   append([]rules.Rule(nil), s.rules...),
		hashes:  append([]string(nil), s.hashes...),
		audit:   append([]audit.Entry(nil), s.audit...),
		nextPos: s.nextPos,
	}
}

// Store holds all tables behind one mutex. Transactions hold the mutex for
// their whole duration and restore the previous state when fn fails.
type Store struct {
	mu       sync.Mutex
	st       *state
	failures map[string]error
}

type txKey struct{}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{st: &state{}, failures: make(map[string]error)}
}

// RunInTransaction implements tx.Manager.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.st = backup
		return err
	}
	return nil
}

// ReadOnly implements tx.ReadOnlyManager.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.RunInTransaction(ctx, fn)
}

// FailOn makes every call of the named operation return err until cleared with a nil err.
// Operation names are "<table>.<method>", e.g. "labels.AppendBatch".
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// AuditEntries returns a copy of recorded audit entries.
func (s *Store) AuditEntries() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Entry(nil), s.st.audit...)
}

// Record implements audit.Recorder.
func (s *Store) Record(ctx context.Context, entry audit.Entry) error {
	return s.do(ctx, "audit.Record", func(st *state) error {
		audit.Prepare(&entry)
		st.audit = append(st.audit, entry)
		return nil
	})
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

func (s *Store) do(ctx context.Context, op string, fn func(st *state) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !s.inTx(ctx) {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	if err := s.failures[op]; err != nil {
		return err
	}
	return fn(s.st)
}

// Recent returns up to limit audit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]audit.Entry, error) {
	var out []audit.Entry
	err := s.do(ctx, "audit.Recent", func(st *state) error {
		for i := len(st.audit) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
			out = append(out, st.audit[i])
		}
		return nil
	})
	return out, err
}
