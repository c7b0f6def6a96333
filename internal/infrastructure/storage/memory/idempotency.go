package memory

import (
	"context"
	"sync"
	"time"

	"linksoc/internal/core/apperror"
	"linksoc/internal/core/idempotency"
)

var _ idempotency.Store = (*IdempotencyStore)(nil)

type idempotencyRecord struct {
	operator    string
	operation   string
	requestHash string
	status      idempotency.Status
	replay      idempotency.Replay
	expiresAt   time.Time
}

// IdempotencyStore keeps idempotency keys in memory until they expire.
type IdempotencyStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	records map[string]*idempotencyRecord
	now     func() time.Time
}

// NewIdempotencyStore creates an idempotency store whose keys live for ttl.
func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		ttl:     ttl,
		records: make(map[string]*idempotencyRecord),
		now:     time.Now,
	}
}

// AcquireKey implements idempotency.Store.
func (s *IdempotencyStore) AcquireKey(_ context.Context, key, operator, operation, requestHash string) (*idempotency.Replay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	rec, ok := s.records[key]
	if !ok || now.After(rec.expiresAt) {
		s.records[key] = &idempotencyRecord{
			operator:    operator,
			operation:   operation,
			requestHash: requestHash,
			status:      idempotency.StatusPending,
			expiresAt:   now.Add(s.ttl),
		}
		return nil, nil
	}

	if rec.operator != operator || rec.operation != operation || rec.requestHash != requestHash {
		return nil, apperror.NewIdempotencyMismatch(key).
			WithDetail("stored_operation", rec.operation).
			WithDetail("request_operation", operation)
	}
	if rec.status == idempotency.StatusPending {
		return nil, apperror.NewIdempotencyConflict(key)
	}

	replay := rec.replay
	return idempotency.NormalizeReplay(&replay), nil
}

// CompleteKey implements idempotency.Store.
func (s *IdempotencyStore) CompleteKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(key, idempotency.StatusSuccess, statusCode, contentType, response)
}

// FailKey implements idempotency.Store.
func (s *IdempotencyStore) FailKey(_ context.Context, key string, statusCode int, contentType string, response any) error {
	return s.finish(key, idempotency.StatusFailed, statusCode, contentType, response)
}

func (s *IdempotencyStore) finish(key string, status idempotency.Status, statusCode int, contentType string, response any) error {
	body, err := idempotency.EncodeResponse(response)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil
	}
	rec.status = status
	rec.replay = idempotency.Replay{StatusCode: statusCode, ContentType: contentType, Body: body}
	return nil
}

// CleanupExpired removes expired keys.
func (s *IdempotencyStore) CleanupExpired(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for key, rec := range s.records {
		if now.After(rec.expiresAt) {
			delete(s.records, key)
			n++
		}
	}
	return n, nil
}
