// Package idempotency defines the store behind the X-Idempotency-Key header.
package idempotency

import (
	"context"
	"encoding/json"
	"net/http"
)

// Status represents the state of an idempotent operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Replay is a cached HTTP response.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Store manages idempotency keys.
type Store interface {
	// AcquireKey claims key for a request.
	// Returns (nil, nil) when the key is new, a Replay when the operation already
	// finished, or an AppError when the key is in flight or reused for another request.
	AcquireKey(ctx context.Context, key, operator, operation, requestHash string) (*Replay, error)

	// CompleteKey stores the successful response for replay.
	CompleteKey(ctx context.Context, key string, statusCode int, contentType string, response any) error

	// FailKey stores the error response for replay.
	FailKey(ctx context.Context, key string, statusCode int, contentType string, response any) error
}

// EncodeResponse marshals a response body for storage.
func EncodeResponse(response any) ([]byte, error) {
	if response == nil {
		return nil, nil
	}
	return json.Marshal(response)
}

// NormalizeReplay fills defaults for records stored without status or content type.
func NormalizeReplay(r *Replay) *Replay {
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusOK
	}
	if r.ContentType == "" {
		r.ContentType = "application/json"
	}
	return r
}
