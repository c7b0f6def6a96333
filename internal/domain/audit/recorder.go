// Package audit defines the audit trail of label mutations.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"linksoc/internal/core/id"
)

// Action represents the type of audited operation.
type Action string

const (
	ActionGenerate     Action = "generate"
	ActionLink         Action = "link"
	ActionClear        Action = "clear"
	ActionUpdate       Action = "update"
	ActionPrint        Action = "print"
	ActionReprintClear Action = "reprint_clear"
)

// Entry is a single audit record.
type Entry struct {
	ID        uuid.UUID
	Entity    string
	EntityKey string
	Action    Action
	Operator  string
	Changes   map[string]any
	CreatedAt time.Time
}

// Recorder persists audit entries. Implementations write within the
// transaction carried by ctx, if any.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Nop discards entries.
type Nop struct{}

// Record implements Recorder.
func (Nop) Record(context.Context, Entry) error { return nil }

// Prepare fills ID and CreatedAt when unset.
func Prepare(entry *Entry) {
	if entry.ID == uuid.Nil {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
}
