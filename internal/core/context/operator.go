package context

import (
	"context"
)

// OperatorContext describes the authenticated operator session.
// Operators share one password; the session ID tells them apart in logs and audit.
type OperatorContext struct {
	Subject   string
	SessionID string
}

type operatorContextKey struct{}

// WithOperator adds OperatorContext to context.
func WithOperator(ctx context.Context, op *OperatorContext) context.Context {
	return context.WithValue(ctx, operatorContextKey{}, op)
}

// GetOperator returns OperatorContext from context.
func GetOperator(ctx context.Context) *OperatorContext {
	if v, ok := ctx.Value(operatorContextKey{}).(*OperatorContext); ok {
		return v
	}
	return nil
}

// GetSessionID returns the operator session ID or empty string.
func GetSessionID(ctx context.Context) string {
	if op := GetOperator(ctx); op != nil {
		return op.SessionID
	}
	return ""
}
