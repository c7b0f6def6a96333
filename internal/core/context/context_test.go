package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTraceContext_KeepsIncomingIDs(t *testing.T) {
	tc := NewTraceContext("trace-1", "req-1")
	assert.Equal(t, "trace-1", tc.TraceID)
	assert.Equal(t, "req-1", tc.RequestID)
	assert.Len(t, tc.SpanID, 16)

	generated := NewTraceContext("", "")
	assert.NotEmpty(t, generated.TraceID)
	assert.NotEmpty(t, generated.RequestID)
}

func TestOperatorContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, GetOperator(ctx))
	assert.Empty(t, GetSessionID(ctx))

	ctx = WithOperator(ctx, &OperatorContext{Subject: "operator", SessionID: "s-42"})
	assert.Equal(t, "s-42", GetSessionID(ctx))

	ctx = WithTrace(ctx, NewTraceContext("", "r-7"))
	assert.Equal(t, "r-7", GetRequestID(ctx))
}
