package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabase("snapshot", cause)

	wrapped := fmt.Errorf("generate labels: %w", err)

	assert.True(t, IsDatabase(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, http.StatusServiceUnavailable, GetHTTPStatus(wrapped))
	assert.Equal(t, "snapshot", err.Details["operation"])
}

func TestAppError_Codes(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", NewValidation("bad"), CodeValidation, http.StatusBadRequest},
		{"not found", NewNotFound("label", "CG1"), CodeNotFound, http.StatusNotFound},
		{"duplicate", NewDuplicate("label", "CG1", "duplicate entry"), CodeDuplicate, http.StatusConflict},
		{"concurrent", NewConcurrentModification("label", "CG1"), CodeConcurrentModification, http.StatusConflict},
		{"plain", errors.New("boom"), "", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.err))
			if tt.code != "" {
				assert.True(t, HasCode(tt.err, tt.code))
			} else {
				assert.False(t, IsAppError(tt.err))
			}
		})
	}
}

func TestAppError_WithDetail(t *testing.T) {
	err := NewValidation("quantity out of range").WithDetail("max", 100)
	assert.Equal(t, 100, err.Details["max"])
	assert.Equal(t, "VALIDATION_ERROR: quantity out of range", err.Error())
}
