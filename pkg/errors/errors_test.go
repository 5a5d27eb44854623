package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		err    *ApplicationError
		code   string
		status int
	}{
		{NewValidationError("bad"), "VALIDATION_ERROR", http.StatusBadRequest},
		{NewUnauthorizedError("Unauthorized"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewForbiddenError("Access denied"), "FORBIDDEN", http.StatusForbidden},
		{NewNotFoundError("report"), "NOT_FOUND", http.StatusNotFound},
		{NewTooManyRequestsError("slow down"), "TOO_MANY_REQUESTS", http.StatusTooManyRequests},
		{NewInternalError("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
		{NewServiceUnavailableError("down"), "SERVICE_UNAVAILABLE", http.StatusServiceUnavailable},
		{NewRequestTimeoutError("late"), "REQUEST_TIMEOUT", http.StatusGatewayTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.Status)
		})
	}
	assert.Equal(t, "report not found", NewNotFoundError("report").Message)
}

func TestWithCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	base := NewServiceUnavailableError("Database connection error")

	err := base.WithCause(cause)

	assert.Nil(t, base.Cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Database connection error: connection refused", err.Error())
	assert.Equal(t, "Database connection error", err.Message)
}

func TestAs(t *testing.T) {
	wrapped := pkgerrors.Wrap(NewForbiddenError("Access denied"), "role check")

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusForbidden, appErr.Status)

	_, ok = As(stderrors.New("plain"))
	assert.False(t, ok)
}
