package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(cause, ErrorTypeNetwork, "JIRA_REQUEST", "failed to search issues").
		WithContext("attempt", 1)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to search issues")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, err.Context["attempt"])

	wrapped := fmt.Errorf("run failed: %w", err)
	assert.True(t, IsErrorType(wrapped, ErrorTypeNetwork))
	assert.False(t, IsErrorType(wrapped, ErrorTypeAuth))
	assert.False(t, IsErrorType(cause, ErrorTypeNetwork))
}

func TestErrorConstructors(t *testing.T) {
	assert.Equal(t, ErrorTypeValidation, NewValidationError("X", "m").Type)
	assert.Equal(t, ErrorTypeJira, NewJiraError("X", "m").Type)
	assert.Equal(t, ErrorTypeAuth, NewAuthError("X", "m").Type)
	assert.Equal(t, ErrorTypeInternal, NewInternalError("X", "m").Type)
	assert.Equal(t, "details", NewJiraError("X", "m").WithDetails("details").Details)
}
