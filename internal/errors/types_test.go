package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorError(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad phone number")
	assert.Equal(t, "INVALID_INPUT: bad phone number", err.Error())

	cause := errors.New("boom")
	wrapped := Wrap(cause, ErrCodeDatabaseQuery, "save lead failed")
	assert.Equal(t, "DATABASE_QUERY: save lead failed: boom", wrapped.Error())
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	wrapped := Wrap(cause, ErrCodeInternalError, "something broke")

	assert.True(t, errors.Is(wrapped, cause))
	assert.Equal(t, cause, wrapped.Unwrap())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(WrapRetryable(errors.New("timeout"), ErrCodeManyChatAPI, "send failed")))
	assert.False(t, IsRetryable(New(ErrCodeNotFound, "lead not found")))
	assert.False(t, IsRetryable(errors.New("plain error")))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, GetCode(New(ErrCodeNotFound, "missing")))
	assert.Equal(t, ErrCodeInternalError, GetCode(errors.New("plain error")))
}

func TestGetUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidInput, "internal detail").WithUserMessage("Please check the phone number")
	assert.Equal(t, "Please check the phone number", GetUserMessage(err))

	assert.Equal(t, "An unexpected error occurred", GetUserMessage(errors.New("plain error")))
	assert.Equal(t, "An unexpected error occurred", GetUserMessage(New(ErrCodeInternalError, "no user message")))
}

func TestWithContext(t *testing.T) {
	err := New(ErrCodeValidationFailed, "bad input").
		WithContext("field", "email").
		WithContext("value", "nope")

	require.NotNil(t, err.Context)
	assert.Equal(t, "email", err.Context["field"])
	assert.Equal(t, "nope", err.Context["value"])
}

func TestNewManyChatErrorRetryability(t *testing.T) {
	tests := []struct {
		statusCode int
		retryable  bool
	}{
		{503, true},
		{504, true},
		{500, false},
		{404, false},
		{429, false},
		{400, false},
	}

	for _, tt := range tests {
		err := NewManyChatError("/contacts", tt.statusCode, errors.New("api error"))
		assert.Equal(t, tt.retryable, err.Retryable, "status %d", tt.statusCode)
		assert.Equal(t, ErrCodeManyChatAPI, err.Code)
	}
}

func TestNewSyncErrorCarriesFailureCount(t *testing.T) {
	err := NewSyncError(3, errors.New("contact fetch failed"))

	assert.Equal(t, ErrCodeSyncFailed, err.Code)
	assert.Equal(t, 3, err.Context["failed_updates"])
	assert.Equal(t, "Contact synchronization failed, it will be retried", err.UserMessage)
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("lead", "lead-42")

	assert.Equal(t, ErrCodeNotFound, err.Code)
	assert.Equal(t, "lead not found", err.UserMessage)
	assert.Equal(t, "lead-42", err.Context["identifier"])
}
