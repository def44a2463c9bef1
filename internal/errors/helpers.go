package errors

import (
	"fmt"
)

// Common error creators for frequent use cases

// NewValidationError creates a validation error with field context
func NewValidationError(field, value, message string) *AppError {
	return New(ErrCodeValidationFailed, message).
		WithContext("field", field).
		WithContext("value", value).
		WithUserMessage(fmt.Sprintf("Invalid %s: %s", field, message))
}

// NewConfigError creates a configuration error
func NewConfigError(key, message string) *AppError {
	return New(ErrCodeInvalidConfig, message).
		WithContext("config_key", key).
		WithUserMessage("Configuration error")
}

// NewDatabaseError creates a database error with operation context
func NewDatabaseError(operation string, err error) *AppError {
	return Wrap(err, ErrCodeDatabaseQuery, fmt.Sprintf("database %s failed", operation)).
		WithContext("operation", operation).
		WithUserMessage("Database operation failed")
}

// NewManyChatError creates an error for a failed ManyChat API call
func NewManyChatError(endpoint string, statusCode int, err error) *AppError {
	appErr := Wrap(err, ErrCodeManyChatAPI, "ManyChat API call failed").
		WithContext("endpoint", endpoint).
		WithContext("status_code", statusCode)

	// Only 503 and 504 are treated as transient by the send retry policy
	if statusCode == 503 || statusCode == 504 {
		appErr.Retryable = true
	}

	return appErr
}

// NewSyncError creates a reconciliation job error. The batch is non-atomic, so
// some per-lead updates may have committed before the failure.
func NewSyncError(failed int, err error) *AppError {
	return Wrap(err, ErrCodeSyncFailed, "lead reconciliation failed").
		WithContext("failed_updates", failed).
		WithUserMessage("Contact synchronization failed, it will be retried")
}

// NewNotFoundError creates a not found error with resource context
func NewNotFoundError(resource, identifier string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource)).
		WithContext("resource", resource).
		WithContext("identifier", identifier).
		WithUserMessage(fmt.Sprintf("%s not found", resource))
}

// NewTimeoutError creates a timeout error with context
func NewTimeoutError(operation string, duration string) *AppError {
	return New(ErrCodeTimeout, fmt.Sprintf("%s timed out after %s", operation, duration)).
		WithContext("operation", operation).
		WithContext("timeout", duration).
		WithUserMessage("Operation timed out, please try again")
}
