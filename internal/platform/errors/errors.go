// Package errors provides structured error handling with context propagation and status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeNotFound indicates resource not found (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeQuota indicates the caller exhausted its request quota (HTTP 403)
	TypeQuota ErrorType = "quota_exceeded"
	// TypeUnavailable indicates the store could not be reached (HTTP 503)
	TypeUnavailable ErrorType = "unavailable"
	// TypeTimeout indicates a store round trip hit its deadline (HTTP 504).
	// The mutation may or may not have been applied.
	TypeTimeout ErrorType = "timeout"
	// TypeInternal indicates server-side error (HTTP 500)
	TypeInternal ErrorType = "internal"
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeQuota:
		return http.StatusForbidden
	case TypeUnavailable:
		return http.StatusServiceUnavailable
	case TypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether repeating the operation may succeed.
func (e *Error) Retryable() bool {
	return e.Type == TypeUnavailable || e.Type == TypeTimeout
}

// Indeterminate reports whether a mutation may have been applied despite the error.
func (e *Error) Indeterminate() bool {
	return e.Type == TypeTimeout
}

// ValidationError creates a new validation error (HTTP 400).
func ValidationError(message string) *Error {
	return &Error{
		Type:    TypeValidation,
		Message: message,
		Context: make(map[string]any),
	}
}

// NotFoundError creates a new not-found error (HTTP 404).
func NotFoundError(message string, cause error) *Error {
	return &Error{
		Type:    TypeNotFound,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// QuotaError creates the error returned when a user exceeded the rate limit (HTTP 403).
func QuotaError(current int64, max int) *Error {
	return &Error{
		Type:    TypeQuota,
		Message: fmt.Sprintf("Quota exceeded! Number of requests: %d. Max Requests: %d", current, max),
		Context: map[string]any{"current": current, "max": max},
	}
}

// UnavailableError creates a retryable store error (HTTP 503).
func UnavailableError(message string, cause error) *Error {
	return &Error{
		Type:    TypeUnavailable,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// TimeoutError creates a retryable error whose outcome is unknown (HTTP 504).
func TimeoutError(message string, cause error) *Error {
	return &Error{
		Type:    TypeTimeout,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return &Error{
		Type:    TypeInternal,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// WithContext adds context fields to the error (chainable).
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithField is an alias for WithContext (chainable).
func (e *Error) WithField(key string, value any) *Error {
	return e.WithContext(key, value)
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error.
// If err is already an *Error, returns it unchanged.
// Otherwise wraps it as an internal error.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal error", err)
}

// IsRetryable reports whether err carries a retryable structured error.
func IsRetryable(err error) bool {
	var structuredErr *Error
	return errors.As(err, &structuredErr) && structuredErr.Retryable()
}

// IsType reports whether err carries a structured error of the given type.
func IsType(err error, t ErrorType) bool {
	var structuredErr *Error
	return errors.As(err, &structuredErr) && structuredErr.Type == t
}
