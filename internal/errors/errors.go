// Package errors provides structured error handling with context propagation and HTTP status code mapping.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics, logging and response formatting.
type ErrorType string

const (
	// TypeValidation indicates invalid input (HTTP 400)
	TypeValidation ErrorType = "validation"
	// TypeNotFound indicates resource not found (HTTP 404)
	TypeNotFound ErrorType = "not_found"
	// TypeConflict indicates resource conflict (HTTP 409)
	TypeConflict ErrorType = "conflict"
	// TypeAuth indicates rejected or missing credentials (HTTP 401)
	TypeAuth ErrorType = "auth"
	// TypeUpload indicates a failed submission upload
	TypeUpload ErrorType = "upload"
	// TypeTransport indicates the backend could not be reached
	TypeTransport ErrorType = "transport"
	// TypeInternal indicates an unexpected error (HTTP 500)
	TypeInternal ErrorType = "internal"
	// TypeExternal indicates the backend answered with a server error (HTTP 502)
	TypeExternal ErrorType = "external"
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
	case TypeValidation, TypeUpload:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeAuth:
		return http.StatusUnauthorized
	case TypeExternal, TypeTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    t,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

// ValidationError creates a new validation error (HTTP 400).
func ValidationError(message string) *Error {
	return newError(TypeValidation, message, nil)
}

// NotFoundError creates a new not-found error (HTTP 404).
func NotFoundError(message string) *Error {
	return newError(TypeNotFound, message, nil)
}

// ConflictError creates a new conflict error (HTTP 409).
func ConflictError(message string) *Error {
	return newError(TypeConflict, message, nil)
}

// AuthError creates a new authentication error (HTTP 401).
func AuthError(message string, cause error) *Error {
	return newError(TypeAuth, message, cause)
}

// UploadError wraps a failed submission upload.
func UploadError(message string, cause error) *Error {
	return newError(TypeUpload, message, cause)
}

// TransportError wraps a request that never produced a response.
func TransportError(message string, cause error) *Error {
	return newError(TypeTransport, message, cause)
}

// InternalError creates a new internal error (HTTP 500).
func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

// ExternalError creates a new external service error (HTTP 502).
func ExternalError(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

// FromStatus maps a non-2xx backend response onto an Error. detail is the
// backend's human readable reason, used as the message when present.
func FromStatus(status int, detail string) *Error {
	message := detail
	if message == "" {
		message = http.StatusText(status)
	}

	var err *Error
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		err = AuthError(message, nil)
	case status == http.StatusNotFound:
		err = NotFoundError(message)
	case status == http.StatusConflict:
		err = ConflictError(message)
	case status >= 400 && status < 500:
		err = ValidationError(message)
	default:
		err = ExternalError(message, nil)
	}
	return err.WithContext("status", status)
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

// ErrorResponse is the JSON body sent to clients. The detail key matches
// what the analysis backend returns, so the same decoder handles both.
type ErrorResponse struct {
	Detail  string         `json:"detail"`
	Type    ErrorType      `json:"type,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

// ToResponse converts an Error to an ErrorResponse for JSON serialization.
func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Detail:  e.Message,
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

	return InternalError("internal server error", err)
}

// IsType reports whether err carries a structured error of type t anywhere in its chain.
func IsType(err error, t ErrorType) bool {
	var structuredErr *Error
	return errors.As(err, &structuredErr) && structuredErr.Type == t
}
