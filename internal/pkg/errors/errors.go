package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Authentication errors
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrTokenExpired ErrorCode = "TOKEN_EXPIRED"
	ErrTokenInvalid ErrorCode = "TOKEN_INVALID"

	// Authorization errors
	ErrForbidden ErrorCode = "FORBIDDEN"

	// Validation errors
	ErrValidation   ErrorCode = "VALIDATION_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Resource errors
	ErrNotFound ErrorCode = "NOT_FOUND"

	// Database errors
	ErrDatabaseError    ErrorCode = "DATABASE_ERROR"
	ErrConnectionFailed ErrorCode = "CONNECTION_FAILED"

	// Payload errors
	ErrPayloadTooLarge ErrorCode = "PAYLOAD_TOO_LARGE"
	ErrInvalidBackup   ErrorCode = "INVALID_BACKUP"

	// Internal errors
	ErrInternal ErrorCode = "INTERNAL_ERROR"
)

// APIError represents a structured API error
type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    any       `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a new APIError
func New(code ErrorCode, message string, httpStatus int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// WithDetails adds details to an error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// Common error constructors
func Unauthorized(message string) *APIError {
	return New(ErrUnauthorized, message, http.StatusUnauthorized)
}

func Forbidden(message string) *APIError {
	return New(ErrForbidden, message, http.StatusForbidden)
}

func NotFound(resource string) *APIError {
	return New(ErrNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func TokenExpired() *APIError {
	return New(ErrTokenExpired, "token has expired", http.StatusUnauthorized)
}

func TokenInvalid(message string) *APIError {
	return New(ErrTokenInvalid, message, http.StatusUnauthorized)
}

func Validation(message string) *APIError {
	return New(ErrValidation, message, http.StatusBadRequest)
}

func InvalidInput(message string) *APIError {
	return New(ErrInvalidInput, message, http.StatusBadRequest)
}

func Internal(message string) *APIError {
	return New(ErrInternal, message, http.StatusInternalServerError)
}

func DatabaseError(err error) *APIError {
	return New(ErrDatabaseError, "database operation failed", http.StatusInternalServerError).WithDetails(err.Error())
}

func StorageUnavailable(err error) *APIError {
	return New(ErrConnectionFailed, "document store unavailable", http.StatusServiceUnavailable).WithDetails(err.Error())
}

func InvalidBackup(message string) *APIError {
	return New(ErrInvalidBackup, message, http.StatusBadRequest)
}

func PayloadTooLarge(limit int64) *APIError {
	return New(ErrPayloadTooLarge, fmt.Sprintf("request body exceeds %d bytes", limit), http.StatusRequestEntityTooLarge)
}

// As extracts an *APIError from err's chain
func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ErrorResponse is the standard API error response format
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}
