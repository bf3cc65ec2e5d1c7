package utils

import (
	"errors"
	"net/http"
)

type AppError struct {
	Code    string
	Message string
	Origin  error // Original error that caused this error, if any
}

func (appErr *AppError) Error() string {
	if appErr.Origin != nil {
		return appErr.Message + ": " + appErr.Origin.Error()
	}
	return appErr.Message
}

func (appErr *AppError) Unwrap() error {
	return appErr.Origin
}

// Standard error codes for the application
const (
	// Resource errors
	ErrNotFound     = "NOT_FOUND"
	ErrInvalidInput = "INVALID_INPUT"

	// Search errors
	ErrInvalidSearchType = "INVALID_SEARCH_TYPE"

	// Store / upstream errors
	ErrQueryFailed = "QUERY_FAILED"
	ErrUpstream    = "UPSTREAM_ERROR"

	// Authentication errors
	ErrUnauthorized = "UNAUTHORIZED"
)

// Error creation helper functions
func NewAppError(code string, message string, originalErr error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Origin:  originalErr,
	}
}

// Specific error creators for common cases
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: resource + " not found",
	}
}

func NewQueryFailedError(operation string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrQueryFailed,
		Message: "query failed: " + operation,
		Origin:  originalErr,
	}
}

func NewInvalidSearchTypeError(searchType string) *AppError {
	return &AppError{
		Code:    ErrInvalidSearchType,
		Message: "invalid search type: " + searchType,
	}
}

func NewUpstreamError(service string, originalErr error) *AppError {
	return &AppError{
		Code:    ErrUpstream,
		Message: "upstream request to " + service + " failed",
		Origin:  originalErr,
	}
}

// Helper method to check if an error carries a specific code
func IsErrorCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// AppErrorToHTTPStatus converts an AppError code to an HTTP status code.
func AppErrorToHTTPStatus(errorCode string) int {
	switch errorCode {
	case ErrNotFound:
		return http.StatusNotFound
	case ErrInvalidInput, ErrInvalidSearchType:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrUpstream:
		return http.StatusBadGateway
	case ErrQueryFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
