package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	CategoryClient   ErrorCategory = "client"
	CategoryServer   ErrorCategory = "server"
	CategoryExternal ErrorCategory = "external"
)

// Error codes returned to clients in the "error" field
const (
	CodeInvalidURL   = "error_invalid_url"
	CodeFetchFailed  = "error_fetch_failed"
	CodeServerError  = "error_server_error"
	CodeUnauthorized = "error_unauthorized"
)

// Client-facing messages
const (
	MsgURLMissing        = "URL is missing."
	MsgInvalidURL        = "Invalid URL format."
	MsgPrivateOrGone     = "Video is private or unavailable"
	MsgNotFound          = "Video not found"
	MsgNoFormats         = "No downloadable formats found"
	MsgExtractionTimeout = "Timed out while fetching video information"
	MsgInternal          = "An internal server error occurred."
)

// AppError represents a structured application error
type AppError struct {
	Code       string        `json:"error"`
	Message    string        `json:"message"`
	Category   ErrorCategory `json:"-"`
	HTTPStatus int           `json:"-"`
	Cause      error         `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause sets the underlying cause of the error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// ErrorResponse is the JSON structure returned to clients
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// New creates a new AppError
func New(code string, message string, category ErrorCategory, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		Category:   category,
		HTTPStatus: httpStatus,
	}
}

// Client error constructors

func InvalidURL(message string) *AppError {
	return New(CodeInvalidURL, message, CategoryClient, http.StatusBadRequest)
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, CategoryClient, http.StatusUnauthorized)
}

// External service error constructors

// FetchFailed reports that the input was acceptable but no usable media
// could be produced for it. It is a 400, not a 5xx, to match the public API.
func FetchFailed(message string) *AppError {
	return New(CodeFetchFailed, message, CategoryExternal, http.StatusBadRequest)
}

// Server error constructors

func InternalError() *AppError {
	return New(CodeServerError, MsgInternal, CategoryServer, http.StatusInternalServerError)
}

// AsAppError returns err as an *AppError, wrapping anything unknown as an
// internal error so no internal detail reaches the client.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return InternalError().WithCause(err)
}

// WriteError writes an error response to the HTTP response writer
func WriteError(w http.ResponseWriter, requestID string, err error) {
	appErr := AsAppError(err)

	resp := ErrorResponse{
		Error:   appErr.Code,
		Message: appErr.Message,
	}

	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set(RequestIDHeader, requestID)
	}
	w.WriteHeader(appErr.HTTPStatus)
	json.NewEncoder(w).Encode(resp)
}

// WriteJSON writes a JSON response with the request ID header
func WriteJSON(w http.ResponseWriter, requestID string, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	if requestID != "" {
		w.Header().Set(RequestIDHeader, requestID)
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// IsServerError returns true if the error is a server error
func IsServerError(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Category == CategoryServer
}
