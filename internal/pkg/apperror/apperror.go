package apperror

import "net/http"

// AppError is a custom error type that includes an HTTP status code and an optional underlying error.
type AppError struct {
	Code    int    // HTTP Status Code (e.g., 400, 404)
	Message string // User-facing error message
	Err     error  // The underlying error, if any (not exposed to user)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new AppError wrapping an existing error.
func Wrap(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Validation creates a 400 error for malformed or out-of-range input.
func Validation(message string) *AppError {
	return New(http.StatusBadRequest, message)
}

// Permission creates a 403 error for an actor lacking role, ownership or grant.
func Permission(message string) *AppError {
	return New(http.StatusForbidden, message)
}

// Conflict creates a 409 error for overlapping intervals or duplicate state.
func Conflict(message string) *AppError {
	return New(http.StatusConflict, message)
}

// Immutable creates a 409 error for mutations against a booking whose
// lifecycle state no longer allows edits.
func Immutable(message string) *AppError {
	return New(http.StatusConflict, message)
}

// NotFound creates a 404 error for a missing entity.
func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message)
}
