package forum

import "errors"

// Code classifies an engine failure for callers. The set is fixed; handlers
// map each code to an HTTP status.
type Code string

const (
	CodeForbidden   Code = "FORBIDDEN"
	CodeNotFound    Code = "NOT_FOUND"
	CodeRateLimited Code = "RATE_LIMITED"
	CodeValidation  Code = "VALIDATION"
	CodeConflict    Code = "CONFLICT"
)

// Error is the typed error returned by every engine operation that fails a
// policy or lookup. Store-level failures are returned as plain wrapped errors
// and surface as internal errors at the boundary.
type Error struct {
	Code    Code
	Message string

	// RetryAfterSeconds carries the wait hint for RATE_LIMITED errors.
	RetryAfterSeconds int
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// ErrForbidden creates a FORBIDDEN error.
func ErrForbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// ErrNotFound creates a NOT_FOUND error.
func ErrNotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// ErrRateLimited creates a RATE_LIMITED error with a retry-after hint.
func ErrRateLimited(msg string, retryAfterSeconds int) *Error {
	return &Error{Code: CodeRateLimited, Message: msg, RetryAfterSeconds: retryAfterSeconds}
}

// ErrValidation creates a VALIDATION error.
func ErrValidation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// ErrConflict creates a CONFLICT error.
func ErrConflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// CodeOf extracts the engine code from err, or "" for untyped errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
