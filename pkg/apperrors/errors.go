// Package apperrors defines the error taxonomy shared by the HTTP surface,
// the persistence layer, and the caching core.
//
// Errors carry a machine-readable code so transports can map them to status
// codes without string matching, and they wrap the underlying cause so call
// sites can still use errors.Is/errors.As against driver errors.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	// CodeValidation marks client input that failed validation
	// (bad status filter, malformed cursor, invalid payload).
	CodeValidation Code = "VALIDATION"

	// CodeNotFound marks a lookup for a row that does not exist.
	CodeNotFound Code = "NOT_FOUND"

	// CodeTransientStore marks a persistence failure of the
	// connectivity/timeout class. The retry wrapper absorbs these; only
	// after retries are exhausted does one reach a transport.
	CodeTransientStore Code = "TRANSIENT_STORE"

	// CodeCacheUnavailable marks a cache store outage. It is never
	// surfaced to callers; the cache manager degrades to direct
	// computation instead.
	CodeCacheUnavailable Code = "CACHE_UNAVAILABLE"

	// CodeInternal is the fallback for everything else.
	CodeInternal Code = "INTERNAL"
)

// Error is the application error type.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches two application errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates an application error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap annotates an underlying error with a code and message.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Validation creates a client-input error.
func Validation(message string) *Error {
	return New(CodeValidation, message)
}

// NotFound creates a missing-resource error.
func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

// Transient annotates a persistence failure as retryable.
func Transient(err error, message string) *Error {
	return Wrap(err, CodeTransientStore, message)
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// IsValidation reports whether the error chain contains a validation error.
func IsValidation(err error) bool {
	return CodeOf(err) == CodeValidation
}

// IsNotFound reports whether the error chain contains a not-found error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsTransient reports whether the error chain contains a transient store error.
func IsTransient(err error) bool {
	return CodeOf(err) == CodeTransientStore
}

// HTTPStatus maps an error chain to the response status for transports.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTransientStore:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
