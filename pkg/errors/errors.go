// Package errors provides the coded errors shared by the regroup library,
// the CLI and the HTTP API.
//
// # Error Codes
//
// The codes mirror the failure taxonomy of hierarchy construction and span
// splitting:
//   - CONFIGURATION: no hierarchy source was supplied
//   - INVALID_SIGNATURE: unparseable signature or unsupported denominator
//   - MALFORMED_HIERARCHY: a hierarchy or pulse list violates its invariants
//   - OUT_OF_RANGE_SPAN: a span starts outside the measure
//   - INVALID_*: other input validation failures
//   - INTERNAL_ERROR: an internal consistency check failed
//
// All of these are raised synchronously; there is no partial state to unwind
// and no retry policy. Callers fix the input and call again.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidSignature, "unsupported denominator %d", d)
//	if errors.Is(err, errors.ErrCodeInvalidSignature) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "read spans from %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Hierarchy and span errors
	ErrCodeConfiguration      Code = "CONFIGURATION"
	ErrCodeInvalidSignature   Code = "INVALID_SIGNATURE"
	ErrCodeMalformedHierarchy Code = "MALFORMED_HIERARCHY"
	ErrCodeOutOfRangeSpan     Code = "OUT_OF_RANGE_SPAN"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsInput reports whether err was caused by caller input rather than by the
// environment or a bug.
func IsInput(err error) bool {
	status := HTTPStatus(GetCode(err))
	return status >= 400 && status < 500
}

// HTTPStatus maps an error code to the HTTP status the API responds with.
// Unknown and empty codes map to 500.
func HTTPStatus(code Code) int {
	switch code {
	case ErrCodeConfiguration, ErrCodeInvalidSignature, ErrCodeMalformedHierarchy,
		ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeOutOfRangeSpan:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
