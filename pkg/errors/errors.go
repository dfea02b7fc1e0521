// Package errors provides structured error types for slicetopo.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the terminal editor and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input, import and configuration failures
//   - *_NOT_FOUND: Missing nodes, connections or drafts
//   - NETWORK_*, TIMEOUT, HTTP_STATUS: Slice Manager submission failures
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNotFound, "node %d not found", id)
//	if errors.Is(err, errors.ErrCodeNotFound) {
//	    // Handle missing node
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "post to %s", url)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input errors
	ErrCodeInvalidInput      Code = "INVALID_INPUT"
	ErrCodeInvalidConnection Code = "INVALID_CONNECTION"
	ErrCodeInvalidPreset     Code = "INVALID_PRESET"
	ErrCodeInvalidImport     Code = "INVALID_IMPORT"
	ErrCodeInvalidConfig     Code = "INVALID_CONFIG"
	ErrCodeInvalidPath       Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeDraftNotFound Code = "DRAFT_NOT_FOUND"

	// Validation errors
	ErrCodeValidationFailed Code = "VALIDATION_FAILED"

	// Submission errors
	ErrCodeNetwork              Code = "NETWORK_ERROR"
	ErrCodeTimeout              Code = "TIMEOUT"
	ErrCodeHTTPStatus           Code = "HTTP_STATUS"
	ErrCodeSubmissionInProgress Code = "SUBMISSION_IN_PROGRESS"

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

// ValidationError carries the full list of problems found by a validation
// pass. Submission and export refuse to proceed while it is returned.
type ValidationError struct {
	Problems []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	switch len(e.Problems) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + e.Problems[0]
	default:
		return fmt.Sprintf("validation failed: %s (and %d more)", e.Problems[0], len(e.Problems)-1)
	}
}

// Code returns the error code for this error type.
func (e *ValidationError) Code() Code {
	return ErrCodeValidationFailed
}
