// Package errors provides coded domain errors for parsing, storage and the catalog API.
//
// Usage:
//
//	if len(candidates) != 1 {
//	    return errors.ParseRejectionf("expected one title candidate, found %d", len(candidates))
//	}
//
//	if errors.Is(err, errors.ErrConstraintViolation) {
//	    logger.Warn("row skipped", "error", err)
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeParseRejection      Code = "PARSE_REJECTION"
	CodeConstraintViolation Code = "CONSTRAINT_VIOLATION"
	CodeConnectionFailure   Code = "CONNECTION_FAILURE"
	CodeNotFound            Code = "NOT_FOUND"
	CodeValidation          Code = "VALIDATION"
	CodeInternal            Code = "INTERNAL"
)

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error.
// Matches if target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors for use with errors.Is().
var (
	ErrParseRejection      = &Error{Code: CodeParseRejection, Message: "parse rejection"}
	ErrConstraintViolation = &Error{Code: CodeConstraintViolation, Message: "constraint violation"}
	ErrConnectionFailure   = &Error{Code: CodeConnectionFailure, Message: "connection failure"}
	ErrNotFound            = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation          = &Error{Code: CodeValidation, Message: "validation error"}
	ErrInternal            = &Error{Code: CodeInternal, Message: "internal error"}
)

// ParseRejectionf creates a parse rejection with formatted message.
func ParseRejectionf(format string, args ...any) *Error {
	return &Error{Code: CodeParseRejection, Message: fmt.Sprintf(format, args...)}
}

// ConstraintViolation creates a constraint violation wrapping the storage error.
func ConstraintViolation(msg string, cause error) *Error {
	return &Error{Code: CodeConstraintViolation, Message: msg, cause: cause}
}

// ConnectionFailure creates a connection failure wrapping the driver error.
func ConnectionFailure(msg string, cause error) *Error {
	return &Error{Code: CodeConnectionFailure, Message: msg, cause: cause}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error with details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// Internal wraps an unexpected error.
func Internal(msg string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: msg, cause: cause}
}

// FromStorage classifies a driver error. Constraint failures become
// ConstraintViolation, anything else is returned wrapped as Internal.
func FromStorage(msg string, err error) error {
	if err == nil {
		return nil
	}
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return err
	}
	if strings.Contains(err.Error(), "constraint failed") {
		return ConstraintViolation(msg, err)
	}
	return Internal(msg, err)
}
