// Package errors provides structured error types for the roadmap engine.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI and the HTTP API
//   - Machine-readable error codes for programmatic handling
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Unknown node or edge identifiers
//   - MALFORMED_STATE, UNSUPPORTED_VERSION: Durable form cannot be read
//   - STORAGE_ERROR: The storage backend failed
//   - INTERNAL_ERROR: Unexpected internal errors
//
// Store mutations absorb unknown ids as no-ops; coded errors surface only
// at validation boundaries (deserialization, API bodies, CLI arguments) and
// for operations that explicitly refuse a change, such as a prerequisite
// edge that would close a cycle.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeNodeNotFound, "node %q not found", id)
//	if errors.Is(err, errors.ErrCodeNodeNotFound) {
//	    // Handle unknown node
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeStorage, origErr, "failed to save %s", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput        Code = "INVALID_INPUT"
	ErrCodeInvalidDirection    Code = "INVALID_DIRECTION"
	ErrCodeInvalidStatus       Code = "INVALID_STATUS"
	ErrCodeInvalidRelationship Code = "INVALID_RELATIONSHIP"
	ErrCodeInvalidKey          Code = "INVALID_KEY"

	// Graph errors
	ErrCodeNodeNotFound   Code = "NODE_NOT_FOUND"
	ErrCodeEdgeNotFound   Code = "EDGE_NOT_FOUND"
	ErrCodeCycleWouldForm Code = "CYCLE_WOULD_FORM"

	// Durable form errors
	ErrCodeMalformedState     Code = "MALFORMED_STATE"
	ErrCodeUnsupportedVersion Code = "UNSUPPORTED_VERSION"

	// Backend errors
	ErrCodeStorage Code = "STORAGE_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// CycleError reports the edge that was refused because it would close a
// prerequisite cycle.
type CycleError struct {
	Source string
	Target string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("prerequisite %s -> %s would form a cycle", e.Source, e.Target)
}

// Code returns the error code for this error type.
func (e *CycleError) Code() Code {
	return ErrCodeCycleWouldForm
}

// Cycle returns a coded error wrapping a [CycleError].
func Cycle(source, target string) *Error {
	return Wrap(ErrCodeCycleWouldForm, &CycleError{Source: source, Target: target},
		"cannot connect %s to %s", source, target)
}
