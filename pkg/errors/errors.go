// Package errors provides structured error types for py2plan.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the pipeline and the CLI
//   - Machine-readable error codes mapped to process exit codes
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// The taxonomy mirrors the failure modes of a run:
//   - PARSE_ERROR: the source cannot be parsed (fatal, no plan exists)
//   - FUNCTION_NOT_FOUND: the requested function is absent (fatal)
//   - UNSUPPORTED_CONSTRUCT: a statement the builder does not model (non-fatal)
//   - EXPORT_FAILED: the optional diagram stage failed (isolated)
//   - INVALID_INPUT: bad flags, config, or paths
//   - INTERNAL_ERROR: broken invariants and other unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeFunctionNotFound, "function %q not found", name)
//	if errors.Is(err, errors.ErrCodeFunctionNotFound) {
//	    // Handle missing function
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeExportFailed, origErr, "render %s", format)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodeParse                Code = "PARSE_ERROR"
	ErrCodeFunctionNotFound     Code = "FUNCTION_NOT_FOUND"
	ErrCodeUnsupportedConstruct Code = "UNSUPPORTED_CONSTRUCT"
	ErrCodeExportFailed         Code = "EXPORT_FAILED"
	ErrCodeInvalidInput         Code = "INVALID_INPUT"
	ErrCodeInternal             Code = "INTERNAL_ERROR"
)

// Exit codes returned by the CLI for each error category.
const (
	ExitOK               = 0
	ExitFailure          = 1
	ExitParseError       = 2
	ExitFunctionNotFound = 3
	ExitExportFailed     = 4
	ExitUsage            = 64
	ExitInterrupted      = 130
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Line    int    // Source line the error refers to (0 if unknown)
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
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

// AtLine returns a copy of e that refers to the given source line.
func (e *Error) AtLine(line int) *Error {
	c := *e
	c.Line = line
	return &c
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
// For *Error types, returns the message without the code prefix,
// followed by the message of its cause.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		msg := e.Message
		if e.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", e.Line, msg)
		}
		if e.Cause != nil {
			msg += ": " + UserMessage(e.Cause)
		}
		return msg
	}
	return err.Error()
}

// ExitCode maps an error to the process exit code.
// A nil error maps to ExitOK; errors without a code map to ExitFailure.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	switch GetCode(err) {
	case ErrCodeParse:
		return ExitParseError
	case ErrCodeFunctionNotFound:
		return ExitFunctionNotFound
	case ErrCodeExportFailed:
		return ExitExportFailed
	case ErrCodeInvalidInput:
		return ExitUsage
	default:
		return ExitFailure
	}
}
