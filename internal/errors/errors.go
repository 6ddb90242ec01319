package errors

import (
	"errors"
	"fmt"
)

// AppError is a structured application error with a stable error code and
// the process exit code a fatal occurrence maps to.
type AppError struct {
	Code     string
	ExitCode int
	Message  string
	Err      error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors by code so sentinel comparisons survive wrapping
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates a new AppError with the given code, exit code and message
func New(code string, exitCode int, message string) *AppError {
	return &AppError{
		Code:     code,
		ExitCode: exitCode,
		Message:  message,
	}
}

// Predefined error types for the pipeline's fatal scenarios
var (
	ErrConfigInvalid   = New("CONFIG_INVALID", 2, "configuration validation failed")
	ErrInputNotFound   = New("INPUT_NOT_FOUND", 3, "required input file not found")
	ErrInputUnreadable = New("INPUT_UNREADABLE", 4, "input file could not be read")
	ErrSchemaInvalid   = New("SCHEMA_INVALID", 5, "required columns not found in input")
	ErrExportFailed    = New("EXPORT_FAILED", 6, "failed to write output file")
)

// WithCause returns a copy of the error carrying err as its wrapped cause.
// The original sentinel is never mutated.
func (e *AppError) WithCause(err error) *AppError {
	return &AppError{
		Code:     e.Code,
		ExitCode: e.ExitCode,
		Message:  e.Message,
		Err:      err,
	}
}

// WithMessage returns a copy of the error with a more specific message
func (e *AppError) WithMessage(format string, args ...any) *AppError {
	return &AppError{
		Code:     e.Code,
		ExitCode: e.ExitCode,
		Message:  fmt.Sprintf(format, args...),
		Err:      e.Err,
	}
}

// Helper functions for specific error types

// InputNotFound creates an input-not-found error for a path
func InputNotFound(path string, err error) *AppError {
	return ErrInputNotFound.WithMessage("required input file not found: %s", path).WithCause(err)
}

// InputUnreadable creates an unreadable-input error for a path
func InputUnreadable(path string, err error) *AppError {
	return ErrInputUnreadable.WithMessage("input file could not be read: %s", path).WithCause(err)
}

// SchemaInvalid creates a schema error naming the missing column role
func SchemaInvalid(detail string) *AppError {
	return ErrSchemaInvalid.WithMessage("required columns not found in input: %s", detail)
}

// ExportFailed creates an export error wrapping the underlying I/O failure
func ExportFailed(err error) *AppError {
	return ErrExportFailed.WithCause(err)
}

// ConfigInvalid creates a configuration error wrapping the validation failure
func ConfigInvalid(err error) *AppError {
	return ErrConfigInvalid.WithCause(err)
}

// Code returns the error code of err, or "UNKNOWN" for plain errors
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// ExitCode returns the process exit code err maps to. Plain errors map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return 1
}
