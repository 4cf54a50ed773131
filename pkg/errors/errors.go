// Package errors provides structured error types for the Gitlanes application.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across CLI and API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures
//   - *_NOT_FOUND: Resource not found
//   - *_FAILED: A pipeline stage could not complete
//   - INTERNAL_*: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidRepo, "not a git repository: %s", path)
//	if errors.Is(err, errors.ErrCodeInvalidRepo) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeSnapshotFailed, origErr, "reading history of %s", path)
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
	ErrCodeInvalidInput   Code = "INVALID_INPUT"
	ErrCodeInvalidRepo    Code = "INVALID_REPO"
	ErrCodeInvalidBackend Code = "INVALID_BACKEND"
	ErrCodeInvalidFormat  Code = "INVALID_FORMAT"
	ErrCodeInvalidRef     Code = "INVALID_REF"
	ErrCodeInvalidPath    Code = "INVALID_PATH"
	ErrCodeConfigInvalid  Code = "CONFIG_INVALID"

	// Resource not found errors
	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeRepoNotFound    Code = "REPO_NOT_FOUND"
	ErrCodeCommitNotFound  Code = "COMMIT_NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"

	// Pipeline stage errors
	ErrCodeSnapshotFailed Code = "SNAPSHOT_FAILED"
	ErrCodeLayoutFailed   Code = "LAYOUT_FAILED"
	ErrCodeExportFailed   Code = "EXPORT_FAILED"

	// Infrastructure errors
	ErrCodeCacheFailure Code = "CACHE_FAILURE"
	ErrCodeWatchFailure Code = "WATCH_FAILURE"
	ErrCodeTimeout      Code = "TIMEOUT"
	ErrCodeRepoLocked   Code = "REPO_LOCKED"

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

// RepoLockedError reports that another process holds a lock on the repository,
// typically .git/index.lock during a concurrent git operation.
type RepoLockedError struct {
	LockFile string // Path to the lock file that blocked the operation
}

// Error implements the error interface.
func (e *RepoLockedError) Error() string {
	if e.LockFile != "" {
		return fmt.Sprintf("repository locked: %s exists", e.LockFile)
	}
	return "repository locked by another process"
}

// Code returns the error code for this error type.
func (e *RepoLockedError) Code() Code {
	return ErrCodeRepoLocked
}
