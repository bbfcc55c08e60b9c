package errors

import (
	"github.com/cockroachdb/errors"
)

// Sentinel errors forming the error taxonomy of the configuration core.
// Every I/O or parse failure crossing the store or backup boundary is
// classified as one of these; callers never see raw filesystem or
// parser errors.
var (
	// ErrNotFound indicates the requested file, server, or snapshot
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCorrupted indicates a file exists but could not be parsed as
	// JSON or does not match the expected schema.
	ErrCorrupted = errors.New("corrupted")

	// ErrPermissionDenied indicates the operation was rejected by file
	// system permissions.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrLockTimeout indicates an advisory lock could not be acquired
	// within the configured timeout. Distinct from content errors so
	// callers can decide whether to retry.
	ErrLockTimeout = errors.New("lock timeout")

	// ErrAlreadyExists indicates a server with the requested name is
	// already present in the configuration.
	ErrAlreadyExists = errors.New("already exists")

	// ErrWriteFailed indicates an atomic replace failed before the
	// rename; the original file is untouched.
	ErrWriteFailed = errors.New("write failed")

	// ErrValidationFailed indicates a server descriptor was rejected
	// by the validation pipeline.
	ErrValidationFailed = errors.New("validation failed")
)

// Exit codes for the CLI.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, missing
	// server, validation failure).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, locking,
	// permissions).
	ExitSystem = 2
)

// ExitError wraps an error with an exit code and optional suggestion
// for the CLI. It supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

// Error returns the error message from the underlying error.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return errors.Newf("exit code %d", e.Code).Error()
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and
// errors.As to examine the chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
