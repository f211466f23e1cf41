package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a configuration error (invalid version, missing credential, etc.).
	ExitUser = 1

	// ExitSystem indicates an I/O or sub-process error (missing artifact, failed upload, etc.).
	ExitSystem = 2
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotFound indicates the requested file or directory was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidVersion indicates the target version string is malformed.
	ErrInvalidVersion = errors.New("invalid version")

	// ErrMissingCredential indicates a required registry credential is not set.
	ErrMissingCredential = errors.New("credential is not set")

	// ErrCommandFailed indicates an external command exited unsuccessfully.
	ErrCommandFailed = errors.New("command failed")
)

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewExitError creates an ExitError with the given underlying error and exit code.
// If err is nil, the returned ExitError will have a nil Err field.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{
		Err:  err,
		Code: code,
	}
}

// NewExitErrorWithSuggestion creates an ExitError with a suggestion.
func NewExitErrorWithSuggestion(err error, code int, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       code,
		Suggestion: suggestion,
	}
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// NewConfigError creates an ExitError with ExitUser code and a standard suggestion.
func NewConfigError(err error) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: "Run: release doctor",
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Classify turns an arbitrary pipeline error into an ExitError.
// Errors that already carry an exit code are returned unchanged. Known
// configuration sentinels map to ExitUser; everything else is a system error.
func Classify(err error) *ExitError {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}

	switch {
	case errors.Is(err, ErrMissingCredential):
		return NewUserError(err, "Export the registry token before publishing")
	case errors.Is(err, ErrInvalidVersion):
		return NewUserError(err, "Pass a version like 1.2.3")
	case errors.Is(err, ErrInvalidConfig):
		return NewConfigError(err)
	case errors.Is(err, ErrCommandFailed):
		return NewSystemError(err, "Already published packages are not rolled back; fix the failure and re-run")
	default:
		return NewSystemError(err, "")
	}
}
