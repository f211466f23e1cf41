// Package errors provides error handling conventions for the release CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions. It also re-exports the helpers of
// github.com/cockroachdb/errors so callers import a single errors package.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to check for specific error conditions
// using [errors.Is]:
//
//	if errors.Is(err, releaseerrors.ErrMissingCredential) {
//	    // the PyPI token is not set
//	}
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): Configuration error (bad version, missing credential, unsupported platform)
//   - ExitSystem (2): I/O or sub-process failure (missing artifact, failed upload)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional suggestion:
//
//	err := releaseerrors.NewUserError(releaseerrors.ErrMissingCredential, "Export PYPI_TOKEN")
//	var exitErr *releaseerrors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
