// Package logging provides structured logging for the release CLI using slog.
//
// The package supports both text and JSON output formats, configurable log
// levels, context propagation and helpers for testing. All loggers are based
// on the standard library's [log/slog] package.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{
//		Level:  slog.LevelInfo,
//		Format: logging.FormatText,
//		Output: os.Stderr,
//	})
//	ctx = logging.NewContext(ctx, logger)
//	logging.FromContext(ctx).Info("publishing", "ecosystem", "npm")
//
// # Testing
//
// For tests, use [ForTest] to capture log output via the testing framework:
//
//	func TestSomething(t *testing.T) {
//		logger := logging.ForTest(t)
//		// logs appear in test output on failure
//	}
//
// Values under credential-looking keys (token, password, ...) are masked by
// the text handler before they reach the terminal.
package logging
