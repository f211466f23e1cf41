package commands

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mishamyrt/commitfmt-release/internal/logging"
)

func TestSetupLogging_VerbosityFlags(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	tests := []struct {
		name      string
		verbosity int
		wantLevel slog.Level
	}{
		{"default (0)", 0, slog.LevelWarn},
		{"verbose (1)", 1, slog.LevelInfo},
		{"debug (2)", 2, slog.LevelDebug},
		{"trace (3)", 3, logging.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = tt.verbosity
			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > logging.LevelTrace {
				shouldBeDisabled := tt.wantLevel - 4
				if logger.Enabled(t.Context(), shouldBeDisabled) {
					t.Errorf("expected level %v to be disabled", shouldBeDisabled)
				}
			}
		})
	}
}

func TestSetupLogging_EnvVar(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	tests := []struct {
		name      string
		envVal    string
		wantLevel slog.Level
	}{
		{"RELEASE_DEBUG=1", "1", slog.LevelDebug},
		{"RELEASE_DEBUG=true", "true", slog.LevelDebug},
		{"RELEASE_DEBUG=2", "2", logging.LevelTrace},
		{"RELEASE_DEBUG=0", "0", slog.LevelWarn},
		{"RELEASE_DEBUG=unknown", "foo", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verbosity = 0
			t.Setenv(envDebug, tt.envVal)

			if err := setupLogging(rootCmd); err != nil {
				t.Fatalf("setupLogging failed: %v", err)
			}

			logger := slog.Default()
			if !logger.Enabled(t.Context(), tt.wantLevel) {
				t.Errorf("expected level %v to be enabled", tt.wantLevel)
			}

			if tt.wantLevel == slog.LevelDebug {
				if logger.Enabled(t.Context(), logging.LevelTrace) {
					t.Error("expected Trace level to be disabled when RELEASE_DEBUG=1")
				}
			}
		})
	}
}

func TestSetupLogging_FlagPrecedence(t *testing.T) {
	origVerbosity := verbosity
	defer func() { verbosity = origVerbosity }()

	t.Setenv(envDebug, "2")
	verbosity = 1

	require.NoError(t, setupLogging(rootCmd))

	logger := slog.Default()
	assert.True(t, logger.Enabled(t.Context(), slog.LevelInfo))
	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug), "flag should override env var")
}

func TestSetupLogging_Quiet(t *testing.T) {
	origQuiet := quiet
	origVerbosity := verbosity
	defer func() {
		quiet = origQuiet
		verbosity = origVerbosity
	}()

	quiet = true
	verbosity = 0
	require.NoError(t, setupLogging(rootCmd))
	assert.False(t, slog.Default().Enabled(t.Context(), slog.LevelWarn))
	assert.True(t, slog.Default().Enabled(t.Context(), slog.LevelError))

	verbosity = 1
	assert.Error(t, setupLogging(rootCmd), "--quiet and --verbose conflict")
}

func TestSetupLogging_LogFileFromEnv(t *testing.T) {
	origVerbosity := verbosity
	origLogFile := logFile
	defer func() {
		verbosity = origVerbosity
		logFile = origLogFile
	}()

	verbosity = 1
	logFile = ""
	path := filepath.Join(t.TempDir(), "release.log")
	t.Setenv(envLogFile, path)

	require.NoError(t, setupLogging(rootCmd))
	slog.Default().Info("hello from the test")

	assert.FileExists(t, path)
}
