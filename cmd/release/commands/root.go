// Package commands implements the CLI commands for release.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mishamyrt/commitfmt-release/cmd"
	"github.com/mishamyrt/commitfmt-release/internal/config"
	"github.com/mishamyrt/commitfmt-release/internal/errors"
	"github.com/mishamyrt/commitfmt-release/internal/logging"
)

// Environment fallbacks for the logging flags.
const (
	envDebug     = "RELEASE_DEBUG"
	envLogFormat = "RELEASE_LOG_FORMAT"
	envLogFile   = "RELEASE_LOG_FILE"
)

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configPath holds the value of the --config flag.
var configPath string

// loaded is the configuration read by initConfig.
var loaded *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"log format: text, json (default text)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"path to release.yaml (default: ./release.yaml, then the user config directory)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("release version {{.Version}}\n")

	// Silence errors and usage so main controls error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	config.Init()
	loaded, configLoadErr = config.Load(configPath)
}

var rootCmd = &cobra.Command{
	Use:   "release",
	Short: "Version and publish commitfmt to npm and PyPI",
	Long: `release keeps the commitfmt version consistent across the Cargo
manifest, the npm packages and the PyPI packages, fills every
per-platform package with its prebuilt binary and uploads it.

Binaries are expected under target/distrib, one directory per Rust target
triple. Nothing is built by this tool.`,
	Example: `  # Stamp a new version everywhere
  release set-version 1.4.0

  # Check that a release can go out
  release doctor

  # Publish
  release publish-npm
  PYPI_TOKEN=pypi-... release publish-pypi

  See Also: release config, release init`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupLogging(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(errors.New("cannot use --quiet and --verbose together"), "")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv(envDebug); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	format := logFormat
	if format == "" {
		format = os.Getenv(envLogFormat)
	}
	file := logFile
	if file == "" {
		file = os.Getenv(envLogFile)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(format) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), opts)
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level: level,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// requireConfig returns the loaded configuration or the load failure as a
// config error.
func requireConfig() (*config.Config, error) {
	if configLoadErr != nil {
		return nil, errors.NewConfigError(configLoadErr)
	}
	if loaded == nil {
		return nil, errors.NewConfigError(errors.New("configuration not loaded"))
	}
	return loaded, nil
}

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
