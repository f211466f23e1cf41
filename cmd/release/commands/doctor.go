package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mishamyrt/commitfmt-release/internal/bump"
	"github.com/mishamyrt/commitfmt-release/internal/config"
	"github.com/mishamyrt/commitfmt-release/internal/doctor"
	"github.com/mishamyrt/commitfmt-release/internal/doctor/checks"
	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

var (
	doctorJSON    bool
	doctorQuiet   bool
	doctorVerbose bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorQuiet, "quiet", false,
		"suppress output, exit code only")
	doctorCmd.Flags().BoolVar(&doctorVerbose, "verbose", false,
		"show detailed check-by-check output")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that a release can go out",
	Long: `Run read-only checks on the repository before a release.

Checks that every manifest parses and carries the same version, that all
prebuilt binaries exist, that both package trees have the expected layout,
that npm and python are installed, that PYPI_TOKEN is set and that no other
release is running.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --verbose   Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - No errors (warnings allowed)
  1 - Errors present`,
	Example: `  release doctor
  release doctor --verbose
  release doctor --json | jq '.summary'

See Also: release config`,
	Args:    cobra.NoArgs,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	if doctorJSON {
		count++
	}
	if doctorQuiet {
		count++
	}
	if doctorVerbose {
		count++
	}

	if count > 1 {
		return errors.NewUserError(
			errors.New("flags --json, --quiet, and --verbose are mutually exclusive"), "")
	}

	return nil
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	report := newDoctorRunner(cfg).Run(cmd.Context())

	if err := outputDoctorReport(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if report.HasErrors() {
		return errors.NewExitError(
			errors.Newf("%d of %d checks failed", report.Summary.Errors, len(report.Results)),
			errors.ExitUser)
	}
	return nil
}

// newDoctorRunner registers every release readiness check for cfg.
func newDoctorRunner(cfg *config.Config) *doctor.Runner {
	locator := newLocator(cfg)
	// Strategies are only inspected, never run.
	npm := newNPM(cfg, locator, nil)
	pypi := newPyPI(cfg, locator, nil)

	runner := doctor.NewRunner()
	runner.AddCheck(checks.NewManifestSyntaxCheck(cfg.Path(cfg.NativeManifest), map[string]string{
		cfg.Path(cfg.NPM.Root):  bump.NPMManifest,
		cfg.Path(cfg.PyPI.Root): cfg.PyPI.Manifest,
	}))
	runner.AddCheck(checks.NewVersionCheck(newSynchronizer(cfg)))
	runner.AddCheck(checks.NewArtifactCheck(locator))
	runner.AddCheck(checks.NewLayoutCheck(npm, npmPackages(cfg)))
	runner.AddCheck(checks.NewLayoutCheck(pypi, pypiPackages(cfg)))
	runner.AddCheck(checks.NewToolCheck(cfg.NPM.Command, "publish-npm"))
	runner.AddCheck(checks.NewToolCheck(cfg.PyPI.Python, "publish-pypi"))
	runner.AddCheck(checks.NewCredentialCheck(config.EnvToken, cfg.PyPIToken, "publish-pypi"))
	runner.AddCheck(checks.NewConcurrencyCheck(newGuard(cfg)))
	return runner
}

func outputDoctorReport(w io.Writer, report *doctor.DoctorReport) error {
	if doctorQuiet {
		return nil
	}

	if doctorJSON {
		return outputDoctorJSON(w, report)
	}

	outputDoctorText(w, report)
	return nil
}

func outputDoctorJSON(w io.Writer, report *doctor.DoctorReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport) {
	results := report.Problems()
	if doctorVerbose {
		results = report.Results
	}

	for _, result := range results {
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if problems, ok := result.Details["problems"].([]string); ok {
			for _, p := range problems {
				fmt.Fprintf(w, "    %s\n", p)
			}
		}
		if result.FixHint != "" && result.Problem() {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if len(results) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.CyanString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}
