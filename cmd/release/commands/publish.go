package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mishamyrt/commitfmt-release/internal/artifact"
	"github.com/mishamyrt/commitfmt-release/internal/config"
	"github.com/mishamyrt/commitfmt-release/internal/publish"
	"github.com/mishamyrt/commitfmt-release/internal/shell"
)

// publishDryRun holds the value of the --dry-run flag.
var publishDryRun bool

func init() {
	for _, c := range []*cobra.Command{publishNPMCmd, publishPyPICmd} {
		c.Flags().BoolVar(&publishDryRun, "dry-run", false,
			"print the copy plan without copying or uploading")
		rootCmd.AddCommand(c)
	}
}

// strategyFactory builds the ecosystem strategy for a publish command.
type strategyFactory func(*config.Config, *artifact.Locator, shell.Runner) publish.Strategy

var publishNPMCmd = &cobra.Command{
	Use:   "publish-npm",
	Short: "Copy binaries into the npm packages and publish them",
	Long: `Copy every prebuilt binary into its npm platform package and run
"npm publish" in each package directory, the meta package included.

All binaries are checked before anything is copied. The first failing
publish stops the run; packages published before it stay published.`,
	Example: `  release publish-npm

  # Show what would be copied
  release publish-npm --dry-run

See Also: release publish-pypi, release doctor`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPublish(cmd, func(cfg *config.Config, l *artifact.Locator, r shell.Runner) publish.Strategy {
			return newNPM(cfg, l, r)
		})
	},
}

var publishPyPICmd = &cobra.Command{
	Use:   "publish-pypi",
	Short: "Copy binaries into the PyPI packages, build and upload them",
	Long: `Copy the README and both architecture binaries into every PyPI package,
then build each package with "python -m build" and upload it with twine.

Requires PYPI_TOKEN. Without it nothing is copied or executed.`,
	Example: `  PYPI_TOKEN=pypi-... release publish-pypi

  # Use a specific interpreter
  RELEASE_PYPI_PYTHON=python3.12 release publish-pypi

See Also: release publish-npm, release doctor`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPublish(cmd, func(cfg *config.Config, l *artifact.Locator, r shell.Runner) publish.Strategy {
			return newPyPI(cfg, l, r)
		})
	},
}

func runPublish(cmd *cobra.Command, factory strategyFactory) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	locator := newLocator(cfg)
	strategy := factory(cfg, locator, newRunner(cmd))
	p := publish.New(strategy, locator,
		publish.WithGuard(newGuard(cfg)),
		publish.WithOutput(cmd.OutOrStdout()),
	)

	if !publishDryRun {
		return p.Run(cmd.Context())
	}

	if err := strategy.Preflight(cmd.Context()); err != nil {
		return err
	}
	packages, err := p.Packages()
	if err != nil {
		return err
	}
	plan, err := p.Plan(packages)
	if err != nil {
		return err
	}
	printPlan(cmd, strategy.Name(), plan)
	return nil
}

func printPlan(cmd *cobra.Command, name string, plan *publish.Plan) {
	out := cmd.OutOrStdout()
	for _, a := range plan.Assets {
		fmt.Fprintf(out, "%s → %s\n", a.Source, a.Dest)
	}
	for _, b := range plan.Binaries {
		fmt.Fprintf(out, "%s → %s\n", b.Source, b.Dest)
	}
	fmt.Fprintf(out, "Would publish %d %s packages:\n", len(plan.Packages), name)
	for _, pkg := range plan.Packages {
		fmt.Fprintf(out, "- %s\n", pkg)
	}
}
