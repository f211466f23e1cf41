package commands

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

func init() {
	rootCmd.AddCommand(setVersionCmd)
}

var setVersionCmd = &cobra.Command{
	Use:   "set-version <version>",
	Short: "Write one version into every manifest",
	Long: `Write the version into the CLI crate's Cargo.toml, every npm package.json
(including the meta package's optionalDependencies) and every PyPI
pyproject.toml.

The version must be MAJOR.MINOR.PATCH with an optional pre-release or build
suffix. Nothing is written when it is malformed. Files are rewritten in
place; running the command twice with the same version changes nothing.`,
	Example: `  # Stamp a release
  release set-version 1.4.0

  # Pre-release
  release set-version 1.5.0-rc.1

See Also: release doctor`,
	Args: cobra.ExactArgs(1),
	RunE: runSetVersion,
}

func runSetVersion(cmd *cobra.Command, args []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	version := args[0]
	sync := newSynchronizer(cfg)
	if err := sync.Sync(cmd.Context(), version); err != nil {
		return errors.Wrapf(err, "setting version %s", version)
	}

	report, err := sync.Versions(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "reading versions back")
	}

	var files []string
	for _, e := range report.Entries {
		if !slices.Contains(files, e.Path) {
			files = append(files, e.Path)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Version set to %s in %d files\n", version, len(files))
	for _, f := range files {
		fmt.Fprintf(out, "  %s\n", f)
	}
	return nil
}
