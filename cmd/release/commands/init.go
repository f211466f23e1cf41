package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mishamyrt/commitfmt-release/internal/config"
	"github.com/mishamyrt/commitfmt-release/internal/errors"
	"github.com/mishamyrt/commitfmt-release/pkg/fileutil"
)

var (
	initForce  bool
	initGlobal bool
)

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing configuration")
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "Write to the user config directory instead of the current directory")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a release.yaml with the default settings",
	Long: `Write release.yaml with every setting at its default value, ready to be
edited. The file goes into the current directory, or into the user config
directory with --global.`,
	Example: `  release init

  # Replace an existing file
  release init --force

  See Also: release config`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := "."
	if initGlobal {
		dir = config.Dir()
	}
	path := filepath.Join(dir, config.AppName+".yaml")

	out := cmd.OutOrStdout()
	if _, err := os.Stat(path); err == nil && !initForce {
		fmt.Fprintf(out, "Configuration already exists at %s\n", path)
		fmt.Fprintln(out, "Use --force to overwrite")
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	if err := fileutil.AtomicWriteYAML(path, config.Default(), 0o644); err != nil {
		return errors.Wrap(err, "writing config file")
	}

	fmt.Fprintf(out, "Created %s\n", path)
	return nil
}
