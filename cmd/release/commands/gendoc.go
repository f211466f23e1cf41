package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

var genDocCmd = &cobra.Command{
	Use:    "gen-doc",
	Short:  "Generate Markdown documentation for the CLI",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		outputDir, _ := cmd.Flags().GetString("dir")
		if outputDir == "" {
			return errors.NewUserError(errors.New("output directory is required"), "Pass --dir")
		}

		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return errors.Wrap(err, "creating output directory")
		}

		rootCmd.DisableAutoGenTag = true
		if err := doc.GenMarkdownTreeCustom(rootCmd, outputDir, filePrepender, linkHandler); err != nil {
			return errors.Wrap(err, "generating markdown")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Documentation generated in %s\n", outputDir)
		return nil
	},
}

func init() {
	genDocCmd.Flags().StringP("dir", "d", "", "Output directory for documentation")
	rootCmd.AddCommand(genDocCmd)
}

func filePrepender(filename string) string {
	name := filepath.Base(filename)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	// release_set-version.md -> release set-version
	title := strings.ReplaceAll(base, "_", " ")

	return fmt.Sprintf("<!-- %s: generated by release gen-doc, do not edit -->\n", title)
}

func linkHandler(name string) string {
	return name
}
