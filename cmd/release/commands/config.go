package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mishamyrt/commitfmt-release/internal/config"
	"github.com/mishamyrt/commitfmt-release/internal/doctor"
	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

func init() {
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the effective configuration as YAML: built-in defaults, then
release.yaml, then RELEASE_* environment variables. The PyPI token is
masked.`,
	Example: `  # Show everything
  release config

  # Show one value
  release config get pypi.python

See Also: release init, release doctor`,
	Args: cobra.NoArgs,
	RunE: runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a single configuration value by key.

Supports dot notation for nested keys. Secret values are masked.`,
	Example: `  release config get npm.root
  release config get pypi_token

See Also: release config`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	cfg, err := requireConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if file := config.FileUsed(); file != "" {
		fmt.Fprintf(out, "# %s\n", file)
	} else {
		fmt.Fprintln(out, "# defaults (no release.yaml found)")
	}

	data, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}
	_, err = out.Write(data)
	return err
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if _, err := requireConfig(); err != nil {
		return err
	}

	key := args[0]
	out := cmd.OutOrStdout()
	if !viper.IsSet(key) {
		fmt.Fprintln(out, "not set")
		return nil
	}

	value := viper.GetString(key)
	if doctor.ShouldMask(key) || doctor.ContainsTokenPrefix(value) {
		value = doctor.MaskValue(value)
	}
	fmt.Fprintln(out, value)
	return nil
}
