package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/mishamyrt/commitfmt-release/internal/doctor"
	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

// AppName is the application name used for config file naming.
const AppName = "release"

// Environment variables read outside the RELEASE_ prefix.
const (
	EnvToken     = "PYPI_TOKEN"
	EnvConfigDir = "RELEASE_CONFIG_DIR"
)

// Defaults matching the commitfmt repository layout.
const (
	DefaultBinaryName     = "commitfmt"
	DefaultNativeManifest = "crates/commitfmt/Cargo.toml"
	DefaultDistDir        = "target/distrib"
	DefaultNPMRoot        = "packaging/npm"
	DefaultNPMCommand     = "npm"
	DefaultPyPIRoot       = "packaging/pypi"
	DefaultPython         = "python"
	DefaultReadme         = "README.md"
	DefaultPyPIManifest   = "pyproject.toml"
)

// Config is the effective release configuration.
type Config struct {
	ProjectRoot    string     `mapstructure:"project_root" yaml:"project_root,omitempty"`
	BinaryName     string     `mapstructure:"binary_name" yaml:"binary_name"`
	NativeManifest string     `mapstructure:"native_manifest" yaml:"native_manifest"`
	DistDir        string     `mapstructure:"dist_dir" yaml:"dist_dir"`
	NPM            NPMConfig  `mapstructure:"npm" yaml:"npm"`
	PyPI           PyPIConfig `mapstructure:"pypi" yaml:"pypi"`
	PyPIToken      string     `mapstructure:"pypi_token" yaml:"pypi_token,omitempty"`

	// GuardProcess is the executable name the concurrent release guard
	// looks for. Empty means the name of the running binary.
	GuardProcess string `mapstructure:"guard_process" yaml:"guard_process,omitempty"`
}

// NPMConfig holds npm packaging settings.
type NPMConfig struct {
	Root        string `mapstructure:"root" yaml:"root"`
	MetaPackage string `mapstructure:"meta_package" yaml:"meta_package"`
	Command     string `mapstructure:"command" yaml:"command"`
}

// PyPIConfig holds PyPI packaging settings.
type PyPIConfig struct {
	Root     string `mapstructure:"root" yaml:"root"`
	Python   string `mapstructure:"python" yaml:"python"`
	Readme   string `mapstructure:"readme" yaml:"readme"`
	Manifest string `mapstructure:"manifest" yaml:"manifest"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BinaryName:     DefaultBinaryName,
		NativeManifest: DefaultNativeManifest,
		DistDir:        DefaultDistDir,
		NPM: NPMConfig{
			Root:        DefaultNPMRoot,
			MetaPackage: DefaultBinaryName,
			Command:     DefaultNPMCommand,
		},
		PyPI: PyPIConfig{
			Root:     DefaultPyPIRoot,
			Python:   DefaultPython,
			Readme:   DefaultReadme,
			Manifest: DefaultPyPIManifest,
		},
	}
}

// Dir returns the user-level config directory.
func Dir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.Reset()

	viper.SetConfigName(AppName)
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(Dir())

	viper.SetEnvPrefix("RELEASE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("pypi_token", EnvToken)

	d := Default()
	viper.SetDefault("project_root", "")
	viper.SetDefault("binary_name", d.BinaryName)
	viper.SetDefault("native_manifest", d.NativeManifest)
	viper.SetDefault("dist_dir", d.DistDir)
	viper.SetDefault("npm.root", d.NPM.Root)
	viper.SetDefault("npm.meta_package", d.NPM.MetaPackage)
	viper.SetDefault("npm.command", d.NPM.Command)
	viper.SetDefault("pypi.root", d.PyPI.Root)
	viper.SetDefault("pypi.python", d.PyPI.Python)
	viper.SetDefault("pypi.readme", d.PyPI.Readme)
	viper.SetDefault("pypi.manifest", d.PyPI.Manifest)
	viper.SetDefault("guard_process", "")
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file exists. The result is validated.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// implicit load, defaults apply
		case errors.As(err, &notFound), errors.Is(err, os.ErrNotExist):
			return nil, errors.Mark(errors.Wrapf(err, "config file not found at %s", path), errors.ErrNotFound)
		default:
			return nil, errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrInvalidConfig)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrInvalidConfig)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(errors.Join(errs...), "validating config"), errors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// FileUsed returns the config file that was read, or "" when running on
// defaults.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// Path resolves p against the project root. Absolute paths are returned
// unchanged.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	root := c.ProjectRoot
	if root == "" {
		root = "."
	}
	return filepath.Join(root, p)
}

// Redacted returns a copy safe to print, with the token masked.
func (c *Config) Redacted() *Config {
	out := *c
	if out.PyPIToken != "" {
		out.PyPIToken = doctor.MaskValue(out.PyPIToken)
	}
	return &out
}
