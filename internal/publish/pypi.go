package publish

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mishamyrt/commitfmt-release/internal/artifact"
	"github.com/mishamyrt/commitfmt-release/internal/bump"
	"github.com/mishamyrt/commitfmt-release/internal/errors"
	"github.com/mishamyrt/commitfmt-release/internal/logging"
	"github.com/mishamyrt/commitfmt-release/internal/shell"
)

// Binary name suffixes inside PyPI packages.
const (
	SuffixX64   = "amd64"
	SuffixARM64 = "arm64"
)

// tokenUser is the twine username for API token authentication.
const tokenUser = "__token__"

// ErrEmptyDist indicates the build produced nothing to upload.
var ErrEmptyDist = errors.New("no distribution files to upload")

// PyPIConfig configures the PyPI strategy.
type PyPIConfig struct {
	// Root holds the PyPI package directories.
	Root string

	// Python is the interpreter used for build and twine. Defaults to "python".
	Python string

	// Readme is copied into every package before upload. Empty disables it.
	Readme string

	// Manifest is the build-metadata file name. Defaults to pyproject.toml.
	Manifest string

	// Token is the PyPI API token.
	Token string
}

// PyPI publishes one package per operating system, each carrying both
// architectures. Packages are named <binary>_<os> and keep their binaries
// in a nested directory of the same name:
//
//	commitfmt_linux/commitfmt_linux/commitfmt_amd64
//	commitfmt_linux/commitfmt_linux/commitfmt_arm64
type PyPI struct {
	cfg     PyPIConfig
	runner  shell.Runner
	targets map[string][]Target
}

var _ Strategy = (*PyPI)(nil)

// NewPyPI creates the PyPI strategy for the binaries resolved by locator.
func NewPyPI(cfg PyPIConfig, locator *artifact.Locator, runner shell.Runner) *PyPI {
	if cfg.Python == "" {
		cfg.Python = "python"
	}
	if cfg.Manifest == "" {
		cfg.Manifest = bump.PyPIManifest
	}

	targets := make(map[string][]Target)
	for _, goos := range []string{artifact.OSDarwin, artifact.OSLinux, artifact.OSWindows} {
		pkg := PyPIPackageName(locator.Binary(), goos)
		for _, arch := range []string{artifact.ArchX64, artifact.ArchARM64} {
			k := artifact.Key{OS: goos, Arch: arch}
			targets[pkg] = append(targets[pkg], Target{
				Key:  k,
				Dest: filepath.Join(pkg, pypiBinaryName(locator.Binary(), k)),
			})
		}
	}

	return &PyPI{
		cfg:     cfg,
		runner:  runner,
		targets: targets,
	}
}

// PyPIPackageName returns the PyPI package for an operating system.
func PyPIPackageName(binary, goos string) string {
	return binary + "_" + goos
}

func pypiBinaryName(binary string, k artifact.Key) string {
	suffix := SuffixARM64
	if k.Arch == artifact.ArchX64 {
		suffix = SuffixX64
	}
	name := binary + "_" + suffix
	if k.Windows() {
		name += ".exe"
	}
	return name
}

func (p *PyPI) Name() string     { return "pypi" }
func (p *PyPI) Root() string     { return p.cfg.Root }
func (p *PyPI) Manifest() string { return p.cfg.Manifest }

func (p *PyPI) Targets(pkg string) ([]Target, bool) {
	t, ok := p.targets[pkg]
	return t, ok
}

// Preflight requires the API token.
func (p *PyPI) Preflight(context.Context) error {
	if p.cfg.Token == "" {
		return errors.Wrap(errors.ErrMissingCredential, "PYPI_TOKEN is not set")
	}
	return nil
}

// Assets returns the README copy for every package.
func (p *PyPI) Assets(string) []Asset {
	if p.cfg.Readme == "" {
		return nil
	}
	return []Asset{{Source: p.cfg.Readme, Dest: "README.md"}}
}

// Publish builds the package and uploads everything under dist/. Leftovers
// from earlier builds are removed first so only this version is uploaded.
func (p *PyPI) Publish(ctx context.Context, dir string) error {
	dist := filepath.Join(dir, "dist")
	if err := os.RemoveAll(dist); err != nil {
		return errors.Wrapf(err, "cleaning %s", dist)
	}

	err := p.runner.Run(ctx, shell.Command{
		Name: p.cfg.Python,
		Args: []string{"-m", "build"},
		Dir:  dir,
	})
	if err != nil {
		return err
	}

	files, err := filepath.Glob(filepath.Join(dist, "*"))
	if err != nil {
		return errors.Wrapf(err, "listing %s", dist)
	}
	if len(files) == 0 {
		return errors.Wrapf(ErrEmptyDist, "%s", dist)
	}

	args := []string{"-m", "twine", "upload"}
	for _, f := range files {
		args = append(args, filepath.Join("dist", filepath.Base(f)))
	}
	args = append(args, "--repository", "pypi", "--non-interactive")

	logging.FromContext(ctx).Debug("uploading distributions", "dir", dir, "files", len(files))

	return p.runner.Run(ctx, shell.Command{
		Name: p.cfg.Python,
		Args: args,
		Dir:  dir,
		Env: []string{
			"TWINE_USERNAME=" + tokenUser,
			"TWINE_PASSWORD=" + p.cfg.Token,
		},
	})
}
