package commands

import (
	"github.com/spf13/cobra"

	"github.com/mishamyrt/commitfmt-release/internal/artifact"
	"github.com/mishamyrt/commitfmt-release/internal/bump"
	"github.com/mishamyrt/commitfmt-release/internal/config"
	"github.com/mishamyrt/commitfmt-release/internal/publish"
	"github.com/mishamyrt/commitfmt-release/internal/shell"
)

// newRunner builds the subprocess runner for publish commands.
// Tests replace it with a mock.
var newRunner = func(cmd *cobra.Command) shell.Runner {
	return shell.NewExecRunner(cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// newGuard builds the concurrent release guard for cfg.GuardProcess.
var newGuard = func(cfg *config.Config) publish.Guard {
	return shell.NewGuard(cfg.GuardProcess)
}

func newLocator(cfg *config.Config) *artifact.Locator {
	return artifact.NewLocator(cfg.Path(cfg.DistDir), cfg.BinaryName)
}

func newSynchronizer(cfg *config.Config) *bump.Synchronizer {
	return bump.New(bump.Options{
		NativeManifest: cfg.Path(cfg.NativeManifest),
		NPMRoot:        cfg.Path(cfg.NPM.Root),
		MetaPackage:    cfg.NPM.MetaPackage,
		PyPIRoot:       cfg.Path(cfg.PyPI.Root),
		PyPIManifest:   cfg.PyPI.Manifest,
	})
}

func newNPM(cfg *config.Config, locator *artifact.Locator, runner shell.Runner) *publish.NPM {
	return publish.NewNPM(publish.NPMConfig{
		Root:    cfg.Path(cfg.NPM.Root),
		Command: cfg.NPM.Command,
	}, locator, runner)
}

func newPyPI(cfg *config.Config, locator *artifact.Locator, runner shell.Runner) *publish.PyPI {
	return publish.NewPyPI(publish.PyPIConfig{
		Root:     cfg.Path(cfg.PyPI.Root),
		Python:   cfg.PyPI.Python,
		Readme:   cfg.Path(cfg.PyPI.Readme),
		Manifest: cfg.PyPI.Manifest,
		Token:    cfg.PyPIToken,
	}, locator, runner)
}

// npmPackages lists every npm package a complete layout carries: the meta
// package plus one per platform key.
func npmPackages(cfg *config.Config) []string {
	out := []string{cfg.NPM.MetaPackage}
	for _, k := range artifact.Keys() {
		out = append(out, publish.NPMPackageName(cfg.BinaryName, k))
	}
	return out
}

// pypiPackages lists every PyPI package a complete layout carries.
func pypiPackages(cfg *config.Config) []string {
	return []string{
		publish.PyPIPackageName(cfg.BinaryName, artifact.OSDarwin),
		publish.PyPIPackageName(cfg.BinaryName, artifact.OSLinux),
		publish.PyPIPackageName(cfg.BinaryName, artifact.OSWindows),
	}
}
