package publish

import (
	"context"

	"github.com/mishamyrt/commitfmt-release/internal/artifact"
	"github.com/mishamyrt/commitfmt-release/internal/bump"
	"github.com/mishamyrt/commitfmt-release/internal/shell"
)

// NPMConfig configures the npm strategy.
type NPMConfig struct {
	// Root holds the npm package directories.
	Root string

	// Command is the npm executable. Defaults to "npm".
	Command string
}

// NPM publishes the meta package and one package per platform key. Platform
// packages are named <binary>-<os>-<arch> and carry the binary at their top
// level.
type NPM struct {
	root    string
	command string
	runner  shell.Runner
	targets map[string][]Target
}

var _ Strategy = (*NPM)(nil)

// NewNPM creates the npm strategy for the binaries resolved by locator.
func NewNPM(cfg NPMConfig, locator *artifact.Locator, runner shell.Runner) *NPM {
	if cfg.Command == "" {
		cfg.Command = "npm"
	}

	targets := make(map[string][]Target)
	for _, k := range artifact.Keys() {
		targets[NPMPackageName(locator.Binary(), k)] = []Target{{
			Key:  k,
			Dest: locator.FileName(k),
		}}
	}

	return &NPM{
		root:    cfg.Root,
		command: cfg.Command,
		runner:  runner,
		targets: targets,
	}
}

// NPMPackageName returns the npm package that carries the binary for k.
func NPMPackageName(binary string, k artifact.Key) string {
	return binary + "-" + k.OS + "-" + k.Arch
}

func (n *NPM) Name() string     { return "npm" }
func (n *NPM) Root() string     { return n.root }
func (n *NPM) Manifest() string { return bump.NPMManifest }

func (n *NPM) Targets(pkg string) ([]Target, bool) {
	t, ok := n.targets[pkg]
	return t, ok
}

// Preflight has nothing to check; npm reads its credentials from .npmrc.
func (n *NPM) Preflight(context.Context) error { return nil }

func (n *NPM) Assets(string) []Asset { return nil }

func (n *NPM) Publish(ctx context.Context, dir string) error {
	return n.runner.Run(ctx, shell.Command{
		Name: n.command,
		Args: []string{"publish"},
		Dir:  dir,
	})
}

