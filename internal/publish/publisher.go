package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mishamyrt/commitfmt-release/internal/artifact"
	"github.com/mishamyrt/commitfmt-release/internal/errors"
	"github.com/mishamyrt/commitfmt-release/internal/logging"
	"github.com/mishamyrt/commitfmt-release/pkg/fileutil"
)

var (
	// ErrMissingManifest indicates a package directory without its manifest.
	ErrMissingManifest = errors.Mark(errors.New("package manifest not found"), errors.ErrInvalidConfig)

	// ErrMissingDestination indicates a destination directory that does not
	// exist. Package layouts are never created on the fly.
	ErrMissingDestination = errors.Mark(errors.New("destination directory not found"), errors.ErrInvalidConfig)
)

// Guard refuses to start while another release is running.
type Guard interface {
	Check() error
}

// CopyAction is one file copy performed before publishing.
type CopyAction struct {
	// Package is the package directory name.
	Package string

	// Key is the platform of a binary copy. Zero for assets.
	Key artifact.Key

	// Source is the file to copy.
	Source string

	// Dest is the absolute destination path.
	Dest string
}

// Plan is the full set of copies for one run, in execution order.
type Plan struct {
	// Packages lists every package directory that will be published.
	Packages []string

	// Assets are copied first.
	Assets []CopyAction

	// Binaries are copied after assets, ordered by package then target.
	Binaries []CopyAction
}

// Copied records a finished copy.
type Copied struct {
	CopyAction
	SHA256 string
}

// Publisher copies binaries into packages and uploads them.
type Publisher struct {
	strategy Strategy
	locator  *artifact.Locator
	guard    Guard
	out      io.Writer
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithGuard sets the concurrent-release guard checked by Run.
func WithGuard(g Guard) Option {
	return func(p *Publisher) { p.guard = g }
}

// WithOutput sets where progress lines are written.
func WithOutput(w io.Writer) Option {
	return func(p *Publisher) { p.out = w }
}

// New creates a Publisher for strategy.
func New(strategy Strategy, locator *artifact.Locator, opts ...Option) *Publisher {
	p := &Publisher{
		strategy: strategy,
		locator:  locator,
		out:      io.Discard,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs a complete publish: guard, preflight, plan, copy, publish.
// Nothing is written or executed unless preflight and planning succeed.
func (p *Publisher) Run(ctx context.Context) error {
	logger := logging.FromContext(ctx).With("ecosystem", p.strategy.Name())

	if p.guard != nil {
		if err := p.guard.Check(); err != nil {
			return err
		}
	}

	if err := p.strategy.Preflight(ctx); err != nil {
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
	logger.Debug("copy plan ready",
		"packages", len(plan.Packages), "assets", len(plan.Assets), "binaries", len(plan.Binaries))

	if _, err := p.Copy(ctx, plan); err != nil {
		return err
	}

	return p.PublishAll(ctx, plan.Packages)
}

// Packages lists the package directories under the strategy root. Every
// package must contain the strategy's manifest.
func (p *Publisher) Packages() ([]string, error) {
	root := p.strategy.Root()
	packages, err := fileutil.ListDirs(root)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s packages", p.strategy.Name())
	}

	for _, pkg := range packages {
		manifest := filepath.Join(root, pkg, p.strategy.Manifest())
		info, err := os.Stat(manifest)
		if err != nil || !info.Mode().IsRegular() {
			return nil, errors.Wrapf(ErrMissingManifest, "%s", manifest)
		}
	}

	return packages, nil
}

// Plan resolves every copy for packages without touching the filesystem.
// It fails if any source is missing or any destination directory does not
// exist. Packages without targets get no binary copies.
func (p *Publisher) Plan(packages []string) (*Plan, error) {
	root := p.strategy.Root()
	plan := &Plan{Packages: packages}

	for _, pkg := range packages {
		dir := filepath.Join(root, pkg)

		for _, asset := range p.strategy.Assets(pkg) {
			info, err := os.Stat(asset.Source)
			if err != nil {
				return nil, errors.Wrapf(err, "asset for %s", pkg)
			}
			if !info.Mode().IsRegular() {
				return nil, errors.Newf("asset %s is not a regular file", asset.Source)
			}
			action := CopyAction{Package: pkg, Source: asset.Source, Dest: filepath.Join(dir, asset.Dest)}
			if err := checkDestination(action.Dest); err != nil {
				return nil, err
			}
			plan.Assets = append(plan.Assets, action)
		}

		targets, ok := p.strategy.Targets(pkg)
		if !ok {
			continue
		}
		for _, t := range targets {
			src, _, err := p.locator.Stat(t.Key)
			if err != nil {
				return nil, errors.Wrapf(err, "package %s", pkg)
			}
			action := CopyAction{Package: pkg, Key: t.Key, Source: src, Dest: filepath.Join(dir, t.Dest)}
			if err := checkDestination(action.Dest); err != nil {
				return nil, err
			}
			plan.Binaries = append(plan.Binaries, action)
		}
	}

	return plan, nil
}

func checkDestination(dest string) error {
	dir := filepath.Dir(dest)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return errors.Wrapf(ErrMissingDestination, "%s", dir)
	}
	return nil
}

// Copy executes the plan: assets first, then binaries. Each destination is
// replaced atomically and keeps the source mode and modification time.
func (p *Publisher) Copy(ctx context.Context, plan *Plan) ([]Copied, error) {
	logger := logging.FromContext(ctx)
	copied := make([]Copied, 0, len(plan.Assets)+len(plan.Binaries))

	run := func(heading string, actions []CopyAction) error {
		if len(actions) == 0 {
			return nil
		}
		fmt.Fprintln(p.out, heading)
		for _, a := range actions {
			if err := ctx.Err(); err != nil {
				return err
			}
			fmt.Fprintf(p.out, "%s → %s\n", a.Source, a.Dest)
			sum, err := fileutil.CopyFile(a.Source, a.Dest)
			if err != nil {
				return errors.Wrapf(err, "package %s", a.Package)
			}
			logger.Debug("copied", "package", a.Package, "dest", a.Dest, "sha256", sum)
			copied = append(copied, Copied{CopyAction: a, SHA256: sum})
		}
		return nil
	}

	if err := run("Copying assets...", plan.Assets); err != nil {
		return copied, err
	}
	if err := run("Copying binaries...", plan.Binaries); err != nil {
		return copied, err
	}

	return copied, nil
}

// PublishAll uploads packages in order and stops at the first failure.
// Packages uploaded before the failure stay published.
func (p *Publisher) PublishAll(ctx context.Context, packages []string) error {
	logger := logging.FromContext(ctx).With("ecosystem", p.strategy.Name())
	published := make([]string, 0, len(packages))

	fmt.Fprintln(p.out, "Publishing packages...")
	for _, pkg := range packages {
		if err := ctx.Err(); err != nil {
			logger.Error("publish interrupted", "published", published, "pending", pkg)
			return err
		}

		fmt.Fprintf(p.out, "- %s\n", pkg)
		if err := p.strategy.Publish(ctx, filepath.Join(p.strategy.Root(), pkg)); err != nil {
			logger.Error("publish halted", "published", published, "failed", pkg)
			return errors.Wrapf(err, "publishing %s", pkg)
		}

		published = append(published, pkg)
		logger.Info("published", "package", pkg)
	}

	return nil
}
