package bump

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
	"github.com/mishamyrt/commitfmt-release/internal/logging"
	"github.com/mishamyrt/commitfmt-release/pkg/fileutil"
)

// Manifest file names inside package directories.
const (
	NPMManifest  = "package.json"
	PyPIManifest = "pyproject.toml"
)

const optionalDependencies = "optionalDependencies"

// ErrMissingOptionalDependencies indicates a meta package that does not
// declare its per-platform packages.
var ErrMissingOptionalDependencies = errors.Mark(
	errors.New("meta package has no optionalDependencies"), errors.ErrInvalidConfig)

// Options locates the manifests to rewrite.
type Options struct {
	// NativeManifest is the path to the CLI crate's Cargo.toml.
	NativeManifest string

	// NPMRoot contains one directory per npm package.
	NPMRoot string

	// MetaPackage is the npm package whose optionalDependencies reference
	// every per-platform package.
	MetaPackage string

	// PyPIRoot contains one directory per PyPI package.
	PyPIRoot string

	// PyPIManifest is the build-metadata file name inside each PyPI package.
	// Defaults to pyproject.toml.
	PyPIManifest string
}

// Synchronizer writes one version into every manifest.
type Synchronizer struct {
	opts Options
}

// New creates a Synchronizer.
func New(opts Options) *Synchronizer {
	if opts.PyPIManifest == "" {
		opts.PyPIManifest = PyPIManifest
	}
	return &Synchronizer{opts: opts}
}

// Sync validates version and stamps it into the native manifest, the npm
// manifests and the PyPI manifests, in that order. It stops at the first
// error; manifests rewritten before the failure keep the new version.
func (s *Synchronizer) Sync(ctx context.Context, version string) error {
	if err := ValidateVersion(version); err != nil {
		return err
	}

	if err := s.SetNativeManifestVersion(ctx, version); err != nil {
		return err
	}
	if err := s.SetNPMVersions(ctx, version); err != nil {
		return err
	}
	return s.SetPyPIVersions(ctx, version)
}

// SetNativeManifestVersion rewrites the version line of the Cargo manifest.
func (s *Synchronizer) SetNativeManifestVersion(ctx context.Context, version string) error {
	if err := ValidateVersion(version); err != nil {
		return err
	}
	if err := rewriteTOML(s.opts.NativeManifest, version); err != nil {
		return err
	}

	logging.FromContext(ctx).Info("updated native manifest",
		"path", s.opts.NativeManifest, "version", version)
	return nil
}

// SetNPMVersions sets the version of every npm package and, for the meta
// package, every optionalDependencies entry.
func (s *Synchronizer) SetNPMVersions(ctx context.Context, version string) error {
	if err := ValidateVersion(version); err != nil {
		return err
	}

	packages, err := fileutil.ListDirs(s.opts.NPMRoot)
	if err != nil {
		return errors.Wrap(err, "listing npm packages")
	}

	logger := logging.FromContext(ctx)
	for _, name := range packages {
		path := filepath.Join(s.opts.NPMRoot, name, NPMManifest)
		if err := s.rewritePackageJSON(path, name == s.opts.MetaPackage, version); err != nil {
			return errors.Wrapf(err, "npm package %s", name)
		}
		logger.Info("updated npm manifest", "package", name, "version", version)
	}

	return nil
}

// SetPyPIVersions rewrites the version line of every PyPI package manifest.
func (s *Synchronizer) SetPyPIVersions(ctx context.Context, version string) error {
	if err := ValidateVersion(version); err != nil {
		return err
	}

	packages, err := fileutil.ListDirs(s.opts.PyPIRoot)
	if err != nil {
		return errors.Wrap(err, "listing PyPI packages")
	}

	logger := logging.FromContext(ctx)
	for _, name := range packages {
		path := filepath.Join(s.opts.PyPIRoot, name, s.opts.PyPIManifest)
		if err := rewriteTOML(path, version); err != nil {
			return errors.Wrapf(err, "PyPI package %s", name)
		}
		logger.Info("updated PyPI manifest", "package", name, "version", version)
	}

	return nil
}

func (s *Synchronizer) rewritePackageJSON(path string, meta bool, version string) error {
	data, perm, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	var manifest object
	if err := json.Unmarshal(data, &manifest); err != nil {
		return errors.Wrapf(err, "parsing %s", path)
	}

	if err := manifest.setString("version", version); err != nil {
		return err
	}

	if meta {
		deps, err := manifest.child(optionalDependencies)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", path)
		}
		if deps == nil {
			return errors.Wrapf(ErrMissingOptionalDependencies, "%s", path)
		}
		for _, dep := range deps.keys {
			if err := deps.setString(dep, version); err != nil {
				return err
			}
		}
		if err := manifest.setChild(optionalDependencies, deps); err != nil {
			return err
		}
	}

	out, err := encodeIndented(&manifest)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}

	return errors.Wrapf(fileutil.AtomicWriteFile(path, out, perm), "writing %s", path)
}

func rewriteTOML(path, version string) error {
	data, perm, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	out, err := replaceVersionLine(data, version)
	if err != nil {
		return errors.Wrapf(err, "%s", path)
	}

	if err := verifyTOML(out, version); err != nil {
		return errors.Wrapf(err, "%s", path)
	}

	return errors.Wrapf(fileutil.AtomicWriteFile(path, out, perm), "writing %s", path)
}
