package bump

import (
	"context"
	"encoding/json"
	"path/filepath"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
	"github.com/mishamyrt/commitfmt-release/pkg/fileutil"
)

// Entry is one version field read back from a manifest.
type Entry struct {
	// Path is the manifest file.
	Path string

	// Field names the version field inside the manifest, e.g. "version" or
	// "optionalDependencies.commitfmt-linux-x64".
	Field string

	// Version is the value found.
	Version string
}

// Report lists every version field across all manifests.
type Report struct {
	Entries []Entry
}

// Consistent reports whether every entry carries the same version.
func (r *Report) Consistent() bool {
	_, ok := r.Version()
	return ok
}

// Version returns the shared version. ok is false when the report is empty
// or the entries disagree.
func (r *Report) Version() (version string, ok bool) {
	if len(r.Entries) == 0 {
		return "", false
	}
	version = r.Entries[0].Version
	for _, e := range r.Entries[1:] {
		if e.Version != version {
			return "", false
		}
	}
	return version, true
}

// Mismatched returns the entries that differ from want.
func (r *Report) Mismatched(want string) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Version != want {
			out = append(out, e)
		}
	}
	return out
}

// Versions reads back every version field the Synchronizer writes.
func (s *Synchronizer) Versions(_ context.Context) (*Report, error) {
	report := &Report{}

	native, err := readTOMLVersion(s.opts.NativeManifest)
	if err != nil {
		return nil, err
	}
	report.Entries = append(report.Entries, native)

	npmPackages, err := fileutil.ListDirs(s.opts.NPMRoot)
	if err != nil {
		return nil, errors.Wrap(err, "listing npm packages")
	}
	for _, name := range npmPackages {
		entries, err := readPackageJSONVersions(filepath.Join(s.opts.NPMRoot, name, NPMManifest), name == s.opts.MetaPackage)
		if err != nil {
			return nil, errors.Wrapf(err, "npm package %s", name)
		}
		report.Entries = append(report.Entries, entries...)
	}

	pypiPackages, err := fileutil.ListDirs(s.opts.PyPIRoot)
	if err != nil {
		return nil, errors.Wrap(err, "listing PyPI packages")
	}
	for _, name := range pypiPackages {
		entry, err := readTOMLVersion(filepath.Join(s.opts.PyPIRoot, name, s.opts.PyPIManifest))
		if err != nil {
			return nil, errors.Wrapf(err, "PyPI package %s", name)
		}
		report.Entries = append(report.Entries, entry)
	}

	return report, nil
}

func readTOMLVersion(path string) (Entry, error) {
	data, _, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "reading %s", path)
	}
	v, err := readVersionLine(data)
	if err != nil {
		return Entry{}, errors.Wrapf(err, "%s", path)
	}
	return Entry{Path: path, Field: "version", Version: v}, nil
}

func readPackageJSONVersions(path string, meta bool) ([]Entry, error) {
	data, _, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	var manifest object
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}

	v, _ := manifest.getString("version")
	entries := []Entry{{Path: path, Field: "version", Version: v}}

	if !meta {
		return entries, nil
	}

	deps, err := manifest.child(optionalDependencies)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	if deps == nil {
		return nil, errors.Wrapf(ErrMissingOptionalDependencies, "%s", path)
	}
	for _, dep := range deps.keys {
		dv, _ := deps.getString(dep)
		entries = append(entries, Entry{
			Path:    path,
			Field:   optionalDependencies + "." + dep,
			Version: dv,
		})
	}

	return entries, nil
}
