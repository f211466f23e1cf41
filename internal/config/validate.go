package config

import (
	"path/filepath"
	"strings"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

// Validation errors for configuration fields.
var (
	// ErrEmptyValue indicates a required field is empty.
	ErrEmptyValue = errors.New("must not be empty")

	// ErrInvalidName indicates a name that would escape its directory.
	ErrInvalidName = errors.New("must be a plain name without path separators")

	// ErrInvalidPath indicates a path value is malformed.
	ErrInvalidPath = errors.New("invalid path")
)

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	names := []struct {
		field, value string
	}{
		{"binary_name", cfg.BinaryName},
		{"npm.meta_package", cfg.NPM.MetaPackage},
		{"pypi.manifest", cfg.PyPI.Manifest},
	}
	for _, n := range names {
		if err := validateName(n.value); err != nil {
			errs = append(errs, &FieldError{Field: n.field, Value: n.value, Err: err})
		}
	}

	commands := []struct {
		field, value string
	}{
		{"npm.command", cfg.NPM.Command},
		{"pypi.python", cfg.PyPI.Python},
	}
	if cfg.GuardProcess != "" {
		if err := validateName(cfg.GuardProcess); err != nil {
			errs = append(errs, &FieldError{Field: "guard_process", Value: cfg.GuardProcess, Err: err})
		}
	}

	for _, c := range commands {
		if strings.TrimSpace(c.value) == "" {
			errs = append(errs, &FieldError{Field: c.field, Value: c.value, Err: ErrEmptyValue})
		}
	}

	paths := []struct {
		field, value string
		required     bool
	}{
		{"project_root", cfg.ProjectRoot, false},
		{"native_manifest", cfg.NativeManifest, true},
		{"dist_dir", cfg.DistDir, true},
		{"npm.root", cfg.NPM.Root, true},
		{"pypi.root", cfg.PyPI.Root, true},
		{"pypi.readme", cfg.PyPI.Readme, false},
	}
	for _, p := range paths {
		if p.value == "" {
			if p.required {
				errs = append(errs, &PathError{Field: p.field, Path: p.value, Err: ErrEmptyValue})
			}
			continue
		}
		if err := validatePath(p.value); err != nil {
			errs = append(errs, &PathError{Field: p.field, Path: p.value, Err: err})
		}
	}

	return errs
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyValue
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return ErrInvalidName
	}
	return nil
}

// validatePath checks if a path string is well-formed.
// It does not check if the path exists, only that it's syntactically valid.
func validatePath(path string) error {
	// Check for null bytes which are never valid in paths
	if strings.ContainsRune(path, '\x00') {
		return ErrInvalidPath
	}

	cleaned := filepath.Clean(path)
	if cleaned == "" {
		return ErrInvalidPath
	}

	return nil
}

// FieldError represents an error for a specific named field.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Value
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// PathError represents an error for a specific path field.
type PathError struct {
	Field string
	Path  string
	Err   error
}

func (e *PathError) Error() string {
	return e.Field + ": " + e.Err.Error() + ": " + e.Path
}

func (e *PathError) Unwrap() error {
	return e.Err
}
