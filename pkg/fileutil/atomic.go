package fileutil

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

// tempPattern is the name pattern of in-flight temporary files.
const tempPattern = ".release-atomic-*.tmp"

// AtomicWriteFile writes data to a file atomically using a temp file + rename pattern.
// This ensures interrupted writes leave the original file intact.
//
// The caller is responsible for ensuring the parent directory exists.
// Permissions are applied to the final file via the perm parameter.
func AtomicWriteFile(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempPattern)
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}

	tmpName := tmp.Name()
	defer removeIfExists(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "writing temp file")
	}

	if err := tmp.Chmod(perm); err != nil {
		tmp.Close()
		return errors.Wrap(err, "setting file permissions")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrap(err, "renaming temp file")
	}

	return nil
}

// AtomicWriteYAML writes v as YAML to path atomically with the given permissions.
//
// The caller is responsible for ensuring the parent directory exists.
func AtomicWriteYAML(path string, v any, perm os.FileMode) (err error) {
	// yaml.Marshal panics on unmarshalable types
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("marshaling YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshaling YAML")
	}

	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	return AtomicWriteFile(path, data, perm)
}

// removeIfExists deletes a leftover temp file after a failed rename.
func removeIfExists(name string) {
	if _, err := os.Stat(name); err == nil {
		_ = os.Remove(name)
	}
}
