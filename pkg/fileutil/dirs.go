package fileutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

// IsHidden reports whether name starts with the hidden-file marker.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// ListDirs returns the names of the non-hidden directories directly under
// root, sorted by name. Plain files are ignored; symlinks are followed.
func ListDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, "reading directory %s", root)
	}

	var names []string
	for _, entry := range entries {
		if IsHidden(entry.Name()) {
			continue
		}

		isDir := entry.IsDir()
		if entry.Type()&os.ModeSymlink != 0 {
			info, err := os.Stat(filepath.Join(root, entry.Name()))
			if err != nil {
				return nil, errors.Wrapf(err, "resolving %s", entry.Name())
			}
			isDir = info.IsDir()
		}

		if isDir {
			names = append(names, entry.Name())
		}
	}

	return names, nil
}
