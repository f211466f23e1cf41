package fileutil

import (
	"io"
	"os"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

// MaxFileSize is the maximum manifest size we'll read (1MB).
const MaxFileSize = 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded MaxFileSize.
var ErrFileTooLarge = errors.Newf("file exceeds maximum size of %d bytes", MaxFileSize)

// ReadFileWithLimit reads a file up to MaxFileSize and returns its mode
// alongside the content so rewrites can keep the original permissions.
func ReadFileWithLimit(path string) ([]byte, os.FileMode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, errors.Wrap(err, "stat file")
	}
	if info.Size() > MaxFileSize {
		return nil, 0, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, 0, errors.Wrap(err, "reading file")
	}
	if len(data) > MaxFileSize {
		return nil, 0, ErrFileTooLarge
	}

	return data, info.Mode().Perm(), nil
}
