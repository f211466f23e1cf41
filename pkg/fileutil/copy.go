package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

// CopyFile copies src to dst, overwriting dst, and returns the SHA256 of the
// copied content. The destination keeps the source permissions and
// modification time. The copy is written next to dst and renamed into place.
//
// The parent directory of dst must already exist.
func CopyFile(src, dst string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", errors.Wrapf(err, "opening source file %s", src)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", errors.Wrapf(err, "stat source file %s", src)
	}
	if !info.Mode().IsRegular() {
		return "", errors.Newf("source %s is not a regular file", src)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), tempPattern)
	if err != nil {
		return "", errors.Wrapf(err, "creating temp file for %s", dst)
	}
	tmpName := tmp.Name()
	defer removeIfExists(tmpName)

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), in); err != nil {
		tmp.Close()
		return "", errors.Wrapf(err, "copying %s", src)
	}

	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "setting permissions")
	}

	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "closing temp file")
	}

	mtime := info.ModTime()
	if err := os.Chtimes(tmpName, mtime, mtime); err != nil {
		return "", errors.Wrap(err, "setting modification time")
	}

	if err := os.Rename(tmpName, dst); err != nil {
		return "", errors.Wrapf(err, "replacing %s", dst)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile computes the SHA256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
