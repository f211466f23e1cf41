package artifact

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mishamyrt/commitfmt-release/internal/errors"
)

// Operating system identifiers.
const (
	OSDarwin  = "darwin"
	OSLinux   = "linux"
	OSWindows = "windows"
)

// Architecture identifiers. These follow the npm naming convention
// (process.arch), not the Go one.
const (
	ArchARM64 = "arm64"
	ArchX64   = "x64"
)

// windowsSuffix is appended to the binary name for windows keys.
const windowsSuffix = ".exe"

var (
	// ErrUnsupportedPlatform indicates a key outside the supported set.
	ErrUnsupportedPlatform = errors.Mark(errors.New("unsupported platform"), errors.ErrInvalidConfig)

	// ErrArtifactMissing indicates a binary is absent from the distribution directory.
	ErrArtifactMissing = errors.New("artifact not found")
)

// Key identifies one build target.
type Key struct {
	OS   string
	Arch string
}

// String returns the key as "os/arch".
func (k Key) String() string {
	return k.OS + "/" + k.Arch
}

// Windows reports whether binaries for this key carry the .exe suffix.
func (k Key) Windows() bool {
	return k.OS == OSWindows
}

// targets maps every supported key to the Rust target triple the build
// step names its output directory after.
var targets = map[Key]string{
	{OSDarwin, ArchARM64}:  "aarch64-apple-darwin",
	{OSDarwin, ArchX64}:    "x86_64-apple-darwin",
	{OSLinux, ArchARM64}:   "aarch64-unknown-linux-gnu",
	{OSLinux, ArchX64}:     "x86_64-unknown-linux-gnu",
	{OSWindows, ArchARM64}: "aarch64-pc-windows-msvc",
	{OSWindows, ArchX64}:   "x86_64-pc-windows-msvc",
}

// Keys returns all supported keys in a fixed order.
func Keys() []Key {
	return []Key{
		{OSDarwin, ArchARM64},
		{OSDarwin, ArchX64},
		{OSLinux, ArchARM64},
		{OSLinux, ArchX64},
		{OSWindows, ArchARM64},
		{OSWindows, ArchX64},
	}
}

// ParseKey validates an (os, arch) pair.
func ParseKey(goos, arch string) (Key, error) {
	k := Key{OS: strings.ToLower(goos), Arch: strings.ToLower(arch)}
	if _, ok := targets[k]; !ok {
		return Key{}, errors.Wrapf(ErrUnsupportedPlatform, "%s/%s", goos, arch)
	}
	return k, nil
}

// Target returns the target triple for k.
func Target(k Key) (string, error) {
	t, ok := targets[k]
	if !ok {
		return "", errors.Wrapf(ErrUnsupportedPlatform, "%s", k)
	}
	return t, nil
}

// Locator resolves keys to binaries inside a distribution directory.
type Locator struct {
	distDir string
	binary  string
}

// NewLocator creates a Locator for binary under distDir.
func NewLocator(distDir, binary string) *Locator {
	return &Locator{
		distDir: distDir,
		binary:  binary,
	}
}

// Binary returns the binary base name.
func (l *Locator) Binary() string {
	return l.binary
}

// FileName returns the binary file name for k, with .exe for windows.
func (l *Locator) FileName(k Key) string {
	if k.Windows() {
		return l.binary + windowsSuffix
	}
	return l.binary
}

// Path returns the artifact path for k.
func (l *Locator) Path(k Key) (string, error) {
	target, err := Target(k)
	if err != nil {
		return "", err
	}
	return filepath.Join(l.distDir, l.binary+"-"+target, l.FileName(k)), nil
}

// Stat resolves k and checks that the artifact exists and is a regular file.
func (l *Locator) Stat(k Key) (string, os.FileInfo, error) {
	path, err := l.Path(k)
	if err != nil {
		return "", nil, err
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, errors.Wrapf(ErrArtifactMissing, "%s: %s", k, path)
		}
		return "", nil, errors.Wrapf(err, "checking artifact %s", path)
	}
	if !info.Mode().IsRegular() {
		return "", nil, errors.Newf("artifact %s is not a regular file", path)
	}

	return path, info, nil
}

// Verify checks every supported artifact and reports all missing ones at once.
func (l *Locator) Verify() error {
	var errs []error
	for _, k := range Keys() {
		if _, _, err := l.Stat(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
