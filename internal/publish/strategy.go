package publish

import (
	"context"

	"github.com/mishamyrt/commitfmt-release/internal/artifact"
)

// Target places the binary of one platform key inside a package.
type Target struct {
	Key artifact.Key

	// Dest is the destination path relative to the package directory.
	Dest string
}

// Asset is a non-binary file shipped inside a package.
type Asset struct {
	// Source is the path of the file to copy.
	Source string

	// Dest is the destination path relative to the package directory.
	Dest string
}

// Strategy holds the ecosystem-specific parts of a publish run.
type Strategy interface {
	// Name identifies the ecosystem in logs ("npm", "pypi").
	Name() string

	// Root is the directory containing one subdirectory per package.
	Root() string

	// Manifest is the file every package directory must contain.
	Manifest() string

	// Targets returns the binaries that belong in pkg. ok is false for
	// packages that carry no binary.
	Targets(pkg string) (targets []Target, ok bool)

	// Preflight checks requirements that must hold before anything is
	// written or run.
	Preflight(ctx context.Context) error

	// Assets returns extra files copied into pkg before its binaries.
	Assets(pkg string) []Asset

	// Publish uploads the package in dir.
	Publish(ctx context.Context, dir string) error
}
