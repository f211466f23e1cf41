package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mishamyrt/commitfmt-release/internal/doctor"
	"github.com/mishamyrt/commitfmt-release/internal/publish"
	"github.com/mishamyrt/commitfmt-release/pkg/fileutil"
)

// LayoutCheck verifies that an ecosystem's package directories can receive
// their binaries: each has a manifest, each mapped package exists, and
// every destination directory is already in place.
type LayoutCheck struct {
	strategy publish.Strategy
	expected []string
}

var _ doctor.Check = (*LayoutCheck)(nil)

// NewLayoutCheck creates a package layout check. expected lists package
// names that must be present.
func NewLayoutCheck(strategy publish.Strategy, expected []string) *LayoutCheck {
	return &LayoutCheck{strategy: strategy, expected: expected}
}

func (c *LayoutCheck) Name() string     { return c.strategy.Name() + "-layout" }
func (c *LayoutCheck) Category() string { return "packaging" }

func (c *LayoutCheck) Run(context.Context) *doctor.CheckResult {
	result := &doctor.CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	root := c.strategy.Root()
	packages, err := fileutil.ListDirs(root)
	if err != nil {
		result.Status = doctor.SeverityError
		result.Message = fmt.Sprintf("cannot list packages: %v", err)
		return result
	}

	present := make(map[string]bool, len(packages))
	var problems, unmapped []string
	for _, pkg := range packages {
		present[pkg] = true
		dir := filepath.Join(root, pkg)

		if !isFile(filepath.Join(dir, c.strategy.Manifest())) {
			problems = append(problems, fmt.Sprintf("%s: missing %s", pkg, c.strategy.Manifest()))
		}

		targets, ok := c.strategy.Targets(pkg)
		if !ok {
			unmapped = append(unmapped, pkg)
			continue
		}
		for _, t := range targets {
			destDir := filepath.Dir(filepath.Join(dir, t.Dest))
			if !isDir(destDir) {
				problems = append(problems, fmt.Sprintf("%s: missing directory %s", pkg, destDir))
			}
		}
	}

	for _, pkg := range c.expected {
		if !present[pkg] {
			problems = append(problems, fmt.Sprintf("%s: package directory not found", pkg))
		}
	}

	details := map[string]any{"packages": len(packages)}
	if len(unmapped) > 0 {
		details["without_binaries"] = unmapped
	}
	result.Details = details

	if len(problems) > 0 {
		details["problems"] = problems
		result.Status = doctor.SeverityError
		result.Message = fmt.Sprintf("%d layout problem(s) under %s", len(problems), root)
		return result
	}

	result.Status = doctor.SeverityPass
	result.Message = fmt.Sprintf("%d packages ready under %s", len(packages), root)
	return result
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
