package checks

import (
	"context"
	"fmt"

	"github.com/mishamyrt/commitfmt-release/internal/bump"
	"github.com/mishamyrt/commitfmt-release/internal/doctor"
)

// VersionReader reads back every version field of the project.
type VersionReader interface {
	Versions(ctx context.Context) (*bump.Report, error)
}

// VersionCheck verifies that all manifests carry the same version.
type VersionCheck struct {
	reader VersionReader
}

var _ doctor.Check = (*VersionCheck)(nil)

// NewVersionCheck creates a version consistency check.
func NewVersionCheck(reader VersionReader) *VersionCheck {
	return &VersionCheck{reader: reader}
}

func (c *VersionCheck) Name() string     { return "version-consistency" }
func (c *VersionCheck) Category() string { return "version" }

// Run compares the versions against the native manifest, which is read
// first and treated as the reference.
func (c *VersionCheck) Run(ctx context.Context) *doctor.CheckResult {
	result := &doctor.CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	report, err := c.reader.Versions(ctx)
	if err != nil {
		result.Status = doctor.SeverityError
		result.Message = fmt.Sprintf("cannot read versions: %v", err)
		return result
	}
	if len(report.Entries) == 0 {
		result.Status = doctor.SeverityError
		result.Message = "no manifests found"
		return result
	}

	if v, ok := report.Version(); ok {
		result.Status = doctor.SeverityPass
		result.Message = fmt.Sprintf("%d version fields at %s", len(report.Entries), v)
		return result
	}

	want := report.Entries[0].Version
	mismatched := report.Mismatched(want)
	fields := make([]map[string]any, 0, len(mismatched))
	for _, e := range mismatched {
		fields = append(fields, map[string]any{
			"path":    e.Path,
			"field":   e.Field,
			"version": e.Version,
		})
	}

	result.Status = doctor.SeverityError
	result.Message = fmt.Sprintf("%d of %d version fields differ from %s",
		len(mismatched), len(report.Entries), want)
	result.Details = map[string]any{
		"expected":   want,
		"mismatched": fields,
	}
	result.FixHint = "release set-version <version>"
	return result
}
