package checks

import (
	"context"
	"fmt"
	"runtime"

	"github.com/mishamyrt/commitfmt-release/internal/artifact"
	"github.com/mishamyrt/commitfmt-release/internal/doctor"
)

// ArtifactCheck verifies that every prebuilt binary exists.
type ArtifactCheck struct {
	locator *artifact.Locator
}

var _ doctor.Check = (*ArtifactCheck)(nil)

// NewArtifactCheck creates an artifact presence check.
func NewArtifactCheck(locator *artifact.Locator) *ArtifactCheck {
	return &ArtifactCheck{locator: locator}
}

func (c *ArtifactCheck) Name() string     { return "artifacts" }
func (c *ArtifactCheck) Category() string { return "artifacts" }

// Run stats each artifact. Missing binaries are errors; binaries without
// the executable bit are warnings since npm packages ship them as is.
func (c *ArtifactCheck) Run(context.Context) *doctor.CheckResult {
	result := &doctor.CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	var missing, notExecutable []string
	keys := artifact.Keys()
	for _, k := range keys {
		path, info, err := c.locator.Stat(k)
		if err != nil {
			missing = append(missing, err.Error())
			continue
		}
		if runtime.GOOS != "windows" && !k.Windows() && info.Mode().Perm()&0o111 == 0 {
			notExecutable = append(notExecutable, path)
		}
	}

	switch {
	case len(missing) > 0:
		result.Status = doctor.SeverityError
		result.Message = fmt.Sprintf("%d of %d artifacts missing", len(missing), len(keys))
		result.Details = map[string]any{"missing": missing}
		result.FixHint = "build all targets before publishing"
	case len(notExecutable) > 0:
		result.Status = doctor.SeverityWarning
		result.Message = fmt.Sprintf("%d artifacts are not executable", len(notExecutable))
		result.Details = map[string]any{"paths": notExecutable}
		result.FixHint = "chmod +x the listed files"
	default:
		result.Status = doctor.SeverityPass
		result.Message = fmt.Sprintf("all %d artifacts present", len(keys))
	}

	return result
}
