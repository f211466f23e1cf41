package checks

import (
	"context"
	"fmt"

	"github.com/mishamyrt/commitfmt-release/internal/doctor"
	"github.com/mishamyrt/commitfmt-release/internal/shell"
)

// ToolCheck verifies that an external program is on PATH.
type ToolCheck struct {
	program string
	usedBy  string
	lookup  func(string) (string, error)
}

var _ doctor.Check = (*ToolCheck)(nil)

// NewToolCheck creates a check for program, which usedBy names the
// command that needs it.
func NewToolCheck(program, usedBy string) *ToolCheck {
	return &ToolCheck{program: program, usedBy: usedBy, lookup: shell.LookPath}
}

func (c *ToolCheck) Name() string     { return "tool-" + c.program }
func (c *ToolCheck) Category() string { return "tools" }

func (c *ToolCheck) Run(context.Context) *doctor.CheckResult {
	result := &doctor.CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	path, err := c.lookup(c.program)
	if err != nil {
		result.Status = doctor.SeverityError
		result.Message = fmt.Sprintf("%s not found (needed by %s)", c.program, c.usedBy)
		result.FixHint = "install " + c.program + " or set its path in release.yaml"
		return result
	}

	result.Status = doctor.SeverityPass
	result.Message = fmt.Sprintf("%s found", c.program)
	result.Details = map[string]any{"path": path}
	return result
}
