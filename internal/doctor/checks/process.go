package checks

import (
	"context"

	"github.com/mishamyrt/commitfmt-release/internal/doctor"
	"github.com/mishamyrt/commitfmt-release/internal/publish"
)

// ConcurrencyCheck warns when another release process is running.
type ConcurrencyCheck struct {
	guard publish.Guard
}

var _ doctor.Check = (*ConcurrencyCheck)(nil)

// NewConcurrencyCheck creates a check backed by guard.
func NewConcurrencyCheck(guard publish.Guard) *ConcurrencyCheck {
	return &ConcurrencyCheck{guard: guard}
}

func (c *ConcurrencyCheck) Name() string     { return "concurrent-release" }
func (c *ConcurrencyCheck) Category() string { return "process" }

func (c *ConcurrencyCheck) Run(context.Context) *doctor.CheckResult {
	result := &doctor.CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	if err := c.guard.Check(); err != nil {
		result.Status = doctor.SeverityWarning
		result.Message = err.Error()
		result.FixHint = "wait for the other release to finish"
		return result
	}

	result.Status = doctor.SeverityPass
	result.Message = "no other release running"
	return result
}
