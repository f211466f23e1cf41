package checks

import (
	"context"
	"fmt"

	"github.com/mishamyrt/commitfmt-release/internal/doctor"
)

// CredentialCheck reports whether a registry credential is configured.
// The value itself is never shown.
type CredentialCheck struct {
	env    string
	value  string
	usedBy string
}

var _ doctor.Check = (*CredentialCheck)(nil)

// NewCredentialCheck creates a check for the credential read from env.
func NewCredentialCheck(env, value, usedBy string) *CredentialCheck {
	return &CredentialCheck{env: env, value: value, usedBy: usedBy}
}

func (c *CredentialCheck) Name() string     { return "credential-" + c.env }
func (c *CredentialCheck) Category() string { return "credentials" }

// Run warns rather than fails: only one publish command needs the
// credential.
func (c *CredentialCheck) Run(context.Context) *doctor.CheckResult {
	result := &doctor.CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
	}

	if c.value == "" {
		result.Status = doctor.SeverityWarning
		result.Message = fmt.Sprintf("%s is not set (needed by %s)", c.env, c.usedBy)
		result.FixHint = "export " + c.env + "=<token>"
		return result
	}

	result.Status = doctor.SeverityPass
	result.Message = fmt.Sprintf("%s is set", c.env)
	result.Details = map[string]any{"value": doctor.MaskValue(c.value)}
	return result
}
