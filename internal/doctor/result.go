package doctor

import "github.com/mishamyrt/commitfmt-release/internal/errors"

// Severity grades a check result. Only SeverityError blocks a release.
type Severity int

const (
	SeverityPass Severity = iota
	SeverityInfo
	// SeverityWarning marks something only one publish command needs, such
	// as the PyPI token.
	SeverityWarning
	SeverityError
)

var severityNames = [...]string{"pass", "info", "warning", "error"}

// String returns the lowercase severity name.
func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

// MarshalText encodes the severity by name so JSON reports read
// "status": "error" instead of a number.
func (s Severity) MarshalText() ([]byte, error) {
	if s.String() == "unknown" {
		return nil, errors.Newf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText parses a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	for i, name := range severityNames {
		if name == string(text) {
			*s = Severity(i)
			return nil
		}
	}
	return errors.Newf("unknown severity %q", string(text))
}

// CheckResult is the outcome of one readiness check.
type CheckResult struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Status   Severity `json:"status"`
	Message  string   `json:"message"`

	// Details holds check-specific data: mismatched version fields,
	// missing artifact paths, layout problems.
	Details map[string]any `json:"details,omitempty"`

	// FixHint is a command that resolves the problem, e.g.
	// "release set-version 1.4.0".
	FixHint string `json:"fix_hint,omitempty"`
}

// Problem reports whether the result should be shown without --verbose.
func (r *CheckResult) Problem() bool {
	return r.Status == SeverityWarning || r.Status == SeverityError
}

// Summary counts results per severity.
type Summary struct {
	Passed   int `json:"passed"`
	Info     int `json:"info"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

func (s *Summary) add(status Severity) {
	switch status {
	case SeverityPass:
		s.Passed++
	case SeverityInfo:
		s.Info++
	case SeverityWarning:
		s.Warnings++
	default:
		s.Errors++
	}
}
