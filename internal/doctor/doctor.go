// Package doctor runs read-only release readiness checks and redacts
// secrets from anything shown to the user.
package doctor

import (
	"context"
	"time"
)

// Check inspects one precondition of a release without changing anything.
type Check interface {
	Name() string
	Category() string
	Run(ctx context.Context) *CheckResult
}

// Runner executes checks in registration order.
type Runner struct {
	checks []Check
}

// NewRunner creates an empty Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// AddCheck registers c.
func (r *Runner) AddCheck(c Check) {
	r.checks = append(r.checks, c)
}

// Run executes every check and summarizes the results. A result without a
// name or category takes them from its check, and a check returning nil
// counts as an error. Once ctx is done the remaining checks are reported
// as errors without being run, so an interrupted doctor never looks ready.
func (r *Runner) Run(ctx context.Context) *DoctorReport {
	start := time.Now()
	report := &DoctorReport{
		Timestamp: start.UTC(),
		Results:   make([]*CheckResult, 0, len(r.checks)),
	}

	for _, check := range r.checks {
		var result *CheckResult
		if err := ctx.Err(); err != nil {
			result = &CheckResult{Status: SeverityError, Message: "not run: " + err.Error()}
		} else if result = check.Run(ctx); result == nil {
			result = &CheckResult{Status: SeverityError, Message: "check returned no result"}
		}

		if result.Name == "" {
			result.Name = check.Name()
		}
		if result.Category == "" {
			result.Category = check.Category()
		}

		report.Results = append(report.Results, result)
		report.Summary.add(result.Status)
	}

	report.Duration = time.Since(start)
	return report
}

// DoctorReport is the outcome of one doctor run.
type DoctorReport struct {
	Timestamp time.Time      `json:"timestamp"`
	Duration  time.Duration  `json:"duration_ns"`
	Results   []*CheckResult `json:"results"`
	Summary   Summary        `json:"summary"`
}

// HasErrors reports whether a release would fail.
func (r *DoctorReport) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings reports whether some publish command would fail.
func (r *DoctorReport) HasWarnings() bool {
	return r.Summary.Warnings > 0
}

// Problems returns the warnings and errors in check order.
func (r *DoctorReport) Problems() []*CheckResult {
	var out []*CheckResult
	for _, res := range r.Results {
		if res.Problem() {
			out = append(out, res)
		}
	}
	return out
}
