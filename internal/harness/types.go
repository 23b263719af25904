package harness

import "github.com/roach88/sqlcheck/internal/engine"

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true if every expectation matched.
	Pass bool `json:"pass"`

	// Report is the engine report the expectations were checked against.
	Report *engine.Report `json:"report"`

	// Errors lists one message per failed expectation.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result for report.
func NewResult(report *engine.Report) *Result {
	return &Result{
		Pass:   true,
		Report: report,
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
