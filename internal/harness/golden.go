package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/sqlcheck/internal/engine"
	"github.com/roach88/sqlcheck/internal/ir"
)

// ReportSnapshot is the golden form of a scenario report.
//
// The spec hash and source lines are left out so that reformatting a spec
// file does not churn the golden files; what is pinned is the rendered SQL,
// the inferred type and the diagnostics of every expression.
type ReportSnapshot struct {
	ScenarioName string
	RunID        string
	Seq          int64
	Results      []engine.ExprResult
}

// toCanonicalMap converts the snapshot for ir.MarshalCanonical, which only
// handles IR types and primitives.
func (s *ReportSnapshot) toCanonicalMap() map[string]any {
	results := make([]any, len(s.Results))
	for i, r := range s.Results {
		diags := make([]any, len(r.Diagnostics))
		for j, d := range r.Diagnostics {
			m := map[string]any{
				"code":    d.Code,
				"message": d.Message,
			}
			if d.Path != "" {
				m["path"] = d.Path
			}
			diags[j] = m
		}

		entry := map[string]any{
			"name":        r.Name,
			"sql":         r.SQL,
			"diagnostics": diags,
		}
		if !r.Type.IsZero() {
			entry["type"] = r.Type
		}
		results[i] = entry
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"run_id":        s.RunID,
		"seq":           s.Seq,
		"results":       results,
	}
}

// RunWithGolden executes a scenario and compares its report against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario could not be executed. A report that
// differs from the golden file fails t via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result's report against the golden
// file for name.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot := ReportSnapshot{
		ScenarioName: name,
		RunID:        result.Report.RunID,
		Seq:          result.Report.Seq,
		Results:      result.Report.Results,
	}
	data, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
