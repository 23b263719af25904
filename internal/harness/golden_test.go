package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// First run with -update to create golden files:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden_Orders(t *testing.T) {
	result, err := RunWithGolden(t, loadTestScenario(t, "scenarios", "orders"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRunWithGolden_Aliases(t *testing.T) {
	result, err := RunWithGolden(t, loadTestScenario(t, "scenarios", "aliases"))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestReportSnapshot_OmitsUnknownType(t *testing.T) {
	m := (&ReportSnapshot{
		ScenarioName: "s",
		RunID:        "r",
		Seq:          1,
		Results:      testReport().Results,
	}).toCanonicalMap()

	results := m["results"].([]any)
	require.Len(t, results, 2)
	assert.Contains(t, results[0].(map[string]any), "type")
	assert.NotContains(t, results[1].(map[string]any), "type")

	diags := results[1].(map[string]any)["diagnostics"].([]any)
	require.Len(t, diags, 2)
	assert.Equal(t, "E202", diags[0].(map[string]any)["code"])
}
