package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScenarioNotFoundError is returned when a scenarios directory doesn't
// exist.
type ScenarioNotFoundError struct {
	Dir string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenarios directory %q does not exist", e.Dir)
}

// Discover lists the scenario files (*.yaml, *.yml) directly in dir, sorted
// by path. If filter is not empty, only files whose base name without
// extension matches the glob are returned.
func Discover(dir, filter string) ([]string, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, &ScenarioNotFoundError{Dir: dir}
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if filter != "" {
			ok, err := filepath.Match(filter, strings.TrimSuffix(entry.Name(), ext))
			if err != nil {
				return nil, fmt.Errorf("invalid filter %q: %w", filter, err)
			}
			if !ok {
				continue
			}
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Summary aggregates the outcome of several scenarios.
type Summary struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// OK reports whether every scenario passed.
func (s *Summary) OK() bool {
	return s.Failed == 0
}

// ScenarioFailure is one scenario that failed to load, run or match.
type ScenarioFailure struct {
	Scenario string   `json:"scenario,omitempty"`
	Path     string   `json:"path"`
	Errors   []string `json:"errors"`
}

// RunAll loads and runs every scenario in paths. A scenario that cannot be
// loaded or executed counts as failed; the summary is always complete.
func RunAll(ctx context.Context, paths []string) *Summary {
	summary := &Summary{}

	for _, path := range paths {
		summary.Total++

		scenario, err := LoadScenario(path)
		if err != nil {
			summary.addFailure(ScenarioFailure{Path: path, Errors: []string{err.Error()}})
			continue
		}

		result, err := RunContext(ctx, scenario)
		if err != nil {
			summary.addFailure(ScenarioFailure{Scenario: scenario.Name, Path: path, Errors: []string{err.Error()}})
			continue
		}
		if !result.Pass {
			summary.addFailure(ScenarioFailure{Scenario: scenario.Name, Path: path, Errors: result.Errors})
			continue
		}
		summary.Passed++
	}

	return summary
}

func (s *Summary) addFailure(f ScenarioFailure) {
	s.Failed++
	s.Failures = append(s.Failures, f)
}
