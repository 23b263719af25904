package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a conformance scenario: specs to compile and the outcome
// expected for their expressions.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Specs lists the CUE spec files to compile together.
	Specs []string `yaml:"specs"`

	// Expect lists per-expression expectations.
	Expect []Expectation `yaml:"expect"`

	// RunID is an optional fixed run ID. Defaults to testutil.DefaultRunID.
	RunID string `yaml:"run_id,omitempty"`
}

// Expectation is the expected outcome of one expression. Exactly one of
// Type and Error is set.
type Expectation struct {
	Expr  string         `yaml:"expr"`
	Type  string         `yaml:"type,omitempty"`
	Error *ExpectedError `yaml:"error,omitempty"`
}

// ExpectedError describes a diagnostic the expression must produce.
type ExpectedError struct {
	// Code is the diagnostic code, e.g. "E001".
	Code string `yaml:"code"`

	// Families are the branch families of a CASE mismatch, THEN branches
	// first and ELSE last.
	Families []string `yaml:"families,omitempty"`

	// Path is the node path of the diagnostic, e.g. "case.when[0].cond".
	Path string `yaml:"path,omitempty"`

	// Contains is a fragment the message must contain.
	Contains string `yaml:"contains,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Relative spec paths
// are resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving relative spec paths against basePath.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Resolve spec paths BEFORE validation so existence checks see real paths
	for i, specPath := range scenario.Specs {
		if !filepath.IsAbs(specPath) && basePath != "" {
			scenario.Specs[i] = filepath.Join(basePath, specPath)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Specs) == 0 {
		return fmt.Errorf("specs list is required and must be non-empty")
	}

	if len(s.Expect) == 0 {
		return fmt.Errorf("expect list is required and must be non-empty")
	}

	for _, specPath := range s.Specs {
		if _, err := os.Stat(specPath); os.IsNotExist(err) {
			return fmt.Errorf("spec file not found: %s", specPath)
		}
	}

	seen := make(map[string]bool, len(s.Expect))
	for i, exp := range s.Expect {
		if err := validateExpectation(i, &exp); err != nil {
			return err
		}
		if seen[exp.Expr] {
			return fmt.Errorf("expect[%d]: duplicate expectation for %q", i, exp.Expr)
		}
		seen[exp.Expr] = true
	}

	return nil
}

func validateExpectation(index int, e *Expectation) error {
	if e.Expr == "" {
		return fmt.Errorf("expect[%d]: expr is required", index)
	}

	switch {
	case e.Type == "" && e.Error == nil:
		return fmt.Errorf("expect[%d]: one of type or error is required", index)
	case e.Type != "" && e.Error != nil:
		return fmt.Errorf("expect[%d]: type and error are mutually exclusive", index)
	case e.Error != nil && strings.TrimSpace(e.Error.Code) == "":
		return fmt.Errorf("expect[%d].error: code is required", index)
	}

	return nil
}
