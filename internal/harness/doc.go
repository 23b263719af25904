// Package harness runs conformance scenarios against the checker.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: mixed_branches
//	description: INTEGER and VARCHAR branches do not reconcile
//	specs:
//	  - ../specs/orders.cue
//	expect:
//	  - expr: label
//	    error: { code: E001, families: [NUMERIC, NUMERIC, STRING] }
//	  - expr: priority
//	    type: INTEGER
//
// Spec paths are relative to the scenario file. Each expectation names one
// expression of the specs and gives either its inferred type or the
// diagnostic it must produce. An error expectation matches when any
// diagnostic of the expression has the code and, where given, the path,
// the branch families and the message fragment.
//
// # Deterministic Runs
//
// Scenarios run through the real engine with a fixed run ID
// (testutil.FixedIDGenerator) and a logical clock
// (testutil.DeterministicClock), and without a store. The same specs always
// produce the same report, which RunWithGolden snapshots as canonical JSON
// under testdata/golden.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/mixed.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
