package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
)

// ChangeKind classifies how an expression's result differs between runs.
type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"   // only in the head run
	ChangeRemoved ChangeKind = "removed" // only in the base run
	ChangeFixed   ChangeKind = "fixed"   // failed in base, passes in head
	ChangeBroken  ChangeKind = "broken"  // passed in base, fails in head
	ChangeType    ChangeKind = "type"    // passes in both with different types
	ChangeDiags   ChangeKind = "diagnostics"
)

// ResultChange describes one expression whose result changed.
type ResultChange struct {
	ExprName string     `json:"expr_name"`
	Kind     ChangeKind `json:"kind"`
	Base     *Result    `json:"base,omitempty"`
	Head     *Result    `json:"head,omitempty"`
}

// DiffRuns compares the results of two runs by expression name.
// Unchanged expressions are omitted. Changes are ordered by expression name.
func (s *Store) DiffRuns(ctx context.Context, baseID, headID string) ([]ResultChange, error) {
	base, err := s.resultsByName(ctx, baseID)
	if err != nil {
		return nil, fmt.Errorf("diff runs: base: %w", err)
	}
	head, err := s.resultsByName(ctx, headID)
	if err != nil {
		return nil, fmt.Errorf("diff runs: head: %w", err)
	}

	names := make([]string, 0, len(base)+len(head))
	for name := range base {
		names = append(names, name)
	}
	for name := range head {
		if _, ok := base[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	changes := []ResultChange{}
	for _, name := range names {
		b, inBase := base[name]
		h, inHead := head[name]

		var kind ChangeKind
		switch {
		case !inBase:
			kind = ChangeAdded
		case !inHead:
			kind = ChangeRemoved
		case !b.OK() && h.OK():
			kind = ChangeFixed
		case b.OK() && !h.OK():
			kind = ChangeBroken
		case b.InferredType != h.InferredType:
			kind = ChangeType
		case !slices.Equal(b.Diagnostics, h.Diagnostics):
			kind = ChangeDiags
		default:
			continue
		}

		change := ResultChange{ExprName: name, Kind: kind}
		if inBase {
			change.Base = &b
		}
		if inHead {
			change.Head = &h
		}
		changes = append(changes, change)
	}
	return changes, nil
}

// resultsByName reads a run's results keyed by expression name.
// The run itself must exist.
func (s *Store) resultsByName(ctx context.Context, runID string) (map[string]Result, error) {
	if _, err := s.ReadRun(ctx, runID); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	results, err := s.ReadResults(ctx, runID)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.ExprName] = r
	}
	return byName, nil
}
