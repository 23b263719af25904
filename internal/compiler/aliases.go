package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/sqlcheck/internal/ir"
	"github.com/roach88/sqlcheck/internal/typemap"
)

// AliasCycle is a set of type aliases that refer to each other.
type AliasCycle struct {
	Path    []string `json:"path"` // ["a", "b", "a"]
	Message string   `json:"message"`
}

// AliasCycleError reports every alias cycle of a spec.
type AliasCycleError struct {
	Cycles []AliasCycle
}

func (e *AliasCycleError) Error() string {
	msgs := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		msgs[i] = c.Message
	}
	return "types: " + strings.Join(msgs, "; ")
}

// ResolveAliases resolves alias chains to canonical type names.
//
// An alias may point at a canonical name, a built-in spelling such as
// "int4", or another alias. The result maps each normalized alias to the
// canonical name it finally denotes.
//
// The algorithm:
//  1. Build alias -> alias edges for targets that are aliases themselves
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop as a cycle
//  4. Walk each remaining chain to its first non-alias target
func ResolveAliases(declared map[string]string) (map[string]string, error) {
	targets := make(map[string]string, len(declared))
	for alias, target := range declared {
		key := typemap.Normalize(ir.RawType(alias))
		if key == "" {
			return nil, &CompileError{Field: "types", Message: fmt.Sprintf("alias for %q has an empty name", target)}
		}
		if _, canonical := ir.LookupType(key); canonical {
			return nil, &CompileError{Field: "types." + alias, Message: "cannot redefine built-in type"}
		}
		targets[key] = typemap.Normalize(ir.RawType(target))
	}

	graph := buildAliasGraph(targets)
	var cycles []AliasCycle
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			cycles = append(cycles, sccToCycle(scc, graph))
		}
	}
	if len(cycles) > 0 {
		sort.Slice(cycles, func(i, j int) bool { return cycles[i].Path[0] < cycles[j].Path[0] })
		return nil, &AliasCycleError{Cycles: cycles}
	}

	builtin := typemap.Default()
	resolved := make(map[string]string, len(targets))
	for alias := range targets {
		end := alias
		for {
			next, isAlias := targets[end]
			if !isAlias {
				break
			}
			end = next
		}
		if !builtin.Known(ir.RawType(end)) {
			return nil, &CompileError{
				Field:   "types." + alias,
				Message: fmt.Sprintf("unknown target type %q", end),
			}
		}
		resolved[alias] = builtin.Classify(ir.RawType(end)).Name
	}
	return resolved, nil
}

// aliasGraph maps alias -> aliases its target refers to (zero or one).
type aliasGraph map[string][]string

func buildAliasGraph(targets map[string]string) aliasGraph {
	graph := make(aliasGraph, len(targets))
	for alias, target := range targets {
		// Initialize with empty slice if no edges (ensures node exists in graph)
		graph[alias] = []string{}
		if _, isAlias := targets[target]; isAlias {
			graph[alias] = append(graph[alias], target)
		}
	}
	return graph
}

// hasSelfLoop checks if a node has an edge to itself.
func hasSelfLoop(node string, graph aliasGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so results are deterministic.
func tarjanSCC(graph aliasGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root node: pop the stack and emit an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

// sccToCycle walks the cycle starting at its smallest member.
func sccToCycle(scc []string, graph aliasGraph) AliasCycle {
	members := make(map[string]bool, len(scc))
	start := scc[0]
	for _, node := range scc {
		members[node] = true
		if node < start {
			start = node
		}
	}

	path := []string{start}
	for current := start; ; {
		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return AliasCycle{
		Path:    path,
		Message: "alias cycle: " + strings.Join(path, " -> "),
	}
}

// Classifier returns a type classifier that knows the spec's aliases on
// top of the built-in table.
func (s *Spec) Classifier() (*typemap.Classifier, error) {
	c, err := typemap.New(s.Aliases)
	if err != nil {
		return nil, fmt.Errorf("spec aliases: %w", err)
	}
	return c, nil
}
