package compiler

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/pulsenet/internal/ir"
)

// AnalyzeFeedback reports every feedback loop in the module graph.
//
// Feedback is normal in these networks (flip-flop counters reset through a
// conjunction), so loops are reported at info level. They matter because a
// network without feedback reaches a fixed state after one press, while
// feedback is what makes press-to-press behaviour periodic.
//
// The algorithm:
//  1. Build the module → outputs graph from declarations
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1, or a self-loop, as a feedback loop
//
// Output is deterministic: SCCs are visited and listed in declaration order.
func AnalyzeFeedback(spec ir.NetworkSpec) []Diagnostic {
	g := buildModuleGraph(spec)

	var diags []Diagnostic
	for _, scc := range tarjanSCC(g) {
		if len(scc) == 1 && !hasSelfLoop(scc[0], g) {
			continue
		}
		path := reconstructCyclePath(scc, g)
		diags = append(diags, Diagnostic{
			Code:    WarnFeedbackLoop,
			Level:   LevelInfo,
			Module:  path[0],
			Path:    path,
			Message: fmt.Sprintf("feedback loop: %s", strings.Join(path, " → ")),
		})
	}
	return diags
}

// moduleGraph is the declared module graph restricted to declared modules.
type moduleGraph struct {
	order []string
	index map[string]int
	edges map[string][]string
}

func buildModuleGraph(spec ir.NetworkSpec) moduleGraph {
	g := moduleGraph{
		index: make(map[string]int, len(spec.Modules)),
		edges: make(map[string][]string, len(spec.Modules)),
	}
	for i, m := range spec.Modules {
		g.order = append(g.order, m.Name)
		g.index[m.Name] = i
	}
	for _, m := range spec.Modules {
		for _, d := range m.Outputs {
			if _, ok := g.index[d]; ok {
				g.edges[m.Name] = append(g.edges[m.Name], d)
			}
		}
	}
	return g
}

func hasSelfLoop(node string, g moduleGraph) bool {
	return slices.Contains(g.edges[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Members of each SCC are sorted by declaration order; SCCs are ordered by
// their first member.
func tarjanSCC(g moduleGraph) [][]string {
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

		for _, w := range g.edges[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

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

	for _, node := range g.order {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	byDecl := func(a, b string) int { return g.index[a] - g.index[b] }
	for _, scc := range sccs {
		slices.SortFunc(scc, byDecl)
	}
	slices.SortFunc(sccs, func(a, b []string) int { return byDecl(a[0], b[0]) })
	return sccs
}

// reconstructCyclePath walks edges inside the SCC from its first member
// until it returns to the start.
func reconstructCyclePath(scc []string, g moduleGraph) []string {
	if len(scc) == 1 {
		return []string{scc[0], scc[0]}
	}

	members := make(map[string]bool, len(scc))
	for _, n := range scc {
		members[n] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, w := range g.edges[current] {
			if members[w] && (!visited[w] || w == start) {
				next = w
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

	return path
}
