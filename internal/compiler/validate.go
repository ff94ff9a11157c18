package compiler

import (
	"fmt"

	"github.com/roach88/pulsenet/internal/ir"
)

// Diagnostic codes (W200-W299). None of them prevents simulation.
const (
	WarnUndeclaredDestination = "W201" // pulses to this name are dropped (or fail under the strict policy)
	WarnMissingEntry          = "W202" // entry module is not declared; presses do nothing
	WarnUnreachable           = "W203" // module cannot receive a pulse from the entry module
	WarnFeedbackLoop          = "W204" // modules form a feedback loop
	WarnInputlessConjunction  = "W205" // conjunction with no inputs
)

// Diagnostic levels.
const (
	LevelWarning = "warning"
	LevelInfo    = "info"
)

// Diagnostic is a non-fatal finding about a network.
type Diagnostic struct {
	Code    string   `json:"code"`
	Level   string   `json:"level"`
	Module  string   `json:"module,omitempty"`
	Message string   `json:"message"`
	Line    int      `json:"line,omitempty"`
	Path    []string `json:"path,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s", d.Code, d.Line, d.Message)
	}
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}

// Validate reports semantic findings in declaration order.
// Returns all findings (does not fail-fast).
func Validate(spec ir.NetworkSpec) []Diagnostic {
	var diags []Diagnostic

	declared := make(map[string]bool, len(spec.Modules))
	for _, m := range spec.Modules {
		declared[m.Name] = true
	}

	entry := spec.EntryName()
	if !declared[entry] {
		diags = append(diags, Diagnostic{
			Code:    WarnMissingEntry,
			Level:   LevelWarning,
			Module:  entry,
			Message: fmt.Sprintf("entry module %q is not declared", entry),
		})
	}

	reported := make(map[string]bool)
	feeds := make(map[string]int)
	for _, m := range spec.Modules {
		for _, d := range m.Outputs {
			feeds[d]++
			if declared[d] || reported[d] {
				continue
			}
			reported[d] = true
			diags = append(diags, Diagnostic{
				Code:    WarnUndeclaredDestination,
				Level:   LevelInfo,
				Module:  d,
				Line:    m.Line,
				Message: fmt.Sprintf("destination %q (from %q) is not declared and acts as a sink", d, m.Name),
			})
		}
	}

	reach := Reachable(spec)
	for _, m := range spec.Modules {
		if m.Kind == ir.KindConjunction && feeds[m.Name] == 0 {
			diags = append(diags, Diagnostic{
				Code:    WarnInputlessConjunction,
				Level:   LevelWarning,
				Module:  m.Name,
				Line:    m.Line,
				Message: fmt.Sprintf("conjunction %q has no inputs and always emits low", m.Name),
			})
		}
		if declared[entry] && !reach[m.Name] {
			diags = append(diags, Diagnostic{
				Code:    WarnUnreachable,
				Level:   LevelWarning,
				Module:  m.Name,
				Line:    m.Line,
				Message: fmt.Sprintf("module %q is unreachable from %q", m.Name, entry),
			})
		}
	}

	diags = append(diags, AnalyzeFeedback(spec)...)
	return diags
}

// Reachable returns the set of names (declared or not) reachable from the
// entry module by following outputs. The entry itself is included when
// declared.
func Reachable(spec ir.NetworkSpec) map[string]bool {
	outputs := make(map[string][]string, len(spec.Modules))
	for _, m := range spec.Modules {
		outputs[m.Name] = m.Outputs
	}

	entry := spec.EntryName()
	seen := make(map[string]bool)
	if _, ok := outputs[entry]; !ok {
		return seen
	}

	queue := []string{entry}
	seen[entry] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range outputs[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}
	return seen
}
