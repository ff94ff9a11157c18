package harness

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/store"
)

// eventPattern matches a rendered event, "src -level-> dst".
var eventPattern = regexp.MustCompile(`^\s*([A-Za-z0-9_]+)\s+-(low|high)->\s+([A-Za-z0-9_]+)\s*$`)

// maxTraceLines bounds the trace printed with a failed assertion.
const maxTraceLines = 40

func parseEvent(s string) (ir.Event, error) {
	m := eventPattern.FindStringSubmatch(s)
	if m == nil {
		return ir.Event{}, fmt.Errorf("invalid event %q: want \"src -low-> dst\" or \"src -high-> dst\"", s)
	}
	p, err := ir.ParsePulse(m[2])
	if err != nil {
		return ir.Event{}, err
	}
	return ir.Event{Source: m[1], Destination: m[3], Pulse: p}, nil
}

func sameEdge(a, b ir.Event) bool {
	return a.Source == b.Source && a.Destination == b.Destination && a.Pulse == b.Pulse
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string     // Assertion type for categorization
	Expected string     // Human-readable expected outcome
	Actual   string     // Human-readable actual outcome
	Trace    []ir.Event // Trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nTrace:\n")
		for i, ev := range e.Trace {
			if i == maxTraceLines {
				fmt.Fprintf(&buf, "  ... %d more\n", len(e.Trace)-maxTraceLines)
				break
			}
			fmt.Fprintf(&buf, "  [%d] press %d: %s\n", ev.Seq, ev.Press, ev)
		}
	}

	return buf.String()
}

// assertTraceContains checks that every listed event occurs in the trace.
func assertTraceContains(trace []ir.Event, assertion Assertion) error {
	for _, s := range assertion.Events {
		want, err := parseEvent(s)
		if err != nil {
			return err
		}
		if !slices.ContainsFunc(trace, func(ev ir.Event) bool { return sameEdge(ev, want) }) {
			return &AssertionError{
				Type:     AssertTraceContains,
				Expected: fmt.Sprintf("event %s", s),
				Actual:   "not found in trace",
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertTraceOrder checks that the listed events occur in order.
// Events don't need to be consecutive (intervening events are allowed).
func assertTraceOrder(trace []ir.Event, assertion Assertion) error {
	pos := 0
	for i, s := range assertion.Events {
		want, err := parseEvent(s)
		if err != nil {
			return err
		}

		found := false
		for pos < len(trace) {
			ev := trace[pos]
			pos++
			if sameEdge(ev, want) {
				found = true
				break
			}
		}
		if !found {
			actual := fmt.Sprintf("%s not found", s)
			if i > 0 {
				actual = fmt.Sprintf("%s not found after %s", s, assertion.Events[i-1])
			}
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("events in order: %v", assertion.Events),
				Actual:   actual,
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertTraceCount counts matching pulses in the recorded run.
func assertTraceCount(ctx context.Context, st *store.Store, runID string, assertion Assertion) error {
	p, err := ir.ParsePulse(assertion.Pulse)
	if err != nil {
		return err
	}
	n, err := st.CountEdge(ctx, runID, assertion.Source, assertion.Destination, p)
	if err != nil {
		return err
	}

	if n != *assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d %s pulses %s -> %s", *assertion.Count, p, orAny(assertion.Source), orAny(assertion.Destination)),
			Actual:   fmt.Sprintf("%d pulses", n),
		}
	}
	return nil
}

func orAny(name string) string {
	if name == "" {
		return "*"
	}
	return name
}

// assertFinalState checks a module's state after the traced presses.
// Memory uses subset semantics: inputs not listed are not checked.
func assertFinalState(net *engine.Network, assertion Assertion) error {
	info, ok := net.Module(assertion.Module)
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("module %s", assertion.Module),
			Actual:   "module not declared",
		}
	}

	if assertion.On != nil {
		if info.Kind != ir.KindFlipFlop {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s is a flip-flop", assertion.Module),
				Actual:   fmt.Sprintf("%s is a %s", assertion.Module, info.Kind),
			}
		}
		if info.On != *assertion.On {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s on=%t", assertion.Module, *assertion.On),
				Actual:   fmt.Sprintf("%s on=%t", assertion.Module, info.On),
			}
		}
		return nil
	}

	if info.Kind != ir.KindConjunction {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("%s is a conjunction", assertion.Module),
			Actual:   fmt.Sprintf("%s is a %s", assertion.Module, info.Kind),
		}
	}
	for _, src := range slices.Sorted(maps.Keys(assertion.Memory)) {
		want, err := ir.ParsePulse(assertion.Memory[src])
		if err != nil {
			return err
		}
		got, tracked := info.Memory[src]
		if !tracked {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s remembers %s", assertion.Module, src),
				Actual:   fmt.Sprintf("%s is not an input (inputs %v)", src, info.Inputs),
			}
		}
		if got != want {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s memory[%s]=%s", assertion.Module, src, want),
				Actual:   fmt.Sprintf("%s memory[%s]=%s", assertion.Module, src, got),
			}
		}
	}
	return nil
}

// AssertionContext provides what assertions are evaluated against.
type AssertionContext struct {
	Ctx     context.Context
	Store   *store.Store
	RunID   string
	Network *engine.Network
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: trace_count requires a trace store", i)
			} else {
				err = assertTraceCount(actx.Ctx, actx.Store, actx.RunID, assertion)
			}
		case AssertFinalState:
			if actx == nil || actx.Network == nil {
				err = fmt.Errorf("assertion[%d]: final_state requires a network", i)
			} else {
				err = assertFinalState(actx.Network, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
