package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
)

// Scenario defines one network test.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Network is an inline text network description.
	Network string `yaml:"network,omitempty"`

	// NetworkFile is a text or CUE network file, relative to the scenario.
	NetworkFile string `yaml:"network_file,omitempty"`

	// RunID is a fixed run ID for deterministic traces.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`

	// TracePresses is the number of presses recorded into the trace.
	// Defaults to 1.
	TracePresses int64 `yaml:"trace_presses,omitempty"`

	// Strict fails presses that address undeclared modules.
	Strict bool `yaml:"strict,omitempty"`

	// Expect checks pulse totals after a fixed number of presses.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// Sink checks when a module first receives Low.
	Sink *SinkClause `yaml:"sink,omitempty"`

	// Assertions validate the recorded trace and final state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ExpectClause specifies expected pulse totals. Nil fields are not checked.
type ExpectClause struct {
	// Presses defaults to engine.DefaultPresses.
	Presses int64  `yaml:"presses,omitempty"`
	Low     *int64 `yaml:"low,omitempty"`
	High    *int64 `yaml:"high,omitempty"`
	Product *int64 `yaml:"product,omitempty"`

	// Extrapolate counts through engine.CountPulses instead of pressing
	// every time.
	Extrapolate bool `yaml:"extrapolate,omitempty"`
}

// SinkClause specifies the expected sink answer.
type SinkClause struct {
	// Module defaults to engine.DefaultSink.
	Module string `yaml:"module,omitempty"`

	// Method is auto, cycle or lcm. Defaults to auto.
	Method string `yaml:"method,omitempty"`

	// Presses is the expected first press delivering Low to Module.
	Presses int64 `yaml:"presses,omitempty"`

	// Unreachable expects the sink to be proven unreachable.
	Unreachable bool `yaml:"unreachable,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Events are rendered events "src -level-> dst" (trace_contains, trace_order).
	Events []string `yaml:"events,omitempty"`

	// Source, Destination, Pulse and Count select an edge (trace_count).
	Source      string `yaml:"source,omitempty"`
	Destination string `yaml:"destination,omitempty"`
	Pulse       string `yaml:"pulse,omitempty"`
	Count       *int64 `yaml:"count,omitempty"`

	// Module, On and Memory describe module state (final_state).
	Module string            `yaml:"module,omitempty"`
	On     *bool             `yaml:"on,omitempty"`
	Memory map[string]string `yaml:"memory,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative network_file is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	if scenario.NetworkFile != "" && !filepath.IsAbs(scenario.NetworkFile) {
		scenario.NetworkFile = filepath.Join(filepath.Dir(path), scenario.NetworkFile)
	}
	if scenario.NetworkFile != "" {
		if _, err := os.Stat(scenario.NetworkFile); err != nil {
			return nil, fmt.Errorf("invalid scenario: network file not found: %s", scenario.NetworkFile)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML. Relative network_file paths are left
// as they are.
func ParseScenario(data []byte) (*Scenario, error) {
	// strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if (s.Network == "") == (s.NetworkFile == "") {
		return fmt.Errorf("exactly one of network and network_file is required")
	}

	if s.TracePresses < 0 {
		return fmt.Errorf("trace_presses must be non-negative")
	}

	if s.Expect == nil && s.Sink == nil && len(s.Assertions) == 0 {
		return fmt.Errorf("at least one of expect, sink and assertions is required")
	}

	if e := s.Expect; e != nil {
		if e.Presses < 0 {
			return fmt.Errorf("expect: presses must be non-negative")
		}
		if e.Low == nil && e.High == nil && e.Product == nil {
			return fmt.Errorf("expect: at least one of low, high and product is required")
		}
	}

	if k := s.Sink; k != nil {
		if k.Method != "" {
			if _, err := engine.ParseMethod(k.Method); err != nil {
				return fmt.Errorf("sink: %w", err)
			}
		}
		if (k.Presses > 0) == k.Unreachable {
			return fmt.Errorf("sink: exactly one of presses and unreachable is required")
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains, AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for %s", index, a.Type)
		}
		for _, ev := range a.Events {
			if _, err := parseEvent(ev); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertTraceCount:
		if a.Pulse == "" {
			return fmt.Errorf("assertions[%d]: pulse is required for trace_count", index)
		}
		if _, err := ir.ParsePulse(a.Pulse); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Module == "" {
			return fmt.Errorf("assertions[%d]: module is required for final_state", index)
		}
		if (a.On == nil) == (len(a.Memory) == 0) {
			return fmt.Errorf("assertions[%d]: exactly one of on and memory is required for final_state", index)
		}
		for src, p := range a.Memory {
			if _, err := ir.ParsePulse(p); err != nil {
				return fmt.Errorf("assertions[%d]: memory[%s]: %w", index, src, err)
			}
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
