package engine

import (
	"fmt"

	"github.com/roach88/pulsenet/internal/ir"
)

// module is one node of a Network. The variant is selected by kind; only
// the fields of that variant are used.
type module struct {
	name    string
	kind    ir.Kind
	outputs []string

	// flip-flop
	on bool

	// conjunction
	inputs []string
	memory map[string]ir.Pulse
	highs  int // number of inputs whose last pulse was High
}

func newModule(decl ir.ModuleDecl) *module {
	m := &module{
		name:    decl.Name,
		kind:    decl.Kind,
		outputs: append([]string(nil), decl.Outputs...),
	}
	if m.kind == ir.KindConjunction {
		m.memory = make(map[string]ir.Pulse)
	}
	return m
}

// Receive applies an incoming pulse and reports the pulse to broadcast to
// every output, if any. It only mutates the receiving module.
func (m *module) Receive(source string, p ir.Pulse) (ir.Pulse, bool) {
	switch m.kind {
	case ir.KindBroadcast:
		return p, true

	case ir.KindFlipFlop:
		if p == ir.High {
			return ir.Low, false
		}
		m.on = !m.on
		if m.on {
			return ir.High, true
		}
		return ir.Low, true

	case ir.KindConjunction:
		// untracked sources do not change memory but still trigger output
		if prev, ok := m.memory[source]; ok && prev != p {
			m.memory[source] = p
			if p == ir.High {
				m.highs++
			} else {
				m.highs--
			}
		}
		if m.highs == len(m.inputs) {
			return ir.Low, true
		}
		return ir.High, true

	case ir.KindUntyped:
		return ir.Low, false
	}
	panic(fmt.Sprintf("engine: unhandled module kind %v", m.kind))
}

// setInputs replaces the tracked input set, resetting every entry to Low.
func (m *module) setInputs(names []string) {
	m.inputs = names
	clear(m.memory)
	for _, n := range names {
		m.memory[n] = ir.Low
	}
	m.highs = 0
}

// reset returns the module to its initial state, keeping resolved inputs.
func (m *module) reset() {
	m.on = false
	if m.kind == ir.KindConjunction {
		m.setInputs(m.inputs)
	}
}

// stateBits is the number of bits this module contributes to a state vector.
func (m *module) stateBits() int {
	switch m.kind {
	case ir.KindFlipFlop:
		return 1
	case ir.KindConjunction:
		return len(m.inputs)
	}
	return 0
}

// ModuleInfo is a read-only snapshot of one module.
type ModuleInfo struct {
	Name    string              `json:"name"`
	Kind    ir.Kind             `json:"kind"`
	Outputs []string            `json:"outputs"`
	Inputs  []string            `json:"inputs,omitempty"`
	On      bool                `json:"on,omitempty"`
	Memory  map[string]ir.Pulse `json:"memory,omitempty"`
}

func (m *module) info() ModuleInfo {
	info := ModuleInfo{
		Name:    m.name,
		Kind:    m.kind,
		Outputs: append([]string{}, m.outputs...),
		On:      m.on,
	}
	if m.kind == ir.KindConjunction {
		info.Inputs = append([]string{}, m.inputs...)
		info.Memory = make(map[string]ir.Pulse, len(m.memory))
		for k, v := range m.memory {
			info.Memory[k] = v
		}
	}
	return info
}
