package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/pulsenet/internal/ir"
)

// Network owns every module of a network, keyed by name. Modules are never
// handed out; callers observe them through snapshots.
type Network struct {
	spec    ir.NetworkSpec
	modules map[string]*module
	order   []*module // declaration order
	bits    int       // state vector width
}

// NewNetwork builds a network from spec and resolves conjunction inputs.
// Duplicate module names are rejected.
func NewNetwork(spec ir.NetworkSpec) (*Network, error) {
	n := &Network{
		spec:    spec,
		modules: make(map[string]*module, len(spec.Modules)),
	}
	for _, decl := range spec.Modules {
		if _, dup := n.modules[decl.Name]; dup {
			return nil, fmt.Errorf("duplicate module %q", decl.Name)
		}
		m := newModule(decl)
		n.modules[decl.Name] = m
		n.order = append(n.order, m)
	}
	n.ResolveInputs()
	return n, nil
}

// ResolveInputs sets every conjunction's input set to the modules whose
// outputs name it, in declaration order, and resets that memory to Low.
// It is idempotent on an unmutated network.
func (n *Network) ResolveInputs() {
	for _, c := range n.order {
		if c.kind != ir.KindConjunction {
			continue
		}
		c.setInputs(n.Feeders(c.name))
	}

	n.bits = 0
	for _, m := range n.order {
		n.bits += m.stateBits()
	}
}

// Feeders returns the modules whose outputs contain name, in declaration
// order. name need not be declared.
func (n *Network) Feeders(name string) []string {
	var feeders []string
	for _, m := range n.order {
		if slices.Contains(m.outputs, name) {
			feeders = append(feeders, m.name)
		}
	}
	return feeders
}

// Reset returns every module to its initial state: flip-flops off and
// conjunction memory Low. Resolved inputs are kept.
func (n *Network) Reset() {
	for _, m := range n.order {
		m.reset()
	}
}

// Spec returns the declaration the network was built from.
func (n *Network) Spec() ir.NetworkSpec { return n.spec }

// Entry returns the module that receives button presses.
func (n *Network) Entry() string { return n.spec.EntryName() }

// Len returns the number of declared modules.
func (n *Network) Len() int { return len(n.order) }

// Names returns module names in declaration order.
func (n *Network) Names() []string {
	names := make([]string, len(n.order))
	for i, m := range n.order {
		names[i] = m.name
	}
	return names
}

// Has reports whether name is a declared module.
func (n *Network) Has(name string) bool {
	_, ok := n.modules[name]
	return ok
}

// Module returns a snapshot of the named module.
func (n *Network) Module(name string) (ModuleInfo, bool) {
	m, ok := n.modules[name]
	if !ok {
		return ModuleInfo{}, false
	}
	return m.info(), true
}

// Kind returns the kind of the named module.
func (n *Network) Kind(name string) (ir.Kind, bool) {
	m, ok := n.modules[name]
	if !ok {
		return ir.KindUntyped, false
	}
	return m.kind, true
}

// Inputs returns the resolved inputs of a conjunction, nil otherwise.
func (n *Network) Inputs(name string) []string {
	m, ok := n.modules[name]
	if !ok || m.kind != ir.KindConjunction {
		return nil
	}
	return append([]string{}, m.inputs...)
}

// FlipFlopOn reports the state of a flip-flop. ok is false when name is not
// a flip-flop.
func (n *Network) FlipFlopOn(name string) (on, ok bool) {
	m, found := n.modules[name]
	if !found || m.kind != ir.KindFlipFlop {
		return false, false
	}
	return m.on, true
}

// StateVector packs every flip-flop bit and every conjunction memory bit,
// in declaration order (conjunction bits in input order). Two networks
// built from the same spec have equal vectors exactly when all their
// module states are equal.
func (n *Network) StateVector() []byte {
	vec := make([]byte, (n.bits+7)/8)
	bit := 0
	set := func(v bool) {
		if v {
			vec[bit/8] |= 1 << (bit % 8)
		}
		bit++
	}
	for _, m := range n.order {
		switch m.kind {
		case ir.KindFlipFlop:
			set(m.on)
		case ir.KindConjunction:
			for _, in := range m.inputs {
				set(m.memory[in] == ir.High)
			}
		}
	}
	return vec
}

// StateBits returns the width of StateVector in bits.
func (n *Network) StateBits() int { return n.bits }

// Fingerprint returns a printable hash of the current state.
func (n *Network) Fingerprint() string {
	return ir.StateFingerprint(n.StateVector())
}
