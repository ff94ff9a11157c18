package testutil

import (
	"fmt"
	"strings"

	"github.com/roach88/pulsenet/internal/compiler"
	"github.com/roach88/pulsenet/internal/ir"
)

// Reference networks shared by package tests.
const (
	// Example1 sends 8 low and 4 high pulses per press and returns to its
	// initial state after every press.
	Example1 = `broadcaster -> a, b, c
%a -> b
%b -> c
%c -> inv
&inv -> a
`

	// Example2 repeats every 4 presses; "output" is an implicit sink that
	// receives Low during press 1.
	Example2 = `broadcaster -> a
%a -> inv, con
&inv -> b
%b -> con
&con -> output
`

	// Fanin feeds one conjunction from two flip-flops pressed in the same
	// round, which pins down FIFO delivery order.
	Fanin = `broadcaster -> a, b
%a -> c
%b -> c
&c -> out
`

	// NonPeriodic reaches rx at press 3, but the first High of its feeders
	// arrives at presses 1 and 2, so the unchecked LCM answer is 2.
	NonPeriodic = `broadcaster -> f
%f -> zz, g
%g -> zz
&zz -> rx
`

	// Unreachable never delivers Low to rx: h is never pulsed, so zz always
	// remembers a Low from it. The state repeats after 4 presses.
	Unreachable = `broadcaster -> f
%f -> g
%g -> zz
%h -> zz
&zz -> rx
`

	// SilentFeeder feeds zz from gi, which sends High every other press,
	// and from h, which is never pulsed. The state after press 3 equals the
	// state after press 1.
	SilentFeeder = `broadcaster -> g
%g -> gi
&gi -> zz
%h -> zz
&zz -> rx
`
)

// MustParse parses a text network and panics on error. The reference
// networks above always parse.
func MustParse(text string) ir.NetworkSpec {
	spec, err := compiler.ParseString(text)
	if err != nil {
		panic(fmt.Sprintf("testutil: %v", err))
	}
	return spec
}

// CounterNetwork builds a network whose sink rx first receives Low at the
// LCM of periods.
//
// Each period p becomes a bits-wide flip-flop binary counter (prefix a, b,
// c, ...) with a hub conjunction that resets the counter once it reaches p
// and pulses High into the counter's inverter on exactly those presses. All
// inverters feed the conjunction zz, which feeds rx. Periods must be
// greater than 1 and fit in bits.
func CounterNetwork(periods []int, bits int) string {
	var b strings.Builder
	var starts, inverters []string

	var counters strings.Builder
	for j, p := range periods {
		prefix := string(rune('a' + j))
		hub := prefix + "h"
		inv := prefix + "i"
		starts = append(starts, prefix+"0")
		inverters = append(inverters, inv)

		var hubOutputs []string
		for i := range bits {
			var outputs []string
			if i+1 < bits {
				outputs = append(outputs, fmt.Sprintf("%s%d", prefix, i+1))
			}
			set := p>>i&1 == 1
			if set {
				outputs = append(outputs, hub)
			}
			if !set || i == 0 {
				hubOutputs = append(hubOutputs, fmt.Sprintf("%s%d", prefix, i))
			}
			fmt.Fprintf(&counters, "%%%s%d -> %s\n", prefix, i, strings.Join(outputs, ", "))
		}
		hubOutputs = append(hubOutputs, inv)
		fmt.Fprintf(&counters, "&%s -> %s\n", hub, strings.Join(hubOutputs, ", "))
	}

	fmt.Fprintf(&b, "broadcaster -> %s\n", strings.Join(starts, ", "))
	b.WriteString(counters.String())
	for _, inv := range inverters {
		fmt.Fprintf(&b, "&%s -> zz\n", inv)
	}
	b.WriteString("&zz -> rx\n")
	return b.String()
}
