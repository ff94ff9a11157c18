// Package harness runs pulse network scenarios as executable tests.
//
// A scenario names a network and the behaviour it must show: pulse totals
// after a number of presses, the press at which a sink first receives Low,
// and assertions over the recorded trace and final module state.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: example1
//	description: "Three flip-flops and an inverter"
//	network_file: example1.txt    # or network: | inline text
//	run_id: golden-example1       # fixed run ID for golden traces
//	trace_presses: 1
//	expect:
//	  presses: 1000
//	  low: 8000
//	  high: 4000
//	  product: 32000000
//	sink:
//	  module: rx
//	  method: auto
//	  presses: 15                 # or unreachable: true
//	assertions:
//	  - type: trace_count
//	    source: inv
//	    destination: a
//	    pulse: low
//	    count: 1
//	  - type: trace_order
//	    events: ["a -high-> b", "inv -low-> a"]
//	  - type: final_state
//	    module: a
//	    on: false
//
// # Assertion Types
//
//   - trace_contains: every listed event appears in the trace
//   - trace_order: the listed events appear in order, not necessarily adjacent
//   - trace_count: pulses of one level along an edge; empty endpoints match any module
//   - final_state: flip-flop on/off or conjunction memory after the traced presses
//
// # Deterministic Testing
//
// Each part of a scenario runs on a fresh network. The trace is recorded
// into an in-memory store under a fixed run ID, so repeated runs produce
// byte-identical traces for golden file comparison.
package harness
