// Package engine implements the pulsenet discrete-event simulator.
//
// ARCHITECTURE:
//
// A Network owns every module of a parsed network description. After
// construction it resolves the input set of each conjunction by scanning
// all declared outputs, so no conjunction is ever evaluated with missing
// inputs.
//
// An Engine drives button presses over a Network. One press:
//  1. Enqueues a Low pulse from the virtual "button" to the entry module
//  2. Dequeues events in strict FIFO order, stamping each with the next
//     logical clock value and counting it by level
//  3. Delivers the pulse to the destination module, which may emit one
//     pulse to every output, enqueued in output order
//  4. Ends when the queue is empty
//
// Module state persists across presses. Breadth-first delivery is what
// gives conjunctions correct "most recently sent" semantics; depth-first
// delivery would reorder arrivals.
//
// Single-Writer:
// The engine is synchronous and single-threaded. Nothing in this package
// takes a lock. Identical networks and press counts always produce
// identical event sequences and counters.
//
// Periodicity:
// FindSinkLow answers "after how many presses does a sink first receive
// Low" by one of two methods. The state-cycle method records the packed
// state vector after every press and stops at the first repeat, which is
// exact for any network. The feeder-LCM method assumes each input of the
// sink's single feeding conjunction fires High with a fixed period from
// press 1, and combines the periods with LCM; it is only trusted when
// verified. CountPulses uses the same cycle detection to extrapolate
// fixed-press counts.
package engine
