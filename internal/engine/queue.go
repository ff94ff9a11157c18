package engine

import "github.com/roach88/pulsenet/internal/ir"

// eventQueue is an unbounded FIFO queue of pending pulses.
//
// It is owned by a single Engine and is not safe for concurrent use. The
// backing array is reused across presses: once drained, the slice is
// rewound to its start instead of reallocated.
type eventQueue struct {
	events []ir.Event
	head   int
}

// newEventQueue creates an empty event queue.
func newEventQueue() *eventQueue {
	return &eventQueue{
		events: make([]ir.Event, 0, 64),
	}
}

// Enqueue adds an event to the back of the queue.
func (q *eventQueue) Enqueue(e ir.Event) {
	q.events = append(q.events, e)
}

// TryDequeue removes and returns the front event.
// Returns (ir.Event{}, false) if the queue is empty.
func (q *eventQueue) TryDequeue() (ir.Event, bool) {
	if q.head == len(q.events) {
		return ir.Event{}, false
	}

	e := q.events[q.head]
	q.head++

	if q.head == len(q.events) {
		q.events = q.events[:0]
		q.head = 0
	}
	return e, true
}

// Len returns the current queue length.
func (q *eventQueue) Len() int {
	return len(q.events) - q.head
}

// Reset drops every pending event.
func (q *eventQueue) Reset() {
	q.events = q.events[:0]
	q.head = 0
}
