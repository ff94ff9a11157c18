package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pulsenet/internal/ir"
)

func TestEventQueue_FIFO(t *testing.T) {
	q := newEventQueue()

	for _, dst := range []string{"a", "b", "c"} {
		q.Enqueue(ir.Event{Source: "broadcaster", Destination: dst})
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"a", "b", "c"} {
		ev, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, ev.Destination)
	}
}

func TestEventQueue_TryDequeue_Empty(t *testing.T) {
	q := newEventQueue()

	_, ok := q.TryDequeue()
	assert.False(t, ok, "dequeue from empty queue should return false")
}

func TestEventQueue_InterleavedEnqueue(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(ir.Event{Destination: "a"})
	q.Enqueue(ir.Event{Destination: "b"})

	ev, _ := q.TryDequeue()
	assert.Equal(t, "a", ev.Destination)

	// appended behind b
	q.Enqueue(ir.Event{Destination: "c"})

	ev, _ = q.TryDequeue()
	assert.Equal(t, "b", ev.Destination)
	ev, _ = q.TryDequeue()
	assert.Equal(t, "c", ev.Destination)
	assert.Equal(t, 0, q.Len())
}

func TestEventQueue_Reset(t *testing.T) {
	q := newEventQueue()
	q.Enqueue(ir.Event{Destination: "a"})
	q.Enqueue(ir.Event{Destination: "b"})

	q.Reset()
	assert.Equal(t, 0, q.Len())
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}
