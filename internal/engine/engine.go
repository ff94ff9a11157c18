package engine

import (
	"context"
	"log/slog"
	"slices"

	"github.com/roach88/pulsenet/internal/ir"
)

// DefaultPresses is the press count of a fixed-press run.
const DefaultPresses = 1000

// DefaultMaxPresses bounds searches (FindSinkLow, CountPulses).
const DefaultMaxPresses int64 = 1_000_000

// DestinationPolicy decides what happens to a pulse addressed to a name
// that is not a declared module.
type DestinationPolicy int

const (
	// DropUndeclared counts the pulse and drops it. Puzzle networks rely on
	// implicit sinks such as "output" or "rx".
	DropUndeclared DestinationPolicy = iota
	// FailUndeclared aborts the press with ErrCodeUnknownDestination.
	FailUndeclared
)

// Observer is called for every delivered event, after it has been stamped
// and counted and before the destination module handles it.
type Observer func(ir.Event)

// Engine drives button presses over a Network.
//
// INVARIANTS:
//   - Events are delivered in strict FIFO order
//   - Seq values are strictly increasing across presses
//   - Totals equal the sum of every Press result since construction or Reset
type Engine struct {
	net        *Network
	queue      *eventQueue
	clock      *Clock
	runID      string
	entry      string
	policy     DestinationPolicy
	maxPresses int64
	logger     *slog.Logger
	idGen      RunIDGenerator

	observers map[int]Observer
	obsOrder  []int
	nextObs   int

	presses int64
	totals  ir.PulseCounts
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxPresses sets the press quota for searches.
//
// Default: 1,000,000 presses (DefaultMaxPresses).
func WithMaxPresses(n int64) Option {
	return func(e *Engine) {
		e.maxPresses = n
	}
}

// WithDestinationPolicy selects how undeclared destinations are handled.
func WithDestinationPolicy(p DestinationPolicy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithEntry overrides the module that receives button presses.
func WithEntry(name string) Option {
	return func(e *Engine) {
		e.entry = name
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithRunIDGenerator sets the run ID source. Default: UUIDv7Generator.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(e *Engine) {
		e.idGen = g
	}
}

// WithObserver registers an observer for the engine's whole lifetime.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.Subscribe(o)
	}
}

// New creates an Engine over net. The engine takes exclusive ownership of
// net: nothing else may press or reset it.
func New(net *Network, opts ...Option) *Engine {
	e := &Engine{
		net:        net,
		queue:      newEventQueue(),
		clock:      NewClock(),
		entry:      net.Entry(),
		policy:     DropUndeclared,
		maxPresses: DefaultMaxPresses,
		observers:  make(map[int]Observer),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.idGen == nil {
		e.idGen = UUIDv7Generator{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	e.runID = e.idGen.Generate()
	e.logger = e.logger.With("run_id", e.runID)

	return e
}

// Subscribe registers an observer and returns a function that removes it.
// Observers run in subscription order.
func (e *Engine) Subscribe(o Observer) (unsubscribe func()) {
	id := e.nextObs
	e.nextObs++
	e.observers[id] = o
	e.obsOrder = append(e.obsOrder, id)

	// obsOrder is replaced, never edited in place, so an unsubscribe from
	// inside an observer leaves the delivery loop's slice intact.
	return func() {
		delete(e.observers, id)
		e.obsOrder = slices.DeleteFunc(slices.Clone(e.obsOrder), func(v int) bool { return v == id })
	}
}

// Press simulates one button press and returns the pulses it sent.
//
// Under FailUndeclared a pulse to an undeclared module aborts the press;
// the pulses delivered so far are still counted in Totals, and module
// state is left as it was at the failure.
func (e *Engine) Press() (ir.PulseCounts, error) {
	e.presses++
	press := e.presses

	var counts ir.PulseCounts
	e.queue.Enqueue(ir.Event{Press: press, Source: ir.ButtonSource, Destination: e.entry, Pulse: ir.Low})

	for {
		ev, ok := e.queue.TryDequeue()
		if !ok {
			break
		}
		ev.Seq = e.clock.Next()
		counts.Count(ev.Pulse)
		for _, id := range e.obsOrder {
			if o, ok := e.observers[id]; ok {
				o(ev)
			}
		}

		m, found := e.net.modules[ev.Destination]
		if !found {
			if e.policy == FailUndeclared {
				e.queue.Reset()
				e.totals = e.totals.Add(counts)
				return counts, NewUnknownDestinationError(e.runID, ev.Source, ev.Destination, press)
			}
			continue
		}

		out, emit := m.Receive(ev.Source, ev.Pulse)
		if !emit {
			continue
		}
		for _, dst := range m.outputs {
			e.queue.Enqueue(ir.Event{Press: press, Source: m.name, Destination: dst, Pulse: out})
		}
	}

	e.totals = e.totals.Add(counts)
	return counts, nil
}

// PressN simulates n presses and returns the pulses they sent.
// The context is checked between presses.
func (e *Engine) PressN(ctx context.Context, n int64) (ir.PulseCounts, error) {
	var sum ir.PulseCounts
	for range n {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		c, err := e.Press()
		sum = sum.Add(c)
		if err != nil {
			return sum, err
		}
	}
	e.logger.Debug("presses complete", "presses", n, "low", sum.Low, "high", sum.High)
	return sum, nil
}

// Reset returns the network to its initial state and clears counters and
// the clock. Observers stay registered.
func (e *Engine) Reset() {
	e.net.Reset()
	e.queue.Reset()
	e.clock.Reset()
	e.presses = 0
	e.totals = ir.PulseCounts{}
}

// Network returns the simulated network for read-only queries.
func (e *Engine) Network() *Network { return e.net }

// RunID returns the run identifier.
func (e *Engine) RunID() string { return e.runID }

// Presses returns the number of presses since construction or Reset.
func (e *Engine) Presses() int64 { return e.presses }

// Totals returns the pulses sent since construction or Reset.
func (e *Engine) Totals() ir.PulseCounts { return e.totals }

// Seq returns the last logical clock value.
func (e *Engine) Seq() int64 { return e.clock.Current() }

// MaxPresses returns the search quota.
func (e *Engine) MaxPresses() int64 { return e.maxPresses }

// Logger returns the engine's run-scoped logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }
