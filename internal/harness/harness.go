package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/pulsenet/internal/compiler"
	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
	"github.com/roach88/pulsenet/internal/store"
	"github.com/roach88/pulsenet/internal/testutil"
)

// Harness executes one scenario.
type Harness struct {
	scenario *Scenario
	spec     ir.NetworkSpec
	logger   *slog.Logger
	runIDs   engine.RunIDGenerator
}

// Option configures scenario execution.
type Option func(*Harness)

// WithLogger sets the logger handed to every engine. Logs are discarded
// by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	return RunContext(context.Background(), scenario, opts...)
}

// RunContext executes a scenario and returns the result.
//
// An error is returned only when the scenario cannot be executed (bad
// network, store failure). Failed expectations are reported in the result.
//
// Execution flow:
//  1. Load the network
//  2. Record the trace of TracePresses presses into a fresh in-memory store
//  3. Evaluate assertions against the trace and the network state
//  4. Check pulse totals on a fresh network
//  5. Check the sink answer on a fresh network
func RunContext(ctx context.Context, scenario *Scenario, opts ...Option) (*Result, error) {
	spec, err := loadNetwork(scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to load network: %w", err)
	}

	h := &Harness{
		scenario: scenario,
		spec:     spec,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		runIDs:   testutil.NewFixedRunIDGenerator(scenario.RunID),
	}
	for _, opt := range opts {
		opt(h)
	}

	result := NewResult()
	if err := h.executeTrace(ctx, result); err != nil {
		return nil, err
	}
	if err := h.checkCounts(ctx, result); err != nil {
		return nil, err
	}
	if err := h.checkSink(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

func loadNetwork(s *Scenario) (ir.NetworkSpec, error) {
	if s.NetworkFile != "" {
		return compiler.LoadFile(s.NetworkFile)
	}
	return compiler.ParseString(s.Network)
}

// newEngine builds an engine over a fresh copy of the network.
func (h *Harness) newEngine() (*engine.Engine, error) {
	net, err := engine.NewNetwork(h.spec)
	if err != nil {
		return nil, err
	}
	policy := engine.DropUndeclared
	if h.scenario.Strict {
		policy = engine.FailUndeclared
	}
	return engine.New(net,
		engine.WithLogger(h.logger),
		engine.WithRunIDGenerator(h.runIDs),
		engine.WithDestinationPolicy(policy),
	), nil
}

// executeTrace records the traced presses and evaluates assertions.
func (h *Harness) executeTrace(ctx context.Context, result *Result) error {
	e, err := h.newEngine()
	if err != nil {
		return err
	}
	result.RunID = e.RunID()

	st, err := store.Open()
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	rec, err := store.NewRecorder(ctx, st, e.RunID(), h.spec)
	if err != nil {
		return err
	}
	unsubscribe := e.Subscribe(rec.Observe)

	presses := h.scenario.TracePresses
	if presses == 0 {
		presses = 1
	}
	_, pressErr := e.PressN(ctx, presses)
	unsubscribe()
	if err := rec.Close(); err != nil {
		return err
	}
	if pressErr != nil {
		result.AddError(fmt.Sprintf("trace: %v", pressErr))
	}

	result.Trace, err = st.ReadEvents(ctx, e.RunID(), store.EventFilter{})
	if err != nil {
		return err
	}

	actx := &AssertionContext{
		Ctx:     ctx,
		Store:   st,
		RunID:   e.RunID(),
		Network: e.Network(),
	}
	for _, msg := range EvaluateAssertions(result, h.scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return nil
}

// checkCounts compares pulse totals with the expect clause.
func (h *Harness) checkCounts(ctx context.Context, result *Result) error {
	want := h.scenario.Expect
	if want == nil {
		return nil
	}
	e, err := h.newEngine()
	if err != nil {
		return err
	}

	presses := want.Presses
	if presses == 0 {
		presses = engine.DefaultPresses
	}

	var counts ir.PulseCounts
	if want.Extrapolate {
		var res engine.Extrapolation
		res, err = engine.CountPulses(ctx, e, presses)
		counts = res.Counts
	} else {
		counts, err = e.PressN(ctx, presses)
	}
	if err != nil {
		result.AddError(fmt.Sprintf("expect: %v", err))
		return nil
	}
	result.Counts = &counts

	check := func(field string, want *int64, got int64) {
		if want != nil && *want != got {
			result.AddError(fmt.Sprintf("expect: %s after %d presses: expected %d, got %d", field, presses, *want, got))
		}
	}
	check("low", want.Low, counts.Low)
	check("high", want.High, counts.High)
	if want.Product != nil {
		product, err := counts.Product()
		if err != nil {
			result.AddError(fmt.Sprintf("expect: product after %d presses: %v", presses, err))
			return nil
		}
		check("product", want.Product, product)
	}
	return nil
}

// checkSink compares the sink search with the sink clause.
func (h *Harness) checkSink(ctx context.Context, result *Result) error {
	want := h.scenario.Sink
	if want == nil {
		return nil
	}
	e, err := h.newEngine()
	if err != nil {
		return err
	}

	sink := want.Module
	if sink == "" {
		sink = engine.DefaultSink
	}
	method := engine.MethodAuto
	if want.Method != "" {
		if method, err = engine.ParseMethod(want.Method); err != nil {
			return err
		}
	}

	res, err := engine.FindSinkLow(ctx, e, sink, engine.WithMethod(method))
	switch {
	case want.Unreachable && engine.IsUnreachableError(err):
		result.Sink = &res
	case want.Unreachable && err == nil:
		result.Sink = &res
		result.AddError(fmt.Sprintf("sink: expected %s unreachable, got low at press %d", sink, res.Presses))
	case err != nil:
		result.AddError(fmt.Sprintf("sink: %v", err))
	default:
		result.Sink = &res
		if res.Presses != want.Presses {
			result.AddError(fmt.Sprintf("sink: expected %s low at press %d, got %d", sink, want.Presses, res.Presses))
		}
	}
	return nil
}
