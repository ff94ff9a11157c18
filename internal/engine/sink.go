package engine

import (
	"context"
	"fmt"

	"github.com/roach88/pulsenet/internal/ir"
)

// DefaultSink is the conventional sink of the periodicity question.
const DefaultSink = "rx"

// Method selects how FindSinkLow answers.
type Method string

const (
	// MethodAuto tries MethodFeederLCM and falls back to MethodStateCycle
	// when the topology does not fit or periodicity cannot be verified.
	MethodAuto Method = "auto"
	// MethodStateCycle simulates until the sink receives Low or the whole
	// network state repeats. Exact for every network.
	MethodStateCycle Method = "cycle"
	// MethodFeederLCM combines per-feeder periods with LCM.
	MethodFeederLCM Method = "lcm"
)

// Methods lists the valid methods.
var Methods = []Method{MethodAuto, MethodStateCycle, MethodFeederLCM}

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	for _, m := range Methods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid method %q: must be one of %v", s, Methods)
}

// SinkResult reports how many presses it takes for the sink to first
// receive Low.
type SinkResult struct {
	Sink    string `json:"sink"`
	Presses int64  `json:"presses"`
	Method  Method `json:"method"`

	// Watched is the conjunction feeding the sink (LCM method only).
	Watched string `json:"watched,omitempty"`
	// Periods maps each input of Watched to its period (LCM method only).
	Periods map[string]int64 `json:"periods,omitempty"`

	// Simulated is the number of presses actually run by the method that
	// produced the answer.
	Simulated int64 `json:"simulated"`
	// FellBack is set when MethodAuto had to use the state-cycle method.
	FellBack bool `json:"fell_back,omitempty"`
}

type sinkConfig struct {
	method Method
	verify bool
}

// SinkOption configures FindSinkLow.
type SinkOption func(*sinkConfig)

// WithMethod selects the search method. Default: MethodAuto.
func WithMethod(m Method) SinkOption {
	return func(c *sinkConfig) {
		c.method = m
	}
}

// WithVerification toggles feeder periodicity verification for the LCM
// method. Default: on. Turning it off reproduces the unchecked LCM answer,
// which is wrong for networks whose feeders are not periodic from press 1.
func WithVerification(verify bool) SinkOption {
	return func(c *sinkConfig) {
		c.verify = verify
	}
}

// FindSinkLow returns the first press during which sink receives a Low
// pulse. e must not have been pressed yet; MethodAuto may Reset it.
func FindSinkLow(ctx context.Context, e *Engine, sink string, opts ...SinkOption) (SinkResult, error) {
	cfg := sinkConfig{method: MethodAuto, verify: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if e.presses != 0 {
		return SinkResult{Sink: sink}, &RuntimeError{
			Code:    ErrCodeNotFresh,
			Message: fmt.Sprintf("engine already pressed %d times", e.presses),
			RunID:   e.runID,
		}
	}

	switch cfg.method {
	case MethodStateCycle:
		return searchStateCycle(ctx, e, sink)
	case MethodFeederLCM:
		return feederLCM(ctx, e, sink, cfg.verify)
	case MethodAuto:
		res, err := feederLCM(ctx, e, sink, cfg.verify)
		if err == nil || !(IsTopologyError(err) || IsNotPeriodicError(err)) {
			return res, err
		}
		e.logger.Info("feeder periodicity unavailable, falling back to state cycle", "sink", sink, "reason", err.Error())
		e.Reset()
		res, err = searchStateCycle(ctx, e, sink)
		res.FellBack = true
		return res, err
	}
	return SinkResult{Sink: sink}, fmt.Errorf("invalid method %q", cfg.method)
}

// searchStateCycle presses until the sink receives Low, or until the
// network state repeats, which proves it never will.
func searchStateCycle(ctx context.Context, e *Engine, sink string) (SinkResult, error) {
	res := SinkResult{Sink: sink, Method: MethodStateCycle}

	hit := false
	unsubscribe := e.Subscribe(func(ev ir.Event) {
		if ev.Destination == sink && ev.Pulse == ir.Low {
			hit = true
		}
	})
	defer unsubscribe()

	quota := NewQuotaEnforcer(e.maxPresses)
	detector := NewCycleDetector()
	detector.Observe(e.net.StateVector(), e.presses)

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := quota.Check(e.runID); err != nil {
			return res, err
		}
		if _, err := e.Press(); err != nil {
			return res, err
		}
		res.Simulated = e.presses

		if hit {
			res.Presses = e.presses
			return res, nil
		}
		if c, repeated := detector.Observe(e.net.StateVector(), e.presses); repeated {
			e.logger.Info("state cycle found", "start", c.Start, "length", c.Length,
				"states", detector.HistorySize(), "state", e.net.Fingerprint())
			return res, NewUnreachableError(e.runID, sink, c)
		}
	}
}
