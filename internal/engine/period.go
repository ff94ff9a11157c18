package engine

import (
	"context"
	"fmt"
	"math"
	"math/bits"

	"github.com/roach88/pulsenet/internal/ir"
)

// feederLCM answers the sink question from the periods of the watched
// conjunction's inputs.
//
// The sink must be fed by exactly one module, a conjunction with at least
// one resolved input. Presses run from 1; the first press in which an input
// sends High to the watched conjunction is that input's period. With verify
// set, each input must also fire again exactly at twice its period,
// otherwise the assumption is rejected with ErrCodeNotPeriodic. Without
// verification a non-periodic network yields a wrong answer silently.
//
// Once the network state repeats, every later High is a replay of one
// already seen. An input that has not fired by then never will, and one
// that has fired only once gets one more cycle to fire again. Either
// failure is ErrCodeNotPeriodic, so the search never runs to the quota on
// a network whose feeders stay silent.
func feederLCM(ctx context.Context, e *Engine, sink string, verify bool) (SinkResult, error) {
	res := SinkResult{Sink: sink, Method: MethodFeederLCM}

	feeders := e.net.Feeders(sink)
	if len(feeders) != 1 {
		return res, NewTopologyError(sink, fmt.Sprintf("sink is fed by %d modules, want exactly one conjunction", len(feeders)))
	}
	watched := feeders[0]
	if k, _ := e.net.Kind(watched); k != ir.KindConjunction {
		return res, NewTopologyError(sink, fmt.Sprintf("sink feeder %q is a %s, want a conjunction", watched, k))
	}
	inputs := e.net.Inputs(watched)
	if len(inputs) == 0 {
		return res, NewTopologyError(sink, fmt.Sprintf("conjunction %q has no inputs", watched))
	}
	res.Watched = watched

	tracked := make(map[string]bool, len(inputs))
	for _, in := range inputs {
		tracked[in] = true
	}
	first := make(map[string]int64, len(inputs))
	second := make(map[string]int64, len(inputs))

	unsubscribe := e.Subscribe(func(ev ir.Event) {
		if ev.Destination != watched || ev.Pulse != ir.High || !tracked[ev.Source] {
			return
		}
		switch {
		case first[ev.Source] == 0:
			first[ev.Source] = ev.Press
			e.logger.Debug("feeder period found", "feeder", ev.Source, "press", ev.Press)
		case verify && second[ev.Source] == 0 && ev.Press != first[ev.Source]:
			second[ev.Source] = ev.Press
		}
	})
	defer unsubscribe()

	quota := NewQuotaEnforcer(e.maxPresses)
	detector := NewCycleDetector()
	detector.Observe(e.net.StateVector(), e.presses)
	var cycle Cycle
	var deadline int64 // last press that can still bring a second High

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

		done := true
		for _, in := range inputs {
			if verify {
				if s := second[in]; s != 0 && s != 2*first[in] {
					return res, NewNotPeriodicError(e.runID, in, first[in], s)
				}
				done = done && second[in] != 0
			} else {
				done = done && first[in] != 0
			}
		}
		if done {
			break
		}

		if deadline == 0 {
			c, repeated := detector.Observe(e.net.StateVector(), e.presses)
			if !repeated {
				continue
			}
			e.logger.Debug("state cycle found before feeder periods settled",
				"start", c.Start, "length", c.Length, "state", e.net.Fingerprint())
			for _, in := range inputs {
				if first[in] == 0 {
					return res, NewSilentFeederError(e.runID, in, 0, c)
				}
			}
			cycle, deadline = c, e.presses+c.Length
		}
		if e.presses >= deadline {
			for _, in := range inputs {
				if second[in] == 0 {
					return res, NewSilentFeederError(e.runID, in, first[in], cycle)
				}
			}
		}
	}

	periods := make([]int64, len(inputs))
	res.Periods = make(map[string]int64, len(inputs))
	for i, in := range inputs {
		periods[i] = first[in]
		res.Periods[in] = first[in]
	}

	n, err := LCM(periods...)
	if err != nil {
		return res, err
	}
	res.Presses = n
	e.logger.Info("feeder periods combined", "watched", watched, "feeders", len(inputs), "presses", n)
	return res, nil
}

// LCM returns the least common multiple of positive values. LCM() is 1.
func LCM(values ...int64) (int64, error) {
	result := int64(1)
	for _, v := range values {
		if v <= 0 {
			return 0, fmt.Errorf("lcm: non-positive value %d", v)
		}
		step := v / gcd(result, v)
		hi, lo := bits.Mul64(uint64(result), uint64(step))
		if hi != 0 || lo > math.MaxInt64 {
			return 0, &RuntimeError{
				Code:    ErrCodeOverflow,
				Message: fmt.Sprintf("lcm of %v overflows int64", values),
			}
		}
		result = int64(lo)
	}
	return result, nil
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}
