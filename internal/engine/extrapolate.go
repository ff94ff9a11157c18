package engine

import (
	"context"
	"fmt"

	"github.com/roach88/pulsenet/internal/ir"
)

// Extrapolation is the result of CountPulses.
type Extrapolation struct {
	Presses   int64          `json:"presses"`
	Counts    ir.PulseCounts `json:"counts"`
	Simulated int64          `json:"simulated"`
	Cycle     *Cycle         `json:"cycle,omitempty"`
}

// CountPulses returns the pulses sent by the next n presses of e.
//
// Presses are simulated until n is reached or the network state repeats.
// On a repeat with prefix s and length L, the remaining presses are
// summed from the recorded per-press counts:
//
//	counts(n) = prefix(s) + q·cycle + partial(r),  q, r = (n-s) / L, (n-s) % L
//
// Press indexes in the returned Cycle are relative to the call. The engine
// is left in the state after the last simulated press, and its Totals only
// include simulated presses.
func CountPulses(ctx context.Context, e *Engine, n int64) (Extrapolation, error) {
	res := Extrapolation{Presses: n}
	if n <= 0 {
		return res, nil
	}

	quota := NewQuotaEnforcer(e.maxPresses)
	detector := NewCycleDetector()
	detector.Observe(e.net.StateVector(), 0)
	var perPress []ir.PulseCounts

	for i := int64(1); i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := quota.Check(e.runID); err != nil {
			return res, err
		}
		c, err := e.Press()
		if err != nil {
			return res, err
		}
		perPress = append(perPress, c)
		res.Counts = res.Counts.Add(c)
		res.Simulated = i

		if i == n {
			break
		}
		cyc, repeated := detector.Observe(e.net.StateVector(), i)
		if !repeated {
			continue
		}

		prefix := sumCounts(perPress[:cyc.Start])
		loop := sumCounts(perPress[cyc.Start:i])
		q := (n - cyc.Start) / cyc.Length
		r := (n - cyc.Start) % cyc.Length
		counts, err := extrapolateCounts(prefix, loop, sumCounts(perPress[cyc.Start:cyc.Start+r]), q)
		if err != nil {
			return res, &RuntimeError{
				Code:    ErrCodeOverflow,
				Message: fmt.Sprintf("pulse count for %d presses overflows int64", n),
				RunID:   e.runID,
			}
		}

		res.Counts = counts
		res.Cycle = &cyc
		e.logger.Debug("extrapolated from cycle", "start", cyc.Start, "length", cyc.Length, "presses", n)
		return res, nil
	}

	return res, nil
}

// extrapolateCounts returns prefix + q·loop + partial.
func extrapolateCounts(prefix, loop, partial ir.PulseCounts, q int64) (ir.PulseCounts, error) {
	scaled, err := loop.Scale(q)
	if err != nil {
		return ir.PulseCounts{}, err
	}
	sum, err := prefix.AddChecked(scaled)
	if err != nil {
		return ir.PulseCounts{}, err
	}
	return sum.AddChecked(partial)
}

func sumCounts(cs []ir.PulseCounts) ir.PulseCounts {
	var sum ir.PulseCounts
	for _, c := range cs {
		sum = sum.Add(c)
	}
	return sum
}
