package engine

import (
	"errors"
	"fmt"
)

// QuotaEnforcer bounds the number of presses an unbounded search may run.
//
// Direct simulation (Press, PressN) is never limited: the caller chose the
// press count. Searches (FindSinkLow, CountPulses) stop at the first
// repeated state or answer, but both may take arbitrarily long on large
// networks, so each search owns one enforcer.
type QuotaEnforcer struct {
	maxPresses int64
	current    int64
}

// NewQuotaEnforcer creates a new quota enforcer with the given limit.
func NewQuotaEnforcer(maxPresses int64) *QuotaEnforcer {
	return &QuotaEnforcer{maxPresses: maxPresses}
}

// Check increments the press counter and validates against the limit.
// Call it before every press of a search.
func (q *QuotaEnforcer) Check(runID string) error {
	q.current++
	if q.current > q.maxPresses {
		return &PressesExceededError{
			RunID:   runID,
			Presses: q.current,
			Limit:   q.maxPresses,
		}
	}
	return nil
}

// Reset resets the press counter to 0.
func (q *QuotaEnforcer) Reset() {
	q.current = 0
}

// Current returns the current press count.
func (q *QuotaEnforcer) Current() int64 {
	return q.current
}

// MaxPresses returns the limit.
func (q *QuotaEnforcer) MaxPresses() int64 {
	return q.maxPresses
}

// PressesExceededError is returned when a search exceeds its press quota.
type PressesExceededError struct {
	RunID   string
	Presses int64
	Limit   int64
}

// Error implements the error interface.
func (e *PressesExceededError) Error() string {
	return fmt.Sprintf("run %s exceeded press quota: %d presses > %d limit",
		e.RunID, e.Presses, e.Limit)
}

// IsPressesExceededError returns true if the error is a PressesExceededError.
func IsPressesExceededError(err error) bool {
	var pe *PressesExceededError
	return errors.As(err, &pe)
}
