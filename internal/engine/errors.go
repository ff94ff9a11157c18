package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected during simulation.
//
// Runtime errors include:
//   - Unknown destination: a pulse addressed an undeclared module under the
//     strict destination policy
//   - Sink unreachable: the network state repeated before the sink received Low
//   - Not periodic: a feeder of the watched conjunction is not periodic from press 1
//   - Topology: the sink is not fed by exactly one conjunction
//
// RuntimeError includes structured fields for diagnostics.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// RunID identifies the affected simulation run.
	RunID string

	// Module names the module involved, if any.
	Module string

	// Details contains additional context.
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownDestination indicates a pulse to an undeclared module.
	ErrCodeUnknownDestination RuntimeErrorCode = "UNKNOWN_DESTINATION"

	// ErrCodeQuotaExceeded indicates a search exceeded the press quota.
	ErrCodeQuotaExceeded RuntimeErrorCode = "QUOTA_EXCEEDED"

	// ErrCodeSinkUnreachable indicates the sink can never receive Low.
	ErrCodeSinkUnreachable RuntimeErrorCode = "SINK_UNREACHABLE"

	// ErrCodeNotPeriodic indicates the feeder-periodicity assumption failed.
	ErrCodeNotPeriodic RuntimeErrorCode = "NOT_PERIODIC"

	// ErrCodeTopology indicates the network shape does not fit the method.
	ErrCodeTopology RuntimeErrorCode = "TOPOLOGY"

	// ErrCodeNotFresh indicates a search was started on a pressed engine.
	ErrCodeNotFresh RuntimeErrorCode = "NOT_FRESH"

	// ErrCodeOverflow indicates a press count does not fit in int64.
	ErrCodeOverflow RuntimeErrorCode = "OVERFLOW"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.RunID != "" && e.Module != "" {
		return fmt.Sprintf("%s: %s (run=%s, module=%s)", e.Code, e.Message, e.RunID, e.Module)
	}
	if e.Module != "" {
		return fmt.Sprintf("%s: %s (module=%s)", e.Code, e.Message, e.Module)
	}
	if e.RunID != "" {
		return fmt.Sprintf("%s: %s (run=%s)", e.Code, e.Message, e.RunID)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is a RuntimeError with the given code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsUnknownDestinationError returns true for strict-policy delivery failures.
func IsUnknownDestinationError(err error) bool {
	return HasCode(err, ErrCodeUnknownDestination)
}

// IsUnreachableError returns true if the sink was proven unreachable.
func IsUnreachableError(err error) bool {
	return HasCode(err, ErrCodeSinkUnreachable)
}

// IsNotPeriodicError returns true if feeder verification failed.
func IsNotPeriodicError(err error) bool {
	return HasCode(err, ErrCodeNotPeriodic)
}

// IsTopologyError returns true if the sink is not fed by one conjunction.
func IsTopologyError(err error) bool {
	return HasCode(err, ErrCodeTopology)
}

// IsQuotaError returns true if the error is a quota exceeded error.
// Matches both RuntimeError with ErrCodeQuotaExceeded and PressesExceededError.
func IsQuotaError(err error) bool {
	if HasCode(err, ErrCodeQuotaExceeded) {
		return true
	}
	var pe *PressesExceededError
	return errors.As(err, &pe)
}

// NewUnknownDestinationError creates a RuntimeError for a pulse sent to an
// undeclared module.
func NewUnknownDestinationError(runID, source, destination string, press int64) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownDestination,
		Message: fmt.Sprintf("pulse from %q addressed an undeclared module", source),
		RunID:   runID,
		Module:  destination,
		Details: map[string]string{
			"source": source,
			"press":  fmt.Sprintf("%d", press),
		},
	}
}

// NewUnreachableError creates a RuntimeError for a sink that the state
// cycle proves can never receive Low.
func NewUnreachableError(runID, sink string, c Cycle) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeSinkUnreachable,
		Message: fmt.Sprintf("network state repeats every %d presses without a low pulse to the sink", c.Length),
		RunID:   runID,
		Module:  sink,
		Details: map[string]string{
			"cycle_start":  fmt.Sprintf("%d", c.Start),
			"cycle_length": fmt.Sprintf("%d", c.Length),
		},
	}
}

// NewNotPeriodicError creates a RuntimeError for a feeder whose second High
// did not arrive at twice its first press index.
func NewNotPeriodicError(runID, feeder string, first, second int64) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeNotPeriodic,
		Message: fmt.Sprintf("feeder fired high at presses %d and %d, not periodic from press 1", first, second),
		RunID:   runID,
		Module:  feeder,
		Details: map[string]string{
			"first":  fmt.Sprintf("%d", first),
			"second": fmt.Sprintf("%d", second),
		},
	}
}

// NewSilentFeederError creates a RuntimeError for a feeder that the state
// cycle c proves will never send High again. first is 0 for a feeder that
// never fired at all.
func NewSilentFeederError(runID, feeder string, first int64, c Cycle) *RuntimeError {
	msg := "feeder never fires high"
	if first != 0 {
		msg = fmt.Sprintf("feeder fires high only at press %d", first)
	}
	return &RuntimeError{
		Code:    ErrCodeNotPeriodic,
		Message: fmt.Sprintf("%s, network state repeats every %d presses", msg, c.Length),
		RunID:   runID,
		Module:  feeder,
		Details: map[string]string{
			"first":        fmt.Sprintf("%d", first),
			"cycle_start":  fmt.Sprintf("%d", c.Start),
			"cycle_length": fmt.Sprintf("%d", c.Length),
		},
	}
}

// NewTopologyError creates a RuntimeError for a sink the LCM method
// cannot analyse.
func NewTopologyError(sink, message string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeTopology,
		Message: message,
		Module:  sink,
	}
}
