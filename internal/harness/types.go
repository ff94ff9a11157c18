package harness

import (
	"github.com/roach88/pulsenet/internal/engine"
	"github.com/roach88/pulsenet/internal/ir"
)

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// RunID identifies the traced run.
	RunID string `json:"run_id"`

	// Trace contains the events of the traced presses, ordered by seq.
	Trace []ir.Event `json:"trace"`

	// Counts holds the pulse totals checked by the expect clause.
	Counts *ir.PulseCounts `json:"counts,omitempty"`

	// Sink holds the answer checked by the sink clause.
	Sink *engine.SinkResult `json:"sink,omitempty"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []ir.Event{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
