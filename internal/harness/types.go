package harness

import "time"

// TraceEvent records one executed step and the ledger events it emitted.
type TraceEvent struct {
	Step    int       `json:"step"`
	Op      string    `json:"op"`
	Actor   string    `json:"actor,omitempty"`
	At      time.Time `json:"at"`
	Outcome string    `json:"outcome"` // "ok" or the error code
	Detail  []string  `json:"detail,omitempty"`
	Events  []string  `json:"events,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step matched its expected outcome and every
	// assertion held.
	Pass bool `json:"pass"`

	// Trace contains the executed steps in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step to the trace.
func (r *Result) AddStep(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}
