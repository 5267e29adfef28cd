package sim

import (
	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/integrators"
	"github.com/san-kum/readysim/internal/metrics"
)

// Summary holds the scalar readouts of one trajectory.
type Summary struct {
	Peak         float64 `json:"peak"`
	TimeToPeak   float64 `json:"time_to_peak"`
	Mean         float64 `json:"mean"`
	RiskFraction float64 `json:"risk_fraction"`
	Threshold    float64 `json:"threshold"`
}

// Readout is the result of one simulation. Times, States and Readiness are
// index-aligned. Callers must treat it as read-only.
type Readout struct {
	Times     []float64
	States    []dynamo.State
	Readiness []float64
	Summary   Summary
	// Metrics snapshots every observer by name.
	Metrics map[string]float64
	// Steps counts internal solver attempts, rejected ones included.
	Steps int
}

func (r *Readout) Len() int { return len(r.Times) }

// Final is a copy of the last state.
func (r *Readout) Final() dynamo.State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1].Clone()
}

// Column extracts one state component as a series.
func (r *Readout) Column(idx int) []float64 {
	out := make([]float64, len(r.States))
	for i, x := range r.States {
		out[i] = x[idx]
	}
	return out
}

// Options tune a run. The zero value is not useful; start from
// defaultOptions.
type Options struct {
	Solver     dynamo.Config
	Threshold  float64
	NewAdvance func() dynamo.Advancer
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		Solver:     dynamo.DefaultConfig(),
		Threshold:  metrics.DefaultRiskThreshold,
		NewAdvance: func() dynamo.Advancer { return integrators.NewRK45() },
	}
}

// WithThreshold sets the damage level counted by the risk fraction.
func WithThreshold(th float64) Option {
	return func(o *Options) { o.Threshold = th }
}

// WithSolver replaces the integration tolerances and budgets.
func WithSolver(cfg dynamo.Config) Option {
	return func(o *Options) { o.Solver = cfg }
}

// WithAdvancer swaps the integrator. The factory is called once per run.
func WithAdvancer(f func() dynamo.Advancer) Option {
	return func(o *Options) { o.NewAdvance = f }
}
