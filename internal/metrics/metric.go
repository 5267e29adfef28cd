package metrics

import "github.com/san-kum/readysim/internal/dynamo"

// Metric is a streaming observer fed every output sample of a trajectory.
type Metric interface {
	Name() string
	Observe(x dynamo.State, t float64)
	Value() float64
	Reset()
}

// Score maps a state to a scalar, usually readiness.
type Score func(x dynamo.State) float64

// ObserveAll feeds one sample to each metric.
func ObserveAll(ms []Metric, x dynamo.State, t float64) {
	for _, m := range ms {
		m.Observe(x, t)
	}
}

// Collect snapshots every metric by name.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
