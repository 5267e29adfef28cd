package sim

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// runsTotal counts simulations by result.
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "readysim_simulations_total",
		Help: "Total trajectory simulations by result",
	}, []string{"result"})

	// solverSteps counts internal integrator attempts across all runs.
	solverSteps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "readysim_solver_steps_total",
		Help: "Total adaptive integrator step attempts",
	})

	// runDuration tracks wall time per simulation.
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "readysim_simulation_duration_seconds",
		Help:    "Simulation wall time in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~16s
	})
)
