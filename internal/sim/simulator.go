package sim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/metrics"
	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/physio"
	"github.com/san-kum/readysim/internal/regime"
)

// Simulate integrates the full readiness model from p.Initial() over
// [0, horizon] days and samples it every step days.
func Simulate(ctx context.Context, p params.Set, r *regime.Regime, horizon, step float64, opts ...Option) (*Readout, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("regime: %w", err)
	}
	return Run(ctx, p, physio.NewModel(p, r), p.Initial(), 0, horizon, step, opts...)
}

// Run integrates sys from x0 at t0 over horizon days, sampling on the grid
// t0 + i*step for i = 0..round(horizon/step). Readiness and the summary use
// the weights in p. On failure it returns a nil Readout and an error
// wrapping *dynamo.SimulationError; nothing partial escapes.
func Run(ctx context.Context, p params.Set, sys dynamo.System, x0 dynamo.State, t0, horizon, step float64, opts ...Option) (*Readout, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateGrid(horizon, step); err != nil {
		runsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if len(x0) != sys.StateDim() {
		runsTotal.WithLabelValues("invalid").Inc()
		return nil, dynamo.ErrDimensionMismatch
	}

	start := time.Now()
	n := int(math.Round(horizon / step))

	score := func(x dynamo.State) float64 { return physio.Readiness(&p, x) }
	peak := metrics.NewPeak(score)
	mean := metrics.NewMean(score)
	risk := metrics.NewDamageRisk(o.Threshold)
	observers := []metrics.Metric{peak, mean, risk}

	out := &Readout{
		Times:     make([]float64, 0, n+1),
		States:    make([]dynamo.State, 0, n+1),
		Readiness: make([]float64, 0, n+1),
	}
	record := func(x dynamo.State, t float64) {
		out.Times = append(out.Times, t)
		out.States = append(out.States, x)
		out.Readiness = append(out.Readiness, score(x))
		metrics.ObserveAll(observers, x, t)
	}

	adv := o.NewAdvance()
	x := x0.Clone()
	record(x, t0)

	for i := 1; i <= n; i++ {
		tPrev := t0 + float64(i-1)*step
		tNext := t0 + float64(i)*step

		cfg := o.Solver
		cfg.MaxSteps = o.Solver.MaxSteps - out.Steps
		next, used, err := adv.Advance(ctx, sys, x, tPrev, tNext, cfg)
		out.Steps += used
		if err != nil {
			return nil, fail(err, out.Steps, tPrev, x, start)
		}
		if !next.IsValid() {
			return nil, fail(dynamo.ErrInvalidState, out.Steps, tNext, next, start)
		}
		x = next
		record(x, tNext)
	}

	out.Summary = Summary{
		Peak:         peak.Value(),
		TimeToPeak:   peak.At(),
		Mean:         mean.Value(),
		RiskFraction: risk.Value(),
		Threshold:    risk.Threshold(),
	}
	out.Metrics = metrics.Collect(observers)

	solverSteps.Add(float64(out.Steps))
	runsTotal.WithLabelValues("ok").Inc()
	runDuration.Observe(time.Since(start).Seconds())

	log.Debug().
		Int("samples", out.Len()).
		Int("steps", out.Steps).
		Float64("horizon", horizon).
		Float64("peak", out.Summary.Peak).
		Dur("elapsed", time.Since(start)).
		Msg("simulation complete")

	return out, nil
}

func validateGrid(horizon, step float64) error {
	switch {
	case !(step > 0) || math.IsInf(step, 0):
		return fmt.Errorf("%w: output step must be positive, got %g", dynamo.ErrDegenerateInput, step)
	case !(horizon > 0) || math.IsInf(horizon, 0):
		return fmt.Errorf("%w: horizon must be positive, got %g", dynamo.ErrDegenerateInput, horizon)
	case math.Round(horizon/step) < 1:
		return fmt.Errorf("%w: horizon %g shorter than output step %g", dynamo.ErrDegenerateInput, horizon, step)
	}
	return nil
}

// fail normalizes an integrator error to a SimulationError carrying the
// run-wide step count.
func fail(err error, steps int, t float64, x dynamo.State, start time.Time) error {
	var simErr *dynamo.SimulationError
	if errors.As(err, &simErr) {
		simErr.Step = steps
	} else {
		simErr = &dynamo.SimulationError{Step: steps, Time: t, State: x.Clone(), Wrapped: err}
	}

	solverSteps.Add(float64(steps))
	runsTotal.WithLabelValues("failed").Inc()
	runDuration.Observe(time.Since(start).Seconds())
	log.Warn().Err(simErr.Wrapped).Int("step", simErr.Step).Float64("t", simErr.Time).Msg("simulation failed")

	return simErr
}
