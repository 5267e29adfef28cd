package analysis

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/metrics"
	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/physio"
	"github.com/san-kum/readysim/internal/regime"
	"github.com/san-kum/readysim/internal/sim"
	"github.com/san-kum/readysim/internal/solve"
)

// Periodic solver defaults.
const (
	FixedPointTol        = 1e-8
	FixedPointMaxIter    = 25
	DefaultWarmupPeriods = 6
	// DefaultFloquetStep is the forward-difference perturbation. It is the
	// same for every coordinate regardless of its scale.
	DefaultFloquetStep = 1e-6
	// EnvelopeStep is the sampling of the steady week in days.
	EnvelopeStep = 1.0 / 96
)

// FixedPoint is a state the weekly map returns to.
type FixedPoint struct {
	State      dynamo.State
	Seed       dynamo.State
	Residual   float64
	Iterations int
}

// Floquet is the linearization of the weekly map at a fixed point.
type Floquet struct {
	Multipliers    []complex128
	Jacobian       *mat.Dense
	SpectralRadius float64
	// Stable is true when every multiplier lies strictly inside the unit
	// circle.
	Stable bool
}

// Envelope summarizes readiness over one steady period.
type Envelope struct {
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
	Max    float64 `json:"max"`
}

// SteadyWeek is the repeating week and its stability.
type SteadyWeek struct {
	State        dynamo.State
	Floquet      *Floquet
	Envelope     Envelope
	RiskFraction float64
	Trajectory   *sim.Readout
	FixedPoint   *FixedPoint
}

// periodMap integrates the full model over one period from t = 0.
type periodMap struct {
	p      params.Set
	model  *physio.Model
	period float64
	opts   []sim.Option
}

func newPeriodMap(p params.Set, r *regime.Regime, period float64, opts []sim.Option) (*periodMap, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &periodMap{p: p, model: physio.NewModel(p, r), period: period, opts: opts}, nil
}

func (m *periodMap) advance(ctx context.Context, z dynamo.State, periods int) (dynamo.State, error) {
	out, err := sim.Run(ctx, m.p, m.model, z, 0, float64(periods)*m.period, m.period, m.opts...)
	if err != nil {
		return nil, err
	}
	return out.Final(), nil
}

// PoincareMap integrates the full time-varying system from z0 over
// [0, period] and returns the end state.
func PoincareMap(ctx context.Context, z0 dynamo.State, p params.Set, r *regime.Regime, period float64, opts ...sim.Option) (dynamo.State, error) {
	m, err := newPeriodMap(p, r, period, opts)
	if err != nil {
		return nil, err
	}
	return m.advance(ctx, z0, 1)
}

// PoincareFixedPoint integrates warmup periods from p.Initial() and then
// solves Phi(z) - z = 0 by Newton with a forward-difference Jacobian.
// A warmup of zero seeds Newton at p.Initial() directly.
func PoincareFixedPoint(ctx context.Context, p params.Set, r *regime.Regime, period float64, warmup int, opts ...sim.Option) (*FixedPoint, error) {
	if warmup < 0 {
		return nil, fmt.Errorf("%w: negative warmup %d", dynamo.ErrDegenerateInput, warmup)
	}
	m, err := newPeriodMap(p, r, period, opts)
	if err != nil {
		return nil, err
	}

	seed := p.Initial()
	if warmup > 0 {
		if seed, err = m.advance(ctx, seed, warmup); err != nil {
			return nil, fmt.Errorf("warmup: %w", err)
		}
	}

	g := func(ctx context.Context, z dynamo.State) (dynamo.State, error) {
		phi, err := m.advance(ctx, z, 1)
		if err != nil {
			return nil, err
		}
		return phi.Sub(z), nil
	}
	jac := func(ctx context.Context, x, gx dynamo.State) (*mat.Dense, error) {
		return solve.ForwardJacobian(ctx, g, x, gx, DefaultFloquetStep)
	}

	root, err := solve.Newton(ctx, func(z dynamo.State) (dynamo.State, error) { return g(ctx, z) }, seed, solve.Options{
		Tol:      FixedPointTol,
		MaxIter:  FixedPointMaxIter,
		Jacobian: jac,
		Label:    "poincare",
	})
	if err != nil {
		return nil, fmt.Errorf("poincare fixed point: %w", err)
	}

	log.Info().
		Str("regime", r.Name).
		Int("warmup", warmup).
		Int("iterations", root.Iterations).
		Float64("residual", root.Residual).
		Msg("weekly fixed point located")

	return &FixedPoint{State: root.X, Seed: seed, Residual: root.Residual, Iterations: root.Iterations}, nil
}

// FloquetMultipliers estimates the Jacobian of the weekly map at z by
// forward differences with step eps (DefaultFloquetStep if eps <= 0) and
// returns its eigenvalues. The baseline and the perturbed integrations run
// concurrently.
func FloquetMultipliers(ctx context.Context, z dynamo.State, p params.Set, r *regime.Regime, period, eps float64, opts ...sim.Option) (*Floquet, error) {
	if len(z) != dynamo.StateDim {
		return nil, dynamo.ErrDimensionMismatch
	}
	if eps <= 0 {
		eps = DefaultFloquetStep
	}
	m, err := newPeriodMap(p, r, period, opts)
	if err != nil {
		return nil, err
	}

	phi := func(ctx context.Context, x dynamo.State) (dynamo.State, error) {
		return m.advance(ctx, x, 1)
	}
	jac, err := solve.ForwardJacobian(ctx, phi, z, nil, eps)
	if err != nil {
		return nil, fmt.Errorf("floquet: %w", err)
	}

	mult, err := solve.Eigenvalues(jac)
	if err != nil {
		return nil, fmt.Errorf("floquet eigenvalues: %w", err)
	}
	radius := solve.SpectralRadius(mult)

	log.Debug().Float64("spectral_radius", radius).Float64("eps", eps).Msg("floquet multipliers")

	return &Floquet{
		Multipliers:    mult,
		Jacobian:       jac,
		SpectralRadius: radius,
		Stable:         radius < 1,
	}, nil
}

// SteadyOptions tune SteadyWeeklySummary. Start from DefaultSteadyOptions:
// Warmup and Threshold are used as given, zero included.
type SteadyOptions struct {
	// Warmup periods before the fixed-point solve. Zero seeds Newton at
	// p.Initial().
	Warmup int
	// Eps is the Floquet perturbation, DefaultFloquetStep if not positive.
	Eps float64
	// Threshold on damage I for the risk fraction.
	Threshold float64
	// Resolution of the steady-week trajectory in days, EnvelopeStep if not
	// positive.
	Resolution float64
	Sim        []sim.Option
}

func DefaultSteadyOptions() SteadyOptions {
	return SteadyOptions{
		Warmup:     DefaultWarmupPeriods,
		Eps:        DefaultFloquetStep,
		Threshold:  metrics.DefaultRiskThreshold,
		Resolution: EnvelopeStep,
	}
}

// SteadyWeeklySummary finds the weekly fixed point, its Floquet multipliers
// and the readiness envelope over one more period sampled finely.
func SteadyWeeklySummary(ctx context.Context, p params.Set, r *regime.Regime, period float64, opts SteadyOptions) (*SteadyWeek, error) {
	if opts.Resolution <= 0 {
		opts.Resolution = EnvelopeStep
	}

	fp, err := PoincareFixedPoint(ctx, p, r, period, opts.Warmup, opts.Sim...)
	if err != nil {
		return nil, err
	}
	fl, err := FloquetMultipliers(ctx, fp.State, p, r, period, opts.Eps, opts.Sim...)
	if err != nil {
		return nil, err
	}

	simOpts := append(slices.Clone(opts.Sim), sim.WithThreshold(opts.Threshold))
	traj, err := sim.Run(ctx, p, physio.NewModel(p, r), fp.State, 0, period, opts.Resolution, simOpts...)
	if err != nil {
		return nil, fmt.Errorf("steady week: %w", err)
	}

	env, err := NewEnvelope(traj.Readiness)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("regime", r.Name).
		Float64("median", env.Median).
		Float64("spectral_radius", fl.SpectralRadius).
		Float64("risk_fraction", traj.Summary.RiskFraction).
		Msg("steady week summarized")

	return &SteadyWeek{
		State:        fp.State,
		Floquet:      fl,
		Envelope:     env,
		RiskFraction: traj.Summary.RiskFraction,
		Trajectory:   traj,
		FixedPoint:   fp,
	}, nil
}

// NewEnvelope is the min, median and max of a series. For an even count the
// median is the lower of the two middle samples.
func NewEnvelope(series []float64) (Envelope, error) {
	if len(series) == 0 {
		return Envelope{}, fmt.Errorf("%w: empty series", dynamo.ErrDegenerateInput)
	}
	sorted := slices.Clone(series)
	slices.Sort(sorted)
	return Envelope{
		Min:    floats.Min(sorted),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		Max:    floats.Max(sorted),
	}, nil
}
