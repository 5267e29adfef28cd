package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/physio"
	"github.com/san-kum/readysim/internal/regime"
	"github.com/san-kum/readysim/internal/solve"
)

// Equilibrium solver defaults.
const (
	EquilibriumTol     = 1e-10
	EquilibriumMaxIter = 50
)

// EquilibriumOptions tune Equilibrium. Zero fields take the defaults.
type EquilibriumOptions struct {
	// Period is the averaging window in days, DefaultPeriod if zero.
	Period float64
	// Guess seeds Newton instead of p.Initial().
	Guess   dynamo.State
	Tol     float64
	MaxIter int
}

// EquilibriumSummary describes the rest state of the averaged system.
type EquilibriumSummary struct {
	State       dynamo.State
	Readiness   float64
	Jacobian    *mat.Dense
	Eigenvalues []complex128
	// MaxReal is the largest eigenvalue real part.
	MaxReal float64
	// HalfLife is ln2/|MaxReal| in days when stable, +Inf otherwise.
	HalfLife   float64
	Stable     bool
	Means      Means
	Iterations int
	Residual   float64
}

// Equilibrium averages the regime over one period, solves the constant-input
// system for a rest state and linearizes it there. Non-convergence comes
// back as *dynamo.ConvergenceError; a wrong root is never returned.
func Equilibrium(ctx context.Context, p params.Set, r *regime.Regime, opts EquilibriumOptions) (*EquilibriumSummary, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("parameters: %w", err)
	}
	period := opts.Period
	if period == 0 {
		period = DefaultPeriod
	}

	means, err := WeeklyAverages(ctx, p, r, period)
	if err != nil {
		return nil, err
	}

	surrogate := physio.NewAveraged(p, means.Inputs())
	f := func(x dynamo.State) (dynamo.State, error) {
		return surrogate.Derive(x, 0), nil
	}

	seed := p.Initial()
	if opts.Guess != nil {
		if len(opts.Guess) != dynamo.StateDim {
			return nil, dynamo.ErrDimensionMismatch
		}
		seed = opts.Guess.Clone()
	}

	tol, maxIter := opts.Tol, opts.MaxIter
	if tol <= 0 {
		tol = EquilibriumTol
	}
	if maxIter <= 0 {
		maxIter = EquilibriumMaxIter
	}

	root, err := solve.Newton(ctx, f, seed, solve.Options{Tol: tol, MaxIter: maxIter, Label: "equilibrium"})
	if err != nil {
		return nil, fmt.Errorf("equilibrium: %w", err)
	}

	jac, err := solve.CentralJacobian(f, root.X)
	if err != nil {
		return nil, err
	}
	eig, err := solve.Eigenvalues(jac)
	if err != nil {
		return nil, fmt.Errorf("equilibrium eigenvalues: %w", err)
	}

	out := &EquilibriumSummary{
		State:       root.X,
		Readiness:   physio.Readiness(&p, root.X),
		Jacobian:    jac,
		Eigenvalues: eig,
		MaxReal:     solve.SpectralAbscissa(eig),
		HalfLife:    math.Inf(1),
		Means:       means,
		Iterations:  root.Iterations,
		Residual:    root.Residual,
	}
	if out.MaxReal < 0 {
		out.Stable = true
		out.HalfLife = math.Ln2 / math.Abs(out.MaxReal)
	}

	log.Info().
		Str("regime", r.Name).
		Int("iterations", out.Iterations).
		Float64("readiness", out.Readiness).
		Float64("max_real", out.MaxReal).
		Bool("stable", out.Stable).
		Msg("equilibrium located")

	return out, nil
}
