package solve

import (
	"context"
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/readysim/internal/dynamo"
)

var (
	// solvesTotal counts Newton solves by result.
	solvesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "readysim_newton_solves_total",
		Help: "Total Newton root solves by result",
	}, []string{"result"})

	// iterationsTotal counts Newton iterations across all solves.
	iterationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "readysim_newton_iterations_total",
		Help: "Total Newton iterations",
	})
)

// JacobianFunc returns the Jacobian of f at x given fx = f(x).
type JacobianFunc func(ctx context.Context, x, fx dynamo.State) (*mat.Dense, error)

// Options configure Newton. Zero fields take the defaults.
type Options struct {
	// Tol bounds the max-norm of f at the solution.
	Tol     float64
	MaxIter int
	// MaxBacktrack bounds the step halvings per iteration.
	MaxBacktrack int
	// Jacobian defaults to CentralJacobian.
	Jacobian JacobianFunc
	// Label tags log lines.
	Label string
}

func (o Options) withDefaults() Options {
	if o.Tol <= 0 {
		o.Tol = 1e-10
	}
	if o.MaxIter <= 0 {
		o.MaxIter = 50
	}
	if o.MaxBacktrack <= 0 {
		o.MaxBacktrack = 10
	}
	if o.Label == "" {
		o.Label = "newton"
	}
	return o
}

// Result is a converged root.
type Result struct {
	X          dynamo.State
	Residual   float64
	Iterations int
}

// Newton solves f(x) = 0 from x0 with a damped Newton iteration: the full
// step is halved until the residual max-norm decreases. Failures come back
// as *dynamo.ConvergenceError carrying the last iterate and its residual.
func Newton(ctx context.Context, f Func, x0 dynamo.State, opts Options) (*Result, error) {
	o := opts.withDefaults()
	jacobian := o.Jacobian
	if jacobian == nil {
		jacobian = func(_ context.Context, x, _ dynamo.State) (*mat.Dense, error) {
			return CentralJacobian(f, x)
		}
	}

	x := x0.Clone()
	fx, err := f(x)
	if err != nil {
		return nil, failed(0, x, math.Inf(1), err)
	}
	res := fx.MaxAbs()

	for k := 0; ; k++ {
		if !fx.IsValid() {
			return nil, failed(k, x, res, dynamo.ErrInvalidState)
		}
		if res <= o.Tol {
			solvesTotal.WithLabelValues("converged").Inc()
			log.Debug().Str("solver", o.Label).Int("iterations", k).Float64("residual", res).Msg("newton converged")
			return &Result{X: x, Residual: res, Iterations: k}, nil
		}
		if k == o.MaxIter {
			return nil, failed(k, x, res, dynamo.ErrNoConvergence)
		}
		if err := ctx.Err(); err != nil {
			return nil, failed(k, x, res, err)
		}

		jac, err := jacobian(ctx, x, fx)
		if err != nil {
			return nil, failed(k, x, res, err)
		}
		dx, err := newtonStep(jac, fx)
		if err != nil {
			return nil, failed(k, x, res, err)
		}

		x, fx, res, err = backtrack(f, x, dx, res, o.MaxBacktrack)
		if err != nil {
			return nil, failed(k+1, x, res, err)
		}
		iterationsTotal.Inc()
		log.Debug().Str("solver", o.Label).Int("iteration", k+1).Float64("residual", res).Msg("newton step")
	}
}

// newtonStep solves J dx = -fx.
func newtonStep(jac *mat.Dense, fx dynamo.State) (dynamo.State, error) {
	var lu mat.LU
	lu.Factorize(jac)
	if c := lu.Cond(); math.IsInf(c, 0) || math.IsNaN(c) || c > 1e14 {
		return nil, fmt.Errorf("%w: condition number %.3e", dynamo.ErrSingularJacobian, c)
	}

	rhs := mat.NewVecDense(len(fx), fx.Scale(-1))
	var dx mat.VecDense
	if err := lu.SolveVecTo(&dx, false, rhs); err != nil {
		return nil, fmt.Errorf("%w: %v", dynamo.ErrSingularJacobian, err)
	}
	return dynamo.State(dx.RawVector().Data), nil
}

// backtrack halves the step until the residual drops. When no trial
// decreases it, the smallest finite trial is taken so the iteration can
// leave a shallow region instead of stalling.
func backtrack(f Func, x, dx dynamo.State, res float64, maxHalvings int) (dynamo.State, dynamo.State, float64, error) {
	lambda := 1.0
	var lastX, lastF dynamo.State
	lastRes := math.Inf(1)
	var lastErr error

	for i := 0; i <= maxHalvings; i++ {
		xt := x.Add(dx.Scale(lambda))
		ft, err := f(xt)
		if err == nil && ft.IsValid() {
			rt := ft.MaxAbs()
			if rt < (1-1e-4*lambda)*res {
				return xt, ft, rt, nil
			}
			lastX, lastF, lastRes = xt, ft, rt
		} else if err != nil {
			lastErr = err
		}
		lambda /= 2
	}

	if lastX == nil {
		if lastErr == nil {
			lastErr = dynamo.ErrInvalidState
		}
		return x, nil, res, lastErr
	}
	return lastX, lastF, lastRes, nil
}

func failed(iter int, x dynamo.State, res float64, err error) error {
	solvesTotal.WithLabelValues("failed").Inc()
	log.Warn().Err(err).Int("iterations", iter).Float64("residual", res).Msg("newton failed")
	return &dynamo.ConvergenceError{Iterations: iter, X: x.Clone(), Residual: res, Wrapped: err}
}
