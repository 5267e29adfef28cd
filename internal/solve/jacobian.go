package solve

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/readysim/internal/dynamo"
)

// Func is a vector field whose zero is sought. It may fail, for instance
// when each evaluation is a full simulation.
type Func func(x dynamo.State) (dynamo.State, error)

// ContextFunc is a Func whose evaluations honour cancellation.
type ContextFunc func(ctx context.Context, x dynamo.State) (dynamo.State, error)

// DefaultForwardStep is the fixed perturbation of ForwardJacobian.
const DefaultForwardStep = 1e-6

// ForwardJacobian assembles J[i][j] = (f(x + eps*e_j) - f(x))[i] / eps with
// one fixed eps for every coordinate. The perturbed evaluations run on an
// errgroup bounded by GOMAXPROCS; when fx is nil the baseline runs alongside
// them. The first failure cancels the rest.
func ForwardJacobian(ctx context.Context, f ContextFunc, x, fx dynamo.State, eps float64) (*mat.Dense, error) {
	n := len(x)
	perturbed := make([]dynamo.State, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	if fx == nil {
		g.Go(func() error {
			base, err := f(gctx, x)
			fx = base
			return err
		})
	}
	for j := 0; j < n; j++ {
		g.Go(func() error {
			xp := x.Clone()
			xp[j] += eps
			out, err := f(gctx, xp)
			perturbed[j] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	jac := mat.NewDense(len(fx), n, nil)
	for j, fp := range perturbed {
		if len(fp) != len(fx) {
			return nil, fmt.Errorf("%w: column %d has %d rows, want %d", dynamo.ErrDimensionMismatch, j, len(fp), len(fx))
		}
		for i := range fx {
			jac.Set(i, j, (fp[i]-fx[i])/eps)
		}
	}
	return jac, nil
}

// centralScale is cbrt(machine epsilon), which balances O(h^2) truncation
// against O(eps/h) cancellation.
var centralScale = math.Cbrt(0x1p-52)

// CentralJacobian differentiates f with h_j = cbrt(eps) * max(1, |x_j|).
func CentralJacobian(f Func, x dynamo.State) (*mat.Dense, error) {
	n := len(x)
	var jac *mat.Dense
	for j := 0; j < n; j++ {
		h := centralScale * math.Max(1, math.Abs(x[j]))

		xp, xm := x.Clone(), x.Clone()
		xp[j] += h
		xm[j] -= h
		// Use the representable step actually taken.
		h2 := xp[j] - xm[j]

		fp, err := f(xp)
		if err != nil {
			return nil, err
		}
		fm, err := f(xm)
		if err != nil {
			return nil, err
		}
		if jac == nil {
			jac = mat.NewDense(len(fp), n, nil)
		}
		for i := range fp {
			jac.Set(i, j, (fp[i]-fm[i])/h2)
		}
	}
	return jac, nil
}
