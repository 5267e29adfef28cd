package solve

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/readysim/internal/dynamo"
)

func circleLine(x dynamo.State) (dynamo.State, error) {
	return dynamo.State{x[0]*x[0] + x[1]*x[1] - 4, x[0] - x[1]}, nil
}

func TestNewtonConverges(t *testing.T) {
	res, err := Newton(context.Background(), circleLine, dynamo.State{1, 0.5}, Options{})
	require.NoError(t, err)

	assert.InDelta(t, math.Sqrt2, res.X[0], 1e-9)
	assert.InDelta(t, math.Sqrt2, res.X[1], 1e-9)
	assert.LessOrEqual(t, res.Residual, 1e-10)
	assert.Greater(t, res.Iterations, 0)
}

func TestNewtonAlreadyAtRoot(t *testing.T) {
	x0 := dynamo.State{math.Sqrt2, math.Sqrt2}
	res, err := Newton(context.Background(), circleLine, x0, Options{Tol: 1e-8})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Iterations)
}

func TestNewtonNoConvergence(t *testing.T) {
	f := func(x dynamo.State) (dynamo.State, error) {
		return dynamo.State{math.Exp(x[0])}, nil
	}

	_, err := Newton(context.Background(), f, dynamo.State{1}, Options{MaxIter: 10})
	require.ErrorIs(t, err, dynamo.ErrNoConvergence)

	var cerr *dynamo.ConvergenceError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 10, cerr.Iterations)
	assert.InDelta(t, -9, cerr.X[0], 1e-6)
	assert.InDelta(t, math.Exp(-9), cerr.Residual, 1e-9)
}

func TestNewtonSingularJacobian(t *testing.T) {
	f := func(x dynamo.State) (dynamo.State, error) {
		return dynamo.State{x[0] - x[1], x[0] - x[1] + 1}, nil
	}

	_, err := Newton(context.Background(), f, dynamo.State{0, 0}, Options{})
	assert.ErrorIs(t, err, dynamo.ErrSingularJacobian)
}

func TestNewtonPropagatesEvaluationError(t *testing.T) {
	boom := errors.New("boom")
	f := func(x dynamo.State) (dynamo.State, error) { return nil, boom }

	_, err := Newton(context.Background(), f, dynamo.State{0}, Options{})
	assert.ErrorIs(t, err, boom)
}

func TestNewtonCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Newton(ctx, circleLine, dynamo.State{1, 0.5}, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewtonCustomJacobian(t *testing.T) {
	calls := 0
	jac := func(_ context.Context, x, _ dynamo.State) (*mat.Dense, error) {
		calls++
		return mat.NewDense(2, 2, []float64{2 * x[0], 2 * x[1], 1, -1}), nil
	}

	res, err := Newton(context.Background(), circleLine, dynamo.State{1, 0.5}, Options{Jacobian: jac})
	require.NoError(t, err)
	assert.Equal(t, res.Iterations, calls)
	assert.InDelta(t, math.Sqrt2, res.X[0], 1e-9)
}

func TestJacobiansOfLinearMap(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{
		1, 2, 0,
		-1, 0.5, 3,
		0, 4, -2,
	})
	f := func(x dynamo.State) (dynamo.State, error) {
		var y mat.VecDense
		y.MulVec(a, mat.NewVecDense(3, x.Clone()))
		return dynamo.State(y.RawVector().Data), nil
	}
	x := dynamo.State{0.3, -2, 10}
	fx, _ := f(x)

	central, err := CentralJacobian(f, x)
	require.NoError(t, err)
	forward, err := ForwardJacobian(context.Background(), withContext(f), x, fx, DefaultForwardStep)
	require.NoError(t, err)
	baseline, err := ForwardJacobian(context.Background(), withContext(f), x, nil, DefaultForwardStep)
	require.NoError(t, err)
	assert.True(t, mat.Equal(forward, baseline))

	assert.True(t, mat.EqualApprox(central, a, 1e-8))
	assert.True(t, mat.EqualApprox(forward, a, 1e-6))
}

func withContext(f Func) ContextFunc {
	return func(_ context.Context, x dynamo.State) (dynamo.State, error) { return f(x) }
}

func TestForwardJacobianStopsOnFailure(t *testing.T) {
	boom := errors.New("integration failed")
	f := func(ctx context.Context, x dynamo.State) (dynamo.State, error) {
		if x[1] != 0 {
			return nil, boom
		}
		return x.Clone(), ctx.Err()
	}
	_, err := ForwardJacobian(context.Background(), f, dynamo.State{0, 0, 0}, nil, DefaultForwardStep)
	assert.ErrorIs(t, err, boom)
}

func TestCentralJacobianNonlinear(t *testing.T) {
	x := dynamo.State{1.5, -0.5}
	jac, err := CentralJacobian(circleLine, x)
	require.NoError(t, err)

	want := mat.NewDense(2, 2, []float64{3, -1, 1, -1})
	assert.True(t, mat.EqualApprox(jac, want, 1e-8))
}

func TestEigenvalues(t *testing.T) {
	rot := mat.NewDense(2, 2, []float64{0, -1, 1, 0})
	vals, err := Eigenvalues(rot)
	require.NoError(t, err)
	require.Len(t, vals, 2)
	assert.InDelta(t, 1, math.Abs(imag(vals[0])), 1e-12)
	assert.InDelta(t, 0, imag(vals[0])+imag(vals[1]), 1e-12)
	assert.InDelta(t, 0, SpectralAbscissa(vals), 1e-12)
	assert.InDelta(t, 1, SpectralRadius(vals), 1e-12)

	diag := mat.NewDense(3, 3, []float64{-1, 0, 0, 0, -3, 0, 0, 0, 0.5})
	vals, err = Eigenvalues(diag)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, real(vals[0]), 1e-12)
	assert.InDelta(t, -3, real(vals[2]), 1e-12)
	assert.InDelta(t, 3, SpectralRadius(vals), 1e-12)

	_, err = Eigenvalues(mat.NewDense(2, 3, nil))
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}
