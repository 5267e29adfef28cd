package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors shared by integrators, root finders and analyzers.
var (
	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrStepBudget indicates the integrator exhausted its step budget.
	ErrStepBudget = errors.New("dynamo: integration step budget exhausted")

	// ErrStepTooSmall indicates adaptive timestep became too small to meet tolerances.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrNoConvergence indicates a root finder ran out of iterations.
	ErrNoConvergence = errors.New("dynamo: root finder did not converge")

	// ErrSingularJacobian indicates a Newton step could not be solved.
	ErrSingularJacobian = errors.New("dynamo: singular or ill-conditioned jacobian")

	// ErrDegenerateInput indicates an empty window or an empty series.
	ErrDegenerateInput = errors.New("dynamo: degenerate input")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")
)

// SimulationError wraps an integration failure with the solver position.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// ConvergenceError reports the last iterate of a failed root solve.
type ConvergenceError struct {
	Iterations int
	X          State
	Residual   float64
	Wrapped    error
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%v after %d iterations (residual %.3e)", e.Wrapped, e.Iterations, e.Residual)
}

func (e *ConvergenceError) Unwrap() error {
	return e.Wrapped
}
