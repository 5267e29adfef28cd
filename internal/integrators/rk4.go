package integrators

import (
	"context"
	"math"

	"github.com/san-kum/readysim/internal/dynamo"
)

// RK4 is the classic fixed-step fourth-order method. It is kept as a
// cross-check for RK45 on the readiness model.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	k1 := dyn.Derive(x, t)
	copy(r.k1, k1)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	k2 := dyn.Derive(r.scratch, t+dt*0.5)
	copy(r.k2, k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	k3 := dyn.Derive(r.scratch, t+dt*0.5)
	copy(r.k3, k3)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	k4 := dyn.Derive(r.scratch, t+dt)
	copy(r.k4, k4)

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}

// Advance takes equal steps no longer than cfg.MaxStep so that the last one
// lands on t1.
func (r *RK4) Advance(ctx context.Context, dyn dynamo.System, x dynamo.State, t0, t1 float64, cfg dynamo.Config) (dynamo.State, int, error) {
	if len(x) != dyn.StateDim() {
		return nil, 0, dynamo.ErrDimensionMismatch
	}
	span := t1 - t0
	if span <= 0 {
		return x.Clone(), 0, nil
	}

	steps := int(math.Ceil(span/cfg.MaxStep - 1e-9))
	if steps < 1 {
		steps = 1
	}
	if steps > cfg.MaxSteps {
		return nil, 0, &dynamo.SimulationError{Step: 0, Time: t0, State: x, Wrapped: dynamo.ErrStepBudget}
	}
	dt := span / float64(steps)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return nil, i, &dynamo.SimulationError{Step: i, Time: t0 + float64(i)*dt, State: x, Wrapped: ctx.Err()}
		default:
		}
		x = r.Step(dyn, x, t0+float64(i)*dt, dt)
		if !x.IsValid() {
			return nil, i + 1, &dynamo.SimulationError{Step: i + 1, Time: t0 + float64(i+1)*dt, State: x, Wrapped: dynamo.ErrInvalidState}
		}
	}
	return x, steps, nil
}
