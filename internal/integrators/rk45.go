package integrators

import (
	"context"
	"math"

	"github.com/san-kum/readysim/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is the Dormand-Prince 5(4) pair with mixed relative/absolute error
// control. It keeps the last step proposal between Advance calls, so use one
// instance per trajectory.
type RK45 struct {
	safety   float64
	minScale float64
	maxScale float64

	h float64
}

func NewRK45() *RK45 {
	return &RK45{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// Reset forgets the step-size history.
func (r *RK45) Reset() { r.h = 0 }

// Step takes one uncontrolled fifth-order step.
func (r *RK45) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	cfg := dynamo.DefaultConfig()
	xNew, _, _ := r.trial(dyn, x, dyn.Derive(x, t), t, dt, cfg.RelTol, cfg.AbsTol)
	return xNew
}

// StepAdaptive takes one trial step and reports whether it met the
// tolerances together with the proposed next step.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt float64, cfg dynamo.Config) (dynamo.State, float64, bool) {
	xNew, errNorm, _ := r.trial(dyn, x, dyn.Derive(x, t), t, dt, cfg.RelTol, cfg.AbsTol)
	return xNew, r.nextStep(dt, errNorm), errNorm <= 1
}

// trial computes one Dormand-Prince step from k1 = f(x, t). It returns the
// fifth-order solution, the scaled max-norm error estimate and f at the new
// point (first-same-as-last).
func (r *RK45) trial(dyn dynamo.System, x, k1 dynamo.State, t, dt, rtol, atol float64) (dynamo.State, float64, dynamo.State) {
	n := len(x)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := dyn.Derive(x2, t+a2*dt)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := dyn.Derive(x3, t+a3*dt)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := dyn.Derive(x4, t+a4*dt)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := dyn.Derive(x5, t+a5*dt)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := dyn.Derive(x6, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := dyn.Derive(xNew, t+dt)

	errMax := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := atol + rtol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		errMax = math.Max(errMax, math.Abs(errEst)/scale)
	}
	if !xNew.IsValid() {
		errMax = math.Inf(1)
	}

	return xNew, errMax, k7
}

func (r *RK45) nextStep(dt, errNorm float64) float64 {
	switch {
	case math.IsInf(errNorm, 0) || math.IsNaN(errNorm):
		return dt * r.minScale
	case errNorm > 1:
		return dt * math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.25))
	case errNorm > 0:
		return dt * math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
	default:
		return dt * r.maxScale
	}
}

// Advance integrates from t0 to exactly t1. Rejected attempts count against
// cfg.MaxSteps; the returned count includes them.
func (r *RK45) Advance(ctx context.Context, dyn dynamo.System, x dynamo.State, t0, t1 float64, cfg dynamo.Config) (dynamo.State, int, error) {
	if len(x) != dyn.StateDim() {
		return nil, 0, dynamo.ErrDimensionMismatch
	}

	h := r.h
	if h <= 0 {
		h = cfg.InitStep
	}
	x = x.Clone()
	t := t0
	k1 := dyn.Derive(x, t)
	attempts := 0
	eps := 1e-12 * math.Max(1, math.Abs(t1))

	for t1-t > eps {
		if attempts >= cfg.MaxSteps {
			return nil, attempts, &dynamo.SimulationError{Step: attempts, Time: t, State: x, Wrapped: dynamo.ErrStepBudget}
		}
		select {
		case <-ctx.Done():
			return nil, attempts, &dynamo.SimulationError{Step: attempts, Time: t, State: x, Wrapped: ctx.Err()}
		default:
		}

		h = math.Min(h, cfg.MaxStep)
		dt, last := h, false
		if t+dt >= t1-eps {
			dt, last = t1-t, true
		}

		xNew, errNorm, k7 := r.trial(dyn, x, k1, t, dt, cfg.RelTol, cfg.AbsTol)
		attempts++

		if errNorm <= 1 {
			x, k1 = xNew, k7
			if last {
				t = t1
			} else {
				t += dt
			}
			// A step shortened to land on t1 says nothing about the
			// achievable step size.
			if !last || dt >= h {
				h = r.nextStep(dt, errNorm)
			}
			continue
		}

		h = r.nextStep(dt, errNorm)
		if h < cfg.MinStep {
			return nil, attempts, &dynamo.SimulationError{Step: attempts, Time: t, State: x, Wrapped: dynamo.ErrStepTooSmall}
		}
	}

	r.h = h
	return x, attempts, nil
}
