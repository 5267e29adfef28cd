package regime

import (
	"math"

	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/quad"
)

// Kernel is the bedtime-proximity memory B(t): training drive over the last
// k.HB hours weighted by exp(-elapsed/k.SigmaB), integrated in hours with
// k.Steps equal trapezoid subintervals. Fewer than 24 subintervals per 6 h
// starts aliasing against one-hour pulses.
func Kernel(r *Regime, k params.Kernel, t float64) float64 {
	if k.HB <= 0 {
		return 0
	}
	steps := k.Steps
	if steps < 1 {
		steps = params.DefaultKernelSteps
	}

	f := func(tau float64) float64 {
		drive := k.WE*r.Endurance(tau) + k.WH*r.Strength(tau) + k.WS*r.Speed(tau)
		if drive == 0 {
			return 0
		}
		return math.Exp(-(t-tau)*24/k.SigmaB) * drive
	}
	// Window length and step count are positive here, so no error path.
	v, _ := quad.Integral(f, t-k.HB/24, t, steps)
	return v * 24
}

// Efficiency is q(t) = q0 / (1 + eta*B(t)), always in (0, q0].
func Efficiency(r *Regime, k params.Kernel, t float64) float64 {
	return k.Q0 / (1 + k.Eta*Kernel(r, k, t))
}
