// Package analysis locates and classifies the long-run behavior of the
// readiness model.
//
// Two views of the same weekly schedule are offered:
//
//   - [WeeklyAverages] and [Equilibrium] replace every input by its mean over
//     one period and study the resulting autonomous system: its equilibrium,
//     the Jacobian there and the eigenvalues that decide local stability.
//   - [PoincareMap], [PoincareFixedPoint], [FloquetMultipliers] and
//     [SteadyWeeklySummary] work with the full time-varying system and find
//     the state that repeats itself week after week.
//
// # Stability
//
// An equilibrium is stable when every eigenvalue has negative real part; a
// weekly cycle is stable when every Floquet multiplier lies inside the unit
// circle:
//
//	fl, err := analysis.FloquetMultipliers(ctx, z, p, r, 7, 0)
//	if err == nil && fl.Stable {
//	    // perturbations shrink by at least fl.SpectralRadius each week
//	}
//
// [Sweep] repeats the periodic analysis across a parameter range and
// [PhasePortrait] projects a trajectory onto two state components.
package analysis
