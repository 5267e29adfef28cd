// Package dynamo provides the core primitives shared by the readiness model,
// its integrators and the analysis layer.
//
// The package defines:
//
//   - [State]: vector representing the six-state physiology (or any ODE state)
//   - [System]: interface for non-autonomous ODEs (dX/dt = f(X, t))
//   - [Integrator] and [Advancer]: numerical stepping
//   - [Config]: tolerances and step limits for adaptive integration
//   - the error taxonomy used across the module
//
// # Example
//
//	m := physio.NewModel(params.Nominal(), regime.SingleMorning())
//	x, steps, err := integrators.NewRK45().Advance(ctx, m, x0, 0, 7, dynamo.DefaultConfig())
//
// # Thread Safety
//
// States are plain slices. Integrators carry scratch buffers and must not be
// shared across goroutines; allocate one per concurrent integration.
package dynamo
