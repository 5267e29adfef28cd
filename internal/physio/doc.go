// Package physio is the readiness model: the six-state right-hand side, its
// recovery and interference gates, and the readiness aggregator.
//
// The same algebra backs two systems:
//
//   - [Model]: inputs sampled from a regime at time t (full dynamics)
//   - [Averaged]: inputs frozen at their weekly means (stationary surrogate)
//
// State layout is z = (A, N, Fa, Fc, S, I), see the dynamo index constants.
package physio
