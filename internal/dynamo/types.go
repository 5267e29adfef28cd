package dynamo

import (
	"context"
	"math"
)

// Indices of the readiness state vector z = (A, N, Fa, Fc, S, I).
const (
	IdxA = iota
	IdxN
	IdxFa
	IdxFc
	IdxS
	IdxI

	StateDim
)

// StateNames labels the state components in index order.
var StateNames = [StateDim]string{"A", "N", "Fa", "Fc", "S", "I"}

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// MaxAbs is the infinity norm, used for solver residuals.
func (s State) MaxAbs() float64 {
	m := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is a non-autonomous ODE right-hand side.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t, dt float64) State
}

// Advancer carries a state across [t0, t1], landing exactly on t1. It
// returns the final state and the number of step attempts it spent.
type Advancer interface {
	Integrator
	Advance(ctx context.Context, dyn System, x State, t0, t1 float64, cfg Config) (State, int, error)
}

// Config bounds integration. Times are in days. Fixed-step advancers use
// MaxStep as their step.
type Config struct {
	RelTol   float64
	AbsTol   float64
	InitStep float64
	MaxStep  float64
	MinStep  float64
	MaxSteps int
}

func DefaultConfig() Config {
	return Config{
		RelTol:   1e-6,
		AbsTol:   1e-6,
		InitStep: 1.0 / 1440,
		MaxStep:  1.0 / 48,
		MinStep:  1e-12,
		MaxSteps: 2_000_000,
	}
}
