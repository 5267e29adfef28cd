package physio

import (
	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/regime"
)

// Inputs is the exogenous drive at one instant.
type Inputs struct {
	UE, UH, US float64 // training drive per modality
	S          float64 // sleep indicator
	N          float64 // nutrition availability
	X          float64 // context stress
	SQ         float64 // s*q, effective nightly clearance multiplier
}

// Load is the combined training drive.
func (in Inputs) Load() float64 { return in.UE + in.UH + in.US }

// RecoveryGate throttles capacity growth under sleep debt or chronic fatigue.
func RecoveryGate(p *params.Set, z dynamo.State) float64 {
	return 1 / (1 + p.CS*z[dynamo.IdxS] + p.CC*z[dynamo.IdxFc])
}

// InterferenceGate throttles neuromuscular growth under concurrent endurance load.
func InterferenceGate(p *params.Set, uE float64) float64 {
	return 1 / (1 + p.MuE*uE)
}

// Derive evaluates dz/dt for state z under inputs in.
func Derive(p *params.Set, z dynamo.State, in Inputs) dynamo.State {
	a, n := z[dynamo.IdxA], z[dynamo.IdxN]
	fa, fc := z[dynamo.IdxFa], z[dynamo.IdxFc]
	s, i := z[dynamo.IdxS], z[dynamo.IdxI]

	grec := RecoveryGate(p, z)
	gint := InterferenceGate(p, in.UE)
	nut := 1 - p.Psi + p.Psi*in.N
	load := in.Load()

	dz := make(dynamo.State, dynamo.StateDim)
	dz[dynamo.IdxA] = p.KA*in.UE*nut*grec*(1-a/p.AMax) - (a-p.AFloor)/p.TauA - p.DeltaA*i*a
	dz[dynamo.IdxN] = p.KN*(in.UH+in.US)*nut*grec*gint*(1-n/p.NMax) - (n-p.NFloor)/p.TauN - p.DeltaN*i*n
	dz[dynamo.IdxFa] = p.AE*in.UE + p.AH*in.UH + p.AS*in.US - fa/p.TauFa*(1+p.RFa*in.SQ)
	dz[dynamo.IdxFc] = p.CE*in.UE + p.CH*in.UH + p.CSk*in.US - fc/p.TauFc*(1+p.RFc*in.SQ)
	dz[dynamo.IdxS] = (p.AlphaW+p.AlphaX*in.X)*(1-in.S) + p.AlphaL*load - p.BetaS*in.SQ*s - s/p.TauS
	dz[dynamo.IdxI] = p.KappaI*load*(1+p.PhiA*fa+p.PhiC*fc) - i*(p.BetaI*in.SQ+p.NuI*in.N)
	return dz
}

// Readiness is P = wEnd*A + wStr*N - lamA*Fa - lamC*Fc - lamS*S - lamI*I.
// It is a relative score and is not clamped.
func Readiness(p *params.Set, z dynamo.State) float64 {
	return p.WEnd*z[dynamo.IdxA] + p.WStr*z[dynamo.IdxN] -
		p.LamA*z[dynamo.IdxFa] - p.LamC*z[dynamo.IdxFc] -
		p.LamS*z[dynamo.IdxS] - p.LamI*z[dynamo.IdxI]
}

// Model is the full time-varying system driven by a regime.
type Model struct {
	P *params.Set
	R *regime.Regime
}

func NewModel(p params.Set, r *regime.Regime) *Model {
	return &Model{P: &p, R: r}
}

// Sample evaluates every exogenous input at t, including q(t) via the
// bedtime kernel. The kernel is only evaluated while asleep.
func (m *Model) Sample(t float64) Inputs {
	in := Inputs{
		UE: m.R.Endurance(t),
		UH: m.R.Strength(t),
		US: m.R.Speed(t),
		S:  m.R.Sleep(t),
		N:  m.R.Nutrition(t),
		X:  m.R.Stress(t),
	}
	if in.S != 0 {
		in.SQ = in.S * regime.Efficiency(m.R, m.P.Kernel, t)
	}
	return in
}

func (m *Model) Derive(x dynamo.State, t float64) dynamo.State {
	return Derive(m.P, x, m.Sample(t))
}

func (m *Model) StateDim() int { return dynamo.StateDim }

// Averaged is the constant-input surrogate: the same right-hand side with
// every input replaced by its weekly mean.
type Averaged struct {
	P  *params.Set
	In Inputs
}

func NewAveraged(p params.Set, in Inputs) *Averaged {
	return &Averaged{P: &p, In: in}
}

func (a *Averaged) Derive(x dynamo.State, _ float64) dynamo.State {
	return Derive(a.P, x, a.In)
}

func (a *Averaged) StateDim() int { return dynamo.StateDim }
