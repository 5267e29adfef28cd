// Package params holds the coefficient bundle of the readiness model.
//
// A [Set] is a plain value: derive variants with [Set.With] and never mutate a
// set that an analysis is currently using.
package params

import (
	"fmt"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/readysim/internal/dynamo"
)

// Set is the full coefficient bundle. Rates are per day unless noted; the
// kernel horizon and decay time are in hours.
type Set struct {
	// Endurance capacity A.
	KA     float64 `yaml:"k_a" validate:"gte=0"`
	AMax   float64 `yaml:"a_max" validate:"gt=0"`
	AFloor float64 `yaml:"a_floor" validate:"gte=0"`
	TauA   float64 `yaml:"tau_a" validate:"gt=0"`
	DeltaA float64 `yaml:"delta_a" validate:"gte=0"`

	// Neuromuscular capacity N.
	KN     float64 `yaml:"k_n" validate:"gte=0"`
	NMax   float64 `yaml:"n_max" validate:"gt=0"`
	NFloor float64 `yaml:"n_floor" validate:"gte=0"`
	TauN   float64 `yaml:"tau_n" validate:"gt=0"`
	DeltaN float64 `yaml:"delta_n" validate:"gte=0"`

	// Gates.
	CS  float64 `yaml:"c_s" validate:"gte=0"`
	CC  float64 `yaml:"c_c" validate:"gte=0"`
	MuE float64 `yaml:"mu_e" validate:"gte=0"`
	Psi float64 `yaml:"psi" validate:"gte=0,lte=1"`

	// Acute fatigue Fa.
	AE    float64 `yaml:"a_e" validate:"gte=0"`
	AH    float64 `yaml:"a_h" validate:"gte=0"`
	AS    float64 `yaml:"a_s" validate:"gte=0"`
	TauFa float64 `yaml:"tau_fa" validate:"gt=0"`
	RFa   float64 `yaml:"r_fa" validate:"gte=0"`

	// Chronic fatigue Fc.
	CE    float64 `yaml:"c_e" validate:"gte=0"`
	CH    float64 `yaml:"c_h" validate:"gte=0"`
	CSk   float64 `yaml:"c_sk" validate:"gte=0"`
	TauFc float64 `yaml:"tau_fc" validate:"gt=0"`
	RFc   float64 `yaml:"r_fc" validate:"gte=0"`

	// Sleep debt S.
	AlphaW float64 `yaml:"alpha_w" validate:"gte=0"`
	AlphaX float64 `yaml:"alpha_x" validate:"gte=0"`
	AlphaL float64 `yaml:"alpha_l" validate:"gte=0"`
	BetaS  float64 `yaml:"beta_s" validate:"gte=0"`
	TauS   float64 `yaml:"tau_s" validate:"gt=0"`

	// Micro-damage I.
	KappaI float64 `yaml:"kappa_i" validate:"gte=0"`
	PhiA   float64 `yaml:"phi_a" validate:"gte=0"`
	PhiC   float64 `yaml:"phi_c" validate:"gte=0"`
	BetaI  float64 `yaml:"beta_i" validate:"gte=0"`
	NuI    float64 `yaml:"nu_i" validate:"gte=0"`

	Kernel Kernel `yaml:"kernel"`

	// Readiness weights.
	WEnd float64 `yaml:"w_end" validate:"gte=0"`
	WStr float64 `yaml:"w_str" validate:"gte=0"`
	LamA float64 `yaml:"lam_a" validate:"gte=0"`
	LamC float64 `yaml:"lam_c" validate:"gte=0"`
	LamS float64 `yaml:"lam_s" validate:"gte=0"`
	LamI float64 `yaml:"lam_i" validate:"gte=0"`

	// Initial state.
	A0  float64 `yaml:"a0" validate:"gte=0"`
	N0  float64 `yaml:"n0" validate:"gte=0"`
	Fa0 float64 `yaml:"fa0" validate:"gte=0"`
	Fc0 float64 `yaml:"fc0" validate:"gte=0"`
	S0  float64 `yaml:"s0" validate:"gte=0"`
	I0  float64 `yaml:"i0" validate:"gte=0"`
}

// Kernel parameterizes the bedtime-proximity kernel and sleep efficiency.
type Kernel struct {
	Q0     float64 `yaml:"q0" validate:"gt=0,lte=1"`
	Eta    float64 `yaml:"eta" validate:"gte=0"`
	WE     float64 `yaml:"w_e" validate:"gte=0"`
	WH     float64 `yaml:"w_h" validate:"gte=0"`
	WS     float64 `yaml:"w_s" validate:"gte=0"`
	SigmaB float64 `yaml:"sigma_b" validate:"gt=0"`
	HB     float64 `yaml:"h_b" validate:"gte=0"`
	// Steps is the number of equal quadrature subintervals over HB.
	Steps int `yaml:"steps" validate:"gte=1"`
}

// DefaultKernelSteps resolves a 6 h horizon at 7.5 min.
const DefaultKernelSteps = 48

// Nominal returns the default athlete.
func Nominal() Set {
	return Set{
		KA: 3.0, AMax: 1.0, AFloor: 0.5, TauA: 60, DeltaA: 0.2,
		KN: 2.5, NMax: 1.0, NFloor: 0.5, TauN: 45, DeltaN: 0.3,

		CS: 1.0, CC: 1.5, MuE: 0.5, Psi: 0.3,

		AE: 2.0, AH: 2.5, AS: 1.5, TauFa: 2.0, RFa: 3.0,
		CE: 0.3, CH: 0.4, CSk: 0.2, TauFc: 14, RFc: 1.0,

		AlphaW: 0.3, AlphaX: 0.5, AlphaL: 0.2, BetaS: 3.0, TauS: 10,

		KappaI: 0.5, PhiA: 1.0, PhiC: 2.0, BetaI: 1.0, NuI: 0.3,

		Kernel: Kernel{
			Q0: 0.9, Eta: 0.5,
			WE: 1.0, WH: 0.8, WS: 1.2,
			SigmaB: 3, HB: 6,
			Steps: DefaultKernelSteps,
		},

		WEnd: 1.0, WStr: 0.8, LamA: 0.6, LamC: 1.0, LamS: 0.3, LamI: 1.5,

		A0: 0.3, N0: 0.3, Fa0: 0.1, Fc0: 0.05, S0: 0.2, I0: 0.05,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the positivity and range invariants.
func (p Set) Validate() error {
	if err := structValidator().Struct(p); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	return nil
}

// Initial returns the initial state vector.
func (p Set) Initial() dynamo.State {
	return dynamo.State{p.A0, p.N0, p.Fa0, p.Fc0, p.S0, p.I0}
}

// WithInitial returns a copy whose initial condition is x.
func (p Set) WithInitial(x dynamo.State) Set {
	p.A0, p.N0, p.Fa0, p.Fc0, p.S0, p.I0 = x[dynamo.IdxA], x[dynamo.IdxN], x[dynamo.IdxFa], x[dynamo.IdxFc], x[dynamo.IdxS], x[dynamo.IdxI]
	return p
}

// With returns a copy of p with the named coefficients replaced. Keys are the
// yaml names; kernel fields use a "kernel." prefix (e.g. "kernel.eta").
func (p Set) With(overrides map[string]float64) (Set, error) {
	if len(overrides) == 0 {
		return p, nil
	}

	flat, err := p.Values()
	if err != nil {
		return Set{}, err
	}
	for k, v := range overrides {
		if _, ok := flat[k]; !ok {
			return Set{}, fmt.Errorf("params: unknown coefficient %q", k)
		}
		flat[k] = v
	}
	return fromValues(flat)
}

// Values flattens p into yaml-keyed scalars.
func (p Set) Values() (map[string]float64, error) {
	raw, err := yaml.Marshal(p)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}

	flat := make(map[string]float64, 56)
	for k, v := range tree {
		if sub, ok := v.(map[string]any); ok {
			for sk, sv := range sub {
				flat[k+"."+sk] = toFloat(sv)
			}
			continue
		}
		flat[k] = toFloat(v)
	}
	return flat, nil
}

// Keys lists every coefficient name accepted by [Set.With], sorted.
func Keys() []string {
	flat, _ := Nominal().Values()
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fromValues(flat map[string]float64) (Set, error) {
	tree := make(map[string]any, len(flat))
	kernel := make(map[string]any)
	for k, v := range flat {
		if len(k) > 7 && k[:7] == "kernel." {
			if k[7:] == "steps" {
				kernel[k[7:]] = int(v)
			} else {
				kernel[k[7:]] = v
			}
			continue
		}
		tree[k] = v
	}
	tree["kernel"] = kernel

	raw, err := yaml.Marshal(tree)
	if err != nil {
		return Set{}, err
	}
	var p Set
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return Set{}, err
	}
	return p, nil
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	}
	return 0
}
