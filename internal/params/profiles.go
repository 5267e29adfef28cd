package params

import (
	"fmt"
	"sort"
)

// Profiles maps athlete variants to coefficient overrides on [Nominal].
var Profiles = map[string]map[string]float64{
	"nominal": {},
	"endurance": {
		"k_a": 4.0, "a_floor": 0.6, "a0": 0.55,
		"k_n": 1.5, "n0": 0.25,
		"tau_fa": 1.5,
	},
	"power": {
		"k_n": 3.5, "n_max": 1.2, "n0": 0.5,
		"mu_e": 1.0,
		"w_end": 0.6, "w_str": 1.2,
	},
	"overreached": {
		"fa0": 0.6, "fc0": 0.5, "s0": 0.6, "i0": 0.3,
		"kappa_i": 0.8,
	},
	"short-sleeper": {
		"kernel.q0": 0.75, "kernel.eta": 0.9,
		"beta_s": 2.0,
	},
}

// Profile returns the named variant of [Nominal].
func Profile(name string) (Set, error) {
	overrides, ok := Profiles[name]
	if !ok {
		return Set{}, fmt.Errorf("params: unknown profile %q (available: %v)", name, ListProfiles())
	}
	p, err := Nominal().With(overrides)
	if err != nil {
		return Set{}, fmt.Errorf("params: profile %q: %w", name, err)
	}
	return p, p.Validate()
}

func ListProfiles() []string {
	names := make([]string, 0, len(Profiles))
	for name := range Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
