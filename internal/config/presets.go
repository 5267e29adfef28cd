package config

import (
	"sort"

	"github.com/san-kum/readysim/internal/regime"
)

func ptr(v float64) *float64 { return &v }

// Presets are ready-made scenarios.
var Presets = map[string]*Config{
	"six-weeks": {
		Profile: "nominal", Regime: RegimeConfig{Preset: "single-am"},
		Horizon: 42, Step: 1.0 / 24,
	},
	"recovery": {
		Profile: "overreached", Regime: RegimeConfig{Preset: "bed-rest"},
		Horizon: 28, Step: 0.25,
	},
	"double-days": {
		Profile: "nominal", Regime: RegimeConfig{Preset: "two-a-day"},
		Horizon: 56, Step: 1.0 / 24,
	},
	"peak-taper": {
		Profile: "endurance", Regime: RegimeConfig{Preset: "taper"},
		Horizon: 28, Step: 1.0 / 24,
	},
	"night-owl": {
		Profile: "short-sleeper", Regime: RegimeConfig{Preset: "late-sleeper"},
		Horizon: 42, Step: 1.0 / 24,
	},
	"weekend-off": {
		Profile: "power",
		Regime: RegimeConfig{
			Name: "weekend-off",
			Sessions: Sessions{
				Endurance: nil,
				Strength:  []regime.Pulse{{Start: 16, Hours: 1.25, Amplitude: 1}},
				Speed:     []regime.Pulse{{Start: 17.25, Hours: 0.25, Amplitude: 0.8}},
			},
			RestDays:   []int{5, 6},
			Bedtime:    22.5,
			SleepHours: 8.5,
			Nutrition:  ptr(0.9),
			Stress:     ptr(0.2),
		},
		Horizon: 42, Step: 1.0 / 24,
	},
}

// GetPreset returns a copy of the named scenario over DefaultConfig, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Profile = p.Profile
	cfg.Regime = p.Regime
	cfg.Horizon = p.Horizon
	cfg.Step = p.Step
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
