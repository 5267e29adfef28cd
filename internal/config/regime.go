package config

import (
	"fmt"

	"github.com/san-kum/readysim/internal/regime"
)

// Build turns the description into a regime.
func (rc RegimeConfig) Build() (*regime.Regime, error) {
	if rc.Preset == "" && rc.SleepHours == 0 {
		rc.Preset = DefaultRegime
	}
	if rc.Preset != "" {
		return regime.Preset(rc.Preset)
	}

	endurance := regime.Daily(rc.Sessions.Endurance...)
	strength := regime.Daily(rc.Sessions.Strength...)
	speed := regime.Daily(rc.Sessions.Speed...)

	switch rc.Pattern {
	case "":
	case "alternating":
		endurance = regime.Alternating(endurance, regime.Daily(rc.Easy.Endurance...))
		strength = regime.Alternating(strength, regime.Daily(rc.Easy.Strength...))
		speed = regime.Alternating(speed, regime.Daily(rc.Easy.Speed...))
	case "taper":
		ratio := rc.TaperRatio
		if ratio == 0 {
			ratio = 0.5
		}
		endurance = regime.Taper(endurance, ratio)
		strength = regime.Taper(strength, ratio)
		speed = regime.Taper(speed, ratio)
	default:
		return nil, fmt.Errorf("regime: unknown pattern %q", rc.Pattern)
	}

	if len(rc.RestDays) > 0 {
		endurance = withRest(endurance, rc.RestDays)
		strength = withRest(strength, rc.RestDays)
		speed = withRest(speed, rc.RestDays)
	}

	nutrition, stress := DefaultNutrition, DefaultStress
	if rc.Nutrition != nil {
		nutrition = *rc.Nutrition
	}
	if rc.Stress != nil {
		stress = *rc.Stress
	}

	name := rc.Name
	if name == "" {
		name = "custom"
	}
	r := &regime.Regime{
		Name:       name,
		Endurance:  endurance,
		Strength:   strength,
		Speed:      speed,
		Sleep:      regime.SleepIndicator(rc.Bedtime, rc.SleepHours, rc.Naps),
		Nutrition:  regime.Constant(nutrition),
		Stress:     regime.Constant(stress),
		Bedtime:    rc.Bedtime,
		SleepHours: rc.SleepHours,
		Naps:       append([]regime.Nap(nil), rc.Naps...),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func withRest(s regime.Signal, rest []int) regime.Signal {
	var week [7]regime.Signal
	for i := range week {
		week[i] = s
	}
	for _, d := range rest {
		week[d] = nil
	}
	return regime.Weekly(week)
}
