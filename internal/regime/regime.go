package regime

import (
	"errors"
	"fmt"
)

// Regime is the full exogenous schedule. Treat it as immutable once built.
type Regime struct {
	Name string

	Endurance Signal // uE
	Strength  Signal // uH
	Speed     Signal // uS
	Sleep     Signal // s
	Nutrition Signal // n
	Stress    Signal // x

	Bedtime    float64
	SleepHours float64
	Naps       []Nap
}

// Validate rejects regimes with missing signals or impossible sleep windows.
func (r *Regime) Validate() error {
	if r == nil {
		return errors.New("regime: nil regime")
	}
	signals := map[string]Signal{
		"endurance": r.Endurance, "strength": r.Strength, "speed": r.Speed,
		"sleep": r.Sleep, "nutrition": r.Nutrition, "stress": r.Stress,
	}
	for name, s := range signals {
		if s == nil {
			return fmt.Errorf("regime %q: missing %s signal", r.Name, name)
		}
	}
	if r.SleepHours <= 0 || r.SleepHours > 24 {
		return fmt.Errorf("regime %q: sleep duration %.2fh outside (0, 24]", r.Name, r.SleepHours)
	}
	if r.Bedtime < 0 || r.Bedtime >= 24 {
		return fmt.Errorf("regime %q: bedtime %.2f outside [0, 24)", r.Name, r.Bedtime)
	}
	return nil
}

// Load is the unweighted training drive uE + uH + uS.
func (r *Regime) Load(t float64) float64 {
	return r.Endurance(t) + r.Strength(t) + r.Speed(t)
}

// Shifted returns a copy with the nightly window moved by hours; naps and
// training are untouched.
func (r *Regime) Shifted(hours float64) *Regime {
	c := *r
	c.Name = fmt.Sprintf("%s%+gh", r.Name, hours)
	b := r.Bedtime + hours
	for b < 0 {
		b += 24
	}
	for b >= 24 {
		b -= 24
	}
	c.Bedtime = b
	c.Naps = append([]Nap(nil), r.Naps...)
	c.Sleep = SleepIndicator(c.Bedtime, c.SleepHours, c.Naps)
	return &c
}
