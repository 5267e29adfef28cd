package regime

// Nap is an additional daytime sleep window.
type Nap struct {
	Start float64 `yaml:"start"`
	Hours float64 `yaml:"hours"`
}

// SleepIndicator is 1 inside the nightly window [bedtime, bedtime+hours)
// (wrapping past midnight) or inside any nap, else 0.
func SleepIndicator(bedtime, hours float64, naps []Nap) Signal {
	ns := append([]Nap(nil), naps...)
	return func(t float64) float64 {
		_, h := Day(t)
		if inWindow(h, bedtime, hours) {
			return 1
		}
		for _, n := range ns {
			if inWindow(h, n.Start, n.Hours) {
				return 1
			}
		}
		return 0
	}
}
