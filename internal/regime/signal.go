// Package regime builds the exogenous drive of the readiness model: training
// load per modality, the sleep/nap indicator, nutrition and context stress.
//
// Every signal is a pure function of time in days. Daily patterns key off the
// wall-clock hour, multi-day patterns off the integer day index, so a regime
// carries no hidden schedule state.
package regime

import "math"

// Signal is an exogenous input as a function of time in days.
type Signal func(t float64) float64

// Zero is the identically zero signal.
func Zero(float64) float64 { return 0 }

// Constant returns a signal fixed at v.
func Constant(v float64) Signal {
	return func(float64) float64 { return v }
}

// hourResolution is the clock grain in hours. Hours are snapped to it so a
// time that sits on a window edge in exact arithmetic tests as on the edge.
const hourResolution = 1e-9

func snapHour(h float64) float64 {
	return math.Round(h/hourResolution) * hourResolution
}

// Day splits t into its integer day index and hour of day in [0, 24).
func Day(t float64) (int, float64) {
	d := math.Floor(t)
	h := snapHour((t - d) * 24)
	if h >= 24 {
		h = 0
		d++
	}
	return int(d), h
}

// Pulse is a rectangular session: Amplitude over [Start, Start+Hours) in
// hour-of-day, repeating every day. Sessions may cross midnight.
type Pulse struct {
	Start     float64 `yaml:"start"`
	Hours     float64 `yaml:"hours"`
	Amplitude float64 `yaml:"amplitude"`
}

// Active reports whether hour-of-day h falls inside the session.
func (p Pulse) Active(h float64) bool {
	return inWindow(h, p.Start, p.Hours)
}

// inWindow tests h against the half-open window [start, start+hours) on a
// 24 h clock.
func inWindow(h, start, hours float64) bool {
	if hours <= 0 {
		return false
	}
	if hours >= 24 {
		return true
	}
	d := snapHour(math.Mod(h-start, 24))
	if d < 0 {
		d += 24
	}
	if d >= 24 {
		d -= 24
	}
	return d < hours
}

// Daily sums the active pulses on every calendar day.
func Daily(pulses ...Pulse) Signal {
	ps := append([]Pulse(nil), pulses...)
	return func(t float64) float64 {
		_, h := Day(t)
		v := 0.0
		for _, p := range ps {
			if p.Active(h) {
				v += p.Amplitude
			}
		}
		return v
	}
}

// Alternating uses hard on even days and easy on odd days.
func Alternating(hard, easy Signal) Signal {
	return func(t float64) float64 {
		d, _ := Day(t)
		if d%2 == 0 {
			return hard(t)
		}
		return easy(t)
	}
}

// Weekly picks the signal for day mod 7; a nil entry is a rest day.
func Weekly(days [7]Signal) Signal {
	return func(t float64) float64 {
		d, _ := Day(t)
		idx := ((d % 7) + 7) % 7
		if days[idx] == nil {
			return 0
		}
		return days[idx](t)
	}
}

// Taper scales base by ratio^week with week = floor(day/7). Times before
// zero belong to week 0. A ratio of 0.5 halves the load every 7 days.
func Taper(base Signal, ratio float64) Signal {
	return func(t float64) float64 {
		d, _ := Day(t)
		week := 0
		if d > 0 {
			week = d / 7
		}
		return base(t) * math.Pow(ratio, float64(week))
	}
}

// Sum adds signals pointwise.
func Sum(signals ...Signal) Signal {
	ss := append([]Signal(nil), signals...)
	return func(t float64) float64 {
		v := 0.0
		for _, s := range ss {
			v += s(t)
		}
		return v
	}
}
