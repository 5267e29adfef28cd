package regime

import (
	"fmt"
	"sort"
)

// Presets maps regime names to constructors.
var Presets = map[string]func() *Regime{
	"single-am":    SingleMorning,
	"two-a-day":    TwoADay,
	"bed-rest":     BedRest,
	"hard-easy":    HardEasy,
	"taper":        TaperBlock,
	"late-sleeper": LateSleeper,
	"napper":       Napper,
}

// Preset builds the named regime.
func Preset(name string) (*Regime, error) {
	build, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("regime: unknown preset %q (available: %v)", name, ListPresets())
	}
	return build(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func nightly(name string, bedtime, hours float64, naps []Nap, endurance, strength, speed Signal) *Regime {
	return &Regime{
		Name:       name,
		Endurance:  endurance,
		Strength:   strength,
		Speed:      speed,
		Sleep:      SleepIndicator(bedtime, hours, naps),
		Nutrition:  Constant(0.8),
		Stress:     Constant(0.1),
		Bedtime:    bedtime,
		SleepHours: hours,
		Naps:       naps,
	}
}

// SingleMorning is one 1 h endurance session at 07:00, sleep 23:00-07:00,
// nutrition 0.8 and stress 0.1.
func SingleMorning() *Regime {
	return nightly("single-am", 23, 8, nil, Daily(Pulse{Start: 7, Hours: 1, Amplitude: 1}), Zero, Zero)
}

// TwoADay adds an evening strength session and a short speed block.
func TwoADay() *Regime {
	return nightly("two-a-day", 22.5, 8.5, nil,
		Daily(Pulse{Start: 7, Hours: 1, Amplitude: 0.8}),
		Daily(Pulse{Start: 17, Hours: 1, Amplitude: 1}),
		Daily(Pulse{Start: 17.75, Hours: 0.25, Amplitude: 0.6}),
	)
}

// BedRest has no training and the athlete asleep around the clock.
func BedRest() *Regime {
	r := nightly("bed-rest", 0, 24, nil, Zero, Zero, Zero)
	r.Stress = Zero
	return r
}

// HardEasy alternates a long hard day with a short easy one.
func HardEasy() *Regime {
	hard := Daily(Pulse{Start: 7, Hours: 1.5, Amplitude: 1.2})
	easy := Daily(Pulse{Start: 7, Hours: 0.75, Amplitude: 0.5})
	lift := Daily(Pulse{Start: 16, Hours: 1, Amplitude: 1})
	return nightly("hard-easy", 23, 8, nil,
		Alternating(hard, easy),
		Alternating(lift, Zero),
		Zero,
	)
}

// TaperBlock halves the two-a-day load every week.
func TaperBlock() *Regime {
	base := TwoADay()
	r := nightly("taper", base.Bedtime, base.SleepHours, nil,
		Taper(base.Endurance, 0.5),
		Taper(base.Strength, 0.5),
		Taper(base.Speed, 0.5),
	)
	return r
}

// LateSleeper trains in the afternoon and sleeps 05:00-13:00.
func LateSleeper() *Regime {
	return nightly("late-sleeper", 5, 8, nil, Daily(Pulse{Start: 15, Hours: 1, Amplitude: 1}), Zero, Zero)
}

// Napper splits sleep into a short night and an early-afternoon nap.
func Napper() *Regime {
	return nightly("napper", 23.5, 6.5, []Nap{{Start: 13.5, Hours: 1}},
		Daily(Pulse{Start: 7, Hours: 1, Amplitude: 1}),
		Daily(Pulse{Start: 17, Hours: 0.75, Amplitude: 0.8}),
		Zero,
	)
}
