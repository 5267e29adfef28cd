package analysis

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/physio"
	"github.com/san-kum/readysim/internal/quad"
	"github.com/san-kum/readysim/internal/regime"
)

// SamplesPerDay is the quadrature resolution of the weekly means.
const SamplesPerDay = 96

// DefaultPeriod is one week in days.
const DefaultPeriod = 7.0

// Means are the period averages of the exogenous inputs. SleepQ is the mean
// of s(t)*q(t), not the product of the separate means.
type Means struct {
	UE        float64 `json:"ue"`
	UH        float64 `json:"uh"`
	US        float64 `json:"us"`
	Sleep     float64 `json:"sleep"`
	Nutrition float64 `json:"nutrition"`
	Stress    float64 `json:"stress"`
	SleepQ    float64 `json:"sleep_q"`
}

// Inputs turns the means into a constant drive for physio.Averaged.
func (m Means) Inputs() physio.Inputs {
	return physio.Inputs{
		UE: m.UE, UH: m.UH, US: m.US,
		S: m.Sleep, N: m.Nutrition, X: m.Stress,
		SQ: m.SleepQ,
	}
}

// WeeklyAverages averages every input signal and s*q over [0, period].
func WeeklyAverages(ctx context.Context, p params.Set, r *regime.Regime, period float64) (Means, error) {
	if !(period > 0) || math.IsInf(period, 0) {
		return Means{}, fmt.Errorf("%w: averaging window must be positive, got %g", dynamo.ErrDegenerateInput, period)
	}
	if err := r.Validate(); err != nil {
		return Means{}, err
	}

	n := int(math.Ceil(period * SamplesPerDay))
	model := physio.NewModel(p, r)
	sleepQ := func(t float64) float64 { return model.Sample(t).SQ }

	var m Means
	targets := []struct {
		dst *float64
		f   func(float64) float64
	}{
		{&m.UE, r.Endurance},
		{&m.UH, r.Strength},
		{&m.US, r.Speed},
		{&m.Sleep, r.Sleep},
		{&m.Nutrition, r.Nutrition},
		{&m.Stress, r.Stress},
		{&m.SleepQ, sleepQ},
	}
	for _, tg := range targets {
		if err := ctx.Err(); err != nil {
			return Means{}, err
		}
		v, err := quad.Average(tg.f, 0, period, n)
		if err != nil {
			return Means{}, err
		}
		*tg.dst = v
	}
	return m, nil
}
