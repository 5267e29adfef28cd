package analysis

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/params"
	"github.com/san-kum/readysim/internal/regime"
)

// SweepPoint is the steady week found for one parameter value.
type SweepPoint struct {
	Value          float64  `json:"value"`
	Envelope       Envelope `json:"envelope"`
	SpectralRadius float64  `json:"spectral_radius"`
	RiskFraction   float64  `json:"risk_fraction"`
}

// Sweep overrides parameter key with steps evenly spaced values in [lo, hi]
// and summarizes the steady week for each. The base set is not modified.
func Sweep(ctx context.Context, p params.Set, r *regime.Regime, key string, lo, hi float64, steps int, period float64, opts SteadyOptions) ([]SweepPoint, error) {
	if steps < 1 {
		return nil, fmt.Errorf("%w: %d sweep steps", dynamo.ErrDegenerateInput, steps)
	}
	stride := 0.0
	if steps > 1 {
		stride = (hi - lo) / float64(steps-1)
	}

	results := make([]SweepPoint, 0, steps)
	for i := 0; i < steps; i++ {
		v := lo + float64(i)*stride
		variant, err := p.With(map[string]float64{key: v})
		if err != nil {
			return nil, err
		}
		if err := variant.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", key, v, err)
		}

		week, err := SteadyWeeklySummary(ctx, variant, r, period, opts)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", key, v, err)
		}
		results = append(results, SweepPoint{
			Value:          v,
			Envelope:       week.Envelope,
			SpectralRadius: week.Floquet.SpectralRadius,
			RiskFraction:   week.RiskFraction,
		})
		log.Debug().Str("param", key).Float64("value", v).Float64("median", week.Envelope.Median).Msg("sweep point")
	}
	return results, nil
}

// SweepToASCII draws each point's readiness envelope as a vertical bar with
// the median marked.
func SweepToASCII(data []SweepPoint, width, height int) string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minVal, maxVal := data[0].Envelope.Min, data[0].Envelope.Max
	for _, p := range data {
		minVal = min(minVal, p.Envelope.Min)
		maxVal = max(maxVal, p.Envelope.Max)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	rowOf := func(v float64) int {
		return height - 1 - int((v-minVal)/(maxVal-minVal)*float64(height-1))
	}

	canvas := newCanvas(width, height)
	for i, p := range data {
		col := i * width / len(data)
		if col >= width {
			col = width - 1
		}
		top, bottom := rowOf(p.Envelope.Max), rowOf(p.Envelope.Min)
		for row := max(top, 0); row <= min(bottom, height-1); row++ {
			canvas[row][col] = '│'
		}
		if row := rowOf(p.Envelope.Median); row >= 0 && row < height {
			canvas[row][col] = '•'
		}
	}
	return canvasString(canvas)
}
