package viz

import (
	"fmt"
	"math"

	"github.com/san-kum/readysim/internal/dynamo"
)

// MinSpan is the smallest range Normalize divides by. Flat series map to 0.
const MinSpan = 1e-9

// Normalize rescales series onto [0,1]. Non-finite samples are rejected.
func Normalize(series []float64) ([]float64, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: empty series", dynamo.ErrDegenerateInput)
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: sample %d is %v", dynamo.ErrDegenerateInput, i, v)
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	span := math.Max(hi-lo, MinSpan)
	out := make([]float64, len(series))
	for i, v := range series {
		out[i] = (v - lo) / span
	}
	return out, nil
}
