package metrics

import (
	"github.com/san-kum/readysim/internal/dynamo"
)

// DefaultRiskThreshold is the damage level above which a sample counts as
// at risk.
const DefaultRiskThreshold = 0.8

// RiskFraction is the fraction of samples whose component idx is strictly
// above threshold.
type RiskFraction struct {
	name       string
	idx        int
	threshold  float64
	violations int
	samples    int
}

func NewRiskFraction(idx int, threshold float64) *RiskFraction {
	return &RiskFraction{
		name:      "risk_fraction",
		idx:       idx,
		threshold: threshold,
	}
}

// NewDamageRisk watches the damage state I.
func NewDamageRisk(threshold float64) *RiskFraction {
	return NewRiskFraction(dynamo.IdxI, threshold)
}

func (r *RiskFraction) Name() string {
	return r.name
}

func (r *RiskFraction) Threshold() float64 { return r.threshold }

func (r *RiskFraction) Observe(x dynamo.State, t float64) {
	r.samples++
	if r.idx < len(x) && x[r.idx] > r.threshold {
		r.violations++
	}
}

func (r *RiskFraction) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return float64(r.violations) / float64(r.samples)
}

func (r *RiskFraction) Reset() {
	r.violations = 0
	r.samples = 0
}
