package metrics

import (
	"math"

	"github.com/san-kum/readysim/internal/dynamo"
)

// Peak tracks the maximum score and the first time it was reached.
type Peak struct {
	name  string
	score Score
	best  float64
	at    float64
	seen  bool
}

func NewPeak(score Score) *Peak {
	return &Peak{name: "peak", score: score, best: math.Inf(-1)}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dynamo.State, t float64) {
	v := p.score(x)
	if !p.seen || v > p.best {
		p.best, p.at, p.seen = v, t, true
	}
}

func (p *Peak) Value() float64 {
	if !p.seen {
		return 0
	}
	return p.best
}

// At is the time of the peak.
func (p *Peak) At() float64 { return p.at }

func (p *Peak) Reset() {
	p.best = math.Inf(-1)
	p.at = 0
	p.seen = false
}

// Mean is the sample mean of a score.
type Mean struct {
	name    string
	score   Score
	sum     float64
	samples int
}

func NewMean(score Score) *Mean {
	return &Mean{name: "mean", score: score}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(x dynamo.State, t float64) {
	m.sum += m.score(x)
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}
