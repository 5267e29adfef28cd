package export

import (
	"encoding/json"
	"io"

	"github.com/san-kum/readysim/internal/sim"
)

// Meta describes how a trajectory was produced.
type Meta struct {
	Profile    string  `json:"profile"`
	Regime     string  `json:"regime"`
	Horizon    float64 `json:"horizon"`
	Step       float64 `json:"step"`
	Integrator string  `json:"integrator"`
}

type Data struct {
	Meta
	Steps     int                `json:"solver_steps"`
	Summary   sim.Summary        `json:"summary"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
	Columns   []string           `json:"columns"`
	Times     []float64          `json:"times"`
	Readiness []float64          `json:"readiness"`
	States    [][]float64        `json:"states"`
}

func NewData(meta Meta, out *sim.Readout) Data {
	d := Data{
		Meta:      meta,
		Steps:     out.Steps,
		Summary:   out.Summary,
		Metrics:   out.Metrics,
		Columns:   SeriesColumns[2:],
		Times:     out.Times,
		Readiness: out.Readiness,
		States:    make([][]float64, len(out.States)),
	}
	for i, s := range out.States {
		d.States[i] = s
	}
	return d
}

// WriteJSON encodes the trajectory with indentation.
func WriteJSON(w io.Writer, meta Meta, out *sim.Readout) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewData(meta, out))
}
