package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/sim"
)

func sample() *sim.Readout {
	return &sim.Readout{
		Times:     []float64{0, 0.5, 1},
		Readiness: []float64{0.295, 0.31, -0.02},
		States: []dynamo.State{
			{0.3, 0.3, 0.1, 0.05, 0.2, 0.05},
			{0.31, 0.3, 0.2, 0.05, 0.1, 0.05},
			{0.32, 0.29, 0.4, 0.06, 0.1, 0.1},
		},
		Summary: sim.Summary{Peak: 0.31, TimeToPeak: 0.5, Threshold: 0.8},
		Metrics: map[string]float64{"peak": 0.31, "mean": 0.195, "risk_fraction": 0},
		Steps:   120,
	}
}

func TestSeriesIsHeaderless(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSeries(&buf, sample()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "0,0.295,0.3,0.3,0.1,0.05,0.2,0.05", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "1,-0.02,"))
}

func TestSeriesRoundTrip(t *testing.T) {
	out := sample()
	var buf bytes.Buffer
	require.NoError(t, WriteSeries(&buf, out))

	s, err := ReadSeries(&buf)
	require.NoError(t, err)
	assert.Equal(t, out.Times, s.Times)
	assert.Equal(t, out.Readiness, s.Readiness)
	assert.Equal(t, out.States, s.States)
	assert.Equal(t, 3, s.Readout().Len())
}

func TestReadSeriesRejectsGarbage(t *testing.T) {
	_, err := ReadSeries(strings.NewReader("0,abc\n"))
	assert.Error(t, err)

	_, err = ReadSeries(strings.NewReader("0\n"))
	assert.Error(t, err)

	s, err := ReadSeries(strings.NewReader("0,1\n0.5,2\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, s.Readiness)
	assert.Empty(t, s.States[0])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := Meta{Profile: "nominal", Regime: "single-am", Horizon: 1, Step: 0.5, Integrator: "rk45"}
	require.NoError(t, WriteJSON(&buf, meta, sample()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "nominal", got["profile"])
	assert.Equal(t, 120.0, got["solver_steps"])
	assert.Len(t, got["states"], 3)
	assert.Equal(t, []any{"A", "N", "Fa", "Fc", "S", "I"}, got["columns"])
	summary := got["summary"].(map[string]any)
	assert.Equal(t, 0.31, summary["peak"])
	assert.Equal(t, map[string]any{"peak": 0.31, "mean": 0.195, "risk_fraction": 0.0}, got["metrics"])
}

func TestSeriesToSVG(t *testing.T) {
	out := sample()
	svg, err := SeriesToSVG(out.Times, out.Readiness, 300, 100, "#00ff88")
	require.NoError(t, err)
	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, `stroke="#00ff88"`)
	assert.Contains(t, svg, "stroke-dasharray")

	_, err = SeriesToSVG([]float64{0}, []float64{1}, 10, 10, "red")
	assert.ErrorIs(t, err, dynamo.ErrDegenerateInput)
}
