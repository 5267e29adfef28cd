package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/sim"
)

func readout() *sim.Readout {
	out := &sim.Readout{}
	for i := 0; i <= 6; i++ {
		t := 0.5 * float64(i)
		out.Times = append(out.Times, t)
		out.Readiness = append(out.Readiness, 0.1*t)
		out.States = append(out.States, dynamo.State{t, 0.3, 0.1, 0.05, 0.2, 0.05})
	}
	out.Summary = sim.Summary{Peak: 0.3, TimeToPeak: 3, Mean: 0.15, Threshold: 0.8}
	return out
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNormalize(t *testing.T) {
	got, err := Normalize([]float64{2, 4, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0.5}, got)

	flat, err := Normalize([]float64{5, 5})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, flat)

	_, err = Normalize(nil)
	assert.ErrorIs(t, err, dynamo.ErrDegenerateInput)
}

func TestPlotReadiness(t *testing.T) {
	chart, err := PlotReadiness(readout(), 40, 8)
	require.NoError(t, err)
	assert.Contains(t, chart, "readiness")
	assert.Contains(t, chart, "0.300")

	_, err = PlotReadiness(&sim.Readout{}, 40, 8)
	assert.ErrorIs(t, err, dynamo.ErrDegenerateInput)
}

func TestPlotState(t *testing.T) {
	chart, err := PlotState(readout(), 0, 40, 6)
	require.NoError(t, err)
	assert.Contains(t, chart, "A")

	_, err = PlotState(readout(), dynamo.StateDim, 40, 6)
	assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch)
}

func TestCanvasPolyline(t *testing.T) {
	c := NewCanvas(4, 2)
	blank := strings.Repeat(string(rune(brailleBlank)), 4) + "\n"
	assert.Equal(t, blank+blank, c.String())

	c.Polyline([]float64{0, 1}, []float64{0, 1}, Bounds{0, 1, 0, 1})
	// Bottom-left dot and top-right dot.
	assert.NotEqual(t, rune(brailleBlank), c.Grid[1][0])
	assert.NotEqual(t, rune(brailleBlank), c.Grid[0][3])

	c.Clear()
	assert.Equal(t, rune(brailleBlank), c.Grid[0][3])
}

func TestSparklineAndGauge(t *testing.T) {
	assert.Equal(t, "▁▄█", Sparkline([]float64{0, 0.5, 1}, 3))
	assert.Equal(t, "───", Sparkline(nil, 3))
	assert.Contains(t, Gauge(0.5, 10), strings.Repeat("█", 5)+strings.Repeat("░", 5))
	assert.Contains(t, RenderSummary(readout().Summary), "time to peak")
}

func TestReplayIndexesDays(t *testing.T) {
	m, err := NewReplay("nominal", readout(), time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Days())
	assert.Equal(t, 0, m.Index())
	assert.NotNil(t, m.Init())

	_, err = NewReplay("empty", &sim.Readout{}, 0)
	assert.ErrorIs(t, err, dynamo.ErrDegenerateInput)
}

func TestReplayPlaysToEnd(t *testing.T) {
	m, err := NewReplay("nominal", readout(), time.Millisecond)
	require.NoError(t, err)

	for range 10 {
		_, cmd := m.Update(TickMsg(time.Now()))
		assert.NotNil(t, cmd)
	}
	assert.Equal(t, 3, m.Day())
	assert.Equal(t, 6, m.Index())
	assert.False(t, m.Playing())
	assert.Contains(t, m.View(), "day 3/3")
}

func TestReplayKeys(t *testing.T) {
	m, err := NewReplay("nominal", readout(), time.Millisecond)
	require.NoError(t, err)

	m.Update(key("right"))
	assert.Equal(t, 1, m.Day())
	assert.False(t, m.Playing())
	assert.Equal(t, 2, m.Index())

	m.Update(key("left"))
	m.Update(key("left"))
	assert.Equal(t, 0, m.Day())

	m.Update(key(" "))
	assert.True(t, m.Playing())
	m.Update(TickMsg(time.Now()))
	m.Update(key("r"))
	assert.Equal(t, 0, m.Day())

	_, cmd := m.Update(key("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())

	view := m.View()
	assert.Contains(t, view, "NOMINAL")
	assert.Contains(t, view, "readiness")
}
