package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/readysim/internal/dynamo"
	"github.com/san-kum/readysim/internal/sim"
)

const (
	DefaultFrameInterval = 250 * time.Millisecond
	replayCanvasWidth    = 60
	replayCanvasHeight   = 10
)

type TickMsg time.Time

// Replay steps through a finished readout one day per tick.
type Replay struct {
	title    string
	out      *sim.Readout
	days     []int // sample index at the start of each day
	day      int
	playing  bool
	interval time.Duration
	bounds   Bounds
}

// NewReplay indexes the readout by day. An empty readout is rejected.
func NewReplay(title string, out *sim.Readout, interval time.Duration) (*Replay, error) {
	if out == nil || out.Len() == 0 {
		return nil, fmt.Errorf("%w: empty readout", dynamo.ErrDegenerateInput)
	}
	if interval <= 0 {
		interval = DefaultFrameInterval
	}

	t0 := out.Times[0]
	span := out.Times[out.Len()-1] - t0
	days := make([]int, 0, int(span)+1)
	i := 0
	for d := 0; float64(d) <= span+1e-9; d++ {
		for i < out.Len()-1 && out.Times[i] < t0+float64(d)-1e-9 {
			i++
		}
		days = append(days, i)
	}

	return &Replay{
		title:    title,
		out:      out,
		days:     days,
		playing:  true,
		interval: interval,
		bounds:   BoundsOf(out.Times, out.Readiness),
	}, nil
}

func (m *Replay) Day() int      { return m.day }
func (m *Replay) Days() int     { return len(m.days) }
func (m *Replay) Playing() bool { return m.playing }

// Index is the sample shown for the current day.
func (m *Replay) Index() int { return m.days[m.day] }

func (m *Replay) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Replay) Init() tea.Cmd {
	return m.tick()
}

func (m *Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "right", "l":
			m.seek(1)
		case "left", "h":
			m.seek(-1)
		case "r":
			m.day = 0
		}
	case TickMsg:
		if m.playing {
			if m.day == len(m.days)-1 {
				m.playing = false
			} else {
				m.day++
			}
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Replay) seek(dir int) {
	m.playing = false
	m.day = max(0, min(m.day+dir, len(m.days)-1))
}

func (m *Replay) View() string {
	idx := m.Index()
	state := m.out.States[idx]
	p := m.out.Readiness[idx]

	var s strings.Builder
	s.WriteString(Title.Render(strings.ToUpper(m.title)) + "\n")

	status := StatusRunning.Render("PLAYING")
	if !m.playing {
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(fmt.Sprintf("%s  day %d/%d  t=%.2f\n\n", status, m.day, len(m.days)-1, m.out.Times[idx]))

	canvas := NewCanvas(replayCanvasWidth, replayCanvasHeight)
	canvas.Polyline(m.out.Times[:idx+1], m.out.Readiness[:idx+1], m.bounds)
	s.WriteString(Panel.Render(canvas.String()) + "\n")

	frac := 0.0
	if span := m.bounds.YMax - m.bounds.YMin; span > MinSpan {
		frac = (p - m.bounds.YMin) / span
	}
	s.WriteString(MetricLabel.Render("readiness") + MetricValue.Render(fmt.Sprintf("%+.4f ", p)) + Gauge(frac, 30) + "\n")
	for i, name := range dynamo.StateNames {
		s.WriteString(MetricLabel.Render(name) + MetricValue.Render(fmt.Sprintf("%.4f", state[i])) + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("space pause • ←/→ day • r restart • q quit"))
	return s.String()
}
