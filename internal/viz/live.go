package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/ergobox/internal/dynamo"
	"github.com/san-kum/ergobox/internal/metrics"
	"github.com/san-kum/ergobox/internal/sim"
)

const (
	canvasWidth   = 48
	canvasHeight  = 20
	trailLength   = 40
	maxTrails     = 6
	historyLength = 36
)

type TickMsg time.Time

type Options struct {
	Dt            float64
	StepsPerFrame int
	FrameRate     int
	Projection    Projection
	Grid          int
	Title         string
}

type point struct{ x, y int }

// Model is a Bubble Tea view of an ensemble advancing in its box.
type Model struct {
	box       dynamo.Box
	opts      Options
	initial   []*dynamo.Particle
	particles []*dynamo.Particle
	traces    []dynamo.Trace
	active    []bool

	t           float64
	steps       int
	reflections int
	history     []float64
	trails      [][]point

	canvas    *Canvas
	occupancy *metrics.Occupancy
	drift     *metrics.SpeedDrift

	running bool
	err     error
}

// NewModel copies particles so that reset can restore them.
func NewModel(box dynamo.Box, particles []*dynamo.Particle, opts Options) Model {
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	if opts.FrameRate < 1 {
		opts.FrameRate = 30
	}
	if opts.Grid < 1 {
		opts.Grid = 8
	}
	m := Model{
		box:       box,
		opts:      opts,
		initial:   cloneAll(particles),
		canvas:    NewCanvas(canvasWidth, canvasHeight),
		occupancy: metrics.NewOccupancy(box, opts.Grid),
		drift:     metrics.NewSpeedDrift(),
	}
	m.reset()
	return m
}

func cloneAll(particles []*dynamo.Particle) []*dynamo.Particle {
	out := make([]*dynamo.Particle, len(particles))
	for i, p := range particles {
		out[i] = p.Clone()
	}
	return out
}

func (m *Model) reset() {
	m.particles = cloneAll(m.initial)
	m.traces = make([]dynamo.Trace, len(m.particles))
	m.active = make([]bool, len(m.particles))
	for i := range m.active {
		m.active[i] = true
	}
	m.t, m.steps, m.reflections = 0, 0, 0
	m.history = m.history[:0]
	m.trails = make([][]point, min(maxTrails, len(m.particles)))
	m.occupancy.Reset()
	m.drift.Reset()
	m.running = true
	m.err = nil
}

func tick(frameRate int) tea.Cmd {
	return tea.Tick(time.Second/time.Duration(frameRate), func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func (m Model) Init() tea.Cmd {
	return tick(m.opts.FrameRate)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		case "p":
			m.opts.Projection = m.opts.Projection.Next()
			for i := range m.trails {
				m.trails[i] = m.trails[i][:0]
			}
		}
		return m, nil

	case TickMsg:
		if m.running {
			m.advanceFrame()
		}
		return m, tick(m.opts.FrameRate)
	}
	return m, nil
}

// advanceFrame runs StepsPerFrame steps and stops on the first error.
func (m *Model) advanceFrame() {
	frameReflections := 0
	for s := 0; s < m.opts.StepsPerFrame; s++ {
		for i, p := range m.particles {
			tr, err := m.box.Advance(p, m.opts.Dt)
			if err != nil {
				m.err = fmt.Errorf("particle %d: %w", i, err)
				m.running = false
				return
			}
			m.traces[i] = tr
			frameReflections += tr.Reflections
		}
		m.steps++
		m.t = float64(m.steps) * m.opts.Dt

		frame := sim.Frame{Step: m.steps, Time: m.t, Particles: m.particles, Traces: m.traces, Active: m.active}
		m.occupancy.Observe(frame)
		m.drift.Observe(frame)
	}

	m.reflections += frameReflections
	m.history = append(m.history, float64(frameReflections))
	if len(m.history) > historyLength {
		m.history = m.history[1:]
	}

	for i := range m.trails {
		x, y := m.canvas.toPixel(m.box, m.opts.Projection, m.particles[i].Position)
		m.trails[i] = append(m.trails[i], point{x, y})
		if len(m.trails[i]) > trailLength {
			m.trails[i] = m.trails[i][1:]
		}
	}
}

func (m Model) View() string {
	m.canvas.Clear()
	m.canvas.DrawFrame()
	for _, p := range m.particles {
		m.canvas.Plot(m.box, m.opts.Projection, p.Position)
	}
	for _, trail := range m.trails {
		for _, pt := range trail {
			m.canvas.Set(pt.x, pt.y)
		}
	}

	a, b := m.opts.Projection.Axes()
	canvas := panelStyle.Render(fmt.Sprintf("%s\n%s  (%s right, %s up)",
		strings.TrimRight(m.canvas.String(), "\n"), m.opts.Projection, a, b))

	return lipgloss.JoinHorizontal(lipgloss.Top, canvas, m.statsView()) + "\n" +
		helpStyle.Render("space pause • r reset • p projection • q quit")
}

func (m Model) statsView() string {
	status := runningStyle.Render("RUNNING")
	if !m.running {
		status = pausedStyle.Render("PAUSED")
	}
	if m.err != nil {
		status = errorStyle.Render("ERROR")
	}

	title := m.opts.Title
	if title == "" {
		title = "ergobox"
	}

	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "  " + status + "\n\n")
	b.WriteString(row("time", fmt.Sprintf("%.3f", m.t)))
	b.WriteString(row("steps", fmt.Sprintf("%d", m.steps)))
	b.WriteString(row("particles", fmt.Sprintf("%d", len(m.particles))))
	b.WriteString(row("box", fmt.Sprintf("%g", m.box.L)))
	b.WriteString(row("reflections", fmt.Sprintf("%d", m.reflections)))
	b.WriteString(row("speed drift", fmt.Sprintf("%.2e", m.drift.Value())))
	b.WriteString(row("chi2", fmt.Sprintf("%.4f", m.occupancy.Value())))
	b.WriteString("\n" + labelStyle.Render("coverage") + ProgressBar(m.occupancy.Coverage(), 20) + "\n")
	b.WriteString(labelStyle.Render("hits/frame") + Sparkline(m.history, 20) + "\n")
	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}
	return statsStyle.Render(b.String())
}

func (m Model) Steps() int    { return m.steps }
func (m Model) Err() error    { return m.err }
func (m Model) Running() bool { return m.running }

// Run starts the live view on the alternate screen.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
