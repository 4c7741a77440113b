package viz

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/ergobox/internal/dynamo"
)

func unitBox(t *testing.T) dynamo.Box {
	t.Helper()
	box, err := dynamo.NewBox(1.0)
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	return box
}

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)

	if c.Grid[0][0] != rune(brailleBlank|0x1) {
		t.Errorf("unexpected cell 0: %U", c.Grid[0][0])
	}
	if c.Grid[0][1] != rune(brailleBlank|0x80) {
		t.Errorf("unexpected cell 1: %U", c.Grid[0][1])
	}

	c.Clear()
	if strings.Trim(c.String(), "⠀\n") != "" {
		t.Error("expected blank canvas after clear")
	}
}

func TestCanvasPlotCorners(t *testing.T) {
	box := unitBox(t)
	c := NewCanvas(4, 2)

	x, y := c.toPixel(box, ProjectXY, dynamo.Vec3{})
	if x != 0 || y != 7 {
		t.Errorf("origin mapped to (%d,%d), want (0,7)", x, y)
	}
	x, y = c.toPixel(box, ProjectXZ, dynamo.Vec3{X: 1, Y: 0, Z: 1})
	if x != 7 || y != 0 {
		t.Errorf("far corner mapped to (%d,%d), want (7,0)", x, y)
	}
}

func TestProjection(t *testing.T) {
	p := ProjectXY
	seen := []string{}
	for i := 0; i < 3; i++ {
		seen = append(seen, p.String())
		p = p.Next()
	}
	if strings.Join(seen, ",") != "xy,xz,yz" || p != ProjectXY {
		t.Errorf("unexpected projection cycle %v", seen)
	}

	if got, ok := ParseProjection("yz"); !ok || got != ProjectYZ {
		t.Errorf("ParseProjection(yz) = %v, %v", got, ok)
	}
	if _, ok := ParseProjection("zz"); ok {
		t.Error("expected zz to be rejected")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 3); got != "───" {
		t.Errorf("empty sparkline = %q", got)
	}
	if got := Sparkline([]float64{9, 0, 1, 2}, 3); got != "▁▄█" {
		t.Errorf("sparkline = %q", got)
	}
}

func newTestModel(t *testing.T) Model {
	box := unitBox(t)
	particles := []*dynamo.Particle{
		{Mass: 1, Position: dynamo.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, Momentum: dynamo.Vec3{Z: 2}},
		{Mass: 1, Position: dynamo.Vec3{X: 0.2, Y: 0.7, Z: 0.1}, Momentum: dynamo.Vec3{X: 1, Y: -1, Z: 0.5}},
	}
	return NewModel(box, particles, Options{Dt: 0.01, StepsPerFrame: 5, FrameRate: 30, Grid: 2})
}

func TestModelTickAdvances(t *testing.T) {
	m := newTestModel(t)

	var model tea.Model = m
	for i := 0; i < 20; i++ {
		var cmd tea.Cmd
		model, cmd = model.Update(TickMsg(time.Now()))
		if cmd == nil {
			t.Fatal("expected another tick")
		}
	}

	got := model.(Model)
	if got.Steps() != 100 {
		t.Errorf("expected 100 steps, got %d", got.Steps())
	}
	if got.Err() != nil {
		t.Errorf("unexpected error: %v", got.Err())
	}
	for _, p := range got.particles {
		if !got.box.Contains(p.Position) {
			t.Errorf("particle left the box: %v", p.Position)
		}
	}
	if !strings.Contains(got.View(), "RUNNING") {
		t.Error("expected running status in view")
	}
}

func TestModelKeys(t *testing.T) {
	m := newTestModel(t)

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	model, _ = model.Update(TickMsg(time.Now()))
	if model.(Model).Steps() != 0 {
		t.Error("expected paused model not to advance")
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeySpace})
	model, _ = model.Update(TickMsg(time.Now()))
	if model.(Model).Steps() != 5 {
		t.Errorf("expected 5 steps after resume, got %d", model.(Model).Steps())
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	if model.(Model).opts.Projection != ProjectXZ {
		t.Error("expected projection to cycle to xz")
	}

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	got := model.(Model)
	if got.Steps() != 0 || got.particles[0].Position != (dynamo.Vec3{X: 0.5, Y: 0.5, Z: 0.5}) {
		t.Error("expected reset to restore the initial ensemble")
	}

	_, cmd := got.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}

func TestModelStopsOnError(t *testing.T) {
	box := unitBox(t)
	m := NewModel(box, []*dynamo.Particle{{Mass: 0, Position: dynamo.Vec3{X: 0.5}}}, Options{Dt: 0.01})

	model, _ := m.Update(TickMsg(time.Now()))
	got := model.(Model)
	if got.Err() == nil || got.Running() {
		t.Fatal("expected the model to stop with an error")
	}
	if !strings.Contains(got.View(), "ERROR") {
		t.Error("expected error status in view")
	}
}

func TestPlotHelpers(t *testing.T) {
	if PlotSeries(nil, "empty") != "" {
		t.Error("expected empty plot for no data")
	}
	if !strings.Contains(PlotSeries([]float64{0, 1, 0.5}, "z0 vs time"), "z0 vs time") {
		t.Error("expected caption in plot")
	}
	if !strings.Contains(PlotProfile([]float64{0.2, 0.3, 0.5}, "x profile"), "x profile") {
		t.Error("expected caption in profile plot")
	}

	col := Column([][]float64{{1, 2, 3}, {4}}, 2)
	if col[0] != 3 || col[1] != 0 {
		t.Errorf("unexpected column %v", col)
	}

	out := RenderProjection(unitBox(t), [][]float64{{0.5, 0.5, 0.5}}, ProjectYZ, 10, 5)
	if !strings.Contains(out, "y right, z up") {
		t.Errorf("unexpected projection footer: %q", out)
	}
}
