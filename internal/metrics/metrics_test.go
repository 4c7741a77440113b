package metrics

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/san-kum/ergobox/internal/dynamo"
	"github.com/san-kum/ergobox/internal/sim"
)

func unitBox(t *testing.T) dynamo.Box {
	t.Helper()
	box, err := dynamo.NewBox(1.0)
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	return box
}

func frameAt(positions ...dynamo.Vec3) sim.Frame {
	particles := make([]*dynamo.Particle, len(positions))
	active := make([]bool, len(positions))
	for i, pos := range positions {
		particles[i] = &dynamo.Particle{Mass: 1, Position: pos}
		active[i] = true
	}
	return sim.Frame{Particles: particles, Active: active}
}

func TestOccupancyUniform(t *testing.T) {
	m := NewOccupancy(unitBox(t), 2)

	var positions []dynamo.Vec3
	for _, x := range []float64{0.25, 0.75} {
		for _, y := range []float64{0.25, 0.75} {
			for _, z := range []float64{0.25, 0.75} {
				positions = append(positions, dynamo.Vec3{X: x, Y: y, Z: z})
			}
		}
	}
	m.Observe(frameAt(positions...))

	if v := m.Value(); math.Abs(v) > 1e-12 {
		t.Errorf("expected chi2 0 for uniform visits, got %f", v)
	}
	if c := m.Coverage(); c != 1 {
		t.Errorf("expected full coverage, got %f", c)
	}
	for _, f := range m.Profile(dynamo.AxisZ) {
		if math.Abs(f-0.5) > 1e-12 {
			t.Errorf("expected flat profile, got %v", m.Profile(dynamo.AxisZ))
		}
	}
}

func TestOccupancyConcentrated(t *testing.T) {
	m := NewOccupancy(unitBox(t), 2)

	m.Observe(frameAt(dynamo.Vec3{X: 0.1, Y: 0.1, Z: 0.1}, dynamo.Vec3{X: 0.2, Y: 0.3, Z: 0.4}, dynamo.Vec3{}))

	if v := m.Value(); math.Abs(v-1) > 1e-12 {
		t.Errorf("expected chi2 1 for a single cell, got %f", v)
	}
	if c := m.Coverage(); c != 1.0/8 {
		t.Errorf("expected coverage 1/8, got %f", c)
	}

	// walls map into the last cell
	m.Reset()
	m.Observe(frameAt(dynamo.Vec3{X: 1, Y: 1, Z: 1}))
	if p := m.Profile(dynamo.AxisX); p[1] != 1 {
		t.Errorf("expected x=L in upper slab, got %v", p)
	}
}

func TestOccupancySkipsInactive(t *testing.T) {
	m := NewOccupancy(unitBox(t), 3)

	f := frameAt(dynamo.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, dynamo.Vec3{X: 0.1})
	f.Active[1] = false
	m.Observe(f)

	if m.Samples() != 1 {
		t.Errorf("expected 1 sample, got %d", m.Samples())
	}
}

func TestSpeedDrift(t *testing.T) {
	d := NewSpeedDrift()

	p := &dynamo.Particle{Mass: 1, Momentum: dynamo.Vec3{X: 3, Y: 4}}
	f := sim.Frame{Particles: []*dynamo.Particle{p}, Active: []bool{true}}

	d.Observe(f)
	p.Momentum = dynamo.Vec3{X: -4, Y: 3}
	d.Observe(f)
	if d.Value() != 0 {
		t.Errorf("expected zero drift for a rotation, got %f", d.Value())
	}

	p.Momentum = dynamo.Vec3{X: 6, Y: 8}
	d.Observe(f)
	if math.Abs(d.Value()-1) > 1e-12 {
		t.Errorf("expected drift 1, got %f", d.Value())
	}

	d.Reset()
	if d.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestPressureMatchesKineticTheory(t *testing.T) {
	box := unitBox(t)
	particles := []*dynamo.Particle{
		{Mass: 1, Position: dynamo.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, Momentum: dynamo.Vec3{X: 1}},
	}
	expected := IdealGasPressure(box, particles)

	s := sim.New(box, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p := NewPressure(box)
	drift := NewSpeedDrift()
	s.AddMetric(p)
	s.AddMetric(drift)

	result, err := s.Run(context.Background(), particles, sim.Config{Dt: 0.01, Duration: 10})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if math.Abs(expected-1.0/3) > 1e-12 {
		t.Errorf("expected ideal pressure 1/3, got %f", expected)
	}
	if got := result.Metrics["pressure"]; math.Abs(got-expected) > 1e-6 {
		t.Errorf("expected pressure %f, got %f", expected, got)
	}
	if got := result.Metrics["speed_drift"]; got != 0 {
		t.Errorf("expected no speed drift, got %g", got)
	}
}

func TestPressureSkipsInactive(t *testing.T) {
	box := unitBox(t)
	f := frameAt(box.Center(), box.Center())
	f.Time = 1
	f.Traces = make([]dynamo.Trace, 2)
	f.Traces[0].Impulse[dynamo.XMax] = 6
	f.Traces[1].Impulse[dynamo.YMin] = 100
	f.Active[1] = false

	p := NewPressure(box)
	p.Observe(f)
	if got := p.Value(); math.Abs(got-1) > 1e-12 {
		t.Errorf("expected pressure 1 from the active particle only, got %f", got)
	}
}

func TestTimeAverage(t *testing.T) {
	a := NewTimeAverage(unitBox(t))

	if a.Value() != 0 {
		t.Error("expected zero offset before samples")
	}

	a.Observe(frameAt(dynamo.Vec3{X: 0, Y: 0.5, Z: 0.5}, dynamo.Vec3{X: 1, Y: 0.5, Z: 0.5}))
	if v := a.Value(); math.Abs(v) > 1e-12 {
		t.Errorf("expected centred mean, got offset %f", v)
	}

	a.Observe(frameAt(dynamo.Vec3{X: 1, Y: 0.5, Z: 0.5}, dynamo.Vec3{X: 1, Y: 0.5, Z: 0.5}))
	if m := a.Mean(); math.Abs(m.X-0.75) > 1e-12 {
		t.Errorf("expected mean x 0.75, got %f", m.X)
	}
}
