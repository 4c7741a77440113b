package sim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/san-kum/ergobox/internal/dynamo"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func unitBox(t *testing.T) dynamo.Box {
	t.Helper()
	box, err := dynamo.NewBox(1.0)
	if err != nil {
		t.Fatalf("box: %v", err)
	}
	return box
}

func bouncer() *dynamo.Particle {
	return &dynamo.Particle{Mass: 1, Position: dynamo.Vec3{X: 0.5, Y: 0.5, Z: 0.5}, Momentum: dynamo.Vec3{Z: 2}}
}

func TestSimulatorRun(t *testing.T) {
	sim := New(unitBox(t), testLogger())

	particles := []*dynamo.Particle{bouncer()}
	cfg := Config{Dt: 0.01, Duration: 1.0, RecordEvery: 10}

	result, err := sim.Run(context.Background(), particles, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}
	if len(result.Times) != 11 || len(result.Positions) != 11 {
		t.Errorf("expected 11 records, got %d times and %d positions", len(result.Times), len(result.Positions))
	}
	if result.Reflections != 2 {
		t.Errorf("expected 2 reflections, got %d", result.Reflections)
	}

	p := particles[0]
	if math.Abs(p.Position.Z-0.5) > 1e-9 || p.Momentum.Z != 2 {
		t.Errorf("expected particle back at z=0.5 moving +z, got %v %v", p.Position, p.Momentum)
	}

	last := result.Positions[len(result.Positions)-1]
	if len(last) != 3 || math.Abs(last[2]-0.5) > 1e-9 {
		t.Errorf("unexpected last record %v", last)
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(unitBox(t), testLogger())

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{Dt: 0, Duration: 1.0}},
		{"negative dt", Config{Dt: -0.1, Duration: 1.0}},
		{"zero duration", Config{Dt: 0.1, Duration: 0}},
		{"negative duration", Config{Dt: 0.1, Duration: -1.0}},
		{"negative record interval", Config{Dt: 0.1, Duration: 1.0, RecordEvery: -1}},
		{"negative workers", Config{Dt: 0.1, Duration: 1.0, Workers: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), []*dynamo.Particle{bouncer()}, tt.cfg)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "test" }
func (m *testMetric) Observe(f Frame) {
	m.count++
	m.sum += f.Particles[0].Position.Z
}
func (m *testMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(unitBox(t), testLogger())

	metric := &testMetric{}
	sim.AddMetric(metric)

	cfg := Config{Dt: 0.1, Duration: 1.0}
	result, err := sim.Run(context.Background(), []*dynamo.Particle{bouncer()}, cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 10 {
		t.Errorf("expected 10 observations, got %d", metric.count)
	}
	if len(result.Times) != 0 {
		t.Errorf("expected no records with RecordEvery=0, got %d", len(result.Times))
	}
}

func TestSimulatorAbortPolicy(t *testing.T) {
	sim := New(unitBox(t), testLogger())

	particles := []*dynamo.Particle{bouncer(), {Mass: 0, Position: dynamo.Vec3{X: 0.5}}}
	result, err := sim.Run(context.Background(), particles, Config{Dt: 0.1, Duration: 1.0})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var simErr *dynamo.SimulationError
	if !errors.As(err, &simErr) {
		t.Fatalf("expected SimulationError, got %T", err)
	}
	if simErr.Particle != 1 || simErr.Step != 1 {
		t.Errorf("unexpected error context: particle %d step %d", simErr.Particle, simErr.Step)
	}
	if !errors.Is(err, dynamo.ErrInvalidMass) {
		t.Errorf("expected ErrInvalidMass, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Errorf("expected partial result with 0 steps, got %+v", result)
	}
}

func TestSimulatorSkipPolicy(t *testing.T) {
	sim := New(unitBox(t), testLogger())

	particles := []*dynamo.Particle{bouncer(), {Mass: -1, Position: dynamo.Vec3{X: 0.5}}, bouncer()}
	result, err := sim.Run(context.Background(), particles, Config{Dt: 0.01, Duration: 1.0, OnError: Skip})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Skipped) != 1 || result.Skipped[0] != 1 {
		t.Errorf("expected particle 1 skipped, got %v", result.Skipped)
	}
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 recorded error, got %d", len(result.Errors))
	}
	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}
	if result.Reflections != 4 {
		t.Errorf("expected 4 reflections from the two live particles, got %d", result.Reflections)
	}
}

func TestSimulatorCanceled(t *testing.T) {
	sim := New(unitBox(t), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Run(ctx, []*dynamo.Particle{bouncer()}, Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParseErrorPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ErrorPolicy
		wantErr bool
	}{
		{"", Abort, false},
		{"abort", Abort, false},
		{"Skip", Skip, false},
		{" skip ", Skip, false},
		{"retry", Abort, true},
	}

	for _, tt := range tests {
		got, err := ParseErrorPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseErrorPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseErrorPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("DefaultConfig has invalid Dt")
	}
	if cfg.Duration <= 0 {
		t.Error("DefaultConfig has invalid Duration")
	}
	if cfg.Steps() != 10000 {
		t.Errorf("expected 10000 steps, got %d", cfg.Steps())
	}
}
