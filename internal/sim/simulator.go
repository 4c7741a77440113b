package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/ergobox/internal/dynamo"
)

// minChunk is the smallest particle range handed to one goroutine.
const minChunk = 64

type Simulator struct {
	box       dynamo.Box
	logger    *slog.Logger
	metrics   []Metric
	observers []Observer
}

func New(box dynamo.Box, logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulator{
		box:       box,
		logger:    logger,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Box() dynamo.Box { return s.box }

// Run advances every particle in place for cfg.Duration in fixed steps.
// Under the Abort policy the first particle error ends the run and is
// returned as a *dynamo.SimulationError together with the partial result.
func (s *Simulator) Run(ctx context.Context, particles []*dynamo.Particle, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	n := len(particles)
	steps := cfg.Steps()
	records := 0
	if cfg.RecordEvery > 0 {
		records = steps/cfg.RecordEvery + 1
	}
	result := &Result{
		Times:     make([]float64, 0, records),
		Positions: make([][]float64, 0, records),
		Metrics:   make(map[string]float64),
		Errors:    make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	active := make([]bool, n)
	for i := range active {
		active[i] = true
	}
	traces := make([]dynamo.Trace, n)
	errs := make([]error, n)

	s.logger.Debug("run started", "particles", n, "steps", steps, "dt", cfg.Dt, "box", s.box.L)

	if cfg.RecordEvery > 0 {
		s.record(result, particles, 0)
	}

	t := 0.0
	for step := 1; step <= steps; step++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		dynamo.ParallelFor(n, minChunk, cfg.Workers, func(start, end int) {
			for i := start; i < end; i++ {
				if !active[i] {
					traces[i], errs[i] = dynamo.Trace{}, nil
					continue
				}
				traces[i], errs[i] = s.box.Advance(particles[i], cfg.Dt)
			}
		})

		t = float64(step) * cfg.Dt

		for i, err := range errs {
			if err == nil {
				continue
			}
			simErr := &dynamo.SimulationError{Step: step, Time: t, Particle: i, Wrapped: err}
			result.Errors = append(result.Errors, simErr)
			if cfg.OnError == Abort {
				return result, simErr
			}
			active[i] = false
			result.Skipped = append(result.Skipped, i)
			s.logger.Warn("particle skipped", "particle", i, "step", step, "err", err)
		}

		for i := range traces {
			result.SubSteps += traces[i].SubSteps
			result.Reflections += traces[i].Reflections
		}

		frame := Frame{Step: step, Time: t, Particles: particles, Traces: traces, Active: active}
		for _, m := range s.metrics {
			m.Observe(frame)
		}
		for _, obs := range s.observers {
			obs.OnStep(frame)
		}

		result.StepsTaken++
		if cfg.RecordEvery > 0 && step%cfg.RecordEvery == 0 {
			s.record(result, particles, t)
		}
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug("run finished", "steps", result.StepsTaken, "reflections", result.Reflections, "skipped", len(result.Skipped))
	return result, nil
}

func (s *Simulator) record(result *Result, particles []*dynamo.Particle, t float64) {
	row := make([]float64, 0, 3*len(particles))
	for _, p := range particles {
		row = p.Position.Slice(row)
	}
	result.Times = append(result.Times, t)
	result.Positions = append(result.Positions, row)
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	if cfg.RecordEvery < 0 {
		return fmt.Errorf("record interval must be non-negative, got %d", cfg.RecordEvery)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", cfg.Workers)
	}
	return s.box.Validate()
}
