package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/ergobox/internal/dynamo"
	"github.com/san-kum/ergobox/internal/sim"
)

type Config struct {
	Model string
	N     int
	Mass  float64
	// Speed is the initial speed |v| of every particle.
	Speed float64
	Seed  int64
}

type Experiment struct {
	cfg       Config
	simulator *sim.Simulator
	particles []*dynamo.Particle
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the ensemble from the registry and attaches metrics.
func (e *Experiment) Setup(registry *Registry, box dynamo.Box, metrics []sim.Metric, logger *slog.Logger) error {
	particles, err := registry.Build(e.cfg.Model, box, e.cfg)
	if err != nil {
		return err
	}
	e.particles = particles
	e.simulator = sim.New(box, logger)
	for _, m := range metrics {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context, cfg sim.Config) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.particles, cfg)
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Particles() []*dynamo.Particle { return e.particles }
