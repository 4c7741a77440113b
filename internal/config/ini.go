package config

import (
	"gopkg.in/gcfg.v1"
)

// iniFile mirrors Config as gcfg sections:
//
//	[box]
//	l = 1.0
//	[simulation]
//	model = gas
//	dt = 0.001
//	[ensemble]
//	particles = 100
type iniFile struct {
	Box struct {
		L           float64
		Epsilon     float64
		MaxSubSteps int
	}
	Simulation struct {
		Model       string
		Dt          float64
		Duration    float64
		Seed        int64
		Workers     int
		RecordEvery int
		OnError     string
	}
	Ensemble struct {
		Particles int
		Mass      float64
		Speed     float64
	}
	Metrics struct {
		Grid int
	}
}

func loadINI(path string) (*Config, error) {
	var f iniFile
	f.fill(DefaultConfig())
	if err := gcfg.ReadFileInto(&f, path); err != nil {
		return nil, err
	}
	return f.config(), nil
}

// ParseINI reads INI text on top of the defaults.
func ParseINI(text string) (*Config, error) {
	var f iniFile
	f.fill(DefaultConfig())
	if err := gcfg.ReadStringInto(&f, text); err != nil {
		return nil, err
	}
	return f.config(), nil
}

func (f *iniFile) fill(c *Config) {
	f.Box.L = c.BoxL
	f.Box.Epsilon = c.Epsilon
	f.Box.MaxSubSteps = c.MaxSubSteps
	f.Simulation.Model = c.Model
	f.Simulation.Dt = c.Dt
	f.Simulation.Duration = c.Duration
	f.Simulation.Seed = c.Seed
	f.Simulation.Workers = c.Workers
	f.Simulation.RecordEvery = c.RecordEvery
	f.Simulation.OnError = c.OnError
	f.Ensemble.Particles = c.Particles
	f.Ensemble.Mass = c.Mass
	f.Ensemble.Speed = c.Speed
	f.Metrics.Grid = c.Grid
}

func (f *iniFile) config() *Config {
	return &Config{
		Model:       f.Simulation.Model,
		BoxL:        f.Box.L,
		Dt:          f.Simulation.Dt,
		Duration:    f.Simulation.Duration,
		Seed:        f.Simulation.Seed,
		Particles:   f.Ensemble.Particles,
		Mass:        f.Ensemble.Mass,
		Speed:       f.Ensemble.Speed,
		Epsilon:     f.Box.Epsilon,
		MaxSubSteps: f.Box.MaxSubSteps,
		Workers:     f.Simulation.Workers,
		RecordEvery: f.Simulation.RecordEvery,
		OnError:     f.Simulation.OnError,
		Grid:        f.Metrics.Grid,
	}
}
