package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ergobox/internal/dynamo"
	"github.com/san-kum/ergobox/internal/experiment"
	"github.com/san-kum/ergobox/internal/sim"
)

const (
	DefaultBoxL        = 1.0
	DefaultDt          = 1e-3
	DefaultDuration    = 10.0
	DefaultParticles   = 100
	DefaultMass        = 1.0
	DefaultSpeed       = 1.0
	DefaultRecordEvery = 10
	DefaultGrid        = 8
)

type Config struct {
	Model       string  `yaml:"model"`
	BoxL        float64 `yaml:"box_l"`
	Dt          float64 `yaml:"dt"`
	Duration    float64 `yaml:"duration"`
	Seed        int64   `yaml:"seed"`
	Particles   int     `yaml:"particles"`
	Mass        float64 `yaml:"mass"`
	Speed       float64 `yaml:"speed"`
	Epsilon     float64 `yaml:"epsilon"`
	MaxSubSteps int     `yaml:"max_sub_steps"`
	Workers     int     `yaml:"workers"`
	RecordEvery int     `yaml:"record_every"`
	OnError     string  `yaml:"on_error"`
	Grid        int     `yaml:"grid"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       "gas",
		BoxL:        DefaultBoxL,
		Dt:          DefaultDt,
		Duration:    DefaultDuration,
		Particles:   DefaultParticles,
		Mass:        DefaultMass,
		Speed:       DefaultSpeed,
		Epsilon:     dynamo.DefaultEpsilon,
		MaxSubSteps: dynamo.DefaultMaxSubSteps,
		RecordEvery: DefaultRecordEvery,
		OnError:     "abort",
		Grid:        DefaultGrid,
	}
}

// Load reads a YAML file, or a git-config style INI file when the
// extension is .ini or .gcfg, on top of the defaults.
func Load(path string) (*Config, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".gcfg":
		return loadINI(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if _, err := c.Box(); err != nil {
		return fmt.Errorf("box: %w", err)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %g", c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("duration must be positive, got %g", c.Duration)
	}
	if c.Particles < 1 {
		return fmt.Errorf("particles must be positive, got %d", c.Particles)
	}
	if !(c.Mass > 0) {
		return fmt.Errorf("mass %g: %w", c.Mass, dynamo.ErrInvalidMass)
	}
	if c.Speed < 0 {
		return fmt.Errorf("speed must be non-negative, got %g", c.Speed)
	}
	if c.Grid < 1 {
		return fmt.Errorf("grid must be positive, got %d", c.Grid)
	}
	if _, err := sim.ParseErrorPolicy(c.OnError); err != nil {
		return err
	}
	return nil
}

func (c *Config) Box() (dynamo.Box, error) {
	b := dynamo.Box{L: c.BoxL, Epsilon: c.Epsilon, MaxSubSteps: c.MaxSubSteps}
	if err := b.Validate(); err != nil {
		return dynamo.Box{}, err
	}
	return b, nil
}

func (c *Config) SimConfig() (sim.Config, error) {
	policy, err := sim.ParseErrorPolicy(c.OnError)
	if err != nil {
		return sim.Config{}, err
	}
	return sim.Config{
		Dt:          c.Dt,
		Duration:    c.Duration,
		Workers:     c.Workers,
		RecordEvery: c.RecordEvery,
		OnError:     policy,
	}, nil
}

func (c *Config) ExperimentConfig() experiment.Config {
	return experiment.Config{
		Model: c.Model,
		N:     c.Particles,
		Mass:  c.Mass,
		Speed: c.Speed,
		Seed:  c.Seed,
	}
}
