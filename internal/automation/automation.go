package automation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/ergobox/internal/config"
	"github.com/san-kum/ergobox/internal/experiment"
	"github.com/san-kum/ergobox/internal/sim"
	"github.com/san-kum/ergobox/internal/storage"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string
	Description string
	Steps       []ScenarioStep
}

// ScenarioStep is a single run of a scenario. Config holds the defaults,
// or the named preset, overlaid with the keys set in the step.
type ScenarioStep struct {
	Preset string
	Save   bool
	Config *config.Config
}

type rawScenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Steps       []yaml.Node `yaml:"steps"`
}

type stepHeader struct {
	Model  string `yaml:"model"`
	Preset string `yaml:"preset"`
	Save   bool   `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var raw rawScenario
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if len(raw.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", raw.Name)
	}

	scenario := &Scenario{Name: raw.Name, Description: raw.Description}
	for i := range raw.Steps {
		node := &raw.Steps[i]

		var h stepHeader
		if err := node.Decode(&h); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		cfg := config.DefaultConfig()
		if h.Model != "" {
			cfg.Model = h.Model
		}
		if h.Preset != "" {
			cfg = config.GetPreset(cfg.Model, h.Preset)
			if cfg == nil {
				return nil, fmt.Errorf("step %d: unknown preset %s/%s", i+1, h.Model, h.Preset)
			}
		}
		if err := node.Decode(cfg); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}

		scenario.Steps = append(scenario.Steps, ScenarioStep{Preset: h.Preset, Save: h.Save, Config: cfg})
	}
	return scenario, nil
}

type StepResult struct {
	Config *config.Config
	Result *sim.Result
	// RunID is set when the step was saved.
	RunID string
}

// RunScenario executes all steps in order. Steps marked save are stored
// in store when it is non-nil.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg := step.Config
		logger.Info("scenario step", "step", i+1, "of", len(scenario.Steps), "model", cfg.Model, "preset", step.Preset)

		result, err := runConfig(ctx, cfg, logger)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		sr := StepResult{Config: cfg, Result: result}
		if step.Save && store != nil {
			sr.RunID, err = store.Save(metadata(cfg), result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

func metadata(cfg *config.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Model:     cfg.Model,
		Seed:      cfg.Seed,
		BoxL:      cfg.BoxL,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Particles: cfg.Particles,
		Mass:      cfg.Mass,
		Speed:     cfg.Speed,
	}
}

func runConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sim.Result, error) {
	box, err := cfg.Box()
	if err != nil {
		return nil, err
	}
	simCfg, err := cfg.SimConfig()
	if err != nil {
		return nil, err
	}

	registry := experiment.NewRegistry()
	exp := experiment.New(cfg.ExperimentConfig())
	if err := exp.Setup(registry, box, registry.DefaultMetrics(box, cfg.Grid), logger); err != nil {
		return nil, err
	}
	return exp.Run(ctx, simCfg)
}

// MonteCarloConfig repeats Base with seeds Base.Seed, Base.Seed+1, ...
type MonteCarloConfig struct {
	Base      *config.Config
	NumTrials int
}

// MonteCarloResult holds the outcome of one trial
type MonteCarloResult struct {
	TrialID int
	Seed    int64
	Metrics map[string]float64
	Skipped int
}

// RunMonteCarlo executes NumTrials independently seeded ensembles.
func RunMonteCarlo(ctx context.Context, mc *MonteCarloConfig, logger *slog.Logger) ([]MonteCarloResult, error) {
	if mc.NumTrials < 1 {
		return nil, fmt.Errorf("trials must be at least 1, got %d", mc.NumTrials)
	}
	results := make([]MonteCarloResult, 0, mc.NumTrials)

	for trial := 0; trial < mc.NumTrials; trial++ {
		cfg := *mc.Base
		cfg.Seed = mc.Base.Seed + int64(trial)
		cfg.RecordEvery = 0

		result, err := runConfig(ctx, &cfg, logger)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", trial, err)
		}

		results = append(results, MonteCarloResult{
			TrialID: trial,
			Seed:    cfg.Seed,
			Metrics: result.Metrics,
			Skipped: len(result.Skipped),
		})

		logger.Debug("monte carlo trial", "trial", trial+1, "of", mc.NumTrials, "seed", cfg.Seed)
	}

	return results, nil
}

// MonteCarloStats returns the mean and sample standard deviation of
// metric across trials.
func MonteCarloStats(results []MonteCarloResult, metric string) (mean, stddev float64) {
	var n int
	for _, r := range results {
		if v, ok := r.Metrics[metric]; ok {
			mean += v
			n++
		}
	}
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	mean /= float64(n)
	if n == 1 {
		return mean, 0
	}

	for _, r := range results {
		if v, ok := r.Metrics[metric]; ok {
			stddev += (v - mean) * (v - mean)
		}
	}
	return mean, math.Sqrt(stddev / float64(n-1))
}
