package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ergobox/internal/dynamo"
	"github.com/san-kum/ergobox/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "gas", cfg.Model)
	assert.Greater(t, cfg.Dt, 0.0, "dt should be positive")
	assert.Greater(t, cfg.Duration, 0.0, "duration should be positive")
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero box", func(c *Config) { c.BoxL = 0 }},
		{"negative dt", func(c *Config) { c.Dt = -1 }},
		{"zero duration", func(c *Config) { c.Duration = 0 }},
		{"no particles", func(c *Config) { c.Particles = 0 }},
		{"zero mass", func(c *Config) { c.Mass = 0 }},
		{"negative speed", func(c *Config) { c.Speed = -1 }},
		{"zero grid", func(c *Config) { c.Grid = 0 }},
		{"bad policy", func(c *Config) { c.OnError = "retry" }},
		{"zero sub-step cap", func(c *Config) { c.MaxSubSteps = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.Mass = -2
	assert.ErrorIs(t, cfg.Validate(), dynamo.ErrInvalidMass)
}

func TestSaveLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Model = "beam"
	cfg.BoxL = 2.5
	cfg.Seed = 99
	cfg.OnError = "skip"
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadYAMLLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yml")
	require.NoError(t, os.WriteFile(path, []byte("model: corner\nbox_l: 3\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "corner", cfg.Model)
	assert.Equal(t, 3.0, cfg.BoxL)
	assert.Equal(t, DefaultDt, cfg.Dt)
	assert.Equal(t, dynamo.DefaultMaxSubSteps, cfg.MaxSubSteps)
}

func TestLoadINI(t *testing.T) {
	text := `
[box]
l = 2

[simulation]
model = single
dt = 0.005
onerror = skip
recordevery = 4

[ensemble]
particles = 3
speed = 7.5
`
	path := filepath.Join(t.TempDir(), "run.gcfg")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "single", cfg.Model)
	assert.Equal(t, 2.0, cfg.BoxL)
	assert.Equal(t, 0.005, cfg.Dt)
	assert.Equal(t, 3, cfg.Particles)
	assert.Equal(t, 7.5, cfg.Speed)
	assert.Equal(t, 4, cfg.RecordEvery)
	assert.Equal(t, DefaultMass, cfg.Mass)
	assert.Equal(t, DefaultDuration, cfg.Duration)

	simCfg, err := cfg.SimConfig()
	require.NoError(t, err)
	assert.Equal(t, sim.Skip, simCfg.OnError)
}

func TestParseINIRejectsUnknownSection(t *testing.T) {
	_, err := ParseINI("[plasma]\nt = 1\n")
	assert.Error(t, err)
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("single", "bounce")
	require.NotNil(t, cfg)
	assert.Equal(t, 2.0, cfg.Speed)
	assert.Equal(t, dynamo.DefaultMaxSubSteps, cfg.MaxSubSteps)
	assert.NoError(t, cfg.Validate())

	// presets are copies
	cfg.Speed = 100
	assert.Equal(t, 2.0, GetPreset("single", "bounce").Speed)
}

func TestGetPreset_NotFound(t *testing.T) {
	assert.Nil(t, GetPreset("single", "nonexistent"))
	assert.Nil(t, GetPreset("nonexistent", "small"))
}

func TestListPresets(t *testing.T) {
	assert.Equal(t, []string{"dense", "fast", "small"}, ListPresets("gas"))
	assert.Nil(t, ListPresets("nonexistent"))
	assert.Contains(t, ListModels(), "corner")
}

func TestAllPresetsValid(t *testing.T) {
	for _, model := range ListModels() {
		for _, name := range ListPresets(model) {
			assert.NoError(t, GetPreset(model, name).Validate(), "%s/%s", model, name)
		}
	}
}

func TestBoxAndExperimentConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BoxL = 4

	box, err := cfg.Box()
	require.NoError(t, err)
	assert.Equal(t, 4.0, box.L)
	assert.Equal(t, dynamo.DefaultEpsilon, box.Epsilon)

	exp := cfg.ExperimentConfig()
	assert.Equal(t, cfg.Particles, exp.N)
	assert.Equal(t, cfg.Model, exp.Model)
}
