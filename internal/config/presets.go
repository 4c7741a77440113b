package config

import "sort"

var Presets = map[string]map[string]*Config{
	"single": {
		"bounce": {
			Model: "single", BoxL: 1, Dt: 0.01, Duration: 1, Particles: 1, Mass: 1, Speed: 2,
			RecordEvery: 1, Grid: 4,
		},
		"long": {
			Model: "single", BoxL: 1, Dt: 1e-5, Duration: 1000, Particles: 1, Mass: 1, Speed: 1,
			RecordEvery: 1000, Grid: 8,
		},
	},
	"gas": {
		"small": {
			Model: "gas", BoxL: 1, Dt: 1e-3, Duration: 10, Particles: 100, Mass: 1, Speed: 1,
			RecordEvery: 10, Grid: 8,
		},
		"dense": {
			Model: "gas", BoxL: 1, Dt: 1e-3, Duration: 50, Particles: 10000, Mass: 1, Speed: 1,
			RecordEvery: 0, Grid: 16,
		},
		"fast": {
			Model: "gas", BoxL: 1, Dt: 0.1, Duration: 100, Particles: 500, Mass: 1, Speed: 50,
			RecordEvery: 10, Grid: 8,
		},
	},
	"beam": {
		"slab": {
			Model: "beam", BoxL: 1, Dt: 1e-3, Duration: 20, Particles: 200, Mass: 1, Speed: 1,
			RecordEvery: 20, Grid: 8,
		},
	},
	"corner": {
		"triple": {
			Model: "corner", BoxL: 1, Dt: 0.01, Duration: 10, Particles: 1, Mass: 1, Speed: 1,
			RecordEvery: 1, Grid: 4,
		},
	},
}

// GetPreset returns a copy of the named preset with unset resolver and
// policy fields filled from the defaults.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	p, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	cfg := *p
	def := DefaultConfig()
	if cfg.Epsilon == 0 {
		cfg.Epsilon = def.Epsilon
	}
	if cfg.MaxSubSteps == 0 {
		cfg.MaxSubSteps = def.MaxSubSteps
	}
	if cfg.OnError == "" {
		cfg.OnError = def.OnError
	}
	return &cfg
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListModels() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
