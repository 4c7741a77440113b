package experiment

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/san-kum/ergobox/internal/dynamo"
	"github.com/san-kum/ergobox/internal/metrics"
	"github.com/san-kum/ergobox/internal/sim"
)

// Builder creates an initial ensemble inside box.
type Builder func(box dynamo.Box, cfg Config, rng *rand.Rand) ([]*dynamo.Particle, error)

type Registry struct {
	models map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{models: make(map[string]Builder)}

	r.models["single"] = buildSingle
	r.models["gas"] = buildGas
	r.models["beam"] = buildBeam
	r.models["corner"] = buildCorner

	return r
}

// Register adds or replaces a named initial distribution.
func (r *Registry) Register(name string, b Builder) { r.models[name] = b }

func (r *Registry) Build(name string, box dynamo.Box, cfg Config) ([]*dynamo.Particle, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s (available: %v)", name, r.ListModels())
	}
	if cfg.N < 1 {
		return nil, fmt.Errorf("particle count must be positive, got %d", cfg.N)
	}
	if !(cfg.Mass > 0) {
		return nil, dynamo.ErrInvalidMass
	}
	return fn(box, cfg, rand.New(rand.NewSource(cfg.Seed)))
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(box dynamo.Box, grid int) []sim.Metric {
	return []sim.Metric{
		metrics.NewOccupancy(box, grid),
		metrics.NewSpeedDrift(),
		metrics.NewPressure(box),
		metrics.NewTimeAverage(box),
	}
}

func newParticles(cfg Config, fn func(i int) (dynamo.Vec3, dynamo.Vec3)) ([]*dynamo.Particle, error) {
	particles := make([]*dynamo.Particle, cfg.N)
	for i := range particles {
		pos, dir := fn(i)
		p, err := dynamo.NewParticle(cfg.Mass, pos, dir.Scale(cfg.Mass*cfg.Speed))
		if err != nil {
			return nil, fmt.Errorf("particle %d: %w", i, err)
		}
		particles[i] = p
	}
	return particles, nil
}

func uniformPosition(box dynamo.Box, rng *rand.Rand) dynamo.Vec3 {
	return dynamo.Vec3{X: rng.Float64() * box.L, Y: rng.Float64() * box.L, Z: rng.Float64() * box.L}
}

// isotropic draws a unit vector uniformly on the sphere.
func isotropic(rng *rand.Rand) dynamo.Vec3 {
	for {
		v := dynamo.Vec3{X: rng.NormFloat64(), Y: rng.NormFloat64(), Z: rng.NormFloat64()}
		if n := v.Norm(); n > 1e-9 {
			return v.Scale(1 / n)
		}
	}
}

// buildSingle places every particle at the centre moving along +z.
func buildSingle(box dynamo.Box, cfg Config, _ *rand.Rand) ([]*dynamo.Particle, error) {
	return newParticles(cfg, func(int) (dynamo.Vec3, dynamo.Vec3) {
		return box.Center(), dynamo.Vec3{Z: 1}
	})
}

func buildGas(box dynamo.Box, cfg Config, rng *rand.Rand) ([]*dynamo.Particle, error) {
	return newParticles(cfg, func(int) (dynamo.Vec3, dynamo.Vec3) {
		return uniformPosition(box, rng), isotropic(rng)
	})
}

// buildBeam moves every particle along +x; y and z never change, so the
// ensemble cannot fill the box.
func buildBeam(box dynamo.Box, cfg Config, rng *rand.Rand) ([]*dynamo.Particle, error) {
	return newParticles(cfg, func(int) (dynamo.Vec3, dynamo.Vec3) {
		return uniformPosition(box, rng), dynamo.Vec3{X: 1}
	})
}

// buildCorner aims every particle from the centre at the far corner.
func buildCorner(box dynamo.Box, cfg Config, _ *rand.Rand) ([]*dynamo.Particle, error) {
	dir := dynamo.Vec3{X: 1, Y: 1, Z: 1}.Scale(1 / math.Sqrt(3))
	return newParticles(cfg, func(int) (dynamo.Vec3, dynamo.Vec3) {
		return box.Center(), dir
	})
}
