package dynamo

import "math"

// Particle is a free point particle. Velocity is always derived from
// Momentum and Mass.
type Particle struct {
	Mass     float64
	Position Vec3
	Momentum Vec3
}

// NewParticle returns a particle after checking mass and vector values.
func NewParticle(mass float64, position, momentum Vec3) (*Particle, error) {
	p := &Particle{Mass: mass, Position: position, Momentum: momentum}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate reports ErrInvalidMass or ErrInvalidState.
func (p *Particle) Validate() error {
	if !(p.Mass > 0) || math.IsInf(p.Mass, 0) {
		return ErrInvalidMass
	}
	if !p.Position.IsFinite() || !p.Momentum.IsFinite() {
		return ErrInvalidState
	}
	return nil
}

func (p *Particle) Velocity() Vec3 { return p.Momentum.Scale(1 / p.Mass) }

func (p *Particle) Speed() float64 { return p.Momentum.Norm() / p.Mass }

func (p *Particle) KineticEnergy() float64 {
	return p.Momentum.Dot(p.Momentum) / (2 * p.Mass)
}

// Clone returns an independent copy.
func (p *Particle) Clone() *Particle {
	c := *p
	return &c
}
