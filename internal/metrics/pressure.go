package metrics

import (
	"github.com/san-kum/ergobox/internal/dynamo"
	"github.com/san-kum/ergobox/internal/sim"
)

// Pressure is the time-averaged force per unit area on the walls,
// measured from the momentum the particles transfer on reflection.
type Pressure struct {
	name     string
	box      dynamo.Box
	impulse  float64
	elapsed  float64
	lastTime float64
}

func NewPressure(box dynamo.Box) *Pressure {
	return &Pressure{name: "pressure", box: box}
}

func (p *Pressure) Name() string { return p.name }

func (p *Pressure) Observe(f sim.Frame) {
	for i := range f.Traces {
		if f.Active != nil && !f.Active[i] {
			continue
		}
		p.impulse += f.Traces[i].TotalImpulse()
	}
	p.elapsed += f.Time - p.lastTime
	p.lastTime = f.Time
}

func (p *Pressure) Value() float64 {
	if p.elapsed <= 0 {
		return 0
	}
	return p.impulse / (p.box.WallArea() * p.elapsed)
}

func (p *Pressure) Reset() {
	p.impulse = 0
	p.elapsed = 0
	p.lastTime = 0
}

// IdealGasPressure is the kinetic-theory pressure N m <v^2> / 3V.
func IdealGasPressure(box dynamo.Box, particles []*dynamo.Particle) float64 {
	sum := 0.0
	for _, p := range particles {
		sum += 2 * p.KineticEnergy()
	}
	return sum / (3 * box.Volume())
}
