package metrics

import (
	"math"

	"github.com/san-kum/ergobox/internal/sim"
)

// SpeedDrift tracks the largest relative change of any particle's
// momentum magnitude since its first observation. Elastic walls keep it
// at zero.
type SpeedDrift struct {
	name     string
	initial  []float64
	maxDrift float64
}

func NewSpeedDrift() *SpeedDrift {
	return &SpeedDrift{name: "speed_drift"}
}

func (d *SpeedDrift) Name() string { return d.name }

func (d *SpeedDrift) Observe(f sim.Frame) {
	if d.initial == nil {
		d.initial = make([]float64, len(f.Particles))
		for i, p := range f.Particles {
			d.initial[i] = p.Momentum.Norm()
		}
	}
	for i, p := range f.Particles {
		if i >= len(d.initial) || (f.Active != nil && !f.Active[i]) {
			continue
		}
		p0 := d.initial[i]
		if p0 == 0 {
			continue
		}
		drift := math.Abs(p.Momentum.Norm()-p0) / p0
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *SpeedDrift) Value() float64 { return d.maxDrift }

func (d *SpeedDrift) Reset() {
	d.initial = nil
	d.maxDrift = 0
}
