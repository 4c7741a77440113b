package metrics

import (
	"github.com/san-kum/ergobox/internal/dynamo"
	"github.com/san-kum/ergobox/internal/sim"
)

// TimeAverage accumulates the time-and-ensemble average position. For an
// ergodic trajectory it converges on the box centre; Value is the
// distance from the centre in units of L.
type TimeAverage struct {
	name    string
	box     dynamo.Box
	sum     dynamo.Vec3
	samples int
}

func NewTimeAverage(box dynamo.Box) *TimeAverage {
	return &TimeAverage{name: "mean_offset", box: box}
}

func (a *TimeAverage) Name() string { return a.name }

func (a *TimeAverage) Observe(f sim.Frame) {
	for i, p := range f.Particles {
		if f.Active != nil && !f.Active[i] {
			continue
		}
		a.sum = a.sum.Add(p.Position)
		a.samples++
	}
}

// Mean returns the averaged position, or the centre before any sample.
func (a *TimeAverage) Mean() dynamo.Vec3 {
	if a.samples == 0 {
		return a.box.Center()
	}
	return a.sum.Scale(1 / float64(a.samples))
}

func (a *TimeAverage) Value() float64 {
	return a.Mean().Sub(a.box.Center()).Norm() / a.box.L
}

func (a *TimeAverage) Reset() {
	a.sum = dynamo.Vec3{}
	a.samples = 0
}
