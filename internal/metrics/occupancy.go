package metrics

import (
	"github.com/san-kum/ergobox/internal/dynamo"
	"github.com/san-kum/ergobox/internal/sim"
)

// Occupancy histograms particle visits over a grid^3 lattice of cells.
// Value is the chi-square distance from the uniform distribution,
// normalized to [0, 1]: 0 when every cell is visited equally, 1 when all
// visits fall in a single cell.
type Occupancy struct {
	name    string
	box     dynamo.Box
	grid    int
	counts  []int
	samples int
}

func NewOccupancy(box dynamo.Box, grid int) *Occupancy {
	if grid < 1 {
		grid = 1
	}
	return &Occupancy{
		name:   "occupancy_chi2",
		box:    box,
		grid:   grid,
		counts: make([]int, grid*grid*grid),
	}
}

func (o *Occupancy) Name() string { return o.name }

func (o *Occupancy) Observe(f sim.Frame) {
	for i, p := range f.Particles {
		if f.Active != nil && !f.Active[i] {
			continue
		}
		o.counts[o.cellIndex(p.Position)]++
		o.samples++
	}
}

func (o *Occupancy) cellOf(x float64) int {
	c := int(x / o.box.L * float64(o.grid))
	if c < 0 {
		return 0
	}
	if c >= o.grid {
		return o.grid - 1
	}
	return c
}

func (o *Occupancy) cellIndex(p dynamo.Vec3) int {
	return (o.cellOf(p.X)*o.grid+o.cellOf(p.Y))*o.grid + o.cellOf(p.Z)
}

func (o *Occupancy) Value() float64 {
	cells := len(o.counts)
	if o.samples == 0 || cells == 1 {
		return 0
	}
	expected := float64(o.samples) / float64(cells)
	chi2 := 0.0
	for _, c := range o.counts {
		d := float64(c) - expected
		chi2 += d * d / expected
	}
	return chi2 / (float64(o.samples) * float64(cells-1))
}

func (o *Occupancy) Reset() {
	for i := range o.counts {
		o.counts[i] = 0
	}
	o.samples = 0
}

// Coverage is the fraction of cells visited at least once.
func (o *Occupancy) Coverage() float64 {
	visited := 0
	for _, c := range o.counts {
		if c > 0 {
			visited++
		}
	}
	return float64(visited) / float64(len(o.counts))
}

// Profile returns the visit fraction per slab along axis a.
func (o *Occupancy) Profile(a dynamo.Axis) []float64 {
	profile := make([]float64, o.grid)
	if o.samples == 0 {
		return profile
	}
	for ix := 0; ix < o.grid; ix++ {
		for iy := 0; iy < o.grid; iy++ {
			for iz := 0; iz < o.grid; iz++ {
				c := o.counts[(ix*o.grid+iy)*o.grid+iz]
				switch a {
				case dynamo.AxisX:
					profile[ix] += float64(c)
				case dynamo.AxisY:
					profile[iy] += float64(c)
				default:
					profile[iz] += float64(c)
				}
			}
		}
	}
	for i := range profile {
		profile[i] /= float64(o.samples)
	}
	return profile
}

func (o *Occupancy) Grid() int    { return o.grid }
func (o *Occupancy) Samples() int { return o.samples }
