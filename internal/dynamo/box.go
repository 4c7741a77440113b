package dynamo

import "math"

const (
	DefaultEpsilon     = 1e-12
	DefaultMaxSubSteps = 1 << 16
)

// Wall identifies one of the six bounding planes of the cube.
type Wall int

const (
	XMin Wall = iota
	XMax
	YMin
	YMax
	ZMin
	ZMax
	NumWalls
)

var wallNames = [NumWalls]string{"x=0", "x=L", "y=0", "y=L", "z=0", "z=L"}

func (w Wall) String() string {
	if w < 0 || w >= NumWalls {
		return "wall(?)"
	}
	return wallNames[w]
}

// Axis returns the axis the wall is perpendicular to.
func (w Wall) Axis() Axis { return Axis(w / 2) }

// IsMax reports whether the wall lies at coordinate L rather than 0.
func (w Wall) IsMax() bool { return w%2 == 1 }

// Normal returns the unit normal pointing into the box.
func (w Wall) Normal() Vec3 {
	sign := 1.0
	if w.IsMax() {
		sign = -1.0
	}
	return Vec3{}.WithComponent(w.Axis(), sign)
}

// Plane is the set of points x with Normal·x + Offset = 0.
type Plane struct {
	Wall   Wall
	Normal Vec3
	Offset float64
}

// Distance returns the signed distance of p from the plane, positive inside.
func (pl Plane) Distance(p Vec3) float64 {
	return pl.Normal.Dot(p) + pl.Offset
}

// CrossingTime returns the time at which the line p + v*t meets the plane.
// ok is false when v is parallel to the plane or points away from it.
func (pl Plane) CrossingTime(p, v Vec3) (t float64, ok bool) {
	approach := pl.Normal.Dot(v)
	if !(approach < 0) {
		return math.Inf(1), false
	}
	return -pl.Distance(p) / approach, true
}

// Box is the cube [0, L]^3 together with the resolver's tolerances.
//
// Epsilon is a length in units of L: walls the particle reaches within
// Epsilon*L of each other are hit together, and a start position within
// Epsilon*L outside the cube is clamped in. MaxSubSteps is the number of
// consecutive sub-steps covering no more than Epsilon*L of travel after
// which Advance gives up with ErrNumericalStall. Genuine bounces do not
// count towards it.
type Box struct {
	L           float64
	Epsilon     float64
	MaxSubSteps int
}

func (b Box) tolerance() float64 { return b.Epsilon * b.L }

func NewBox(l float64) (Box, error) {
	b := Box{L: l, Epsilon: DefaultEpsilon, MaxSubSteps: DefaultMaxSubSteps}
	if err := b.Validate(); err != nil {
		return Box{}, err
	}
	return b, nil
}

func (b Box) Validate() error {
	if !(b.L > 0) || math.IsInf(b.L, 0) {
		return ErrInvalidBox
	}
	if b.Epsilon < 0 || math.IsNaN(b.Epsilon) || b.MaxSubSteps <= 0 {
		return ErrInvalidBox
	}
	return nil
}

// Planes returns the six bounding planes indexed by Wall.
func (b Box) Planes() [NumWalls]Plane {
	var planes [NumWalls]Plane
	for w := XMin; w < NumWalls; w++ {
		offset := 0.0
		if w.IsMax() {
			offset = b.L
		}
		planes[w] = Plane{Wall: w, Normal: w.Normal(), Offset: offset}
	}
	return planes
}

// Contains reports whether p lies in the closed cube.
func (b Box) Contains(p Vec3) bool {
	return b.containsWithin(p, 0)
}

func (b Box) containsWithin(p Vec3, tol float64) bool {
	for a := AxisX; a <= AxisZ; a++ {
		c := p.Component(a)
		if c < -tol || c > b.L+tol {
			return false
		}
	}
	return true
}

// Clamp moves each coordinate of p into [0, L].
func (b Box) Clamp(p Vec3) Vec3 {
	for a := AxisX; a <= AxisZ; a++ {
		p = p.WithComponent(a, math.Min(math.Max(p.Component(a), 0), b.L))
	}
	return p
}

func (b Box) Volume() float64 { return b.L * b.L * b.L }

// WallArea is the total area of the six walls.
func (b Box) WallArea() float64 { return 6 * b.L * b.L }

func (b Box) Center() Vec3 { return Vec3{b.L / 2, b.L / 2, b.L / 2} }
