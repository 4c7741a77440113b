package dynamo

import "math"

// Trace accounts for the work done by one Advance call.
type Trace struct {
	SubSteps    int
	Reflections int
	// Elapsed is the sum of the consumed sub-step durations.
	Elapsed float64
	Hits    [NumWalls]int
	// Impulse is the momentum transferred to each wall.
	Impulse [NumWalls]float64
}

// Add accumulates o into t.
func (t *Trace) Add(o Trace) {
	t.SubSteps += o.SubSteps
	t.Reflections += o.Reflections
	t.Elapsed += o.Elapsed
	for w := range t.Hits {
		t.Hits[w] += o.Hits[w]
		t.Impulse[w] += o.Impulse[w]
	}
}

// TotalImpulse sums the impulse over all walls.
func (t Trace) TotalImpulse() float64 {
	sum := 0.0
	for _, j := range t.Impulse {
		sum += j
	}
	return sum
}

// Advance moves p ballistically for exactly dt, reflecting specularly off
// every wall it meets on the way. Walls the particle reaches within
// Epsilon*L of travel from the first crossing (edges and corners) are
// reflected off together in a single sub-step.
//
// On error the particle is left untouched, except for ErrNumericalStall,
// where the position is clamped into the box before returning.
func (b Box) Advance(p *Particle, dt float64) (Trace, error) {
	var tr Trace
	if !(dt >= 0) || math.IsInf(dt, 1) {
		return tr, ErrNegativeTimeStep
	}
	if err := p.Validate(); err != nil {
		return tr, err
	}
	tol := b.tolerance()
	if !b.containsWithin(p.Position, tol) {
		return tr, ErrOutsideBox
	}
	if dt == 0 {
		return tr, nil
	}

	planes := b.Planes()
	pos := b.Clamp(p.Position)
	remaining := dt
	stalled := 0

	for remaining > 0 {
		tr.SubSteps++

		v := p.Velocity()
		end := pos.Add(v.Scale(remaining))
		if b.Contains(end) {
			p.Position = end
			tr.Elapsed += remaining
			return tr, nil
		}

		var times, approach [NumWalls]float64
		var crossing [NumWalls]bool
		tStar := math.Inf(1)
		for w, pl := range planes {
			t, ok := pl.CrossingTime(pos, v)
			if !ok {
				continue
			}
			// a particle sitting on a wall and moving out reflects at once
			t = math.Max(t, 0)
			tStar = math.Min(tStar, t)
			times[w], approach[w], crossing[w] = t, -pl.Normal.Dot(v), true
		}

		// endpoint is outside only through round-off
		if tStar > remaining {
			p.Position = b.Clamp(end)
			tr.Elapsed += remaining
			return tr, nil
		}

		// sub-steps that get nowhere only repeat through round-off
		if tStar*v.Norm() <= tol {
			stalled++
			if stalled >= b.MaxSubSteps {
				p.Position = b.Clamp(pos)
				return tr, &StallError{SubSteps: tr.SubSteps, Remaining: remaining}
			}
		} else {
			stalled = 0
		}

		pos = pos.Add(v.Scale(tStar))
		before := p.Momentum
		after := before
		for w, pl := range planes {
			// tied walls are the ones left within tol of travel
			if !crossing[w] || approach[w]*(times[w]-tStar) > tol {
				continue
			}
			pos = pos.WithComponent(pl.Wall.Axis(), pl.Offset)
			normal := before.Dot(pl.Normal)
			after = after.Sub(pl.Normal.Scale(2 * normal))
			tr.Hits[w]++
			tr.Impulse[w] += 2 * math.Abs(normal)
			tr.Reflections++
		}
		p.Momentum = after
		pos = b.Clamp(pos)

		remaining -= tStar
		tr.Elapsed += tStar
	}

	p.Position = pos
	return tr, nil
}
