package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for particle advancement.
var (
	// ErrInvalidMass indicates a particle mass that is zero, negative or NaN.
	ErrInvalidMass = errors.New("dynamo: particle mass must be positive")

	// ErrNegativeTimeStep indicates a negative or NaN time interval.
	ErrNegativeTimeStep = errors.New("dynamo: time step must be non-negative and finite")

	// ErrNumericalStall indicates the sub-step loop stopped making progress.
	ErrNumericalStall = errors.New("dynamo: wall resolver stalled (no progress within sub-step cap)")

	// ErrInvalidBox indicates a box edge that is not a positive finite number.
	ErrInvalidBox = errors.New("dynamo: box edge must be positive and finite")

	// ErrInvalidState indicates a position or momentum with NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrOutsideBox indicates a particle that starts an advance outside the cube.
	ErrOutsideBox = errors.New("dynamo: particle is outside the box")
)

// StallError reports how far the resolver got before giving up.
type StallError struct {
	SubSteps  int
	Remaining float64
}

func (e *StallError) Error() string {
	return fmt.Sprintf("%v after %d sub-steps (%.3g time left)", ErrNumericalStall, e.SubSteps, e.Remaining)
}

func (e *StallError) Unwrap() error {
	return ErrNumericalStall
}

// SimulationError wraps an error with the step and particle it came from.
type SimulationError struct {
	Step     int
	Time     float64
	Particle int
	Wrapped  error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f) particle %d: %v", e.Step, e.Time, e.Particle, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
