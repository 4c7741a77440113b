package sim

import (
	"fmt"
	"strings"

	"github.com/san-kum/ergobox/internal/dynamo"
)

// Frame is the ensemble state after one step.
type Frame struct {
	Step      int
	Time      float64
	Particles []*dynamo.Particle
	Traces    []dynamo.Trace
	// Active is false for particles dropped under the Skip policy.
	Active []bool
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f Frame)
}

// ErrorPolicy decides what a particle error does to the run.
type ErrorPolicy int

const (
	// Abort stops the run at the first particle error.
	Abort ErrorPolicy = iota
	// Skip freezes the failing particle and carries on.
	Skip
)

func (p ErrorPolicy) String() string {
	if p == Skip {
		return "skip"
	}
	return "abort"
}

func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return Abort, nil
	case "skip":
		return Skip, nil
	}
	return Abort, fmt.Errorf("unknown error policy: %q (want abort or skip)", s)
}

type Config struct {
	Dt       float64
	Duration float64
	// Workers bounds the goroutines advancing particles; 0 means GOMAXPROCS.
	Workers int
	// RecordEvery stores positions every n steps; 0 records nothing.
	RecordEvery int
	OnError     ErrorPolicy
}

func DefaultConfig() Config {
	return Config{
		Dt:          1e-3,
		Duration:    10.0,
		RecordEvery: 10,
		OnError:     Abort,
	}
}

// Steps returns the number of fixed steps covering Duration.
func (c Config) Steps() int {
	return int(c.Duration/c.Dt + 0.5)
}

type Result struct {
	Times []float64
	// Positions holds one flattened x,y,z row per particle per record.
	Positions   [][]float64
	Metrics     map[string]float64
	StepsTaken  int
	SubSteps    int
	Reflections int
	Skipped     []int
	Errors      []error
}
