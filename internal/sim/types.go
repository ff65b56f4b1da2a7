package sim

import (
	"fmt"

	"github.com/san-kum/balls/internal/physics"
)

// Frame is a copy of every body at one sample time.
type Frame []physics.Body

type Metric interface {
	Name() string
	Observe(bodies []physics.Body, arena physics.Arena, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(bodies []physics.Body, arena physics.Arena, t float64)
}

type Config struct {
	Dt            float64
	Duration      float64
	SampleEvery   int
	ValidateState bool
	// DriftWarn is the relative energy drift above which a run logs a warning.
	// Zero disables the warning.
	DriftWarn float64
}

func DefaultConfig() Config {
	return Config{
		Dt:            1.0 / 10000,
		Duration:      5.0,
		SampleEvery:   100,
		ValidateState: true,
		DriftWarn:     0.01,
	}
}

type Result struct {
	Frames      []Frame
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Contacts    physics.Contacts
	Errors      []error
}

// Last returns the final sampled frame, or nil for an empty result.
func (r *Result) Last() Frame {
	if len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1]
}

type SimError struct {
	Time    float64
	Step    int
	Message string
	Err     error
}

func (e SimError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %d (t=%.4f): %s: %v", e.Step, e.Time, e.Message, e.Err)
	}
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Err }
