package physics

import (
	"fmt"
	"strings"
)

type CollisionMode int

const (
	// MassWeighted replaces the along-normal velocities with the 1-D elastic
	// collision result for masses mA, mB.
	MassWeighted CollisionMode = iota
	// EqualMassExchange throws each body back along the normal at its own
	// speed. Only physical for equal masses.
	EqualMassExchange
)

func (m CollisionMode) String() string {
	switch m {
	case MassWeighted:
		return "mass_weighted"
	case EqualMassExchange:
		return "equal_mass"
	default:
		return fmt.Sprintf("CollisionMode(%d)", int(m))
	}
}

func ParseCollisionMode(s string) (CollisionMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mass_weighted", "mass-weighted", "elastic":
		return MassWeighted, nil
	case "equal_mass", "equal-mass", "exchange":
		return EqualMassExchange, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// Options selects the engine strategies at construction time.
type Options struct {
	Collision CollisionMode

	// SeparateOverlaps pushes penetrating pairs apart instead of bouncing them.
	SeparateOverlaps bool

	// CorrectPenetration clamps bodies already past a wall back onto it.
	CorrectPenetration bool

	// DirectionAware only reflects velocities that point into the wall (or,
	// for pairs, only bounces bodies that are approaching each other).
	DirectionAware bool

	// GroundDamping scales gravity by the remaining ground slack.
	GroundDamping bool
}

// DefaultOptions is the complete variant: mass-weighted, ground-damped,
// position-corrected, hard-sphere.
func DefaultOptions() Options {
	return Options{
		Collision:          MassWeighted,
		SeparateOverlaps:   true,
		CorrectPenetration: true,
		DirectionAware:     true,
		GroundDamping:      true,
	}
}

// BasicOptions is the first engine iteration: plain gravity, predictive
// bounces only, no correction.
func BasicOptions() Options {
	return Options{Collision: MassWeighted}
}
