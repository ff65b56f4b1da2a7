package sim

import "errors"

var (
	// ErrInvalidConfig indicates a non-positive dt or duration, or a bad sample interval.
	ErrInvalidConfig = errors.New("sim: invalid config")

	// ErrInvalidState indicates a body left non-finite after a step.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")
)
