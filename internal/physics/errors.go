package physics

import "errors"

var (
	// ErrInvalidBody indicates a body with non-positive radius or mass, or non-finite input.
	ErrInvalidBody = errors.New("physics: invalid body (radius and mass must be positive and finite)")

	// ErrUnknownBody indicates a handle that is not (or no longer) in the world.
	ErrUnknownBody = errors.New("physics: unknown body handle")

	// ErrUnknownMode indicates an unrecognised collision mode name.
	ErrUnknownMode = errors.New("physics: unknown collision mode")
)
