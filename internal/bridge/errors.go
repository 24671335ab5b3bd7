package bridge

import "errors"

var (
	// ErrOutOfBounds is returned when a session number is below 1, above the
	// table capacity, or above the live session count.
	ErrOutOfBounds = errors.New("session out of bounds")

	// ErrIndexRange is returned when a history index is outside the ring.
	ErrIndexRange = errors.New("history index out of range")

	ErrInvalidPair     = errors.New("invalid currency pair index")
	ErrInvalidLeg      = errors.New("invalid leg index")
	ErrTableFull       = errors.New("session table full")
	ErrSessionNotFound = errors.New("session not found")
	ErrMissingMagic    = errors.New("magic number required")
)
