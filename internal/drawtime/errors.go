package drawtime

import "errors"

var (
	// ErrMinDrawReached is returned when attempting to get the draw before
	// the first draw.
	ErrMinDrawReached = errors.New("minimum draw reached")

	// ErrMaxDrawReached is returned when attempting to get the draw after the
	// maximum representable draw id.
	ErrMaxDrawReached = errors.New("maximum draw reached")

	// ErrInvalidDrawPeriod is returned when a schedule is built with a
	// non-positive draw period.
	ErrInvalidDrawPeriod = errors.New("draw period must be positive")

	// ErrNoClock is returned when a schedule is built without a clock.
	ErrNoClock = errors.New("schedule requires a clock")
)
