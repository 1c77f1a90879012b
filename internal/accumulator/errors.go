package accumulator

import "errors"

var (
	ErrZeroDrawID       = errors.New("cannot add to draw zero")
	ErrNonMonotonicDraw = errors.New("draw precedes the newest observation")
	ErrInvalidRange     = errors.New("start draw is after end draw")
	ErrInvalidAlpha     = errors.New("alpha must be in [0, 1)")
)
