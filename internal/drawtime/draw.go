package drawtime

import "math"

// DrawID identifies a draw. Draw ids start at 1; 0 means "no draw".
type DrawID uint32

const (
	// MinDrawID is the first valid draw.
	MinDrawID DrawID = 1
	// MaxDrawID is the last representable draw.
	MaxDrawID DrawID = math.MaxUint32
)

// Next returns the following draw.
func (d DrawID) Next() (DrawID, error) {
	if d == MaxDrawID {
		return d, ErrMaxDrawReached
	}
	return d + 1, nil
}

// Previous returns the preceding draw.
func (d DrawID) Previous() (DrawID, error) {
	if d <= MinDrawID {
		return d, ErrMinDrawReached
	}
	return d - 1, nil
}

// Since returns the number of draws from o to d, which must not precede o.
func (d DrawID) Since(o DrawID) uint64 {
	return uint64(d) - uint64(o)
}
