package fixedpoint

import "errors"

var (
	// ErrOverflow is returned when a value does not fit the representable
	// range of the target fixed-point type.
	ErrOverflow = errors.New("fixed-point overflow")

	// ErrNegative is returned when a negative value is converted to an
	// unsigned fixed-point type.
	ErrNegative = errors.New("negative value for unsigned fixed-point")

	// ErrDivisionByZero is returned by the division helpers.
	ErrDivisionByZero = errors.New("fixed-point division by zero")

	// ErrLogOfNonPositive is returned by Ln for values <= 0.
	ErrLogOfNonPositive = errors.New("logarithm of non-positive value")
)
