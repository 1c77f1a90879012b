package safemath

import (
	"errors"
	"math/big"
	"math/bits"

	"github.com/shopspring/decimal"
)

var (
	ErrOverflow    = errors.New("number overflow")
	ErrNegative    = errors.New("negative amount")
	ErrNotInteger  = errors.New("amount is not an integer")
	ErrUnsupported = errors.New("unsupported bit width")
)

// Widths used for token amounts.
const (
	Uint96  = 96
	Uint104 = 104
	Uint112 = 112
	Uint160 = 160
)

// maxUint caches 2^bits - 1 for the widths we check against.
var maxUint = map[uint]decimal.Decimal{}

func init() {
	for _, w := range []uint{Uint96, Uint104, Uint112, Uint160} {
		m := new(big.Int).Lsh(big.NewInt(1), w)
		m.Sub(m, big.NewInt(1))
		maxUint[w] = decimal.NewFromBigInt(m, 0)
	}
}

func Add32(a, b uint32) (uint32, bool) {
	v, carry := bits.Add32(a, b, 0)
	return v, carry == 0
}

func Add64(a, b uint64) (uint64, bool) {
	v, carry := bits.Add64(a, b, 0)
	return v, carry == 0
}

func Sub32(a, b uint32) (uint32, bool) {
	v, carry := bits.Sub32(a, b, 0)
	return v, carry == 0
}

func Sub64(a, b uint64) (uint64, bool) {
	v, carry := bits.Sub64(a, b, 0)
	return v, carry == 0
}

// MaxUint returns 2^width - 1 for one of the supported widths.
func MaxUint(width uint) (decimal.Decimal, error) {
	m, ok := maxUint[width]
	if !ok {
		return decimal.Zero, ErrUnsupported
	}
	return m, nil
}

// CheckUint validates that d is a non-negative integer representable in
// width bits.
func CheckUint(d decimal.Decimal, width uint) error {
	if d.IsNegative() {
		return ErrNegative
	}
	if !d.IsInteger() {
		return ErrNotInteger
	}
	m, err := MaxUint(width)
	if err != nil {
		return err
	}
	if d.GreaterThan(m) {
		return ErrOverflow
	}
	return nil
}

// CheckUintValue is CheckUint for values that may carry a fractional part.
func CheckUintValue(d decimal.Decimal, width uint) error {
	if d.IsNegative() {
		return ErrNegative
	}
	m, err := MaxUint(width)
	if err != nil {
		return err
	}
	if d.GreaterThan(m) {
		return ErrOverflow
	}
	return nil
}
