package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// UD34x4 is an unsigned fixed-point number with 4 decimals and a 128 bit
// raw representation. It stores prize tokens per share, which is coarser
// than the probability scale on purpose.
type UD34x4 struct {
	v decimal.Decimal
}

// ZeroUD34x4 is 0.0.
var ZeroUD34x4 = UD34x4{v: decimal.Zero}

// increment is the smallest representable UD34x4 step.
var increment = decimal.New(1, -UD34x4Decimals)

// NewUD34x4 truncates d to 4 decimals and checks the range.
func NewUD34x4(d decimal.Decimal) (UD34x4, error) {
	if d.IsNegative() {
		return UD34x4{}, fmt.Errorf("%w: %s", ErrNegative, d)
	}
	t := d.Truncate(UD34x4Decimals)
	if t.GreaterThan(maxUD34x4) {
		return UD34x4{}, fmt.Errorf("%w: %s exceeds UD34x4", ErrOverflow, d)
	}
	return UD34x4{v: t}, nil
}

// WrapUD34x4 wraps a raw scaled integer.
func WrapUD34x4(raw *big.Int) (UD34x4, error) {
	return NewUD34x4(decimal.NewFromBigInt(raw, -UD34x4Decimals))
}

// DivFloor returns floor(numerator / denominator) at UD34x4 precision.
func DivFloor(numerator, denominator decimal.Decimal) (UD34x4, error) {
	if denominator.IsZero() {
		return UD34x4{}, ErrDivisionByZero
	}
	q, _ := numerator.QuoRem(denominator, UD34x4Decimals)
	return NewUD34x4(q)
}

// DivCeil returns ceil(numerator / denominator) at UD34x4 precision.
func DivCeil(numerator, denominator decimal.Decimal) (UD34x4, error) {
	if denominator.IsZero() {
		return UD34x4{}, ErrDivisionByZero
	}
	q, r := numerator.QuoRem(denominator, UD34x4Decimals)
	if !r.IsZero() {
		q = q.Add(increment)
	}
	return NewUD34x4(q)
}

func (x UD34x4) Unwrap() *big.Int {
	return x.v.Shift(UD34x4Decimals).BigInt()
}

func (x UD34x4) Decimal() decimal.Decimal {
	return x.v
}

// Add returns x + y, failing when the sum leaves the 128 bit range.
func (x UD34x4) Add(y UD34x4) (UD34x4, error) {
	return NewUD34x4(x.v.Add(y.v))
}

// Sub returns x - y, failing on underflow.
func (x UD34x4) Sub(y UD34x4) (UD34x4, error) {
	return NewUD34x4(x.v.Sub(y.v))
}

// MulInt multiplies by an integer share count. The result is exact.
func (x UD34x4) MulInt(n int64) decimal.Decimal {
	return x.v.Mul(decimal.NewFromInt(n))
}

func (x UD34x4) Cmp(y UD34x4) int {
	return x.v.Cmp(y.v)
}

func (x UD34x4) IsZero() bool {
	return x.v.IsZero()
}

func (x UD34x4) String() string {
	return x.v.String()
}

func (x UD34x4) MarshalJSON() ([]byte, error) {
	return x.v.MarshalJSON()
}

func (x *UD34x4) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	v, err := NewUD34x4(d)
	if err != nil {
		return err
	}
	*x = v
	return nil
}
