package fixedpoint

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// SD59x18 is a signed fixed-point number with 18 decimals. It is used for
// probabilities, smoothing factors and contribution fractions. All
// operations truncate toward zero.
type SD59x18 struct {
	v decimal.Decimal
}

var (
	// ZeroSD is 0.0.
	ZeroSD = SD59x18{v: decimal.Zero}
	// UnitSD is 1.0.
	UnitSD = SD59x18{v: one}
)

// SD wraps a raw scaled integer, e.g. SD(9e17) is 0.9.
func SD(raw int64) SD59x18 {
	return SD59x18{v: decimal.New(raw, -SDDecimals)}
}

// WrapSD wraps a raw scaled big integer.
func WrapSD(raw *big.Int) (SD59x18, error) {
	return NewSD(decimal.NewFromBigInt(raw, -SDDecimals))
}

// NewSD truncates d to 18 decimals and checks the range.
func NewSD(d decimal.Decimal) (SD59x18, error) {
	t := d.Truncate(SDDecimals)
	if t.Abs().GreaterThan(maxSD59x18) {
		return SD59x18{}, fmt.Errorf("%w: %s exceeds SD59x18", ErrOverflow, d)
	}
	return SD59x18{v: t}, nil
}

// MustSD is NewSD for constants known to be in range.
func MustSD(s string) SD59x18 {
	x, err := NewSD(decimal.RequireFromString(s))
	if err != nil {
		panic(err)
	}
	return x
}

// ConvertSD converts an integer amount into SD59x18.
func ConvertSD(d decimal.Decimal) (SD59x18, error) {
	return NewSD(d)
}

// Unwrap returns the raw scaled integer.
func (x SD59x18) Unwrap() *big.Int {
	return x.v.Shift(SDDecimals).BigInt()
}

// Decimal returns the exact value.
func (x SD59x18) Decimal() decimal.Decimal {
	return x.v
}

// ToInt truncates toward zero to an integer amount.
func (x SD59x18) ToInt() decimal.Decimal {
	return x.v.Truncate(0)
}

func (x SD59x18) Add(y SD59x18) SD59x18 {
	return SD59x18{v: x.v.Add(y.v)}
}

func (x SD59x18) Sub(y SD59x18) SD59x18 {
	return SD59x18{v: x.v.Sub(y.v)}
}

func (x SD59x18) Mul(y SD59x18) SD59x18 {
	return SD59x18{v: x.v.Mul(y.v).Truncate(SDDecimals)}
}

// MulInt multiplies x by an integer amount, truncating toward zero.
func (x SD59x18) MulInt(k decimal.Decimal) SD59x18 {
	return SD59x18{v: x.v.Mul(k).Truncate(SDDecimals)}
}

// Div divides x by y truncating toward zero.
func (x SD59x18) Div(y SD59x18) (SD59x18, error) {
	if y.v.IsZero() {
		return SD59x18{}, ErrDivisionByZero
	}
	q, _ := x.v.QuoRem(y.v, SDDecimals)
	return SD59x18{v: q}, nil
}

// Powu raises x to an integer power by binary exponentiation, truncating
// after every multiplication.
func (x SD59x18) Powu(y uint64) SD59x18 {
	result := UnitSD
	if y&1 > 0 {
		result = x
	}
	base := x
	for y >>= 1; y > 0; y >>= 1 {
		base = base.Mul(base)
		if y&1 > 0 {
			result = result.Mul(base)
		}
	}
	return result
}

// Ln returns the natural logarithm of x.
func (x SD59x18) Ln() (SD59x18, error) {
	if x.v.Sign() <= 0 {
		return SD59x18{}, ErrLogOfNonPositive
	}
	l, err := x.v.Ln(transcendentalPrecision)
	if err != nil {
		return SD59x18{}, err
	}
	return NewSD(l)
}

// Exp returns e^x.
func (x SD59x18) Exp() (SD59x18, error) {
	e, err := x.v.ExpTaylor(transcendentalPrecision)
	if err != nil {
		return SD59x18{}, err
	}
	return NewSD(e)
}

func (x SD59x18) Cmp(y SD59x18) int {
	return x.v.Cmp(y.v)
}

func (x SD59x18) IsZero() bool {
	return x.v.IsZero()
}

func (x SD59x18) IsNegative() bool {
	return x.v.IsNegative()
}

func (x SD59x18) String() string {
	return x.v.String()
}

func (x SD59x18) MarshalJSON() ([]byte, error) {
	return x.v.MarshalJSON()
}

func (x *SD59x18) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	v, err := NewSD(d)
	if err != nil {
		return err
	}
	*x = v
	return nil
}
