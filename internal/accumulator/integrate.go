package accumulator

import (
	"github.com/shopspring/decimal"

	"github.com/eigerco/prizepool/internal/fixedpoint"
)

// Integrate returns the amount of a lump k released between the relative
// draw offsets start and end: k·(α^start − α^end), truncated.
func Integrate(alpha fixedpoint.SD59x18, start, end uint64, k decimal.Decimal) decimal.Decimal {
	return computeC(alpha, start, k).Sub(computeC(alpha, end, k)).ToInt()
}

// IntegrateInf returns the amount of a lump k still pending from offset x
// onward: k·α^x, truncated.
func IntegrateInf(alpha fixedpoint.SD59x18, x uint64, k decimal.Decimal) decimal.Decimal {
	return computeC(alpha, x, k).ToInt()
}

func computeC(alpha fixedpoint.SD59x18, x uint64, k decimal.Decimal) fixedpoint.SD59x18 {
	return alpha.Powu(x).MulInt(k)
}

func checkAlpha(alpha fixedpoint.SD59x18) error {
	if alpha.IsNegative() || alpha.Cmp(fixedpoint.UnitSD) >= 0 {
		return ErrInvalidAlpha
	}
	return nil
}
