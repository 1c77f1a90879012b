package odds

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/eigerco/prizepool/internal/fixedpoint"
)

// TierOdds returns the per-draw probability of tier for a ladder of
// numberOfTiers tiers. The grand prize (tier 0) is won once every
// grandPrizePeriod draws on average, the canary (last tier) every draw, and
// the tiers in between interpolate geometrically:
//
//	odds(t) = g^(-(n-1-t)/(n-1))
func TierOdds(tier, numberOfTiers uint8, grandPrizePeriod uint32) (fixedpoint.SD59x18, error) {
	if err := validate(tier, numberOfTiers, grandPrizePeriod); err != nil {
		return fixedpoint.SD59x18{}, err
	}
	if tier == numberOfTiers-1 || grandPrizePeriod == 1 {
		return fixedpoint.UnitSD, nil
	}

	g := decimal.NewFromInt(int64(grandPrizePeriod))
	if tier == 0 {
		return fixedpoint.NewSD(decimal.NewFromInt(1).DivRound(g, precision))
	}

	lnG, err := g.Ln(precision)
	if err != nil {
		return fixedpoint.SD59x18{}, fmt.Errorf("ln of grand prize period: %w", err)
	}
	exponent := lnG.
		Mul(decimal.NewFromInt(int64(numberOfTiers - 1 - tier))).
		DivRound(decimal.NewFromInt(int64(numberOfTiers-1)), precision)
	inverse, err := exponent.ExpTaylor(precision)
	if err != nil {
		return fixedpoint.SD59x18{}, fmt.Errorf("exp of tier exponent: %w", err)
	}

	return fixedpoint.NewSD(decimal.NewFromInt(1).DivRound(inverse, precision).Round(settle))
}

// PrizeCount returns the number of prizes in tier.
func PrizeCount(tier uint8) uint32 {
	return 1 << (2 * uint32(tier))
}

// EstimatePrizeFrequencyInDraws returns ceil(1/odds): the number of draws it
// takes on average for a prize of these odds to be won. Zero odds saturate.
func EstimatePrizeFrequencyInDraws(odds fixedpoint.SD59x18) uint32 {
	if odds.IsZero() || odds.IsNegative() {
		return math.MaxUint32
	}
	q, r := decimal.NewFromInt(1).QuoRem(odds.Decimal(), 0)
	if !r.IsZero() {
		q = q.Add(decimal.NewFromInt(1))
	}
	if q.GreaterThan(decimal.NewFromInt(math.MaxUint32)) {
		return math.MaxUint32
	}
	return uint32(q.IntPart())
}

// EstimatedClaimsPerDraw returns the expected number of prizes won per draw
// across all tiers of the ladder.
func EstimatedClaimsPerDraw(numberOfTiers uint8, grandPrizePeriod uint32) (fixedpoint.SD59x18, error) {
	if err := validate(0, numberOfTiers, grandPrizePeriod); err != nil {
		return fixedpoint.SD59x18{}, err
	}
	sum := fixedpoint.ZeroSD
	for t := uint8(0); t < numberOfTiers; t++ {
		o, err := TierOdds(t, numberOfTiers, grandPrizePeriod)
		if err != nil {
			return fixedpoint.SD59x18{}, err
		}
		sum = sum.Add(o.MulInt(decimalCount(PrizeCount(t))))
	}
	return sum, nil
}

func validate(tier, numberOfTiers uint8, grandPrizePeriod uint32) error {
	if numberOfTiers < MinTiers || numberOfTiers > MaxTiers {
		return fmt.Errorf("%w: %d", ErrTiersOutOfRange, numberOfTiers)
	}
	if tier >= numberOfTiers {
		return fmt.Errorf("%w: tier %d of %d", ErrInvalidTier, tier, numberOfTiers)
	}
	if grandPrizePeriod == 0 {
		return ErrZeroGrandPrizePeriod
	}
	return nil
}

func decimalCount(n uint32) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
