package odds

import (
	"fmt"

	"github.com/eigerco/prizepool/internal/fixedpoint"
)

// Table holds the odds of every tier for every supported ladder size at one
// grand prize period. It is immutable once built.
type Table struct {
	grandPrizePeriod uint32
	odds             [MaxTiers + 1][MaxTiers]fixedpoint.SD59x18
	claims           [MaxTiers + 1]fixedpoint.SD59x18
}

// NewTable computes the odds for all ladders in [MinTiers, MaxTiers].
func NewTable(grandPrizePeriod uint32) (*Table, error) {
	if grandPrizePeriod == 0 {
		return nil, ErrZeroGrandPrizePeriod
	}
	t := &Table{grandPrizePeriod: grandPrizePeriod}
	for n := MinTiers; n <= MaxTiers; n++ {
		sum := fixedpoint.ZeroSD
		for tier := uint8(0); tier < n; tier++ {
			o, err := TierOdds(tier, n, grandPrizePeriod)
			if err != nil {
				return nil, fmt.Errorf("odds of tier %d of %d: %w", tier, n, err)
			}
			t.odds[n][tier] = o
			sum = sum.Add(o.MulInt(decimalCount(PrizeCount(tier))))
		}
		t.claims[n] = sum
	}
	return t, nil
}

func (t *Table) GrandPrizePeriod() uint32 {
	return t.grandPrizePeriod
}

// TierOdds is the table lookup equivalent of the package level TierOdds.
func (t *Table) TierOdds(tier, numberOfTiers uint8) (fixedpoint.SD59x18, error) {
	if err := validate(tier, numberOfTiers, t.grandPrizePeriod); err != nil {
		return fixedpoint.SD59x18{}, err
	}
	return t.odds[numberOfTiers][tier], nil
}

// EstimatedClaimsPerDraw is the table lookup equivalent of the package
// level EstimatedClaimsPerDraw.
func (t *Table) EstimatedClaimsPerDraw(numberOfTiers uint8) (fixedpoint.SD59x18, error) {
	if err := validate(0, numberOfTiers, t.grandPrizePeriod); err != nil {
		return fixedpoint.SD59x18{}, err
	}
	return t.claims[numberOfTiers], nil
}

// EstimateNumberOfTiers returns the smallest ladder whose expected claims
// per draw cover claimCount, or MaxTiers when none does.
func (t *Table) EstimateNumberOfTiers(claimCount uint32) uint8 {
	want := decimalCount(claimCount)
	for n := MinTiers; n < MaxTiers; n++ {
		if t.claims[n].Decimal().GreaterThanOrEqual(want) {
			return n
		}
	}
	return MaxTiers
}
