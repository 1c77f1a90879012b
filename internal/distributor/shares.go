package distributor

import (
	"github.com/shopspring/decimal"

	"github.com/eigerco/prizepool/internal/odds"
)

// canaryCountPrecision is the number of decimals CanaryPrizeCount reports.
const canaryCountPrecision = 18

func (d *Distributor) hasCanary() bool {
	return d.state.CanaryShares > 0
}

// TotalShares returns the number of shares the released liquidity is split
// into for a ladder of numberOfTiers tiers, reserve included.
func (d *Distributor) TotalShares(numberOfTiers uint8) int64 {
	s := d.state
	if !d.hasCanary() {
		return int64(numberOfTiers)*int64(s.TierShares) + int64(s.ReserveShares)
	}
	return int64(numberOfTiers-1)*int64(s.TierShares) + int64(s.CanaryShares) + int64(s.ReserveShares)
}

// TierShares returns the shares of tier in a ladder of numberOfTiers tiers.
func (d *Distributor) TierShares(tier, numberOfTiers uint8) int64 {
	if d.isCanary(tier, numberOfTiers) {
		return int64(d.state.CanaryShares)
	}
	return int64(d.state.TierShares)
}

func (d *Distributor) isCanary(tier, numberOfTiers uint8) bool {
	return d.hasCanary() && tier == numberOfTiers-1
}

// canaryPrizeRatio returns the canary prize count of a ladder as the
// fraction num/den. The count is chosen so that a canary prize is worth what
// a prize of the same tier would be if the ladder had one more tier.
func (d *Distributor) canaryPrizeRatio(numberOfTiers uint8) (num, den decimal.Decimal) {
	num = decimal.NewFromInt(int64(odds.PrizeCount(numberOfTiers - 1))).
		Mul(decimal.NewFromInt(int64(d.state.CanaryShares))).
		Mul(decimal.NewFromInt(d.TotalShares(numberOfTiers + 1)))
	den = decimal.NewFromInt(int64(d.state.TierShares)).
		Mul(decimal.NewFromInt(d.TotalShares(numberOfTiers)))
	return num, den
}

// CanaryPrizeCount returns the fractional number of canary prizes of a
// ladder of numberOfTiers tiers, or the plain prize count when there is no
// canary tier.
func (d *Distributor) CanaryPrizeCount(numberOfTiers uint8) decimal.Decimal {
	if !d.hasCanary() {
		return decimal.NewFromInt(int64(odds.PrizeCount(numberOfTiers - 1)))
	}
	num, den := d.canaryPrizeRatio(numberOfTiers)
	return num.DivRound(den, canaryCountPrecision)
}
