package distributor

import (
	"fmt"

	"github.com/eigerco/prizepool/internal/odds"
)

// Config holds the construction-time parameters of a distributor. A zero
// CanaryShares selects the variant without a canary tier, where every tier
// holds TierShares.
type Config struct {
	NumberOfTiers    uint8  `json:"number_of_tiers"`
	TierShares       uint8  `json:"tier_shares"`
	CanaryShares     uint8  `json:"canary_shares"`
	ReserveShares    uint8  `json:"reserve_shares"`
	GrandPrizePeriod uint32 `json:"grand_prize_period"`
}

func (c Config) Validate() error {
	if err := validateNumberOfTiers(c.NumberOfTiers); err != nil {
		return err
	}
	if c.TierShares == 0 {
		return ErrZeroTierShares
	}
	if c.GrandPrizePeriod == 0 {
		return ErrZeroGrandPrizePeriod
	}
	return nil
}

func validateNumberOfTiers(n uint8) error {
	if n < odds.MinTiers {
		return fmt.Errorf("%w: %d < %d", ErrTiersBelowMinimum, n, odds.MinTiers)
	}
	if n > odds.MaxTiers {
		return fmt.Errorf("%w: %d > %d", ErrTiersAboveMaximum, n, odds.MaxTiers)
	}
	return nil
}
