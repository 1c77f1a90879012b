package distributor

import "errors"

var (
	ErrTiersBelowMinimum     = errors.New("number of tiers below minimum")
	ErrTiersAboveMaximum     = errors.New("number of tiers above maximum")
	ErrInvalidTier           = errors.New("tier index out of range")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrZeroTierShares        = errors.New("tier shares must be positive")
	ErrZeroGrandPrizePeriod  = errors.New("grand prize period must be positive")
	ErrInvalidState          = errors.New("invalid distributor state")
)
