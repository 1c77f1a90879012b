package odds

import "errors"

var (
	ErrInvalidTier          = errors.New("tier index out of range")
	ErrTiersOutOfRange      = errors.New("number of tiers out of range")
	ErrZeroGrandPrizePeriod = errors.New("grand prize period must be positive")
)
