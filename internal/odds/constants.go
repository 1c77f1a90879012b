package odds

const (
	// MinTiers is the smallest supported ladder: grand prize, one regular
	// tier and the canary.
	MinTiers uint8 = 3
	// MaxTiers is the largest supported ladder.
	MaxTiers uint8 = 15

	// BranchingFactor is the prize count multiplier between adjacent tiers.
	BranchingFactor = 4

	// precision is the number of digits the odds are evaluated at before
	// they are truncated to 18 decimals.
	precision = 40
	// settle is the number of digits the result is rounded to before
	// truncation so exact powers such as 1/4 do not come out as 0.2499...
	settle = 30
)
