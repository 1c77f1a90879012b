package distributor

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eigerco/prizepool/internal/drawtime"
	"github.com/eigerco/prizepool/internal/fixedpoint"
	"github.com/eigerco/prizepool/internal/odds"
	"github.com/eigerco/prizepool/internal/safemath"
)

// Distributor splits the liquidity released every draw across a ladder of
// prize tiers and a reserve. Every tier holds (global rate - tier rate) *
// tier shares tokens; reads lazily refresh a tier's cached prize size when
// it was last touched in an earlier draw.
//
// A Distributor is not safe for concurrent use.
type Distributor struct {
	state State
	table *odds.Table
}

// New returns a distributor with no draw closed yet.
func New(cfg Config) (*Distributor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	table, err := odds.NewTable(cfg.GrandPrizePeriod)
	if err != nil {
		return nil, err
	}
	state := State{
		NumberOfTiers:      cfg.NumberOfTiers,
		TierShares:         cfg.TierShares,
		CanaryShares:       cfg.CanaryShares,
		ReserveShares:      cfg.ReserveShares,
		PrizeTokenPerShare: fixedpoint.ZeroUD34x4,
		Reserve:            decimal.Zero,
	}
	for i := range state.Tiers {
		state.Tiers[i] = Tier{PrizeTokenPerShare: fixedpoint.ZeroUD34x4, PrizeSize: decimal.Zero}
	}
	return &Distributor{state: state, table: table}, nil
}

// Restore rebuilds a distributor from persisted state.
func Restore(state State, grandPrizePeriod uint32) (*Distributor, error) {
	cfg := Config{
		NumberOfTiers:    state.NumberOfTiers,
		TierShares:       state.TierShares,
		CanaryShares:     state.CanaryShares,
		ReserveShares:    state.ReserveShares,
		GrandPrizePeriod: grandPrizePeriod,
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidState, err)
	}
	if err := safemath.CheckUintValue(state.Reserve, safemath.Uint96); err != nil {
		return nil, fmt.Errorf("%w: reserve: %w", ErrInvalidState, err)
	}
	for i, t := range state.Tiers {
		if t.PrizeTokenPerShare.Cmp(state.PrizeTokenPerShare) > 0 {
			return nil, fmt.Errorf("%w: tier %d rate ahead of the global rate", ErrInvalidState, i)
		}
	}
	table, err := odds.NewTable(grandPrizePeriod)
	if err != nil {
		return nil, err
	}
	return &Distributor{state: state, table: table}, nil
}

// State returns a copy of the current state.
func (d *Distributor) State() State {
	return d.state
}

func (d *Distributor) NumberOfTiers() uint8 {
	return d.state.NumberOfTiers
}

func (d *Distributor) LastClosedDrawID() drawtime.DrawID {
	return d.state.LastClosedDrawID
}

func (d *Distributor) PrizeTokenPerShare() fixedpoint.UD34x4 {
	return d.state.PrizeTokenPerShare
}

func (d *Distributor) GrandPrizePeriod() uint32 {
	return d.table.GrandPrizePeriod()
}

// Reserve returns the whole tokens held in reserve.
func (d *Distributor) Reserve() decimal.Decimal {
	return d.state.Reserve.Floor()
}

// TierOdds returns the odds of tier in the current ladder.
func (d *Distributor) TierOdds(tier uint8) (fixedpoint.SD59x18, error) {
	if err := d.checkTier(tier); err != nil {
		return fixedpoint.SD59x18{}, err
	}
	return d.table.TierOdds(tier, d.state.NumberOfTiers)
}

// NextDraw closes the next draw with releasedLiquidity newly available and
// resizes the ladder to nextNumberOfTiers. The liquidity left in the canary
// tier and in tiers dropped by a shrink is reclaimed and redistributed with
// the new liquidity. The remainder of the per share division goes to the
// reserve. It returns the id of the closed draw.
func (d *Distributor) NextDraw(nextNumberOfTiers uint8, releasedLiquidity decimal.Decimal) (drawtime.DrawID, error) {
	if err := validateNumberOfTiers(nextNumberOfTiers); err != nil {
		return 0, err
	}
	if err := safemath.CheckUint(releasedLiquidity, safemath.Uint96); err != nil {
		return 0, fmt.Errorf("released liquidity: %w", err)
	}
	closedDrawID, err := d.state.LastClosedDrawID.Next()
	if err != nil {
		return 0, err
	}

	numberOfTiers := d.state.NumberOfTiers
	rate := d.state.PrizeTokenPerShare
	start := d.reclamationStart(numberOfTiers, nextNumberOfTiers)

	reclaimed := decimal.Zero
	for i := start; i < numberOfTiers; i++ {
		reclaimed = reclaimed.Add(d.remainingLiquidity(d.state.Tiers[i], i, numberOfTiers))
	}

	totalLiquidity := releasedLiquidity.Add(reclaimed)
	totalShares := d.TotalShares(nextNumberOfTiers)
	delta, err := fixedpoint.DivFloor(totalLiquidity, decimal.NewFromInt(totalShares))
	if err != nil {
		return 0, err
	}
	newRate, err := rate.Add(delta)
	if err != nil {
		return 0, fmt.Errorf("prize token per share: %w", err)
	}

	remainder := totalLiquidity.Sub(delta.MulInt(totalShares))
	reserve := d.state.Reserve.
		Add(delta.MulInt(int64(d.state.ReserveShares))).
		Add(remainder)
	if err := safemath.CheckUintValue(reserve, safemath.Uint96); err != nil {
		return 0, fmt.Errorf("reserve: %w", err)
	}

	tiers := d.state.Tiers
	for i := start; i < nextNumberOfTiers; i++ {
		tiers[i] = Tier{
			DrawID:             closedDrawID,
			PrizeTokenPerShare: rate,
			PrizeSize:          d.computePrizeSize(i, nextNumberOfTiers, rate, newRate),
		}
	}

	d.state.Tiers = tiers
	d.state.PrizeTokenPerShare = newRate
	d.state.NumberOfTiers = nextNumberOfTiers
	d.state.LastClosedDrawID = closedDrawID
	d.state.Reserve = reserve
	return closedDrawID, nil
}

// reclamationStart is the first tier whose liquidity is reclaimed and reset
// when moving from numberOfTiers to nextNumberOfTiers tiers. With a canary
// this includes the current canary, or the tier becoming the canary on a
// shrink.
func (d *Distributor) reclamationStart(numberOfTiers, nextNumberOfTiers uint8) uint8 {
	start := min(numberOfTiers, nextNumberOfTiers)
	if d.hasCanary() {
		start--
	}
	return start
}

// Tier returns the refreshed ledger entry of tier.
func (d *Distributor) Tier(tier uint8) (Tier, error) {
	if err := d.checkTier(tier); err != nil {
		return Tier{}, err
	}
	return d.getTier(tier), nil
}

// GetTierPrizeSize returns the size of a single prize of tier in the last
// closed draw.
func (d *Distributor) GetTierPrizeSize(tier uint8) (decimal.Decimal, error) {
	if err := d.checkTier(tier); err != nil {
		return decimal.Zero, err
	}
	return d.getTier(tier).PrizeSize, nil
}

// GetTierRemainingLiquidity returns the whole tokens still available in tier.
func (d *Distributor) GetTierRemainingLiquidity(tier uint8) (decimal.Decimal, error) {
	if err := d.checkTier(tier); err != nil {
		return decimal.Zero, err
	}
	return d.remainingLiquidity(d.state.Tiers[tier], tier, d.state.NumberOfTiers).Floor(), nil
}

// ConsumeLiquidity pays amount out of tier. When the tier does not hold
// enough, the tier is drained and the rest is taken from the reserve.
func (d *Distributor) ConsumeLiquidity(tier uint8, amount decimal.Decimal) error {
	if err := d.checkTier(tier); err != nil {
		return err
	}
	if err := safemath.CheckUint(amount, safemath.Uint104); err != nil {
		return fmt.Errorf("consumed amount: %w", err)
	}

	numberOfTiers := d.state.NumberOfTiers
	t := d.getTier(tier)
	shares := d.TierShares(tier, numberOfTiers)
	remaining := d.remainingLiquidity(t, tier, numberOfTiers)
	reserve := d.state.Reserve

	if amount.GreaterThan(remaining) {
		excess := amount.Sub(remaining)
		if excess.GreaterThan(reserve) {
			return fmt.Errorf("%w: requested %s from tier %d", ErrInsufficientLiquidity, amount, tier)
		}
		reserve = reserve.Sub(excess)
		t.PrizeTokenPerShare = d.state.PrizeTokenPerShare
	} else {
		// The rate moves up by the ceiling so the tier never pays out more
		// than it holds. The overshoot is credited to the reserve.
		delta, err := fixedpoint.DivCeil(amount, decimal.NewFromInt(shares))
		if err != nil {
			return err
		}
		rate, err := t.PrizeTokenPerShare.Add(delta)
		if err != nil {
			return fmt.Errorf("tier prize token per share: %w", err)
		}
		reserve = reserve.Add(delta.MulInt(shares).Sub(amount))
		t.PrizeTokenPerShare = rate
	}

	d.state.Tiers[tier] = t
	d.state.Reserve = reserve
	return nil
}

// EstimateNumberOfTiers returns the ladder size whose expected claims per
// draw cover claimCount.
func (d *Distributor) EstimateNumberOfTiers(claimCount uint32) uint8 {
	return d.table.EstimateNumberOfTiers(claimCount)
}

// ComputeNextNumberOfTiers returns the ladder size for the next draw given
// the claims of the last one. The ladder moves at most one tier per draw
// toward the estimate.
func (d *Distributor) ComputeNextNumberOfTiers(claimCount uint32) uint8 {
	current := d.state.NumberOfTiers
	target := d.EstimateNumberOfTiers(claimCount)
	switch {
	case target > current:
		return current + 1
	case target < current:
		return current - 1
	default:
		return current
	}
}

func (d *Distributor) getTier(tier uint8) Tier {
	t := d.state.Tiers[tier]
	if t.DrawID != d.state.LastClosedDrawID {
		t.DrawID = d.state.LastClosedDrawID
		t.PrizeSize = d.computePrizeSize(tier, d.state.NumberOfTiers, t.PrizeTokenPerShare, d.state.PrizeTokenPerShare)
	}
	return t
}

// remainingLiquidity is the exact liquidity of t, fractional part included.
func (d *Distributor) remainingLiquidity(t Tier, tier, numberOfTiers uint8) decimal.Decimal {
	return d.state.PrizeTokenPerShare.Decimal().
		Sub(t.PrizeTokenPerShare.Decimal()).
		Mul(decimal.NewFromInt(d.TierShares(tier, numberOfTiers)))
}

// computePrizeSize splits the liquidity accrued between tierRate and rate
// over the prizes of tier, saturating at the prize size width.
func (d *Distributor) computePrizeSize(tier, numberOfTiers uint8, tierRate, rate fixedpoint.UD34x4) decimal.Decimal {
	accrued := rate.Decimal().Sub(tierRate.Decimal())
	var size decimal.Decimal
	if d.isCanary(tier, numberOfTiers) {
		num, den := d.canaryPrizeRatio(numberOfTiers)
		size, _ = accrued.Mul(decimal.NewFromInt(int64(d.state.CanaryShares))).Mul(den).QuoRem(num, 0)
	} else {
		liquidity := accrued.Mul(decimal.NewFromInt(int64(d.state.TierShares)))
		size, _ = liquidity.QuoRem(decimal.NewFromInt(int64(odds.PrizeCount(tier))), 0)
	}
	if limit, _ := safemath.MaxUint(safemath.Uint104); size.GreaterThan(limit) {
		return limit
	}
	return size
}

func (d *Distributor) checkTier(tier uint8) error {
	if tier >= d.state.NumberOfTiers {
		return fmt.Errorf("%w: tier %d of %d", ErrInvalidTier, tier, d.state.NumberOfTiers)
	}
	return nil
}
