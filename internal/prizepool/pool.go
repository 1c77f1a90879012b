// Package prizepool ties the accumulators, the tier distributor and the
// winner selection into a prize pool. Vaults contribute prize tokens, draws
// close on a fixed schedule and winners claim prizes out of the tiers of the
// last closed draw.
package prizepool

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eigerco/prizepool/internal/accumulator"
	"github.com/eigerco/prizepool/internal/crypto"
	"github.com/eigerco/prizepool/internal/distributor"
	"github.com/eigerco/prizepool/internal/drawtime"
	"github.com/eigerco/prizepool/internal/fixedpoint"
	"github.com/eigerco/prizepool/internal/odds"
	"github.com/eigerco/prizepool/internal/store"
	"github.com/eigerco/prizepool/internal/winner"
	"github.com/eigerco/prizepool/pkg/log"
)

// TwabReader provides time weighted average balances of vault depositors.
type TwabReader interface {
	// TwabBetween returns the average balance of user in vault over
	// [start, end).
	TwabBetween(vault, user crypto.Address, start, end time.Time) (decimal.Decimal, error)
	// TwabTotalSupplyBetween returns the average total supply of vault over
	// [start, end).
	TwabTotalSupplyBetween(vault crypto.Address, start, end time.Time) (decimal.Decimal, error)
}

// PrizePool is safe for concurrent use. Mutations are serialized and every
// mutation is persisted before it becomes visible.
type PrizePool struct {
	mu sync.RWMutex

	cfg   Config
	twab  TwabReader
	store *store.Pool

	distributor         *distributor.Distributor
	total               *accumulator.Accumulator
	winningRandomNumber crypto.Hash
}

// New returns a prize pool backed by s. State found in s is restored,
// otherwise the pool starts with no draw closed.
func New(cfg Config, twab TwabReader, s *store.Pool) (*PrizePool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &PrizePool{cfg: cfg, twab: twab, store: s}

	state, err := s.GetDistributor()
	switch {
	case errors.Is(err, store.ErrNotFound):
		p.distributor, err = distributor.New(cfg.Distributor)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("load distributor: %w", err)
	default:
		p.distributor, err = distributor.Restore(state, cfg.Distributor.GrandPrizePeriod)
		if err != nil {
			return nil, err
		}
	}

	p.total, err = s.GetTotalAccumulator()
	if errors.Is(err, store.ErrNotFound) {
		p.total = accumulator.New()
	} else if err != nil {
		return nil, fmt.Errorf("load total accumulator: %w", err)
	}

	if last := p.distributor.LastClosedDrawID(); last != 0 {
		record, err := s.GetDraw(last)
		if err != nil {
			return nil, fmt.Errorf("load draw %d: %w", last, err)
		}
		p.winningRandomNumber = record.WinningRandomNumber
	}

	log.Pool.Info().
		Uint32("last_closed_draw", uint32(p.distributor.LastClosedDrawID())).
		Uint8("number_of_tiers", p.distributor.NumberOfTiers()).
		Msg("prize pool ready")
	return p, nil
}

// OpenDrawID returns the draw that receives contributions: the draw open
// now, and never one that is already closed.
func (p *PrizePool) OpenDrawID() drawtime.DrawID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.openDrawID()
}

func (p *PrizePool) openDrawID() drawtime.DrawID {
	return max(p.distributor.LastClosedDrawID()+1, p.cfg.Schedule.CurrentDrawID())
}

// ContributePrizeTokens adds amount to the vault's and the pool's
// accumulators in the open draw. Both accumulators are updated and stored
// together or not at all.
func (p *PrizePool) ContributePrizeTokens(vault crypto.Address, amount decimal.Decimal) (drawtime.DrawID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	drawID := p.openDrawID()

	vaultAcc, err := p.vaultAccumulator(vault)
	if err != nil {
		return 0, err
	}
	total := p.total.Clone()

	if _, err := vaultAcc.Add(amount, drawID, p.cfg.Alpha); err != nil {
		return 0, fmt.Errorf("vault contribution: %w", err)
	}
	if _, err := total.Add(amount, drawID, p.cfg.Alpha); err != nil {
		return 0, fmt.Errorf("total contribution: %w", err)
	}
	if err := p.store.PutContribution(vault, vaultAcc, total); err != nil {
		return 0, err
	}
	p.total = total

	ContributionsTotal.Inc()
	log.Pool.Debug().
		Str("vault", vault.String()).
		Str("amount", amount.String()).
		Uint32("draw", uint32(drawID)).
		Msg("prize tokens contributed")
	return drawID, nil
}

// CloseDraw closes the draw following the last closed one with
// winningRandomNumber. The ladder for the closed draw is sized from the
// claims of the previous draw and the liquidity the contributions release in
// the closed draw is distributed over it.
func (p *PrizePool) CloseDraw(winningRandomNumber crypto.Hash) (drawtime.DrawID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	lastClosed := p.distributor.LastClosedDrawID()
	closing, err := lastClosed.Next()
	if err != nil {
		return 0, err
	}
	if !p.cfg.Schedule.HasClosed(closing) {
		return 0, fmt.Errorf("%w: draw %d closes at %s", ErrDrawNotFinished, closing,
			p.cfg.Schedule.ClosesAt(closing).Format(time.RFC3339))
	}

	nextNumberOfTiers := p.distributor.NumberOfTiers()
	if lastClosed != 0 {
		claims, err := p.store.ClaimCount(lastClosed)
		if err != nil {
			return 0, fmt.Errorf("count claims of draw %d: %w", lastClosed, err)
		}
		nextNumberOfTiers = p.distributor.ComputeNextNumberOfTiers(claims)
	}

	released, err := p.total.GetDisbursedBetween(closing, closing, p.cfg.Alpha)
	if err != nil {
		return 0, fmt.Errorf("released liquidity: %w", err)
	}

	next, err := p.cloneDistributor()
	if err != nil {
		return 0, err
	}
	if _, err := next.NextDraw(nextNumberOfTiers, released); err != nil {
		return 0, fmt.Errorf("close draw %d: %w", closing, err)
	}

	record := store.DrawRecord{
		DrawID:              closing,
		WinningRandomNumber: winningRandomNumber,
		NumberOfTiers:       nextNumberOfTiers,
		ReleasedLiquidity:   released,
		ClosedAt:            p.cfg.Schedule.Clock.Now().UTC(),
	}
	if err := p.store.PutDraw(record, next.State()); err != nil {
		return 0, err
	}
	p.distributor = next
	p.winningRandomNumber = winningRandomNumber

	DrawsClosedTotal.Inc()
	NumberOfTiers.Set(float64(nextNumberOfTiers))
	ReserveTokens.Set(next.Reserve().InexactFloat64())
	ReleasedLiquidity.Observe(released.InexactFloat64())
	log.Pool.Info().
		Uint32("draw", uint32(closing)).
		Uint8("number_of_tiers", nextNumberOfTiers).
		Str("released", released.String()).
		Str("reserve", next.Reserve().String()).
		Msg("draw closed")
	return closing, nil
}

// IsWinner reports whether user won prize prizeIndex of tier in the last
// closed draw through vault.
func (p *PrizePool) IsWinner(vault, user crypto.Address, tier uint8, prizeIndex uint32) (bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.isWinner(vault, user, tier, prizeIndex)
}

func (p *PrizePool) isWinner(vault, user crypto.Address, tier uint8, prizeIndex uint32) (bool, error) {
	lastClosed := p.distributor.LastClosedDrawID()
	if lastClosed == 0 {
		return false, ErrNoClosedDraw
	}
	if tier >= p.distributor.NumberOfTiers() {
		return false, fmt.Errorf("%w: tier %d of %d", ErrInvalidTier, tier, p.distributor.NumberOfTiers())
	}
	if count := odds.PrizeCount(tier); prizeIndex >= count {
		return false, fmt.Errorf("%w: index %d of %d", ErrInvalidPrizeIndex, prizeIndex, count)
	}

	tierOdds, err := p.distributor.TierOdds(tier)
	if err != nil {
		return false, err
	}

	// A tier accrues over as many draws as it takes to be won once on
	// average, but never more than the grand prize period.
	window := min(odds.EstimatePrizeFrequencyInDraws(tierOdds), p.distributor.GrandPrizePeriod())
	start := rangeStart(lastClosed, window)

	portion, err := p.vaultPortion(vault, start, lastClosed)
	if err != nil {
		return false, err
	}

	from, to := p.cfg.Schedule.OpensAt(start), p.cfg.Schedule.ClosesAt(lastClosed)
	userTwab, err := p.twab.TwabBetween(vault, user, from, to)
	if err != nil {
		return false, fmt.Errorf("user twab: %w", err)
	}
	supply, err := p.twab.TwabTotalSupplyBetween(vault, from, to)
	if err != nil {
		return false, fmt.Errorf("vault twab: %w", err)
	}

	seed := winner.PseudoRandomSeed(lastClosed, vault, user, tier, prizeIndex, p.winningRandomNumber)
	return winner.IsWinner(seed, userTwab, supply, portion, tierOdds), nil
}

// ClaimPrize pays out a prize won in the last closed draw and returns the
// amount paid. A prize of size zero is recorded like any other so it counts
// toward the claims of the draw and cannot be claimed twice.
func (p *PrizePool) ClaimPrize(vault, user crypto.Address, tier uint8, prizeIndex uint32) (decimal.Decimal, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	drawID := p.distributor.LastClosedDrawID()
	won, err := p.isWinner(vault, user, tier, prizeIndex)
	if err != nil {
		return decimal.Zero, err
	}

	claimed, err := p.store.HasClaim(drawID, vault, user, tier, prizeIndex)
	if err != nil {
		return decimal.Zero, err
	}
	if claimed {
		ClaimsRejectedTotal.WithLabelValues("already_claimed").Inc()
		return decimal.Zero, ErrAlreadyClaimed
	}
	if !won {
		ClaimsRejectedTotal.WithLabelValues("did_not_win").Inc()
		return decimal.Zero, ErrDidNotWin
	}

	amount, err := p.distributor.GetTierPrizeSize(tier)
	if err != nil {
		return decimal.Zero, err
	}
	next, err := p.cloneDistributor()
	if err != nil {
		return decimal.Zero, err
	}
	if err := next.ConsumeLiquidity(tier, amount); err != nil {
		return decimal.Zero, err
	}

	claim := store.Claim{
		DrawID:     drawID,
		Vault:      vault,
		User:       user,
		Tier:       tier,
		PrizeIndex: prizeIndex,
		Amount:     amount,
	}
	if err := p.store.PutClaim(claim, next.State()); err != nil {
		return decimal.Zero, err
	}
	p.distributor = next

	PrizesClaimedTotal.WithLabelValues(strconv.Itoa(int(tier))).Inc()
	ClaimedAmountTotal.Add(amount.InexactFloat64())
	ReserveTokens.Set(next.Reserve().InexactFloat64())
	log.Pool.Debug().
		Uint32("draw", uint32(drawID)).
		Str("vault", vault.String()).
		Str("user", user.String()).
		Uint8("tier", tier).
		Uint32("prize_index", prizeIndex).
		Str("amount", amount.String()).
		Msg("prize claimed")
	return amount, nil
}

// GetVaultPortion returns the share of the liquidity released in draws
// [startDrawID, endDrawID] that was contributed by vault. It is zero when
// nothing was released.
func (p *PrizePool) GetVaultPortion(vault crypto.Address, startDrawID, endDrawID drawtime.DrawID) (fixedpoint.SD59x18, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.vaultPortion(vault, startDrawID, endDrawID)
}

func (p *PrizePool) vaultPortion(vault crypto.Address, startDrawID, endDrawID drawtime.DrawID) (fixedpoint.SD59x18, error) {
	total, err := p.total.GetDisbursedBetween(startDrawID, endDrawID, p.cfg.Alpha)
	if err != nil {
		return fixedpoint.SD59x18{}, err
	}
	if total.IsZero() {
		return fixedpoint.ZeroSD, nil
	}

	vaultAcc, err := p.vaultAccumulator(vault)
	if err != nil {
		return fixedpoint.SD59x18{}, err
	}
	contributed, err := vaultAcc.GetDisbursedBetween(startDrawID, endDrawID, p.cfg.Alpha)
	if err != nil {
		return fixedpoint.SD59x18{}, err
	}
	q, _ := contributed.QuoRem(total, fixedpoint.SDDecimals)
	return fixedpoint.NewSD(q)
}

// GetContributedBetween returns the liquidity released in draws
// [startDrawID, endDrawID] from the contributions of vault.
func (p *PrizePool) GetContributedBetween(vault crypto.Address, startDrawID, endDrawID drawtime.DrawID) (decimal.Decimal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	vaultAcc, err := p.vaultAccumulator(vault)
	if err != nil {
		return decimal.Zero, err
	}
	return vaultAcc.GetDisbursedBetween(startDrawID, endDrawID, p.cfg.Alpha)
}

// GetTotalContributedBetween returns the liquidity released in draws
// [startDrawID, endDrawID] from all contributions.
func (p *PrizePool) GetTotalContributedBetween(startDrawID, endDrawID drawtime.DrawID) (decimal.Decimal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.total.GetDisbursedBetween(startDrawID, endDrawID, p.cfg.Alpha)
}

func (p *PrizePool) LastClosedDrawID() drawtime.DrawID {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.distributor.LastClosedDrawID()
}

func (p *PrizePool) WinningRandomNumber() crypto.Hash {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.winningRandomNumber
}

func (p *PrizePool) NumberOfTiers() uint8 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.distributor.NumberOfTiers()
}

func (p *PrizePool) Reserve() decimal.Decimal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.distributor.Reserve()
}

func (p *PrizePool) GetTierPrizeSize(tier uint8) (decimal.Decimal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.distributor.GetTierPrizeSize(tier)
}

func (p *PrizePool) GetTierRemainingLiquidity(tier uint8) (decimal.Decimal, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.distributor.GetTierRemainingLiquidity(tier)
}

func (p *PrizePool) GetTierOdds(tier uint8) (fixedpoint.SD59x18, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.distributor.TierOdds(tier)
}

// Tiers returns the refreshed ledger entries of the current ladder.
func (p *PrizePool) Tiers() []distributor.Tier {
	p.mu.RLock()
	defer p.mu.RUnlock()

	tiers := make([]distributor.Tier, 0, p.distributor.NumberOfTiers())
	for i := range p.distributor.NumberOfTiers() {
		t, _ := p.distributor.Tier(i)
		tiers = append(tiers, t)
	}
	return tiers
}

// DistributorState returns a copy of the distributor ledger.
func (p *PrizePool) DistributorState() distributor.State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.distributor.State()
}

func (p *PrizePool) cloneDistributor() (*distributor.Distributor, error) {
	return distributor.Restore(p.distributor.State(), p.distributor.GrandPrizePeriod())
}

// vaultAccumulator loads the accumulator of vault, or an empty one if the
// vault never contributed.
func (p *PrizePool) vaultAccumulator(vault crypto.Address) (*accumulator.Accumulator, error) {
	acc, err := p.store.GetVaultAccumulator(vault)
	if errors.Is(err, store.ErrNotFound) {
		return accumulator.New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load vault accumulator: %w", err)
	}
	return acc, nil
}

// rangeStart returns the first of the window draws ending at end, clamped to
// the first draw.
func rangeStart(end drawtime.DrawID, window uint32) drawtime.DrawID {
	if window == 0 || uint64(window) >= uint64(end) {
		return drawtime.MinDrawID
	}
	return end - drawtime.DrawID(window) + 1
}
