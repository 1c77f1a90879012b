package distributor

import (
	"math"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/prizepool/internal/drawtime"
	"github.com/eigerco/prizepool/internal/odds"
	"github.com/eigerco/prizepool/internal/safemath"
)

var e18 = decimal.New(1, 18)

func tokens(v int64) decimal.Decimal {
	return decimal.NewFromInt(v).Mul(e18)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got)
}

func withCanary(numberOfTiers uint8) Config {
	return Config{
		NumberOfTiers:    numberOfTiers,
		TierShares:       100,
		CanaryShares:     10,
		ReserveShares:    10,
		GrandPrizePeriod: 365,
	}
}

func withoutCanary(numberOfTiers uint8) Config {
	return Config{
		NumberOfTiers:    numberOfTiers,
		TierShares:       100,
		ReserveShares:    10,
		GrandPrizePeriod: 365,
	}
}

func newDistributor(t *testing.T, cfg Config) *Distributor {
	t.Helper()
	d, err := New(cfg)
	require.NoError(t, err)
	return d
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		err  error
	}{
		{"valid", withCanary(3), nil},
		{"too few tiers", withCanary(2), ErrTiersBelowMinimum},
		{"too many tiers", withCanary(16), ErrTiersAboveMaximum},
		{"zero tier shares", Config{NumberOfTiers: 3, GrandPrizePeriod: 1}, ErrZeroTierShares},
		{"zero grand prize period", Config{NumberOfTiers: 3, TierShares: 1}, ErrZeroGrandPrizePeriod},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestShares(t *testing.T) {
	d := newDistributor(t, withCanary(3))
	assert.Equal(t, int64(220), d.TotalShares(3))
	assert.Equal(t, int64(320), d.TotalShares(4))
	assert.Equal(t, int64(100), d.TierShares(1, 3))
	assert.Equal(t, int64(10), d.TierShares(2, 3))
	assert.Equal(t, int64(100), d.TierShares(2, 4))
	requireDecimal(t, "2.327272727272727273", d.CanaryPrizeCount(3))

	d = newDistributor(t, withoutCanary(3))
	assert.Equal(t, int64(310), d.TotalShares(3))
	assert.Equal(t, int64(100), d.TierShares(2, 3))
	requireDecimal(t, "16", d.CanaryPrizeCount(3))
}

func TestNextDraw_WithoutCanary(t *testing.T) {
	t.Run("reserve takes its share", func(t *testing.T) {
		d := newDistributor(t, withoutCanary(3))
		drawID, err := d.NextDraw(3, tokens(31))
		require.NoError(t, err)
		assert.Equal(t, drawtime.DrawID(1), drawID)

		requireDecimal(t, "1000000000000000000", d.Reserve())
		for tier := uint8(0); tier < 3; tier++ {
			remaining, err := d.GetTierRemainingLiquidity(tier)
			require.NoError(t, err)
			requireDecimal(t, "10000000000000000000", remaining)
		}
	})

	t.Run("prize sizes split tier liquidity over the prize count", func(t *testing.T) {
		d := newDistributor(t, withoutCanary(3))
		_, err := d.NextDraw(3, tokens(310))
		require.NoError(t, err)

		requireDecimal(t, "10000000000000000000", d.Reserve())
		want := []string{"100000000000000000000", "25000000000000000000", "6250000000000000000"}
		for tier, w := range want {
			size, err := d.GetTierPrizeSize(uint8(tier))
			require.NoError(t, err)
			requireDecimal(t, w, size)

			remaining, err := d.GetTierRemainingLiquidity(uint8(tier))
			require.NoError(t, err)
			requireDecimal(t, "100000000000000000000", remaining)
		}
	})

	t.Run("unchanged ladder keeps the last tier's backlog", func(t *testing.T) {
		d := newDistributor(t, withoutCanary(3))
		_, err := d.NextDraw(3, tokens(310))
		require.NoError(t, err)
		_, err = d.NextDraw(3, tokens(310))
		require.NoError(t, err)

		remaining, err := d.GetTierRemainingLiquidity(2)
		require.NoError(t, err)
		requireDecimal(t, "200000000000000000000", remaining)
	})

	t.Run("remainder is swept into the reserve", func(t *testing.T) {
		d := newDistributor(t, withoutCanary(3))
		_, err := d.NextDraw(3, decimal.NewFromInt(1000))
		require.NoError(t, err)
		// 1000/310 = 3.2258 per share, 0.0020 left over
		requireDecimal(t, "3.2258", d.PrizeTokenPerShare().Decimal())
		requireDecimal(t, "32.2600", d.State().Reserve)
		requireDecimal(t, "32", d.Reserve())
	})
}

func TestNextDraw_WithCanary(t *testing.T) {
	d := newDistributor(t, withCanary(3))
	_, err := d.NextDraw(3, tokens(220))
	require.NoError(t, err)

	requireDecimal(t, "10000000000000000000", d.Reserve())
	size, err := d.GetTierPrizeSize(0)
	require.NoError(t, err)
	requireDecimal(t, "100000000000000000000", size)

	// The canary prize matches what tier 2 would pay in a 4 tier ladder:
	// 10e18 * 220 * 100 / (16 * 10 * 320)
	size, err = d.GetTierPrizeSize(2)
	require.NoError(t, err)
	requireDecimal(t, "4296875000000000000", size)

	remaining, err := d.GetTierRemainingLiquidity(2)
	require.NoError(t, err)
	requireDecimal(t, "10000000000000000000", remaining)

	t.Run("canary backlog is redistributed", func(t *testing.T) {
		_, err := d.NextDraw(3, decimal.Zero)
		require.NoError(t, err)
		// the 10e18 reclaimed from the canary is split over 220 shares again
		remaining, err := d.GetTierRemainingLiquidity(2)
		require.NoError(t, err)
		requireDecimal(t, "454545454545454545", remaining)
	})
}

func TestNextDraw_Shrink(t *testing.T) {
	d := newDistributor(t, withCanary(5))
	_, err := d.NextDraw(5, tokens(420))
	require.NoError(t, err)
	requireDecimal(t, "10000000000000000000", d.Reserve())

	// tiers 2 and 3 (100e18 each) and the canary (10e18) are reclaimed
	// and split over 220 shares
	drawID, err := d.NextDraw(3, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, drawtime.DrawID(2), drawID)
	assert.Equal(t, uint8(3), d.NumberOfTiers())

	// 1e18 from the first draw plus 210e18 / 220 from the second
	requireDecimal(t, "1954545454545454545.4545", d.PrizeTokenPerShare().Decimal())
	requireDecimal(t, "19545454545454545454.555", d.State().Reserve)
	requireDecimal(t, "19545454545454545454", d.Reserve())

	remaining, err := d.GetTierRemainingLiquidity(0)
	require.NoError(t, err)
	requireDecimal(t, "195454545454545454545", remaining)

	remaining, err = d.GetTierRemainingLiquidity(2)
	require.NoError(t, err)
	requireDecimal(t, "9545454545454545454", remaining)

	size, err := d.GetTierPrizeSize(2)
	require.NoError(t, err)
	requireDecimal(t, "4101562499999999999", size)

	_, err = d.GetTierPrizeSize(3)
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestNextDraw_Grow(t *testing.T) {
	d := newDistributor(t, withCanary(3))
	_, err := d.NextDraw(3, tokens(220))
	require.NoError(t, err)

	// the canary's 10e18 plus 310e18 new over 320 shares
	_, err = d.NextDraw(4, tokens(310))
	require.NoError(t, err)
	requireDecimal(t, "2000000000000000000", d.PrizeTokenPerShare().Decimal())

	want := []string{
		"200000000000000000000", // tier 0 kept its backlog
		"200000000000000000000",
		"100000000000000000000", // old canary, fresh as a regular tier
		"10000000000000000000",  // new canary
	}
	for tier, w := range want {
		remaining, err := d.GetTierRemainingLiquidity(uint8(tier))
		require.NoError(t, err)
		requireDecimal(t, w, remaining)
	}
	requireDecimal(t, "20000000000000000000", d.Reserve())
}

func TestNextDraw_Errors(t *testing.T) {
	d := newDistributor(t, withCanary(3))
	before := d.State()

	_, err := d.NextDraw(2, tokens(1))
	assert.ErrorIs(t, err, ErrTiersBelowMinimum)
	_, err = d.NextDraw(odds.MaxTiers+1, tokens(1))
	assert.ErrorIs(t, err, ErrTiersAboveMaximum)

	max96, err := safemath.MaxUint(safemath.Uint96)
	require.NoError(t, err)
	_, err = d.NextDraw(3, max96.Add(decimal.NewFromInt(1)))
	assert.ErrorIs(t, err, safemath.ErrOverflow)

	assert.Equal(t, before, d.State())
}

func TestGetTier_LazyRefresh(t *testing.T) {
	d := newDistributor(t, withCanary(3))
	_, err := d.NextDraw(3, tokens(220))
	require.NoError(t, err)
	_, err = d.NextDraw(3, tokens(220))
	require.NoError(t, err)

	// Tier 0 was never written after construction.
	assert.Equal(t, drawtime.DrawID(0), d.State().Tiers[0].DrawID)

	tier, err := d.Tier(0)
	require.NoError(t, err)
	assert.Equal(t, drawtime.DrawID(2), tier.DrawID)
	// the second draw also redistributes the 10e18 reclaimed from the canary
	requireDecimal(t, "204545454545454545454", tier.PrizeSize)

	// Reading does not write.
	assert.Equal(t, drawtime.DrawID(0), d.State().Tiers[0].DrawID)
}

func TestConsumeLiquidity(t *testing.T) {
	t.Run("within the tier", func(t *testing.T) {
		d := newDistributor(t, withCanary(3))
		_, err := d.NextDraw(3, tokens(220))
		require.NoError(t, err)

		require.NoError(t, d.ConsumeLiquidity(1, tokens(25)))
		remaining, err := d.GetTierRemainingLiquidity(1)
		require.NoError(t, err)
		requireDecimal(t, "75000000000000000000", remaining)

		// The prize size is fixed for the draw.
		size, err := d.GetTierPrizeSize(1)
		require.NoError(t, err)
		requireDecimal(t, "25000000000000000000", size)
		assert.Equal(t, drawtime.DrawID(1), d.State().Tiers[1].DrawID)
	})

	t.Run("repeated consumption sees previous calls", func(t *testing.T) {
		d := newDistributor(t, withCanary(3))
		_, err := d.NextDraw(3, tokens(220))
		require.NoError(t, err)

		for i := 0; i < 4; i++ {
			require.NoError(t, d.ConsumeLiquidity(1, tokens(25)))
		}
		remaining, err := d.GetTierRemainingLiquidity(1)
		require.NoError(t, err)
		assert.True(t, remaining.IsZero())
		requireDecimal(t, "10000000000000000000", d.Reserve())
	})

	t.Run("rate rounds up and the overshoot goes to the reserve", func(t *testing.T) {
		d := newDistributor(t, Config{NumberOfTiers: 3, TierShares: 3, ReserveShares: 1, GrandPrizePeriod: 10})
		_, err := d.NextDraw(3, decimal.NewFromInt(10))
		require.NoError(t, err)

		require.NoError(t, d.ConsumeLiquidity(0, decimal.NewFromInt(1)))
		requireDecimal(t, "0.3334", d.State().Tiers[0].PrizeTokenPerShare.Decimal())
		requireDecimal(t, "1.0002", d.State().Reserve)

		remaining, err := d.GetTierRemainingLiquidity(0)
		require.NoError(t, err)
		requireDecimal(t, "1", remaining)
	})

	t.Run("excess is drawn from the reserve", func(t *testing.T) {
		d := newDistributor(t, withCanary(3))
		_, err := d.NextDraw(3, tokens(220))
		require.NoError(t, err)

		require.NoError(t, d.ConsumeLiquidity(0, tokens(105)))
		remaining, err := d.GetTierRemainingLiquidity(0)
		require.NoError(t, err)
		assert.True(t, remaining.IsZero())
		requireDecimal(t, "5000000000000000000", d.Reserve())

		require.NoError(t, d.ConsumeLiquidity(0, decimal.NewFromInt(1)))
		requireDecimal(t, "4999999999999999999", d.Reserve())
	})

	t.Run("insufficient liquidity leaves state untouched", func(t *testing.T) {
		d := newDistributor(t, withCanary(3))
		_, err := d.NextDraw(3, tokens(220))
		require.NoError(t, err)
		before := d.State()

		err = d.ConsumeLiquidity(0, tokens(110).Add(decimal.NewFromInt(1)))
		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
		assert.Contains(t, err.Error(), "110000000000000000001")
		assert.Equal(t, before, d.State())
	})

	t.Run("invalid tier", func(t *testing.T) {
		d := newDistributor(t, withCanary(3))
		err := d.ConsumeLiquidity(3, decimal.NewFromInt(1))
		assert.ErrorIs(t, err, ErrInvalidTier)
	})

	t.Run("amount wider than a prize", func(t *testing.T) {
		d := newDistributor(t, withCanary(3))
		max104, err := safemath.MaxUint(safemath.Uint104)
		require.NoError(t, err)
		err = d.ConsumeLiquidity(0, max104.Add(decimal.NewFromInt(1)))
		assert.ErrorIs(t, err, safemath.ErrOverflow)
	})
}

func TestComputeNextNumberOfTiers(t *testing.T) {
	tests := []struct {
		name    string
		current uint8
		claims  uint32
		want    uint8
	}{
		{"stays", 4, 40, 4},
		{"grows one step", 3, 1000, 4},
		{"shrinks one step", 6, 0, 5},
		{"stays at the minimum", 3, 0, 3},
		{"stays at the maximum", 15, math.MaxUint32, 15},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := newDistributor(t, withCanary(tc.current))
			assert.Equal(t, tc.want, d.ComputeNextNumberOfTiers(tc.claims))
		})
	}

	d := newDistributor(t, withCanary(3))
	assert.Equal(t, uint8(5), d.EstimateNumberOfTiers(100))
}

func TestRestore(t *testing.T) {
	d := newDistributor(t, withCanary(4))
	_, err := d.NextDraw(4, tokens(320))
	require.NoError(t, err)
	require.NoError(t, d.ConsumeLiquidity(2, tokens(7)))

	restored, err := Restore(d.State(), 365)
	require.NoError(t, err)
	assert.Equal(t, d.State(), restored.State())

	for tier := uint8(0); tier < 4; tier++ {
		want, err := d.GetTierPrizeSize(tier)
		require.NoError(t, err)
		got, err := restored.GetTierPrizeSize(tier)
		require.NoError(t, err)
		assert.True(t, want.Equal(got))
	}

	t.Run("rejects a tier ahead of the global rate", func(t *testing.T) {
		state := d.State()
		state.Tiers[0].PrizeTokenPerShare = state.PrizeTokenPerShare
		state.PrizeTokenPerShare = state.Tiers[3].PrizeTokenPerShare
		_, err := Restore(state, 365)
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("rejects an invalid ladder", func(t *testing.T) {
		state := d.State()
		state.NumberOfTiers = 1
		_, err := Restore(state, 365)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.ErrorIs(t, err, ErrTiersBelowMinimum)
	})
}

// tolerance is the rounding slack allowed between whole-token liquidity
// reads and the liquidity fed in.
func tolerance(numberOfTiers uint8) decimal.Decimal {
	return decimal.NewFromInt(8 + int64(math.Ceil(10.0/13.0*float64(numberOfTiers-2))))
}

func TestConservation(t *testing.T) {
	for _, cfg := range []Config{withCanary(3), withoutCanary(3), withCanary(7)} {
		rng := rand.New(rand.NewSource(int64(cfg.NumberOfTiers) + int64(cfg.CanaryShares)))
		d := newDistributor(t, cfg)
		fed := decimal.Zero
		consumed := decimal.Zero

		for draw := 0; draw < 150; draw++ {
			released := decimal.NewFromInt(rng.Int63n(1e6)).Mul(decimal.NewFromInt(rng.Int63n(1e12) + 1))
			next := odds.MinTiers + uint8(rng.Intn(int(odds.MaxTiers-odds.MinTiers+1)))
			_, err := d.NextDraw(next, released)
			require.NoError(t, err)
			fed = fed.Add(released)

			for claim := 0; claim < 20; claim++ {
				tier := uint8(rng.Intn(int(d.NumberOfTiers())))
				size, err := d.GetTierPrizeSize(tier)
				require.NoError(t, err)
				amount := size
				if rng.Intn(10) == 0 {
					amount = size.Mul(decimal.NewFromInt(int64(2 + rng.Intn(50))))
				}

				before := d.State()
				err = d.ConsumeLiquidity(tier, amount)
				if err != nil {
					require.ErrorIs(t, err, ErrInsufficientLiquidity)
					require.Equal(t, before, d.State())
					continue
				}
				consumed = consumed.Add(amount)
			}

			exact := d.state.Reserve
			whole := d.Reserve()
			for tier := uint8(0); tier < d.NumberOfTiers(); tier++ {
				exact = exact.Add(d.remainingLiquidity(d.state.Tiers[tier], tier, d.NumberOfTiers()))
				remaining, err := d.GetTierRemainingLiquidity(tier)
				require.NoError(t, err)
				whole = whole.Add(remaining)
			}

			outstanding := fed.Sub(consumed)
			require.True(t, exact.Equal(outstanding), "draw %d: exact %s, outstanding %s", draw, exact, outstanding)
			require.True(t, whole.LessThanOrEqual(outstanding))
			require.True(t, outstanding.Sub(whole).LessThanOrEqual(tolerance(d.NumberOfTiers())),
				"draw %d: %s lost to rounding", draw, outstanding.Sub(whole))
		}
	}
}
