package distributor

import (
	"github.com/shopspring/decimal"

	"github.com/eigerco/prizepool/internal/drawtime"
	"github.com/eigerco/prizepool/internal/fixedpoint"
	"github.com/eigerco/prizepool/internal/odds"
)

// Tier is the ledger entry of one prize tier. PrizeTokenPerShare is the
// global rate the tier has been paid out up to; PrizeSize is cached for
// DrawID and recomputed when a later draw reads it.
type Tier struct {
	DrawID             drawtime.DrawID   `json:"draw_id"`
	PrizeTokenPerShare fixedpoint.UD34x4 `json:"prize_token_per_share"`
	PrizeSize          decimal.Decimal   `json:"prize_size"`
}

// State is the whole persisted state of a distributor. Reserve keeps the
// 4 decimals of the per share rate so sweeping remainders never loses value.
type State struct {
	NumberOfTiers      uint8               `json:"number_of_tiers"`
	TierShares         uint8               `json:"tier_shares"`
	CanaryShares       uint8               `json:"canary_shares"`
	ReserveShares      uint8               `json:"reserve_shares"`
	PrizeTokenPerShare fixedpoint.UD34x4   `json:"prize_token_per_share"`
	Reserve            decimal.Decimal     `json:"reserve"`
	LastClosedDrawID   drawtime.DrawID     `json:"last_closed_draw_id"`
	Tiers              [odds.MaxTiers]Tier `json:"tiers"`
}
