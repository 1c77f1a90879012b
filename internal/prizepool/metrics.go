package prizepool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DrawsClosedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prizepool_draws_closed_total",
			Help: "Total number of draws closed",
		},
	)

	ContributionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prizepool_contributions_total",
			Help: "Total number of prize token contributions",
		},
	)

	PrizesClaimedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prizepool_prizes_claimed_total",
			Help: "Total number of prizes claimed",
		},
		[]string{"tier"},
	)

	ClaimedAmountTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "prizepool_claimed_amount_total",
			Help: "Total amount of prize tokens paid out",
		},
	)

	ClaimsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prizepool_claims_rejected_total",
			Help: "Total number of rejected claims",
		},
		[]string{"reason"},
	)

	ReserveTokens = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prizepool_reserve_tokens",
			Help: "Whole prize tokens held in reserve",
		},
	)

	NumberOfTiers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prizepool_number_of_tiers",
			Help: "Number of tiers of the last closed draw",
		},
	)

	ReleasedLiquidity = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "prizepool_released_liquidity_tokens",
			Help:    "Liquidity released per closed draw",
			Buckets: prometheus.ExponentialBuckets(1, 10, 12), // 1 to 1e11
		},
	)
)
