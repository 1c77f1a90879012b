package prizepool

import "errors"

var (
	ErrInvalidConfig     = errors.New("invalid prize pool config")
	ErrDrawNotFinished   = errors.New("draw has not finished")
	ErrNoClosedDraw      = errors.New("no draw has been closed")
	ErrInvalidTier       = errors.New("tier is not part of the last closed draw")
	ErrInvalidPrizeIndex = errors.New("prize index out of range for tier")
	ErrDidNotWin         = errors.New("user did not win the prize")
	ErrAlreadyClaimed    = errors.New("prize already claimed")
)
