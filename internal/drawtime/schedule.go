package drawtime

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Schedule maps wall-clock time onto draw ids. Draw 1 opens at
// FirstDrawOpensAt and every draw lasts DrawPeriod.
type Schedule struct {
	FirstDrawOpensAt time.Time
	DrawPeriod       time.Duration
	Clock            clockwork.Clock
}

// NewSchedule validates and returns a schedule.
func NewSchedule(firstDrawOpensAt time.Time, drawPeriod time.Duration, clock clockwork.Clock) (Schedule, error) {
	s := Schedule{
		FirstDrawOpensAt: firstDrawOpensAt,
		DrawPeriod:       drawPeriod,
		Clock:            clock,
	}
	return s, s.Validate()
}

func (s Schedule) Validate() error {
	if s.DrawPeriod <= 0 {
		return ErrInvalidDrawPeriod
	}
	if s.Clock == nil {
		return ErrNoClock
	}
	return nil
}

// OpensAt returns the time draw d opens.
func (s Schedule) OpensAt(d DrawID) time.Time {
	if d == 0 {
		return s.FirstDrawOpensAt
	}
	return s.FirstDrawOpensAt.Add(time.Duration(d-1) * s.DrawPeriod)
}

// ClosesAt returns the time draw d closes; it is the opening time of d+1.
func (s Schedule) ClosesAt(d DrawID) time.Time {
	return s.FirstDrawOpensAt.Add(time.Duration(d) * s.DrawPeriod)
}

// DrawIDAt returns the draw open at t, or 0 before the first draw.
func (s Schedule) DrawIDAt(t time.Time) DrawID {
	if t.Before(s.FirstDrawOpensAt) {
		return 0
	}
	elapsed := t.Sub(s.FirstDrawOpensAt)
	return DrawID(elapsed/s.DrawPeriod) + 1
}

// CurrentDrawID returns the draw open now.
func (s Schedule) CurrentDrawID() DrawID {
	return s.DrawIDAt(s.Clock.Now())
}

// HasClosed reports whether draw d has ended.
func (s Schedule) HasClosed(d DrawID) bool {
	return !s.Clock.Now().Before(s.ClosesAt(d))
}
