package prizepool

import (
	"fmt"

	"github.com/eigerco/prizepool/internal/distributor"
	"github.com/eigerco/prizepool/internal/drawtime"
	"github.com/eigerco/prizepool/internal/fixedpoint"
)

// Config holds the construction-time parameters of a prize pool.
type Config struct {
	Distributor distributor.Config
	// Alpha is the per draw decay of contributions, in [0, 1).
	Alpha    fixedpoint.SD59x18
	Schedule drawtime.Schedule
}

func (c Config) Validate() error {
	if err := c.Distributor.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Alpha.IsNegative() || c.Alpha.Cmp(fixedpoint.UnitSD) >= 0 {
		return fmt.Errorf("%w: alpha %s outside [0, 1)", ErrInvalidConfig, c.Alpha)
	}
	if err := c.Schedule.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
