package srs

import (
	"fmt"

	"github.com/phrazzld/engram-api/internal/domain"
)

// WeightCount is the length of the weight vector driving the recurrence.
const WeightCount = 17

// MaxIntervalDays caps the interval between reviews at roughly a century.
// Intervals beyond this are indistinguishable from "never show again".
const MaxIntervalDays = 36500

// Weights is the process-wide tunable weight vector of the scheduling
// recurrence. The first four entries are the initial stability per first
// rating (Again, Hard, Good, Easy); the rest shape the difficulty and
// stability update curves. Loaded once at startup and treated as
// immutable for the process lifetime.
type Weights [WeightCount]float64

// DefaultWeights returns the stock weight vector.
func DefaultWeights() Weights {
	return Weights{
		0.4, 0.6, 2.4, 5.8, // initial stability per first rating
		4.93, 0.94, // initial difficulty center and spread
		0.86, 0.01, // difficulty shift and mean reversion
		1.49, 0.14, 0.94, // recall stability growth
		2.18, 0.05, 0.34, 1.26, // forget stability
		0.29, 2.61, // hard penalty, easy bonus
	}
}

// Validate checks that every weight is non-negative.
// Out-of-range weights wrap domain.ErrInvalidConfig.
func (w Weights) Validate() error {
	for i, v := range w {
		if v < 0 {
			return fmt.Errorf("%w: weight %d is negative (%v)", domain.ErrInvalidConfig, i, v)
		}
	}
	return nil
}

// Params defines the process-wide configuration of the scheduler: the
// weight vector and the interval cap. Per-user knobs (desired retention,
// session cap) are not here; they arrive per call via SchedulingConfig.
type Params struct {
	Weights         Weights
	MaxIntervalDays int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		Weights:         DefaultWeights(),
		MaxIntervalDays: MaxIntervalDays,
	}
}

// Validate checks if the Params are usable.
// Returns an error wrapping domain.ErrInvalidConfig if not.
func (p *Params) Validate() error {
	if err := p.Weights.Validate(); err != nil {
		return err
	}
	if p.MaxIntervalDays < 1 {
		return fmt.Errorf(
			"%w: max interval %d days must be at least 1",
			domain.ErrInvalidConfig,
			p.MaxIntervalDays,
		)
	}
	return nil
}

// SchedulingConfig carries the per-user scheduling knobs, read-only to
// the engine: the target recall probability at the due date and the
// session size cap. Build one from domain.UserSettings, or use
// DefaultSchedulingConfig when the user has none.
type SchedulingConfig struct {
	DesiredRetention   float64
	MaxCardsPerSession int
}

// DefaultSchedulingConfig returns the application defaults: 75% target
// retention, 20 cards per session.
func DefaultSchedulingConfig() SchedulingConfig {
	return SchedulingConfig{
		DesiredRetention:   float64(domain.DefaultRetentionPct) / 100,
		MaxCardsPerSession: domain.DefaultCardsPerSession,
	}
}

// Validate checks the config ranges: retention strictly inside (0,1) and
// a positive session cap. Failures wrap domain.ErrInvalidConfig.
func (c SchedulingConfig) Validate() error {
	if c.DesiredRetention <= 0 || c.DesiredRetention >= 1 {
		return fmt.Errorf(
			"%w: desired retention %v outside (0,1)",
			domain.ErrInvalidConfig,
			c.DesiredRetention,
		)
	}
	if c.MaxCardsPerSession <= 0 {
		return fmt.Errorf(
			"%w: max cards per session %d must be positive",
			domain.ErrInvalidConfig,
			c.MaxCardsPerSession,
		)
	}
	return nil
}
