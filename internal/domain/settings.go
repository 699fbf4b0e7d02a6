package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Bounds and defaults for per-user scheduling settings. Retention is
// persisted as an integer percentage and divided by 100 before it reaches
// the scheduler; 5–95 keeps the derived desired retention inside (0,1)
// with margin against degenerate intervals at the extremes.
const (
	MinCardsPerSession = 1
	MaxCardsPerSession = 100
	MinRetentionPct    = 5
	MaxRetentionPct    = 95

	DefaultCardsPerSession = 20
	DefaultRetentionPct    = 75
)

// UserSettings holds the per-user knobs the scheduler reads: how many
// cards one review session may contain, and the target recall probability
// at the due date. Read-only to the engine; set by the user.
type UserSettings struct {
	UserID          uuid.UUID `json:"user_id"`
	CardsPerSession int       `json:"cards_per_session"`
	RetentionPct    int       `json:"retention_pct"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewUserSettings creates settings for a user with the application
// defaults (20 cards per session, 75% retention).
func NewUserSettings(userID uuid.UUID) *UserSettings {
	return &UserSettings{
		UserID:          userID,
		CardsPerSession: DefaultCardsPerSession,
		RetentionPct:    DefaultRetentionPct,
		UpdatedAt:       time.Now().UTC(),
	}
}

// Validate checks if the UserSettings has valid data.
// Out-of-range values wrap ErrInvalidConfig.
func (s *UserSettings) Validate() error {
	if s.UserID == uuid.Nil {
		return fmt.Errorf("%w: settings user ID cannot be empty", ErrInvalidConfig)
	}

	if s.CardsPerSession < MinCardsPerSession || s.CardsPerSession > MaxCardsPerSession {
		return fmt.Errorf(
			"%w: cards per session %d outside [%d,%d]",
			ErrInvalidConfig,
			s.CardsPerSession,
			MinCardsPerSession,
			MaxCardsPerSession,
		)
	}

	if s.RetentionPct < MinRetentionPct || s.RetentionPct > MaxRetentionPct {
		return fmt.Errorf(
			"%w: retention %d%% outside [%d,%d]",
			ErrInvalidConfig,
			s.RetentionPct,
			MinRetentionPct,
			MaxRetentionPct,
		)
	}

	return nil
}

// DesiredRetention converts the stored integer percentage into the (0,1)
// fraction the scheduler consumes.
func (s *UserSettings) DesiredRetention() float64 {
	return float64(s.RetentionPct) / 100
}

// Update applies new values and bumps the update timestamp.
// Returns an error without modifying the settings if validation fails.
func (s *UserSettings) Update(cardsPerSession, retentionPct int) error {
	next := *s
	next.CardsPerSession = cardsPerSession
	next.RetentionPct = retentionPct
	if err := next.Validate(); err != nil {
		return err
	}

	s.CardsPerSession = cardsPerSession
	s.RetentionPct = retentionPct
	s.UpdatedAt = time.Now().UTC()
	return nil
}
