package domain

import (
	"fmt"
	"time"
)

// Difficulty bounds for a card's memory state. Difficulty outside this
// range, or a non-positive stability, means the persisted row is corrupt.
const (
	MinDifficulty = 1.0
	MaxDifficulty = 10.0
)

// MemoryState is a card's learning state after at least one review:
// how strong the memory is (stability, in days), how hard the card is
// intrinsically (difficulty, in [1,10]), when it should resurface, and
// when it was last seen.
//
// A card that has never been reviewed has no MemoryState at all; callers
// represent that as a nil *MemoryState rather than zeroed fields, so the
// "unseen" and "reviewed" cases stay statically distinct.
//
// MemoryState values are immutable by convention: the scheduler
// constructs a fresh value for every review, it never mutates the prior
// one.
type MemoryState struct {
	Stability    float64   `json:"stability"`  // Days for recall probability to decay to ~90%.
	Difficulty   float64   `json:"difficulty"` // Intrinsic difficulty in [1,10].
	Due          time.Time `json:"due"`
	LastReviewed time.Time `json:"last_reviewed"`
}

// Validate checks the state invariants: positive stability, difficulty
// within [1,10], and a due date present. These should hold for any state
// the scheduler produced, but persisted rows can come back corrupted, so
// the boundary is checked on load.
// All failures wrap ErrInvalidState.
func (m *MemoryState) Validate() error {
	if m.Stability <= 0 {
		return fmt.Errorf("%w: stability %v is not positive", ErrInvalidState, m.Stability)
	}
	if m.Difficulty < MinDifficulty || m.Difficulty > MaxDifficulty {
		return fmt.Errorf(
			"%w: difficulty %v outside [%v,%v]",
			ErrInvalidState,
			m.Difficulty,
			MinDifficulty,
			MaxDifficulty,
		)
	}
	if m.Due.IsZero() {
		return fmt.Errorf("%w: missing due date", ErrInvalidState)
	}
	if m.LastReviewed.IsZero() {
		return fmt.Errorf("%w: missing last reviewed date", ErrInvalidState)
	}
	return nil
}

// DueAt reports whether the card should be shown at the given time.
func (m *MemoryState) DueAt(now time.Time) bool {
	return !m.Due.After(now)
}
