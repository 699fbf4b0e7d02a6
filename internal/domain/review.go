package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Review
var (
	ErrEmptyReviewID        = errors.New("review ID cannot be empty")
	ErrEmptyReviewCardID    = errors.New("review card ID cannot be empty")
	ErrEmptyReviewTimestamp = errors.New("review timestamps cannot be empty")
)

// Review is one append-only ledger entry: the moment a card was reviewed,
// the due date that review produced, the rating given, and the memory
// state that resulted. Records are written once when a review is applied
// and never updated; they only disappear when their card is deleted.
type Review struct {
	ID           uuid.UUID `json:"id"`
	CardID       uuid.UUID `json:"card_id"`
	ReviewedAt   time.Time `json:"reviewed_at"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Rating       Rating    `json:"rating"`
	Stability    float64   `json:"stability"`
	Difficulty   float64   `json:"difficulty"`
}

// NewReview builds the ledger record for a just-applied review from the
// rating and the memory state the scheduler produced.
// Returns an error if validation fails.
func NewReview(cardID uuid.UUID, rating Rating, state MemoryState) (*Review, error) {
	review := &Review{
		ID:           uuid.New(),
		CardID:       cardID,
		ReviewedAt:   state.LastReviewed,
		ScheduledFor: state.Due,
		Rating:       rating,
		Stability:    state.Stability,
		Difficulty:   state.Difficulty,
	}

	if err := review.Validate(); err != nil {
		return nil, err
	}

	return review, nil
}

// Validate checks if the Review has valid data.
// Returns an error if any field fails validation.
func (r *Review) Validate() error {
	if r.ID == uuid.Nil {
		return ErrEmptyReviewID
	}

	if r.CardID == uuid.Nil {
		return ErrEmptyReviewCardID
	}

	if r.ReviewedAt.IsZero() || r.ScheduledFor.IsZero() {
		return ErrEmptyReviewTimestamp
	}

	if !r.Rating.IsValid() {
		return ErrInvalidRating
	}

	state := MemoryState{
		Stability:    r.Stability,
		Difficulty:   r.Difficulty,
		Due:          r.ScheduledFor,
		LastReviewed: r.ReviewedAt,
	}
	return state.Validate()
}
