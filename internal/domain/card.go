package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for Card
var (
	ErrEmptyCardID     = errors.New("card ID cannot be empty")
	ErrEmptyCardDeckID = errors.New("card deck ID cannot be empty")
	ErrEmptyCardFront  = errors.New("card front cannot be empty")
	ErrEmptyCardBack   = errors.New("card back cannot be empty")
)

// Card represents a single flashcard: a prompt (front), an answer (back),
// and the scheduling state accumulated from reviews. Memory and LastRating
// are nil until the card's first review.
type Card struct {
	ID         uuid.UUID    `json:"id"`
	DeckID     uuid.UUID    `json:"deck_id"`
	Front      string       `json:"front"`
	Back       string       `json:"back"`
	LastRating *Rating      `json:"last_rating,omitempty"`
	Memory     *MemoryState `json:"memory,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// NewCard creates a new, never-reviewed Card in the given deck.
// It generates a new UUID for the card ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewCard(deckID uuid.UUID, front, back string) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:        uuid.New(),
		DeckID:    deckID,
		Front:     strings.TrimSpace(front),
		Back:      strings.TrimSpace(back),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data.
// Returns an error if any field fails validation, including ErrInvalidState
// (wrapped) when the scheduling fields are corrupt.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCardID
	}

	if c.DeckID == uuid.Nil {
		return ErrEmptyCardDeckID
	}

	if strings.TrimSpace(c.Front) == "" {
		return ErrEmptyCardFront
	}

	if strings.TrimSpace(c.Back) == "" {
		return ErrEmptyCardBack
	}

	if c.LastRating != nil && !c.LastRating.IsValid() {
		return ErrInvalidRating
	}

	if c.Memory != nil {
		if err := c.Memory.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Reviewed reports whether the card has any review history.
func (c *Card) Reviewed() bool {
	return c.Memory != nil
}

// UpdateContent replaces the card's front and back text and bumps the
// update timestamp. Scheduling state is untouched: editing a card does
// not reset its memory.
func (c *Card) UpdateContent(front, back string) error {
	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)

	if front == "" {
		return ErrEmptyCardFront
	}
	if back == "" {
		return ErrEmptyCardBack
	}

	c.Front = front
	c.Back = back
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// ApplyReview records the outcome of a review: the new memory state
// produced by the scheduler and the rating that produced it.
func (c *Card) ApplyReview(rating Rating, state MemoryState) error {
	if !rating.IsValid() {
		return ErrInvalidRating
	}
	if err := state.Validate(); err != nil {
		return err
	}

	c.LastRating = &rating
	c.Memory = &state
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// ClearMemory removes all scheduling state, returning the card to the
// never-reviewed pool. Used when persisted state comes back corrupt.
func (c *Card) ClearMemory() {
	c.LastRating = nil
	c.Memory = nil
	c.UpdatedAt = time.Now().UTC()
}
