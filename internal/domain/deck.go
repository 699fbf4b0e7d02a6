package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxDeckNameLength bounds deck names; longer names are a validation error.
const MaxDeckNameLength = 100

// Common validation errors for Deck
var (
	ErrEmptyDeckID     = errors.New("deck ID cannot be empty")
	ErrEmptyDeckUserID = errors.New("deck user ID cannot be empty")
	ErrEmptyDeckName   = errors.New("deck name cannot be empty")
	ErrDeckNameTooLong = errors.New("deck name too long")
)

// Deck is a named collection of cards owned by a single user. All card
// access is scoped through deck ownership.
type Deck struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDeck creates a new Deck with the given owner and name.
// It generates a new UUID for the deck ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewDeck(userID uuid.UUID, name string) (*Deck, error) {
	now := time.Now().UTC()
	deck := &Deck{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
// Returns an error if any field fails validation.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDeckID
	}

	if d.UserID == uuid.Nil {
		return ErrEmptyDeckUserID
	}

	name := strings.TrimSpace(d.Name)
	if name == "" {
		return ErrEmptyDeckName
	}
	if len(name) > MaxDeckNameLength {
		return ErrDeckNameTooLong
	}

	return nil
}

// Rename changes the deck's name and bumps the update timestamp.
// Returns an error if the new name is invalid.
func (d *Deck) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyDeckName
	}
	if len(name) > MaxDeckNameLength {
		return ErrDeckNameTooLong
	}

	d.Name = name
	d.UpdatedAt = time.Now().UTC()
	return nil
}
