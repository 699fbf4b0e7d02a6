package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/engram-api/internal/domain"
)

// DeckStats summarizes a deck's cards by scheduling status at the moment
// of the query: never-reviewed cards, cards whose due date has passed,
// and cards scheduled in the future.
type DeckStats struct {
	NewCount       int `json:"new_count"`
	DueCount       int `json:"due_count"`
	ScheduledCount int `json:"scheduled_count"`
}

// DeckWithStats pairs a deck with its aggregate card stats for listing.
type DeckWithStats struct {
	Deck  domain.Deck `json:"deck"`
	Stats DeckStats   `json:"stats"`
}

// DeckStore defines the interface for deck data persistence.
type DeckStore interface {
	// Create saves a new deck to the store.
	// Returns ErrDeckNameExists if the user already has a deck with the
	// same name. Returns validation errors from the domain Deck if data
	// is invalid.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist. Ownership is
	// not checked here; callers compare UserID themselves.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// ListByUser retrieves all decks owned by a user, each with its
	// aggregate card stats computed at the given time, ordered by name.
	// Returns an empty slice when the user has no decks.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]DeckWithStats, error)

	// Update saves changes to an existing deck.
	// Returns ErrDeckNotFound if the deck does not exist and
	// ErrDeckNameExists on a name collision within the same user.
	Update(ctx context.Context, deck *domain.Deck) error

	// Delete removes a deck by its ID. Cards and their reviews cascade
	// at the database level.
	// Returns ErrDeckNotFound if the deck does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new DeckStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) DeckStore
}
