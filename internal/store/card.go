package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/engram-api/internal/domain"
)

// SessionCandidate is the read-side projection the session planner
// consumes: a card ID plus its memory state, nil for never-reviewed
// cards. Stores produce these; the planner orders and truncates them.
type SessionCandidate struct {
	CardID uuid.UUID
	Memory *domain.MemoryState
}

// CardStore defines the interface for card data persistence.
type CardStore interface {
	// Create saves a single new card to the store.
	// Returns validation errors from the domain Card if data is invalid.
	Create(ctx context.Context, card *domain.Card) error

	// CreateMultiple saves multiple cards in one batch. Run it inside a
	// transaction (WithTx + RunInTransaction) so a failure part way
	// through leaves no partial insert behind.
	CreateMultiple(ctx context.Context, cards []*domain.Card) error

	// GetByID retrieves a card by its unique ID.
	// Returns ErrCardNotFound if the card does not exist.
	// When the persisted scheduling columns are corrupt (out-of-range
	// difficulty, non-positive stability, or a half-present pair) it
	// returns the card with cleared scheduling state together with a
	// wrapped domain.ErrInvalidState, so callers can repair the row by
	// treating the card as new.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// GetForUpdate retrieves a card with a row-level lock using
	// SELECT ... FOR UPDATE. Use inside a transaction when the row will
	// be updated, so concurrent reviews of the same card serialize on
	// the lock and each sees the previous review's result.
	// Error behavior matches GetByID.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// Update persists the card's current content and scheduling state.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// Delete removes a card by its ID. Its review records cascade at the
	// database level.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByDeck retrieves one page of a deck's cards, most recently
	// reviewed first with never-reviewed cards last, ID as tiebreak.
	// It returns up to limit cards plus a flag reporting whether more
	// pages follow. offset is the number of cards to skip.
	ListByDeck(ctx context.Context, deckID uuid.UUID, limit, offset int) ([]*domain.Card, bool, error)

	// FindSessionCandidates retrieves the deck's cards eligible for
	// review at the given time: never reviewed, or due at or before now.
	// The rows come back unordered; session ordering and truncation are
	// the planner's job, not SQL's. Candidates with corrupt scheduling
	// columns come back with nil Memory: they rejoin the new pool, and
	// the next review rebuilds their state from scratch.
	FindSessionCandidates(ctx context.Context, deckID uuid.UUID, now time.Time) ([]SessionCandidate, error)

	// WithTx returns a new CardStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) CardStore
}
