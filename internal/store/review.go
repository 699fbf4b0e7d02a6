package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/engram-api/internal/domain"
)

// ReviewStore defines the interface for the append-only review ledger.
// Records are only ever inserted; there is no update or delete beyond
// the cascade that follows a card's deletion.
type ReviewStore interface {
	// Create appends one review record to the ledger.
	// Returns ErrInvalidEntity if the card no longer exists (foreign key
	// violation) and validation errors from the domain Review otherwise.
	Create(ctx context.Context, review *domain.Review) error

	// ListByCard retrieves a card's review history, most recent first.
	// Returns an empty slice when the card has never been reviewed.
	ListByCard(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]*domain.Review, error)

	// WithTx returns a new ReviewStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) ReviewStore
}
