package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/platform/logger"
	"github.com/phrazzld/engram-api/internal/store"
)

// DeckStore implements the store.DeckStore interface using a PostgreSQL
// database as the storage backend.
type DeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewDeckStore creates a new PostgreSQL implementation of the DeckStore
// interface. If log is nil the default logger is used.
func NewDeckStore(db store.DBTX, log *slog.Logger) *DeckStore {
	if db == nil {
		panic("postgres.NewDeckStore: db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &DeckStore{
		db:     db,
		logger: log.With(slog.String("component", "deck_store")),
	}
}

// Ensure DeckStore implements store.DeckStore interface
var _ store.DeckStore = (*DeckStore)(nil)

// WithTx implements store.DeckStore.WithTx.
func (s *DeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &DeckStore{db: tx, logger: s.logger}
}

// Create implements store.DeckStore.Create.
func (s *DeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during create",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	query := `
		INSERT INTO decks (id, user_id, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		deck.ID,
		deck.UserID,
		deck.Name,
		deck.CreatedAt,
		deck.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return store.ErrDeckNameExists
		}
		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return mapError(err)
	}

	log.Info("deck created",
		slog.String("deck_id", deck.ID.String()),
		slog.String("user_id", deck.UserID.String()))
	return nil
}

// GetByID implements store.DeckStore.GetByID.
func (s *DeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, name, created_at, updated_at
		FROM decks
		WHERE id = $1
	`
	var deck domain.Deck
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&deck.ID,
		&deck.UserID,
		&deck.Name,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeckNotFound
		}
		log.Error("failed to get deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return nil, mapError(err)
	}
	return &deck, nil
}

// ListByUser implements store.DeckStore.ListByUser. The aggregate card
// stats are computed in a single query with conditional counts over the
// card scheduling columns: never reviewed, due now, scheduled ahead.
func (s *DeckStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]store.DeckWithStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT d.id, d.user_id, d.name, d.created_at, d.updated_at,
			COUNT(c.id) FILTER (WHERE c.last_reviewed IS NULL) AS new_count,
			COUNT(c.id) FILTER (WHERE c.last_scheduled <= NOW()) AS due_count,
			COUNT(c.id) FILTER (WHERE c.last_scheduled > NOW()) AS scheduled_count
		FROM decks d
		LEFT JOIN cards c ON c.deck_id = d.id
		WHERE d.user_id = $1
		GROUP BY d.id
		ORDER BY d.name, d.id
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list decks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]store.DeckWithStats, 0)
	for rows.Next() {
		var item store.DeckWithStats
		err := rows.Scan(
			&item.Deck.ID,
			&item.Deck.UserID,
			&item.Deck.Name,
			&item.Deck.CreatedAt,
			&item.Deck.UpdatedAt,
			&item.Stats.NewCount,
			&item.Stats.DueCount,
			&item.Stats.ScheduledCount,
		)
		if err != nil {
			return nil, mapError(err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

// Update implements store.DeckStore.Update.
func (s *DeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		return err
	}

	query := `
		UPDATE decks
		SET name = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, deck.Name, deck.UpdatedAt, deck.ID)
	if err != nil {
		if isUniqueViolation(err, "") {
			return store.ErrDeckNameExists
		}
		log.Error("failed to update deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return mapError(err)
	}

	return checkRowsAffected(result, store.ErrDeckNotFound)
}

// Delete implements store.DeckStore.Delete.
func (s *DeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return mapError(err)
	}

	if err := checkRowsAffected(result, store.ErrDeckNotFound); err != nil {
		return err
	}

	log.Info("deck deleted", slog.String("deck_id", id.String()))
	return nil
}
