package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/platform/logger"
	"github.com/phrazzld/engram-api/internal/store"
)

// cardColumns is the column list every card query selects, in the order
// scanCardRow expects.
const cardColumns = `
	id, deck_id, front, back,
	last_rating, last_reviewed, last_scheduled, last_stability, last_difficulty,
	created_at, updated_at`

// CardStore implements the store.CardStore interface using a PostgreSQL
// database as the storage backend.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a new PostgreSQL implementation of the CardStore
// interface. If log is nil the default logger is used.
func NewCardStore(db store.DBTX, log *slog.Logger) *CardStore {
	if db == nil {
		panic("postgres.NewCardStore: db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &CardStore{
		db:     db,
		logger: log.With(slog.String("component", "card_store")),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// WithTx implements store.CardStore.WithTx.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{db: tx, logger: s.logger}
}

// Create implements store.CardStore.Create.
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	return s.insert(ctx, card)
}

// CreateMultiple implements store.CardStore.CreateMultiple. Callers are
// responsible for wrapping the batch in a transaction; without one a
// failure part way through leaves the earlier inserts committed.
func (s *CardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	for _, card := range cards {
		if err := s.insert(ctx, card); err != nil {
			return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
		}
	}
	return nil
}

func (s *CardStore) insert(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		INSERT INTO cards (
			id, deck_id, front, back,
			last_rating, last_reviewed, last_scheduled, last_stability, last_difficulty,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	rating, reviewed, scheduled, stability, difficulty := schedulingColumns(card)
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.DeckID,
		card.Front,
		card.Back,
		rating,
		reviewed,
		scheduled,
		stability,
		difficulty,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return mapError(err)
	}
	return nil
}

// GetByID implements store.CardStore.GetByID.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`
	return s.getCard(ctx, query, id)
}

// GetForUpdate implements store.CardStore.GetForUpdate. The row lock
// serializes concurrent reviews of the same card: the second review
// blocks until the first commits and then sees its result.
func (s *CardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1 FOR UPDATE`
	return s.getCard(ctx, query, id)
}

func (s *CardStore) getCard(ctx context.Context, query string, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, query, id)
	card, err := scanCardRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrCardNotFound
		}
		if errors.Is(err, domain.ErrInvalidState) {
			// Hand the corrupt card back so the caller can repair it.
			log.Warn("card has corrupt scheduling state",
				slog.String("card_id", id.String()),
				slog.String("error", err.Error()))
			return card, err
		}
		log.Error("failed to get card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, mapError(err)
	}
	return card, nil
}

// Update implements store.CardStore.Update. It persists both the content
// and the scheduling columns, so one method serves edits and reviews.
func (s *CardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		UPDATE cards
		SET front = $1, back = $2,
			last_rating = $3, last_reviewed = $4, last_scheduled = $5,
			last_stability = $6, last_difficulty = $7,
			updated_at = $8
		WHERE id = $9
	`
	rating, reviewed, scheduled, stability, difficulty := schedulingColumns(card)
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.Front,
		card.Back,
		rating,
		reviewed,
		scheduled,
		stability,
		difficulty,
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return mapError(err)
	}

	return checkRowsAffected(result, store.ErrCardNotFound)
}

// Delete implements store.CardStore.Delete.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return mapError(err)
	}

	if err := checkRowsAffected(result, store.ErrCardNotFound); err != nil {
		return err
	}

	log.Info("card deleted", slog.String("card_id", id.String()))
	return nil
}

// ListByDeck implements store.CardStore.ListByDeck. It fetches limit+1
// rows to learn whether another page follows without a second count
// query.
func (s *CardStore) ListByDeck(
	ctx context.Context,
	deckID uuid.UUID,
	limit, offset int,
) ([]*domain.Card, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + `
		FROM cards
		WHERE deck_id = $1
		ORDER BY last_reviewed DESC NULLS LAST, id
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, deckID, limit+1, offset)
	if err != nil {
		log.Error("failed to list cards",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, false, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.Card, 0, limit)
	for rows.Next() {
		card, err := scanCardRow(rows.Scan)
		if err != nil && !errors.Is(err, domain.ErrInvalidState) {
			return nil, false, mapError(err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, false, mapError(err)
	}

	hasMore := len(cards) > limit
	if hasMore {
		cards = cards[:limit]
	}
	return cards, hasMore, nil
}

// FindSessionCandidates implements store.CardStore.FindSessionCandidates.
// SQL does only the eligibility pre-filter (never reviewed, or due at or
// before now); ordering and truncation belong to the in-memory planner.
func (s *CardStore) FindSessionCandidates(
	ctx context.Context,
	deckID uuid.UUID,
	now time.Time,
) ([]store.SessionCandidate, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + `
		FROM cards
		WHERE deck_id = $1
		  AND (last_scheduled IS NULL OR last_scheduled <= $2)
	`
	rows, err := s.db.QueryContext(ctx, query, deckID, now)
	if err != nil {
		log.Error("failed to query session candidates",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	candidates := make([]store.SessionCandidate, 0)
	for rows.Next() {
		card, err := scanCardRow(rows.Scan)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidState) {
				// Corrupt rows rejoin the pool as new cards.
				log.Warn("treating corrupt card as new",
					slog.String("card_id", card.ID.String()))
				candidates = append(candidates, store.SessionCandidate{CardID: card.ID})
				continue
			}
			return nil, mapError(err)
		}
		candidates = append(candidates, store.SessionCandidate{
			CardID: card.ID,
			Memory: card.Memory,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return candidates, nil
}

// schedulingColumns flattens a card's optional memory state into the five
// nullable columns the cards table persists.
func schedulingColumns(card *domain.Card) (rating, reviewed, scheduled, stability, difficulty any) {
	if card.LastRating != nil {
		rating = int16(*card.LastRating)
	}
	if card.Memory != nil {
		reviewed = card.Memory.LastReviewed
		scheduled = card.Memory.Due
		stability = card.Memory.Stability
		difficulty = card.Memory.Difficulty
	}
	return rating, reviewed, scheduled, stability, difficulty
}

// scanCardRow reads one card row. The five scheduling columns must be
// all present or all absent; anything else, or out-of-range values,
// yields the card with cleared scheduling state plus a wrapped
// domain.ErrInvalidState so callers can decide to repair.
func scanCardRow(scan func(dest ...any) error) (*domain.Card, error) {
	var (
		card       domain.Card
		rating     sql.NullInt16
		reviewed   sql.NullTime
		scheduled  sql.NullTime
		stability  sql.NullFloat64
		difficulty sql.NullFloat64
	)

	err := scan(
		&card.ID,
		&card.DeckID,
		&card.Front,
		&card.Back,
		&rating,
		&reviewed,
		&scheduled,
		&stability,
		&difficulty,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	populated := 0
	for _, ok := range []bool{reviewed.Valid, scheduled.Valid, stability.Valid, difficulty.Valid} {
		if ok {
			populated++
		}
	}

	switch populated {
	case 0:
		// Never reviewed. A stray rating without state counts as corrupt.
		if rating.Valid {
			return &card, fmt.Errorf(
				"%w: card %s has a last rating but no scheduling state",
				domain.ErrInvalidState, card.ID,
			)
		}
		return &card, nil
	case 4:
		memory := domain.MemoryState{
			Stability:    stability.Float64,
			Difficulty:   difficulty.Float64,
			Due:          scheduled.Time,
			LastReviewed: reviewed.Time,
		}
		if err := memory.Validate(); err != nil {
			return &card, fmt.Errorf("card %s: %w", card.ID, err)
		}
		r := domain.Rating(rating.Int16)
		if !rating.Valid || !r.IsValid() {
			return &card, fmt.Errorf(
				"%w: card %s has scheduling state but rating %d",
				domain.ErrInvalidState, card.ID, rating.Int16,
			)
		}
		card.LastRating = &r
		card.Memory = &memory
		return &card, nil
	default:
		return &card, fmt.Errorf(
			"%w: card %s has %d of 4 scheduling columns populated",
			domain.ErrInvalidState, card.ID, populated,
		)
	}
}
