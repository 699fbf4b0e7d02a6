package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/platform/logger"
	"github.com/phrazzld/engram-api/internal/store"
)

// ReviewStore implements the store.ReviewStore interface using a
// PostgreSQL database as the storage backend. Rows are append-only: the
// store exposes no update or delete, and the table's only deletion path
// is the cascade from its card.
type ReviewStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewReviewStore creates a new PostgreSQL implementation of the
// ReviewStore interface. If log is nil the default logger is used.
func NewReviewStore(db store.DBTX, log *slog.Logger) *ReviewStore {
	if db == nil {
		panic("postgres.NewReviewStore: db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &ReviewStore{
		db:     db,
		logger: log.With(slog.String("component", "review_store")),
	}
}

// Ensure ReviewStore implements store.ReviewStore interface
var _ store.ReviewStore = (*ReviewStore)(nil)

// WithTx implements store.ReviewStore.WithTx.
func (s *ReviewStore) WithTx(tx *sql.Tx) store.ReviewStore {
	return &ReviewStore{db: tx, logger: s.logger}
}

// Create implements store.ReviewStore.Create.
func (s *ReviewStore) Create(ctx context.Context, review *domain.Review) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := review.Validate(); err != nil {
		log.Warn("review validation failed during create",
			slog.String("error", err.Error()),
			slog.String("review_id", review.ID.String()))
		return err
	}

	query := `
		INSERT INTO reviews (id, card_id, reviewed, scheduled, rating, stability, difficulty)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		review.ID,
		review.CardID,
		review.ReviewedAt,
		review.ScheduledFor,
		int16(review.Rating),
		review.Stability,
		review.Difficulty,
	)
	if err != nil {
		log.Error("failed to append review record",
			slog.String("error", err.Error()),
			slog.String("review_id", review.ID.String()),
			slog.String("card_id", review.CardID.String()))
		return mapError(err)
	}

	log.Debug("review record appended",
		slog.String("review_id", review.ID.String()),
		slog.String("card_id", review.CardID.String()),
		slog.String("rating", review.Rating.String()))
	return nil
}

// ListByCard implements store.ReviewStore.ListByCard.
func (s *ReviewStore) ListByCard(
	ctx context.Context,
	cardID uuid.UUID,
	limit, offset int,
) ([]*domain.Review, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, card_id, reviewed, scheduled, rating, stability, difficulty
		FROM reviews
		WHERE card_id = $1
		ORDER BY reviewed DESC, id
		LIMIT $2 OFFSET $3
	`
	rows, err := s.db.QueryContext(ctx, query, cardID, limit, offset)
	if err != nil {
		log.Error("failed to list reviews",
			slog.String("error", err.Error()),
			slog.String("card_id", cardID.String()))
		return nil, mapError(err)
	}
	defer func() { _ = rows.Close() }()

	reviews := make([]*domain.Review, 0)
	for rows.Next() {
		var (
			review domain.Review
			rating int16
		)
		err := rows.Scan(
			&review.ID,
			&review.CardID,
			&review.ReviewedAt,
			&review.ScheduledFor,
			&rating,
			&review.Stability,
			&review.Difficulty,
		)
		if err != nil {
			return nil, mapError(err)
		}
		review.Rating = domain.Rating(rating)
		reviews = append(reviews, &review)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return reviews, nil
}
