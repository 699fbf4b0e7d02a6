package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/domain/srs"
	"github.com/phrazzld/engram-api/internal/store"
)

// ReviewService runs the scheduling engine against stored cards: it plans
// review sessions, applies review outcomes, and reads the review ledger.
type ReviewService interface {
	// PlanSession builds the review queue for a deck: eligible cards
	// (never reviewed or due now) ordered by due date ascending, capped
	// by the user's cards-per-session setting. The queue is deterministic
	// for a fixed instant; planning does not mutate anything.
	PlanSession(ctx context.Context, userID, deckID uuid.UUID) ([]*domain.Card, error)

	// SubmitReview applies one review outcome to a card inside a
	// row-locked transaction: computes the next memory state, updates the
	// card, and appends a ledger record. Concurrent reviews of the same
	// card serialize on the row lock. A card whose persisted state is
	// corrupt is rescheduled as new.
	// Returns the card carrying its new memory state.
	SubmitReview(ctx context.Context, userID, cardID uuid.UUID, rating domain.Rating) (*domain.Card, error)

	// GetHistory retrieves one page of a card's review records, newest
	// first.
	GetHistory(ctx context.Context, userID, cardID uuid.UUID, limit, offset int) ([]*domain.Review, error)
}

// ReviewServiceImpl implements ReviewService.
type ReviewServiceImpl struct {
	cardStore     store.CardStore
	deckStore     store.DeckStore
	reviewStore   store.ReviewStore
	settingsStore store.SettingsStore
	scheduler     srs.Service
	db            *sql.DB
	logger        *slog.Logger
	timeFunc      func() time.Time // injectable for testing
}

var _ ReviewService = (*ReviewServiceImpl)(nil)

// NewReviewService creates a new ReviewService.
func NewReviewService(
	cardStore store.CardStore,
	deckStore store.DeckStore,
	reviewStore store.ReviewStore,
	settingsStore store.SettingsStore,
	scheduler srs.Service,
	db *sql.DB,
	logger *slog.Logger,
) *ReviewServiceImpl {
	return &ReviewServiceImpl{
		cardStore:     cardStore,
		deckStore:     deckStore,
		reviewStore:   reviewStore,
		settingsStore: settingsStore,
		scheduler:     scheduler,
		db:            db,
		logger:        logger.With(slog.String("component", "review_service")),
		timeFunc:      time.Now,
	}
}

// schedulingConfig loads the user's settings, falling back to the
// application defaults when none have been saved.
func (s *ReviewServiceImpl) schedulingConfig(
	ctx context.Context,
	userID uuid.UUID,
) (srs.SchedulingConfig, error) {
	settings, err := s.settingsStore.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, store.ErrSettingsNotFound) {
			return srs.SchedulingConfig{}, fmt.Errorf("failed to load settings: %w", err)
		}
		settings = domain.NewUserSettings(userID)
	}

	return srs.SchedulingConfig{
		DesiredRetention:   settings.DesiredRetention(),
		MaxCardsPerSession: settings.CardsPerSession,
	}, nil
}

// PlanSession builds the review queue for a deck.
func (s *ReviewServiceImpl) PlanSession(
	ctx context.Context,
	userID, deckID uuid.UUID,
) ([]*domain.Card, error) {
	deck, err := s.deckStore.GetByID(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve deck: %w", err)
	}
	if deck.UserID != userID {
		return nil, ErrNotOwned
	}

	cfg, err := s.schedulingConfig(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.timeFunc().UTC()
	rows, err := s.cardStore.FindSessionCandidates(ctx, deckID, now)
	if err != nil {
		s.logger.Error("failed to load session candidates",
			"error", err,
			"deck_id", deckID)
		return nil, fmt.Errorf("failed to load session candidates: %w", err)
	}

	candidates := make([]srs.Candidate, len(rows))
	for i, row := range rows {
		candidates[i] = srs.Candidate{CardID: row.CardID, Memory: row.Memory}
	}

	ordered, err := srs.Plan(candidates, now, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to plan session: %w", err)
	}

	// The plan is a list of IDs; hydrate it into cards. Bounded by the
	// session cap, so one query per card stays small.
	cards := make([]*domain.Card, 0, len(ordered))
	for _, id := range ordered {
		card, err := s.cardStore.GetByID(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrInvalidState) {
			if store.IsNotFoundError(err) {
				// Deleted between the candidate query and hydration.
				continue
			}
			return nil, fmt.Errorf("failed to load session card: %w", err)
		}
		cards = append(cards, card)
	}

	s.logger.Debug("session planned",
		"deck_id", deckID,
		"user_id", userID,
		"cards", len(cards))
	return cards, nil
}

// SubmitReview applies one review outcome to a card.
func (s *ReviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID, cardID uuid.UUID,
	rating domain.Rating,
) (*domain.Card, error) {
	if !rating.IsValid() {
		return nil, fmt.Errorf("%w: %d", domain.ErrInvalidRating, int(rating))
	}

	cfg, err := s.schedulingConfig(ctx, userID)
	if err != nil {
		return nil, err
	}

	var card *domain.Card
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cardTx := s.cardStore.WithTx(tx)
		deckTx := s.deckStore.WithTx(tx)
		reviewTx := s.reviewStore.WithTx(tx)

		var err error
		card, err = cardTx.GetForUpdate(ctx, cardID)
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidState) {
				return fmt.Errorf("failed to retrieve card: %w", err)
			}
			// Corrupt persisted state: the store has cleared it, and this
			// review rebuilds the card's memory from scratch.
			s.logger.Warn("rescheduling card with corrupt state as new",
				"card_id", cardID,
				"error", err)
		}

		deck, err := deckTx.GetByID(ctx, card.DeckID)
		if err != nil {
			return fmt.Errorf("failed to retrieve deck: %w", err)
		}
		if deck.UserID != userID {
			return ErrNotOwned
		}

		now := s.timeFunc().UTC()
		state, err := s.scheduler.Schedule(card.Memory, rating, now, cfg)
		if err != nil {
			return fmt.Errorf("failed to schedule review: %w", err)
		}

		if err := card.ApplyReview(rating, state); err != nil {
			return fmt.Errorf("failed to apply review: %w", err)
		}
		if err := cardTx.Update(ctx, card); err != nil {
			return fmt.Errorf("failed to save card: %w", err)
		}

		review, err := domain.NewReview(card.ID, rating, state)
		if err != nil {
			return fmt.Errorf("failed to build review record: %w", err)
		}
		return reviewTx.Create(ctx, review)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review recorded",
		"card_id", cardID,
		"user_id", userID,
		"rating", rating.String(),
		"due", card.Memory.Due)
	return card, nil
}

// GetHistory retrieves one page of a card's review records.
func (s *ReviewServiceImpl) GetHistory(
	ctx context.Context,
	userID, cardID uuid.UUID,
	limit, offset int,
) ([]*domain.Review, error) {
	card, err := s.cardStore.GetByID(ctx, cardID)
	if err != nil && !errors.Is(err, domain.ErrInvalidState) {
		return nil, fmt.Errorf("failed to retrieve card: %w", err)
	}

	deck, err := s.deckStore.GetByID(ctx, card.DeckID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve deck: %w", err)
	}
	if deck.UserID != userID {
		return nil, ErrNotOwned
	}

	reviews, err := s.reviewStore.ListByCard(ctx, cardID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list reviews",
			"error", err,
			"card_id", cardID)
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}
