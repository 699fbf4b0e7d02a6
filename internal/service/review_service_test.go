package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/domain/srs"
	"github.com/phrazzld/engram-api/internal/store"
)

func newReviewService(
	cards *mockCardStore,
	decks *mockDeckStore,
	reviews *mockReviewStore,
	settings *mockSettingsStore,
	db *sql.DB,
) *ReviewServiceImpl {
	return NewReviewService(
		cards, decks, reviews, settings,
		srs.NewDefaultService(), db, testLogger(),
	)
}

func TestReviewService_PlanSession(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	deck := ownedTestDeck(t, userID)
	now := time.Now().UTC()

	overdue := ownedTestCard(t, deck.ID)
	fresh := ownedTestCard(t, deck.ID)

	overdueState := &domain.MemoryState{
		Stability:    2.4,
		Difficulty:   4.93,
		Due:          now.Add(-48 * time.Hour),
		LastReviewed: now.Add(-72 * time.Hour),
	}

	cardByID := map[uuid.UUID]*domain.Card{overdue.ID: overdue, fresh.ID: fresh}
	cards := &mockCardStore{
		FindSessionCandidatesFunc: func(ctx context.Context, deckID uuid.UUID, at time.Time) ([]store.SessionCandidate, error) {
			assert.Equal(t, deck.ID, deckID)
			return []store.SessionCandidate{
				{CardID: fresh.ID, Memory: nil},
				{CardID: overdue.ID, Memory: overdueState},
			}, nil
		},
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
			card, ok := cardByID[id]
			if !ok {
				return nil, store.ErrCardNotFound
			}
			return card, nil
		},
	}

	t.Run("overdue before new", func(t *testing.T) {
		svc := newReviewService(cards, deckStoreReturning(deck), &mockReviewStore{}, defaultSettingsStore(), nil)

		queue, err := svc.PlanSession(context.Background(), userID, deck.ID)
		require.NoError(t, err)
		require.Len(t, queue, 2)
		assert.Equal(t, overdue.ID, queue[0].ID)
		assert.Equal(t, fresh.ID, queue[1].ID)
	})

	t.Run("session cap truncates", func(t *testing.T) {
		settings := &mockSettingsStore{
			GetFunc: func(ctx context.Context, id uuid.UUID) (*domain.UserSettings, error) {
				s := domain.NewUserSettings(id)
				require.NoError(t, s.Update(1, domain.DefaultRetentionPct))
				return s, nil
			},
		}
		svc := newReviewService(cards, deckStoreReturning(deck), &mockReviewStore{}, settings, nil)

		queue, err := svc.PlanSession(context.Background(), userID, deck.ID)
		require.NoError(t, err)
		require.Len(t, queue, 1)
		assert.Equal(t, overdue.ID, queue[0].ID)
	})

	t.Run("not owned", func(t *testing.T) {
		svc := newReviewService(cards, deckStoreReturning(deck), &mockReviewStore{}, defaultSettingsStore(), nil)

		_, err := svc.PlanSession(context.Background(), uuid.New(), deck.ID)
		assert.ErrorIs(t, err, ErrNotOwned)
	})
}

func TestReviewService_SubmitReview_FirstReview(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	deck := ownedTestDeck(t, userID)
	card := ownedTestCard(t, deck.ID)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectBegin()
	mock.ExpectCommit()

	var savedReview *domain.Review
	cards := &mockCardStore{
		GetForUpdateFunc: func(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
			return card, nil
		},
		UpdateFunc: func(ctx context.Context, c *domain.Card) error {
			return nil
		},
	}
	reviews := &mockReviewStore{
		CreateFunc: func(ctx context.Context, r *domain.Review) error {
			savedReview = r
			return nil
		},
	}
	svc := newReviewService(cards, deckStoreReturning(deck), reviews, defaultSettingsStore(), db)

	got, err := svc.SubmitReview(context.Background(), userID, card.ID, domain.RatingGood)
	require.NoError(t, err)

	require.NotNil(t, got.Memory)
	assert.InDelta(t, 2.4, got.Memory.Stability, 1e-9)
	assert.InDelta(t, 4.93, got.Memory.Difficulty, 1e-9)
	assert.True(t, got.Memory.Due.After(got.Memory.LastReviewed))
	require.NotNil(t, got.LastRating)
	assert.Equal(t, domain.RatingGood, *got.LastRating)

	require.NotNil(t, savedReview)
	assert.Equal(t, card.ID, savedReview.CardID)
	assert.Equal(t, domain.RatingGood, savedReview.Rating)
	assert.InDelta(t, got.Memory.Stability, savedReview.Stability, 1e-9)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewService_SubmitReview_CorruptStateRebuildsAsNew(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	deck := ownedTestDeck(t, userID)
	card := ownedTestCard(t, deck.ID)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectBegin()
	mock.ExpectCommit()

	cards := &mockCardStore{
		GetForUpdateFunc: func(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
			// The store clears corrupt state before returning.
			return card, fmt.Errorf("%w: difficulty out of range", domain.ErrInvalidState)
		},
		UpdateFunc: func(ctx context.Context, c *domain.Card) error { return nil },
	}
	reviews := &mockReviewStore{
		CreateFunc: func(ctx context.Context, r *domain.Review) error { return nil },
	}
	svc := newReviewService(cards, deckStoreReturning(deck), reviews, defaultSettingsStore(), db)

	got, err := svc.SubmitReview(context.Background(), userID, card.ID, domain.RatingAgain)
	require.NoError(t, err)

	// Rescheduled as a first exposure: initial stability for Again.
	require.NotNil(t, got.Memory)
	assert.InDelta(t, 0.4, got.Memory.Stability, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReviewService_SubmitReview_Failures(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	deck := ownedTestDeck(t, userID)
	card := ownedTestCard(t, deck.ID)

	t.Run("invalid rating", func(t *testing.T) {
		t.Parallel()
		svc := newReviewService(&mockCardStore{}, &mockDeckStore{}, &mockReviewStore{}, defaultSettingsStore(), nil)

		_, err := svc.SubmitReview(context.Background(), userID, card.ID, domain.Rating(9))
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
	})

	t.Run("not owned rolls back", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectBegin()
		mock.ExpectRollback()

		cards := &mockCardStore{
			GetForUpdateFunc: func(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
				return card, nil
			},
		}
		svc := newReviewService(cards, deckStoreReturning(deck), &mockReviewStore{}, defaultSettingsStore(), db)

		_, err = svc.SubmitReview(context.Background(), uuid.New(), card.ID, domain.RatingGood)
		assert.ErrorIs(t, err, ErrNotOwned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("card missing", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectBegin()
		mock.ExpectRollback()

		cards := &mockCardStore{
			GetForUpdateFunc: func(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
				return nil, store.ErrCardNotFound
			},
		}
		svc := newReviewService(cards, &mockDeckStore{}, &mockReviewStore{}, defaultSettingsStore(), db)

		_, err = svc.SubmitReview(context.Background(), userID, card.ID, domain.RatingGood)
		assert.ErrorIs(t, err, store.ErrCardNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReviewService_GetHistory(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	deck := ownedTestDeck(t, userID)
	card := ownedTestCard(t, deck.ID)

	cards := &mockCardStore{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
			return card, nil
		},
	}
	reviews := &mockReviewStore{
		ListByCardFunc: func(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
			assert.Equal(t, card.ID, cardID)
			assert.Equal(t, 50, limit)
			return []*domain.Review{}, nil
		},
	}
	svc := newReviewService(cards, deckStoreReturning(deck), reviews, defaultSettingsStore(), nil)

	_, err := svc.GetHistory(context.Background(), userID, card.ID, 50, 0)
	require.NoError(t, err)

	_, err = svc.GetHistory(context.Background(), uuid.New(), card.ID, 50, 0)
	assert.ErrorIs(t, err, ErrNotOwned)
}
