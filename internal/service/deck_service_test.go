package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func ownedTestDeck(t *testing.T, userID uuid.UUID) *domain.Deck {
	t.Helper()
	deck, err := domain.NewDeck(userID, "Spanish Vocabulary")
	require.NoError(t, err)
	return deck
}

func TestDeckService_CreateDeck(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		decks := &mockDeckStore{
			CreateFunc: func(ctx context.Context, deck *domain.Deck) error {
				assert.Equal(t, userID, deck.UserID)
				assert.Equal(t, "Spanish Vocabulary", deck.Name)
				return nil
			},
		}
		svc := NewDeckService(decks, nil, testLogger())

		deck, err := svc.CreateDeck(context.Background(), userID, "Spanish Vocabulary")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, deck.ID)
	})

	t.Run("duplicate name", func(t *testing.T) {
		t.Parallel()
		decks := &mockDeckStore{
			CreateFunc: func(ctx context.Context, deck *domain.Deck) error {
				return store.ErrDeckNameExists
			},
		}
		svc := NewDeckService(decks, nil, testLogger())

		_, err := svc.CreateDeck(context.Background(), userID, "Spanish Vocabulary")
		assert.ErrorIs(t, err, store.ErrDeckNameExists)
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()
		svc := NewDeckService(&mockDeckStore{}, nil, testLogger())

		_, err := svc.CreateDeck(context.Background(), userID, "   ")
		assert.ErrorIs(t, err, domain.ErrEmptyDeckName)
	})
}

func TestDeckService_GetDeck(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	deck := ownedTestDeck(t, userID)

	decks := &mockDeckStore{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
			if id == deck.ID {
				return deck, nil
			}
			return nil, store.ErrDeckNotFound
		},
	}
	svc := NewDeckService(decks, nil, testLogger())

	t.Run("owner can read", func(t *testing.T) {
		got, err := svc.GetDeck(context.Background(), userID, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, deck.ID, got.ID)
	})

	t.Run("other user is refused", func(t *testing.T) {
		_, err := svc.GetDeck(context.Background(), uuid.New(), deck.ID)
		assert.ErrorIs(t, err, ErrNotOwned)
	})

	t.Run("missing deck", func(t *testing.T) {
		_, err := svc.GetDeck(context.Background(), userID, uuid.New())
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})
}

func TestDeckService_ListDecks(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	deck := ownedTestDeck(t, userID)

	decks := &mockDeckStore{
		ListByUserFunc: func(ctx context.Context, id uuid.UUID) ([]store.DeckWithStats, error) {
			assert.Equal(t, userID, id)
			return []store.DeckWithStats{
				{Deck: *deck, Stats: store.DeckStats{NewCount: 3, DueCount: 2, ScheduledCount: 5}},
			}, nil
		},
	}
	svc := NewDeckService(decks, nil, testLogger())

	result, err := svc.ListDecks(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 3, result[0].Stats.NewCount)
	assert.Equal(t, 2, result[0].Stats.DueCount)
}

func TestDeckService_RenameDeck(t *testing.T) {
	t.Parallel()
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectBegin()
		mock.ExpectCommit()

		deck := ownedTestDeck(t, userID)
		var updated *domain.Deck
		decks := &mockDeckStore{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
				return deck, nil
			},
			UpdateFunc: func(ctx context.Context, d *domain.Deck) error {
				updated = d
				return nil
			},
		}
		svc := NewDeckService(decks, db, testLogger())

		got, err := svc.RenameDeck(context.Background(), userID, deck.ID, "Spanish B2")
		require.NoError(t, err)
		assert.Equal(t, "Spanish B2", got.Name)
		require.NotNil(t, updated)
		assert.Equal(t, "Spanish B2", updated.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not owned rolls back", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectBegin()
		mock.ExpectRollback()

		deck := ownedTestDeck(t, uuid.New())
		decks := &mockDeckStore{
			GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
				return deck, nil
			},
		}
		svc := NewDeckService(decks, db, testLogger())

		_, err = svc.RenameDeck(context.Background(), userID, deck.ID, "Stolen")
		assert.ErrorIs(t, err, ErrNotOwned)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeckService_DeleteDeck(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	deck := ownedTestDeck(t, userID)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectBegin()
	mock.ExpectCommit()

	deleted := false
	decks := &mockDeckStore{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
			return deck, nil
		},
		DeleteFunc: func(ctx context.Context, id uuid.UUID) error {
			deleted = true
			assert.Equal(t, deck.ID, id)
			return nil
		},
	}
	svc := NewDeckService(decks, db, testLogger())

	require.NoError(t, svc.DeleteDeck(context.Background(), userID, deck.ID))
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
