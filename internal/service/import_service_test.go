package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/generation"
)

func TestImportService_ImportCards(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	deck := ownedTestDeck(t, userID)

	t.Run("inserts parsed cards in one transaction", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectBegin()
		mock.ExpectCommit()

		var inserted []*domain.Card
		cards := &mockCardStore{
			CreateMultipleFunc: func(ctx context.Context, batch []*domain.Card) error {
				inserted = batch
				return nil
			},
		}
		svc := NewImportService(cards, deckStoreReturning(deck), db, testLogger())

		count, err := svc.ImportCards(context.Background(), userID, deck.ID, ImportOptions{
			Payload: "#separator:tab\nhola\thello\nadiós\tgoodbye\n",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		require.Len(t, inserted, 2)
		assert.Equal(t, deck.ID, inserted[0].DeckID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty payload", func(t *testing.T) {
		t.Parallel()
		svc := NewImportService(&mockCardStore{}, deckStoreReturning(deck), nil, testLogger())

		_, err := svc.ImportCards(context.Background(), userID, deck.ID, ImportOptions{
			Payload: "# just a comment\n",
		})
		assert.ErrorIs(t, err, ErrNoCardsImported)
	})

	t.Run("not owned", func(t *testing.T) {
		t.Parallel()
		svc := NewImportService(&mockCardStore{}, deckStoreReturning(deck), nil, testLogger())

		_, err := svc.ImportCards(context.Background(), uuid.New(), deck.ID, ImportOptions{
			Payload: "hola\thello\n",
		})
		assert.ErrorIs(t, err, ErrNotOwned)
	})
}

func TestImportService_SaveGeneratedCards(t *testing.T) {
	t.Parallel()
	deckID := uuid.New()

	t.Run("saves valid drafts and skips broken ones", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		mock.ExpectBegin()
		mock.ExpectCommit()

		var inserted []*domain.Card
		cards := &mockCardStore{
			CreateMultipleFunc: func(ctx context.Context, batch []*domain.Card) error {
				inserted = batch
				return nil
			},
		}
		svc := NewImportService(cards, &mockDeckStore{}, db, testLogger())

		count, err := svc.SaveGeneratedCards(context.Background(), deckID, []generation.CardDraft{
			{Front: "What is stability?", Back: "Days until recall drops to ~90%"},
			{Front: "", Back: "orphan answer"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		require.Len(t, inserted, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("all drafts invalid", func(t *testing.T) {
		t.Parallel()
		svc := NewImportService(&mockCardStore{}, &mockDeckStore{}, nil, testLogger())

		_, err := svc.SaveGeneratedCards(context.Background(), deckID, []generation.CardDraft{
			{Front: "", Back: ""},
		})
		assert.ErrorIs(t, err, ErrNoCardsImported)
	})
}
