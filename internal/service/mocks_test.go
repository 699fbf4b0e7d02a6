package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/store"
)

// Hand-rolled store mocks with function fields. Tests install only the
// calls they expect; an unset field means the call is an error in the
// test's eyes and will panic loudly.

type mockDeckStore struct {
	CreateFunc     func(ctx context.Context, deck *domain.Deck) error
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.Deck, error)
	ListByUserFunc func(ctx context.Context, userID uuid.UUID) ([]store.DeckWithStats, error)
	UpdateFunc     func(ctx context.Context, deck *domain.Deck) error
	DeleteFunc     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	return m.CreateFunc(ctx, deck)
}

func (m *mockDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockDeckStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]store.DeckWithStats, error) {
	return m.ListByUserFunc(ctx, userID)
}

func (m *mockDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	return m.UpdateFunc(ctx, deck)
}

func (m *mockDeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockDeckStore) WithTx(tx *sql.Tx) store.DeckStore { return m }

type mockCardStore struct {
	CreateFunc                func(ctx context.Context, card *domain.Card) error
	CreateMultipleFunc        func(ctx context.Context, cards []*domain.Card) error
	GetByIDFunc               func(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	GetForUpdateFunc          func(ctx context.Context, id uuid.UUID) (*domain.Card, error)
	UpdateFunc                func(ctx context.Context, card *domain.Card) error
	DeleteFunc                func(ctx context.Context, id uuid.UUID) error
	ListByDeckFunc            func(ctx context.Context, deckID uuid.UUID, limit, offset int) ([]*domain.Card, bool, error)
	FindSessionCandidatesFunc func(ctx context.Context, deckID uuid.UUID, now time.Time) ([]store.SessionCandidate, error)
}

func (m *mockCardStore) Create(ctx context.Context, card *domain.Card) error {
	return m.CreateFunc(ctx, card)
}

func (m *mockCardStore) CreateMultiple(ctx context.Context, cards []*domain.Card) error {
	return m.CreateMultipleFunc(ctx, cards)
}

func (m *mockCardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockCardStore) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	return m.GetForUpdateFunc(ctx, id)
}

func (m *mockCardStore) Update(ctx context.Context, card *domain.Card) error {
	return m.UpdateFunc(ctx, card)
}

func (m *mockCardStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.DeleteFunc(ctx, id)
}

func (m *mockCardStore) ListByDeck(
	ctx context.Context,
	deckID uuid.UUID,
	limit, offset int,
) ([]*domain.Card, bool, error) {
	return m.ListByDeckFunc(ctx, deckID, limit, offset)
}

func (m *mockCardStore) FindSessionCandidates(
	ctx context.Context,
	deckID uuid.UUID,
	now time.Time,
) ([]store.SessionCandidate, error) {
	return m.FindSessionCandidatesFunc(ctx, deckID, now)
}

func (m *mockCardStore) WithTx(tx *sql.Tx) store.CardStore { return m }

type mockReviewStore struct {
	CreateFunc     func(ctx context.Context, review *domain.Review) error
	ListByCardFunc func(ctx context.Context, cardID uuid.UUID, limit, offset int) ([]*domain.Review, error)
}

func (m *mockReviewStore) Create(ctx context.Context, review *domain.Review) error {
	return m.CreateFunc(ctx, review)
}

func (m *mockReviewStore) ListByCard(
	ctx context.Context,
	cardID uuid.UUID,
	limit, offset int,
) ([]*domain.Review, error) {
	return m.ListByCardFunc(ctx, cardID, limit, offset)
}

func (m *mockReviewStore) WithTx(tx *sql.Tx) store.ReviewStore { return m }

type mockSettingsStore struct {
	GetFunc  func(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error)
	SaveFunc func(ctx context.Context, settings *domain.UserSettings) error
}

func (m *mockSettingsStore) Get(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.UserSettings, error) {
	return m.GetFunc(ctx, userID)
}

func (m *mockSettingsStore) Save(ctx context.Context, settings *domain.UserSettings) error {
	return m.SaveFunc(ctx, settings)
}

func (m *mockSettingsStore) WithTx(tx *sql.Tx) store.SettingsStore { return m }

// defaultSettingsStore returns a settings store that reports no saved
// settings, so services fall back to the application defaults.
func defaultSettingsStore() *mockSettingsStore {
	return &mockSettingsStore{
		GetFunc: func(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error) {
			return nil, store.ErrSettingsNotFound
		},
	}
}

var (
	_ store.DeckStore     = (*mockDeckStore)(nil)
	_ store.CardStore     = (*mockCardStore)(nil)
	_ store.ReviewStore   = (*mockReviewStore)(nil)
	_ store.SettingsStore = (*mockSettingsStore)(nil)
)
