package api

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/events"
	"github.com/phrazzld/engram-api/internal/generation"
	"github.com/phrazzld/engram-api/internal/service"
	"github.com/phrazzld/engram-api/internal/store"
)

// Hand-rolled test doubles with function fields so each test overrides
// only the calls it cares about. Unset calls panic, which points
// straight at the missing expectation.

type mockUserStore struct {
	createFn     func(ctx context.Context, user *domain.User) error
	getByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	getByEmailFn func(ctx context.Context, email string) (*domain.User, error)
	deleteFn     func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserStore) Create(ctx context.Context, user *domain.User) error {
	return m.createFn(ctx, user)
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.getByEmailFn(ctx, email)
}

func (m *mockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	return m.deleteFn(ctx, id)
}

func (m *mockUserStore) WithTx(tx *sql.Tx) store.UserStore { return m }

type mockDeckService struct {
	createFn func(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, error)
	getFn    func(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error)
	listFn   func(ctx context.Context, userID uuid.UUID) ([]store.DeckWithStats, error)
	renameFn func(ctx context.Context, userID, deckID uuid.UUID, name string) (*domain.Deck, error)
	deleteFn func(ctx context.Context, userID, deckID uuid.UUID) error
}

func (m *mockDeckService) CreateDeck(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, error) {
	return m.createFn(ctx, userID, name)
}

func (m *mockDeckService) GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error) {
	return m.getFn(ctx, userID, deckID)
}

func (m *mockDeckService) ListDecks(ctx context.Context, userID uuid.UUID) ([]store.DeckWithStats, error) {
	return m.listFn(ctx, userID)
}

func (m *mockDeckService) RenameDeck(ctx context.Context, userID, deckID uuid.UUID, name string) (*domain.Deck, error) {
	return m.renameFn(ctx, userID, deckID, name)
}

func (m *mockDeckService) DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error {
	return m.deleteFn(ctx, userID, deckID)
}

type mockCardService struct {
	createFn func(ctx context.Context, userID, deckID uuid.UUID, front, back string) (*domain.Card, error)
	getFn    func(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error)
	updateFn func(ctx context.Context, userID, cardID uuid.UUID, front, back string) (*domain.Card, error)
	deleteFn func(ctx context.Context, userID, cardID uuid.UUID) error
	listFn   func(ctx context.Context, userID, deckID uuid.UUID, limit, offset int) ([]*domain.Card, bool, error)
}

func (m *mockCardService) CreateCard(ctx context.Context, userID, deckID uuid.UUID, front, back string) (*domain.Card, error) {
	return m.createFn(ctx, userID, deckID, front, back)
}

func (m *mockCardService) GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error) {
	return m.getFn(ctx, userID, cardID)
}

func (m *mockCardService) UpdateCard(ctx context.Context, userID, cardID uuid.UUID, front, back string) (*domain.Card, error) {
	return m.updateFn(ctx, userID, cardID, front, back)
}

func (m *mockCardService) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	return m.deleteFn(ctx, userID, cardID)
}

func (m *mockCardService) ListCards(ctx context.Context, userID, deckID uuid.UUID, limit, offset int) ([]*domain.Card, bool, error) {
	return m.listFn(ctx, userID, deckID, limit, offset)
}

type mockReviewService struct {
	planFn    func(ctx context.Context, userID, deckID uuid.UUID) ([]*domain.Card, error)
	submitFn  func(ctx context.Context, userID, cardID uuid.UUID, rating domain.Rating) (*domain.Card, error)
	historyFn func(ctx context.Context, userID, cardID uuid.UUID, limit, offset int) ([]*domain.Review, error)
}

func (m *mockReviewService) PlanSession(ctx context.Context, userID, deckID uuid.UUID) ([]*domain.Card, error) {
	return m.planFn(ctx, userID, deckID)
}

func (m *mockReviewService) SubmitReview(ctx context.Context, userID, cardID uuid.UUID, rating domain.Rating) (*domain.Card, error) {
	return m.submitFn(ctx, userID, cardID, rating)
}

func (m *mockReviewService) GetHistory(ctx context.Context, userID, cardID uuid.UUID, limit, offset int) ([]*domain.Review, error) {
	return m.historyFn(ctx, userID, cardID, limit, offset)
}

type mockSettingsService struct {
	getFn    func(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error)
	updateFn func(ctx context.Context, userID uuid.UUID, cardsPerSession, retentionPct int) (*domain.UserSettings, error)
}

func (m *mockSettingsService) GetSettings(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error) {
	return m.getFn(ctx, userID)
}

func (m *mockSettingsService) UpdateSettings(ctx context.Context, userID uuid.UUID, cardsPerSession, retentionPct int) (*domain.UserSettings, error) {
	return m.updateFn(ctx, userID, cardsPerSession, retentionPct)
}

type mockImportService struct {
	importFn func(ctx context.Context, userID, deckID uuid.UUID, opts service.ImportOptions) (int, error)
	saveFn   func(ctx context.Context, deckID uuid.UUID, drafts []generation.CardDraft) (int, error)
}

func (m *mockImportService) ImportCards(ctx context.Context, userID, deckID uuid.UUID, opts service.ImportOptions) (int, error) {
	return m.importFn(ctx, userID, deckID, opts)
}

func (m *mockImportService) SaveGeneratedCards(ctx context.Context, deckID uuid.UUID, drafts []generation.CardDraft) (int, error) {
	return m.saveFn(ctx, deckID, drafts)
}

type mockEventEmitter struct {
	emitFn func(ctx context.Context, event *events.TaskRequestEvent) error
}

func (m *mockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	return m.emitFn(ctx, event)
}

var (
	_ store.UserStore         = (*mockUserStore)(nil)
	_ service.DeckService     = (*mockDeckService)(nil)
	_ service.CardService     = (*mockCardService)(nil)
	_ service.ReviewService   = (*mockReviewService)(nil)
	_ service.SettingsService = (*mockSettingsService)(nil)
	_ service.ImportService   = (*mockImportService)(nil)
	_ events.EventEmitter     = (*mockEventEmitter)(nil)
)
