package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/generation"
	"github.com/phrazzld/engram-api/internal/store"
)

// ImportOptions controls how an Anki text export is parsed. Zero values
// mean the first column is the front and the second the back.
type ImportOptions struct {
	Payload     string
	FrontColumn int
	BackColumn  int
}

// ImportService brings externally produced cards into a deck: Anki text
// exports uploaded by the user, and drafts produced by the background
// generation task.
type ImportService interface {
	// ImportCards parses an Anki text export and inserts the resulting
	// cards into the deck in one transaction. Returns the number of cards
	// inserted, or ErrNoCardsImported when parsing yields nothing usable.
	ImportCards(ctx context.Context, userID, deckID uuid.UUID, opts ImportOptions) (int, error)

	// SaveGeneratedCards inserts generated drafts into the deck in one
	// transaction, skipping invalid drafts. Called by the generation
	// task, which runs after the enqueueing request already verified deck
	// ownership.
	SaveGeneratedCards(ctx context.Context, deckID uuid.UUID, drafts []generation.CardDraft) (int, error)
}

// ImportServiceImpl implements ImportService.
type ImportServiceImpl struct {
	cardStore store.CardStore
	deckStore store.DeckStore
	db        *sql.DB
	logger    *slog.Logger
}

var _ ImportService = (*ImportServiceImpl)(nil)

// NewImportService creates a new ImportService.
func NewImportService(
	cardStore store.CardStore,
	deckStore store.DeckStore,
	db *sql.DB,
	logger *slog.Logger,
) *ImportServiceImpl {
	return &ImportServiceImpl{
		cardStore: cardStore,
		deckStore: deckStore,
		db:        db,
		logger:    logger.With(slog.String("component", "import_service")),
	}
}

// ImportCards parses an Anki export and inserts its cards.
func (s *ImportServiceImpl) ImportCards(
	ctx context.Context,
	userID, deckID uuid.UUID,
	opts ImportOptions,
) (int, error) {
	deck, err := s.deckStore.GetByID(ctx, deckID)
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve deck: %w", err)
	}
	if deck.UserID != userID {
		return 0, ErrNotOwned
	}

	notes := parseAnkiExport(opts.Payload, opts.FrontColumn, opts.BackColumn)

	cards := make([]*domain.Card, 0, len(notes))
	for _, note := range notes {
		card, err := domain.NewCard(deckID, note.front, note.back)
		if err != nil {
			s.logger.Debug("skipping invalid imported note",
				"deck_id", deckID,
				"error", err)
			continue
		}
		cards = append(cards, card)
	}
	if len(cards) == 0 {
		return 0, ErrNoCardsImported
	}

	if err := s.insertBatch(ctx, cards); err != nil {
		s.logger.Error("failed to import cards",
			"error", err,
			"deck_id", deckID,
			"count", len(cards))
		return 0, fmt.Errorf("failed to import cards: %w", err)
	}

	s.logger.Info("cards imported",
		"deck_id", deckID,
		"user_id", userID,
		"count", len(cards))
	return len(cards), nil
}

// SaveGeneratedCards inserts generated drafts into the deck.
func (s *ImportServiceImpl) SaveGeneratedCards(
	ctx context.Context,
	deckID uuid.UUID,
	drafts []generation.CardDraft,
) (int, error) {
	cards := make([]*domain.Card, 0, len(drafts))
	for _, draft := range drafts {
		card, err := domain.NewCard(deckID, draft.Front, draft.Back)
		if err != nil {
			s.logger.Debug("skipping invalid generated draft",
				"deck_id", deckID,
				"error", err)
			continue
		}
		cards = append(cards, card)
	}
	if len(cards) == 0 {
		return 0, ErrNoCardsImported
	}

	if err := s.insertBatch(ctx, cards); err != nil {
		s.logger.Error("failed to save generated cards",
			"error", err,
			"deck_id", deckID,
			"count", len(cards))
		return 0, fmt.Errorf("failed to save generated cards: %w", err)
	}

	s.logger.Info("generated cards saved",
		"deck_id", deckID,
		"count", len(cards))
	return len(cards), nil
}

// insertBatch writes the cards in a single transaction so a failure part
// way through leaves no partial import behind.
func (s *ImportServiceImpl) insertBatch(ctx context.Context, cards []*domain.Card) error {
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.cardStore.WithTx(tx).CreateMultiple(ctx, cards)
	})
}
