package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/store"
)

// CardService provides card management operations. Card ownership is
// always resolved through the containing deck.
type CardService interface {
	// CreateCard creates a new card in the given deck.
	// Returns store.ErrDeckNotFound or ErrNotOwned.
	CreateCard(ctx context.Context, userID, deckID uuid.UUID, front, back string) (*domain.Card, error)

	// GetCard retrieves a card, verifying that the user owns its deck.
	// A card with corrupt persisted scheduling state comes back with the
	// state cleared and no error: it reads as new until its next review
	// rebuilds it.
	GetCard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Card, error)

	// UpdateCard replaces a card's front and back text. Scheduling state
	// is untouched.
	UpdateCard(ctx context.Context, userID, cardID uuid.UUID, front, back string) (*domain.Card, error)

	// DeleteCard removes a card and, via cascade, its review history.
	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error

	// ListCards retrieves one page of a deck's cards, most recently
	// reviewed first, plus a flag reporting whether more pages follow.
	ListCards(ctx context.Context, userID, deckID uuid.UUID, limit, offset int) ([]*domain.Card, bool, error)
}

// CardServiceImpl implements CardService.
type CardServiceImpl struct {
	cardStore store.CardStore
	deckStore store.DeckStore
	db        *sql.DB
	logger    *slog.Logger
}

var _ CardService = (*CardServiceImpl)(nil)

// NewCardService creates a new CardService.
func NewCardService(
	cardStore store.CardStore,
	deckStore store.DeckStore,
	db *sql.DB,
	logger *slog.Logger,
) *CardServiceImpl {
	return &CardServiceImpl{
		cardStore: cardStore,
		deckStore: deckStore,
		db:        db,
		logger:    logger.With(slog.String("component", "card_service")),
	}
}

// requireDeckOwner verifies the user owns the deck.
func (s *CardServiceImpl) requireDeckOwner(
	ctx context.Context,
	deckStore store.DeckStore,
	userID, deckID uuid.UUID,
) (*domain.Deck, error) {
	deck, err := deckStore.GetByID(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve deck: %w", err)
	}
	if deck.UserID != userID {
		s.logger.Warn("card access denied",
			"deck_id", deckID,
			"owner_id", deck.UserID,
			"user_id", userID)
		return nil, ErrNotOwned
	}
	return deck, nil
}

// ownedCard fetches a card and verifies the user owns its deck. Corrupt
// scheduling state is tolerated here: the store has already cleared it
// and the card behaves as new.
func (s *CardServiceImpl) ownedCard(
	ctx context.Context,
	cardStore store.CardStore,
	deckStore store.DeckStore,
	userID, cardID uuid.UUID,
) (*domain.Card, error) {
	card, err := cardStore.GetByID(ctx, cardID)
	if err != nil && !errors.Is(err, domain.ErrInvalidState) {
		return nil, fmt.Errorf("failed to retrieve card: %w", err)
	}
	if err != nil {
		s.logger.Warn("card has corrupt scheduling state, treating as new",
			"card_id", cardID,
			"error", err)
	}

	if _, err := s.requireDeckOwner(ctx, deckStore, userID, card.DeckID); err != nil {
		return nil, err
	}
	return card, nil
}

// CreateCard creates a new card in the given deck.
func (s *CardServiceImpl) CreateCard(
	ctx context.Context,
	userID, deckID uuid.UUID,
	front, back string,
) (*domain.Card, error) {
	if _, err := s.requireDeckOwner(ctx, s.deckStore, userID, deckID); err != nil {
		return nil, err
	}

	card, err := domain.NewCard(deckID, front, back)
	if err != nil {
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	if err := s.cardStore.Create(ctx, card); err != nil {
		s.logger.Error("failed to save card",
			"error", err,
			"deck_id", deckID)
		return nil, fmt.Errorf("failed to create card: %w", err)
	}

	s.logger.Info("card created",
		"card_id", card.ID,
		"deck_id", deckID,
		"user_id", userID)
	return card, nil
}

// GetCard retrieves a card, verifying ownership through its deck.
func (s *CardServiceImpl) GetCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Card, error) {
	return s.ownedCard(ctx, s.cardStore, s.deckStore, userID, cardID)
}

// UpdateCard replaces a card's text inside a transaction so the
// ownership check and the update see the same row.
func (s *CardServiceImpl) UpdateCard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	front, back string,
) (*domain.Card, error) {
	var card *domain.Card
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cardTx := s.cardStore.WithTx(tx)
		deckTx := s.deckStore.WithTx(tx)

		var err error
		card, err = s.ownedCard(ctx, cardTx, deckTx, userID, cardID)
		if err != nil {
			return err
		}
		if err := card.UpdateContent(front, back); err != nil {
			return err
		}
		return cardTx.Update(ctx, card)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("card updated",
		"card_id", cardID,
		"user_id", userID)
	return card, nil
}

// DeleteCard removes a card after verifying ownership.
func (s *CardServiceImpl) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		cardTx := s.cardStore.WithTx(tx)
		deckTx := s.deckStore.WithTx(tx)

		if _, err := s.ownedCard(ctx, cardTx, deckTx, userID, cardID); err != nil {
			return err
		}
		return cardTx.Delete(ctx, cardID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("card deleted",
		"card_id", cardID,
		"user_id", userID)
	return nil
}

// ListCards retrieves one page of a deck's cards.
func (s *CardServiceImpl) ListCards(
	ctx context.Context,
	userID, deckID uuid.UUID,
	limit, offset int,
) ([]*domain.Card, bool, error) {
	if _, err := s.requireDeckOwner(ctx, s.deckStore, userID, deckID); err != nil {
		return nil, false, err
	}

	cards, hasMore, err := s.cardStore.ListByDeck(ctx, deckID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list cards",
			"error", err,
			"deck_id", deckID)
		return nil, false, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, hasMore, nil
}
