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

// DeckService provides deck management operations scoped to an owner.
type DeckService interface {
	// CreateDeck creates a new deck for the user.
	// Returns store.ErrDeckNameExists if the user already has a deck with
	// the same name.
	CreateDeck(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, error)

	// GetDeck retrieves a deck, verifying the user owns it.
	// Returns store.ErrDeckNotFound or ErrNotOwned.
	GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error)

	// ListDecks retrieves all of the user's decks with aggregate card
	// counts (new, due, scheduled).
	ListDecks(ctx context.Context, userID uuid.UUID) ([]store.DeckWithStats, error)

	// RenameDeck changes a deck's name, verifying ownership first.
	RenameDeck(ctx context.Context, userID, deckID uuid.UUID, name string) (*domain.Deck, error)

	// DeleteDeck removes a deck and, via database cascade, its cards and
	// their review history.
	DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error
}

// DeckServiceImpl implements DeckService.
type DeckServiceImpl struct {
	deckStore store.DeckStore
	db        *sql.DB
	logger    *slog.Logger
}

var _ DeckService = (*DeckServiceImpl)(nil)

// NewDeckService creates a new DeckService.
func NewDeckService(deckStore store.DeckStore, db *sql.DB, logger *slog.Logger) *DeckServiceImpl {
	return &DeckServiceImpl{
		deckStore: deckStore,
		db:        db,
		logger:    logger.With(slog.String("component", "deck_service")),
	}
}

// ownedDeck fetches a deck and verifies ownership. All single-deck
// operations funnel through here so a deck that exists but belongs to
// someone else consistently reads as ErrNotOwned, not as not-found.
func (s *DeckServiceImpl) ownedDeck(
	ctx context.Context,
	deckStore store.DeckStore,
	userID, deckID uuid.UUID,
) (*domain.Deck, error) {
	deck, err := deckStore.GetByID(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve deck: %w", err)
	}
	if deck.UserID != userID {
		s.logger.Warn("deck access denied",
			"deck_id", deckID,
			"owner_id", deck.UserID,
			"user_id", userID)
		return nil, ErrNotOwned
	}
	return deck, nil
}

// CreateDeck creates a new deck for the user.
func (s *DeckServiceImpl) CreateDeck(
	ctx context.Context,
	userID uuid.UUID,
	name string,
) (*domain.Deck, error) {
	deck, err := domain.NewDeck(userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	if err := s.deckStore.Create(ctx, deck); err != nil {
		if errors.Is(err, store.ErrDeckNameExists) {
			s.logger.Debug("duplicate deck name",
				"user_id", userID,
				"name", deck.Name)
		} else {
			s.logger.Error("failed to save deck",
				"error", err,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	s.logger.Info("deck created",
		"deck_id", deck.ID,
		"user_id", userID)
	return deck, nil
}

// GetDeck retrieves a deck, verifying ownership.
func (s *DeckServiceImpl) GetDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
) (*domain.Deck, error) {
	return s.ownedDeck(ctx, s.deckStore, userID, deckID)
}

// ListDecks retrieves the user's decks with card stats.
func (s *DeckServiceImpl) ListDecks(
	ctx context.Context,
	userID uuid.UUID,
) ([]store.DeckWithStats, error) {
	decks, err := s.deckStore.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list decks",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

// RenameDeck changes a deck's name inside a transaction so the ownership
// check and the update see the same row.
func (s *DeckServiceImpl) RenameDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
	name string,
) (*domain.Deck, error) {
	var deck *domain.Deck
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.deckStore.WithTx(tx)

		var err error
		deck, err = s.ownedDeck(ctx, txStore, userID, deckID)
		if err != nil {
			return err
		}
		if err := deck.Rename(name); err != nil {
			return err
		}
		return txStore.Update(ctx, deck)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deck renamed",
		"deck_id", deckID,
		"user_id", userID)
	return deck, nil
}

// DeleteDeck removes a deck after verifying ownership.
func (s *DeckServiceImpl) DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.deckStore.WithTx(tx)

		if _, err := s.ownedDeck(ctx, txStore, userID, deckID); err != nil {
			return err
		}
		return txStore.Delete(ctx, deckID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("deck deleted",
		"deck_id", deckID,
		"user_id", userID)
	return nil
}
