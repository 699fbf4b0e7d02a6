package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/store"
)

// Request payloads

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest is the payload for POST /api/auth/refresh.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// CreateDeckRequest is the payload for POST /api/decks.
type CreateDeckRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdateDeckRequest is the payload for PUT /api/decks/{id}.
type UpdateDeckRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CreateCardRequest is the payload for POST /api/decks/{id}/cards.
type CreateCardRequest struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back"  validate:"required"`
}

// UpdateCardRequest is the payload for PUT /api/cards/{id}.
type UpdateCardRequest struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back"  validate:"required"`
}

// ImportRequest is the payload for POST /api/decks/{id}/import. The
// column indices are optional; they default to the first two columns.
type ImportRequest struct {
	Payload     string `json:"payload"      validate:"required"`
	FrontColumn int    `json:"front_column" validate:"min=0"`
	BackColumn  int    `json:"back_column"  validate:"min=0"`
}

// GenerateRequest is the payload for POST /api/decks/{id}/generate.
type GenerateRequest struct {
	Prompt string `json:"prompt" validate:"required,min=3"`
}

// ReviewRequest is the payload for POST /api/cards/{id}/review.
type ReviewRequest struct {
	Rating string `json:"rating" validate:"required"`
}

// UpdateSettingsRequest is the payload for PUT /api/settings.
type UpdateSettingsRequest struct {
	CardsPerSession int `json:"cards_per_session" validate:"required,min=1,max=100"`
	RetentionPct    int `json:"retention_pct"     validate:"required,min=5,max=95"`
}

// Response payloads

// AuthResponse is the success body for the authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// DeckResponse describes a deck, optionally with aggregate card counts.
type DeckResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Stats     *DeckStatsModel `json:"stats,omitempty"`
}

// DeckStatsModel carries a deck's card counts by scheduling state.
type DeckStatsModel struct {
	NewCount       int `json:"new_count"`
	DueCount       int `json:"due_count"`
	ScheduledCount int `json:"scheduled_count"`
}

// MemoryModel is the wire form of a card's scheduling state.
type MemoryModel struct {
	Stability    float64   `json:"stability"`
	Difficulty   float64   `json:"difficulty"`
	Due          time.Time `json:"due"`
	LastReviewed time.Time `json:"last_reviewed"`
}

// CardResponse describes a card. Memory and LastRating are absent for
// never-reviewed cards.
type CardResponse struct {
	ID         uuid.UUID    `json:"id"`
	DeckID     uuid.UUID    `json:"deck_id"`
	Front      string       `json:"front"`
	Back       string       `json:"back"`
	LastRating string       `json:"last_rating,omitempty"`
	Memory     *MemoryModel `json:"memory,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// CardListResponse is one page of a deck's cards.
type CardListResponse struct {
	Cards   []CardResponse `json:"cards"`
	HasMore bool           `json:"has_more"`
	Page    int            `json:"page"`
	Limit   int            `json:"limit"`
}

// SessionResponse is the planned review queue for a deck.
type SessionResponse struct {
	DeckID uuid.UUID      `json:"deck_id"`
	Cards  []CardResponse `json:"cards"`
}

// ReviewRecordResponse is one entry of a card's review history.
type ReviewRecordResponse struct {
	ID           uuid.UUID `json:"id"`
	CardID       uuid.UUID `json:"card_id"`
	ReviewedAt   time.Time `json:"reviewed_at"`
	ScheduledFor time.Time `json:"scheduled_for"`
	Rating       string    `json:"rating"`
	Stability    float64   `json:"stability"`
	Difficulty   float64   `json:"difficulty"`
}

// SettingsResponse is the body for the settings endpoints.
type SettingsResponse struct {
	CardsPerSession int       `json:"cards_per_session"`
	RetentionPct    int       `json:"retention_pct"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ImportResponse reports a completed import.
type ImportResponse struct {
	Imported int `json:"imported"`
}

// GenerateResponse acknowledges an enqueued generation task.
type GenerateResponse struct {
	TaskID uuid.UUID `json:"task_id"`
}

// Converters from domain/store types

func deckResponse(deck *domain.Deck) DeckResponse {
	return DeckResponse{
		ID:        deck.ID,
		Name:      deck.Name,
		CreatedAt: deck.CreatedAt,
		UpdatedAt: deck.UpdatedAt,
	}
}

func deckWithStatsResponse(d store.DeckWithStats) DeckResponse {
	resp := deckResponse(&d.Deck)
	resp.Stats = &DeckStatsModel{
		NewCount:       d.Stats.NewCount,
		DueCount:       d.Stats.DueCount,
		ScheduledCount: d.Stats.ScheduledCount,
	}
	return resp
}

func cardResponse(card *domain.Card) CardResponse {
	resp := CardResponse{
		ID:        card.ID,
		DeckID:    card.DeckID,
		Front:     card.Front,
		Back:      card.Back,
		CreatedAt: card.CreatedAt,
		UpdatedAt: card.UpdatedAt,
	}
	if card.LastRating != nil {
		resp.LastRating = card.LastRating.String()
	}
	if card.Memory != nil {
		resp.Memory = &MemoryModel{
			Stability:    card.Memory.Stability,
			Difficulty:   card.Memory.Difficulty,
			Due:          card.Memory.Due,
			LastReviewed: card.Memory.LastReviewed,
		}
	}
	return resp
}

func cardResponses(cards []*domain.Card) []CardResponse {
	out := make([]CardResponse, len(cards))
	for i, card := range cards {
		out[i] = cardResponse(card)
	}
	return out
}

func reviewRecordResponse(review *domain.Review) ReviewRecordResponse {
	return ReviewRecordResponse{
		ID:           review.ID,
		CardID:       review.CardID,
		ReviewedAt:   review.ReviewedAt,
		ScheduledFor: review.ScheduledFor,
		Rating:       review.Rating.String(),
		Stability:    review.Stability,
		Difficulty:   review.Difficulty,
	}
}

func settingsResponse(settings *domain.UserSettings) SettingsResponse {
	return SettingsResponse{
		CardsPerSession: settings.CardsPerSession,
		RetentionPct:    settings.RetentionPct,
		UpdatedAt:       settings.UpdatedAt,
	}
}
