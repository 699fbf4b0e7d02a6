package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/engram-api/internal/api/shared"
	"github.com/phrazzld/engram-api/internal/service"
)

// CardHandler handles card CRUD and listing.
type CardHandler struct {
	cardService service.CardService
	logger      *slog.Logger
}

// NewCardHandler creates a CardHandler with the given dependencies.
func NewCardHandler(cardService service.CardService, log *slog.Logger) *CardHandler {
	return &CardHandler{
		cardService: cardService,
		logger:      log.With(slog.String("component", "card_handler")),
	}
}

// CreateCard handles POST /api/decks/{id}/cards.
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req CreateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.cardService.CreateCard(r.Context(), userID, deckID, req.Front, req.Back)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, cardResponse(card))
}

// ListCards handles GET /api/decks/{id}/cards with page/limit query
// parameters.
func (h *CardHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	page, limit := getPagination(r)
	offset := (page - 1) * limit

	cards, hasMore, err := h.cardService.ListCards(r.Context(), userID, deckID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CardListResponse{
		Cards:   cardResponses(cards),
		HasMore: hasMore,
		Page:    page,
		Limit:   limit,
	})
}

// GetCard handles GET /api/cards/{id}.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	card, err := h.cardService.GetCard(r.Context(), userID, cardID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardResponse(card))
}

// UpdateCard handles PUT /api/cards/{id}. Only the card text changes;
// scheduling state is untouched.
func (h *CardHandler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.cardService.UpdateCard(r.Context(), userID, cardID, req.Front, req.Back)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardResponse(card))
}

// DeleteCard handles DELETE /api/cards/{id}.
func (h *CardHandler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.cardService.DeleteCard(r.Context(), userID, cardID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
