package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/api/shared"
	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/service"
)

// ReviewHandler handles session planning, review submission and review
// history.
type ReviewHandler struct {
	reviewService service.ReviewService
	logger        *slog.Logger
}

// NewReviewHandler creates a ReviewHandler with the given dependencies.
func NewReviewHandler(reviewService service.ReviewService, log *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		logger:        log.With(slog.String("component", "review_handler")),
	}
}

// PlanSession handles GET /api/session?deck_id=: the ordered review
// queue for the deck, capped by the user's cards-per-session setting.
// Planning is read-only, so refreshing the queue never reorders what a
// half-finished session would have shown.
func (h *ReviewHandler) PlanSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	raw := r.URL.Query().Get("deck_id")
	if raw == "" {
		HandleAPIError(w, r, fmt.Errorf("%w: deck_id is required", domain.ErrValidation), "deck_id is required")
		return
	}
	deckID, err := uuid.Parse(raw)
	if err != nil {
		HandleAPIError(w, r, fmt.Errorf("%w: deck_id", domain.ErrInvalidID), "Invalid deck_id")
		return
	}

	cards, err := h.reviewService.PlanSession(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{
		DeckID: deckID,
		Cards:  cardResponses(cards),
	})
}

// SubmitReview handles POST /api/cards/{id}/review.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	rating, err := domain.ParseRating(req.Rating)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.reviewService.SubmitReview(r.Context(), userID, cardID, rating)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardResponse(card))
}

// GetHistory handles GET /api/cards/{id}/reviews with page/limit query
// parameters, newest first.
func (h *ReviewHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	userID, cardID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	page, limit := getPagination(r)
	offset := (page - 1) * limit

	reviews, err := h.reviewService.GetHistory(r.Context(), userID, cardID, limit, offset)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := make([]ReviewRecordResponse, 0, len(reviews))
	for _, review := range reviews {
		resp = append(resp, reviewRecordResponse(review))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}
