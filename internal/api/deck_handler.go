package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/api/shared"
	"github.com/phrazzld/engram-api/internal/events"
	"github.com/phrazzld/engram-api/internal/platform/logger"
	"github.com/phrazzld/engram-api/internal/service"
	"github.com/phrazzld/engram-api/internal/task"
)

// DeckHandler handles deck CRUD plus the two bulk card entry points:
// Anki import (synchronous) and LLM generation (enqueued as a background
// task).
type DeckHandler struct {
	deckService   service.DeckService
	importService service.ImportService
	eventEmitter  events.EventEmitter
	logger        *slog.Logger
}

// NewDeckHandler creates a DeckHandler with the given dependencies.
func NewDeckHandler(
	deckService service.DeckService,
	importService service.ImportService,
	eventEmitter events.EventEmitter,
	log *slog.Logger,
) *DeckHandler {
	return &DeckHandler{
		deckService:   deckService,
		importService: importService,
		eventEmitter:  eventEmitter,
		logger:        log.With(slog.String("component", "deck_handler")),
	}
}

// CreateDeck handles POST /api/decks.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req CreateDeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	deck, err := h.deckService.CreateDeck(r.Context(), userID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, deckResponse(deck))
}

// ListDecks handles GET /api/decks. Each deck carries aggregate card
// counts so clients can render a dashboard without extra requests.
func (h *DeckHandler) ListDecks(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	decks, err := h.deckService.ListDecks(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	resp := make([]DeckResponse, 0, len(decks))
	for i := range decks {
		resp = append(resp, deckWithStatsResponse(decks[i]))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// GetDeck handles GET /api/decks/{id}.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	deck, err := h.deckService.GetDeck(r.Context(), userID, deckID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckResponse(deck))
}

// UpdateDeck handles PUT /api/decks/{id}. Only the name can change.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateDeckRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	deck, err := h.deckService.RenameDeck(r.Context(), userID, deckID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, deckResponse(deck))
}

// DeleteDeck handles DELETE /api/decks/{id}. Cards and review history
// cascade in the database.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	if err := h.deckService.DeleteDeck(r.Context(), userID, deckID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportCards handles POST /api/decks/{id}/import: a synchronous Anki
// text-export import into the deck.
func (h *DeckHandler) ImportCards(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req ImportRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	count, err := h.importService.ImportCards(r.Context(), userID, deckID, service.ImportOptions{
		Payload:     req.Payload,
		FrontColumn: req.FrontColumn,
		BackColumn:  req.BackColumn,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, ImportResponse{Imported: count})
}

// GenerateCards handles POST /api/decks/{id}/generate. The request is
// verified against deck ownership, then queued as a background task;
// the response carries the task ID so clients can poll or ignore it.
func (h *DeckHandler) GenerateCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	// Generation runs only when an LLM API key is configured.
	if h.eventEmitter == nil {
		shared.RespondWithError(w, r, http.StatusServiceUnavailable, "Card generation is not available")
		return
	}

	userID, deckID, ok := requireUserAndPathUUID(w, r, "id")
	if !ok {
		return
	}

	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	// Ownership is checked here, at enqueue time; the background task
	// runs without a requesting user.
	if _, err := h.deckService.GetDeck(r.Context(), userID, deckID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	event, err := events.NewTaskRequestEvent(task.TaskTypeCardGeneration, struct {
		DeckID uuid.UUID `json:"deck_id"`
		Prompt string    `json:"prompt"`
	}{DeckID: deckID, Prompt: req.Prompt})
	if err != nil {
		log.Error("failed to build generation event", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to queue generation")
		return
	}

	if err := h.eventEmitter.EmitEvent(r.Context(), event); err != nil {
		log.Error("failed to emit generation event", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to queue generation")
		return
	}

	log.Info("card generation queued",
		slog.String("deck_id", deckID.String()),
		slog.String("task_id", event.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusAccepted, GenerateResponse{TaskID: event.ID})
}
