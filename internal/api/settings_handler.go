package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/engram-api/internal/api/shared"
	"github.com/phrazzld/engram-api/internal/service"
)

// SettingsHandler handles per-user scheduling preferences.
type SettingsHandler struct {
	settingsService service.SettingsService
	logger          *slog.Logger
}

// NewSettingsHandler creates a SettingsHandler with the given dependencies.
func NewSettingsHandler(settingsService service.SettingsService, log *slog.Logger) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
		logger:          log.With(slog.String("component", "settings_handler")),
	}
}

// GetSettings handles GET /api/settings. Users who never saved settings
// get the application defaults.
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	settings, err := h.settingsService.GetSettings(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, settingsResponse(settings))
}

// UpdateSettings handles PUT /api/settings.
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	settings, err := h.settingsService.UpdateSettings(r.Context(), userID, req.CardsPerSession, req.RetentionPct)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, settingsResponse(settings))
}
