package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/engram-api/internal/config"
	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/domain/srs"
	"github.com/phrazzld/engram-api/internal/platform/postgres"
	"github.com/phrazzld/engram-api/internal/service"
	"github.com/phrazzld/engram-api/internal/service/auth"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, LogLevel: "error"},
		Auth: config.AuthConfig{
			JWTSecret:                   "test-secret-key-that-is-32-chars",
			BcryptCost:                  4,
			TokenLifetimeMinutes:        15,
			RefreshTokenLifetimeMinutes: 10080,
		},
		Task: config.TaskConfig{WorkerCount: 1, QueueSize: 10, StuckTaskAgeMinutes: 30},
	}
}

// newTestApplication wires the router's dependencies over a sqlmock
// database. Handlers that reach the database need expectations set on
// the returned mock.
func newTestApplication(t *testing.T) (*application, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := testConfig()
	log := slog.Default()

	jwtService, err := auth.NewJWTService(cfg.Auth)
	require.NoError(t, err)

	deckStore := postgres.NewDeckStore(db, log)
	cardStore := postgres.NewCardStore(db, log)
	reviewStore := postgres.NewReviewStore(db, log)
	settingsStore := postgres.NewSettingsStore(db, log)

	app := &application{
		config:           cfg,
		logger:           log,
		db:               db,
		userStore:        postgres.NewUserStore(db, log),
		jwtService:       jwtService,
		passwordVerifier: auth.NewBcryptVerifier(),
		deckService:      service.NewDeckService(deckStore, db, log),
		cardService:      service.NewCardService(cardStore, deckStore, db, log),
		reviewService: service.NewReviewService(
			cardStore, deckStore, reviewStore, settingsStore, srs.NewDefaultService(), db, log),
		settingsService: service.NewSettingsService(settingsStore, log),
		importService:   service.NewImportService(cardStore, deckStore, db, log),
	}
	return app, mock
}

func TestRouter_HealthCheck(t *testing.T) {
	app, mock := newTestApplication(t)
	mock.ExpectPing()
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	app, _ := newTestApplication(t)
	router := app.setupRouter()

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/decks"},
		{http.MethodPost, "/api/decks"},
		{http.MethodGet, "/api/session?deck_id=" + uuid.NewString()},
		{http.MethodGet, "/api/settings"},
		{http.MethodGet, "/api/cards/" + uuid.NewString()},
	}
	for _, p := range paths {
		req := httptest.NewRequest(p.method, p.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", p.method, p.path)
	}
}

func TestRouter_AuthenticatedSettingsFlow(t *testing.T) {
	app, mock := newTestApplication(t)
	router := app.setupRouter()

	userID := uuid.New()
	token, err := app.jwtService.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	// No saved settings row: defaults come back.
	mock.ExpectQuery("SELECT user_id, cards_per_session, retention, updated_at").
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		CardsPerSession int `json:"cards_per_session"`
		RetentionPct    int `json:"retention_pct"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, domain.DefaultCardsPerSession, resp.CardsPerSession)
	assert.Equal(t, domain.DefaultRetentionPct, resp.RetentionPct)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouter_GenerateUnavailableWithoutEmitter(t *testing.T) {
	app, _ := newTestApplication(t)
	router := app.setupRouter()

	userID := uuid.New()
	token, err := app.jwtService.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/decks/"+uuid.NewString()+"/generate", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
