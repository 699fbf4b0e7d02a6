package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/engram-api/internal/api"
	apiMiddleware "github.com/phrazzld/engram-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	authHandler := api.NewAuthHandler(
		app.userStore,
		app.jwtService,
		app.passwordVerifier,
		app.config.Auth,
		app.logger,
	)
	deckHandler := api.NewDeckHandler(app.deckService, app.importService, app.eventEmitter, app.logger)
	cardHandler := api.NewCardHandler(app.cardService, app.logger)
	reviewHandler := api.NewReviewHandler(app.reviewService, app.logger)
	settingsHandler := api.NewSettingsHandler(app.settingsService, app.logger)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)
		r.Get("/health", app.healthCheck)

		// Everything else requires a Bearer access token.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/decks", deckHandler.ListDecks)
			r.Post("/decks", deckHandler.CreateDeck)
			r.Get("/decks/{id}", deckHandler.GetDeck)
			r.Put("/decks/{id}", deckHandler.UpdateDeck)
			r.Delete("/decks/{id}", deckHandler.DeleteDeck)
			r.Post("/decks/{id}/import", deckHandler.ImportCards)
			r.Post("/decks/{id}/generate", deckHandler.GenerateCards)

			r.Get("/decks/{id}/cards", cardHandler.ListCards)
			r.Post("/decks/{id}/cards", cardHandler.CreateCard)
			r.Get("/cards/{id}", cardHandler.GetCard)
			r.Put("/cards/{id}", cardHandler.UpdateCard)
			r.Delete("/cards/{id}", cardHandler.DeleteCard)

			r.Get("/session", reviewHandler.PlanSession)
			r.Post("/cards/{id}/review", reviewHandler.SubmitReview)
			r.Get("/cards/{id}/reviews", reviewHandler.GetHistory)

			r.Get("/settings", settingsHandler.GetSettings)
			r.Put("/settings", settingsHandler.UpdateSettings)
		})
	})

	return r
}

func (app *application) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := app.db.PingContext(r.Context()); err != nil {
		app.logger.Error("health check failed", "error", err)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("failed to write health check response", "error", err)
	}
}
