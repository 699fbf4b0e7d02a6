package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/engram-api/internal/config"
	"github.com/phrazzld/engram-api/internal/domain/srs"
	"github.com/phrazzld/engram-api/internal/events"
	"github.com/phrazzld/engram-api/internal/generation"
	"github.com/phrazzld/engram-api/internal/platform/gemini"
	"github.com/phrazzld/engram-api/internal/platform/postgres"
	"github.com/phrazzld/engram-api/internal/service"
	"github.com/phrazzld/engram-api/internal/service/auth"
	"github.com/phrazzld/engram-api/internal/store"
	"github.com/phrazzld/engram-api/internal/task"
)

// application holds the shared application dependencies so wiring and
// cleanup live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier

	deckService     service.DeckService
	cardService     service.CardService
	reviewService   service.ReviewService
	settingsService service.SettingsService
	importService   service.ImportService

	// eventEmitter is nil when no LLM API key is configured; the
	// generate endpoint reports itself unavailable in that case.
	eventEmitter events.EventEmitter

	taskRunner *task.TaskRunner
}

// newApplication wires stores, services and the background task runner
// from the loaded configuration and an open database connection.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: log,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	app.passwordVerifier = auth.NewBcryptVerifier()

	app.userStore = postgres.NewUserStore(db, log)
	deckStore := postgres.NewDeckStore(db, log)
	cardStore := postgres.NewCardStore(db, log)
	reviewStore := postgres.NewReviewStore(db, log)
	settingsStore := postgres.NewSettingsStore(db, log)
	taskStore := postgres.NewTaskStore(db, log)

	scheduler := srs.NewDefaultService()

	app.deckService = service.NewDeckService(deckStore, db, log)
	app.cardService = service.NewCardService(cardStore, deckStore, db, log)
	app.reviewService = service.NewReviewService(
		cardStore, deckStore, reviewStore, settingsStore, scheduler, db, log)
	app.settingsService = service.NewSettingsService(settingsStore, log)
	app.importService = service.NewImportService(cardStore, deckStore, db, log)

	generator, err := setupGenerator(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	app.taskRunner = task.NewTaskRunner(taskStore, task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}, log)

	if generator != nil {
		factory := task.NewCardGenerationTaskFactory(generator, app.importService, log)
		app.taskRunner.RegisterFactory(task.TaskTypeCardGeneration, factory)

		eventHandler := task.NewTaskRequestEventHandler(app.taskRunner, log)
		eventHandler.RegisterFactory(task.TaskTypeCardGeneration, factory)

		emitter := events.NewInMemoryEventEmitter(log)
		emitter.RegisterHandler(eventHandler)
		app.eventEmitter = emitter
	} else {
		log.Warn("no LLM API key configured, card generation disabled")
	}

	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	log.Info("application initialized")
	return app, nil
}

// setupGenerator builds the Gemini card generator, or returns nil when
// no API key is configured.
func setupGenerator(ctx context.Context, cfg *config.Config, log *slog.Logger) (generation.Generator, error) {
	if cfg.LLM.GeminiAPIKey == "" {
		return nil, nil
	}
	generator, err := gemini.NewGenerator(ctx, cfg.LLM, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize card generator: %w", err)
	}
	return generator, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
