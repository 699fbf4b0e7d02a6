// Package main implements the entry point for the engram API server,
// which schedules users' spaced-repetition flashcards and generates new
// cards through LLM integration.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/phrazzld/engram-api/internal/config"
	"github.com/phrazzld/engram-api/internal/platform/logger"
	"github.com/phrazzld/engram-api/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := openDatabase(cfg, log)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return postgres.RunMigrations(db, migrateCmd)
	}

	// Normal startup applies pending migrations before serving.
	if err := postgres.MigrateUp(db); err != nil {
		_ = db.Close()
		return err
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, log, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run(ctx)
}
