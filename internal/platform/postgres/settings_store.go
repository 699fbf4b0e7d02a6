package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/platform/logger"
	"github.com/phrazzld/engram-api/internal/store"
)

// SettingsStore implements the store.SettingsStore interface using a
// PostgreSQL database as the storage backend.
type SettingsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSettingsStore creates a new PostgreSQL implementation of the
// SettingsStore interface. If log is nil the default logger is used.
func NewSettingsStore(db store.DBTX, log *slog.Logger) *SettingsStore {
	if db == nil {
		panic("postgres.NewSettingsStore: db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &SettingsStore{
		db:     db,
		logger: log.With(slog.String("component", "settings_store")),
	}
}

// Ensure SettingsStore implements store.SettingsStore interface
var _ store.SettingsStore = (*SettingsStore)(nil)

// WithTx implements store.SettingsStore.WithTx.
func (s *SettingsStore) WithTx(tx *sql.Tx) store.SettingsStore {
	return &SettingsStore{db: tx, logger: s.logger}
}

// Get implements store.SettingsStore.Get.
func (s *SettingsStore) Get(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, cards_per_session, retention, updated_at
		FROM user_settings
		WHERE user_id = $1
	`
	var settings domain.UserSettings
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&settings.UserID,
		&settings.CardsPerSession,
		&settings.RetentionPct,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSettingsNotFound
		}
		log.Error("failed to get user settings",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, mapError(err)
	}
	return &settings, nil
}

// Save implements store.SettingsStore.Save using an upsert keyed on the
// user ID.
func (s *SettingsStore) Save(ctx context.Context, settings *domain.UserSettings) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := settings.Validate(); err != nil {
		log.Warn("settings validation failed during save",
			slog.String("error", err.Error()),
			slog.String("user_id", settings.UserID.String()))
		return err
	}

	query := `
		INSERT INTO user_settings (user_id, cards_per_session, retention, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET cards_per_session = EXCLUDED.cards_per_session,
			retention = EXCLUDED.retention,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		settings.UserID,
		settings.CardsPerSession,
		settings.RetentionPct,
		settings.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to save user settings",
			slog.String("error", err.Error()),
			slog.String("user_id", settings.UserID.String()))
		return mapError(err)
	}

	log.Info("user settings saved",
		slog.String("user_id", settings.UserID.String()),
		slog.Int("cards_per_session", settings.CardsPerSession),
		slog.Int("retention_pct", settings.RetentionPct))
	return nil
}
