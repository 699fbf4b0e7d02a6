package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/engram-api/internal/domain"
)

// SettingsStore defines the interface for per-user scheduling settings
// persistence.
type SettingsStore interface {
	// Get retrieves a user's scheduling settings.
	// Returns ErrSettingsNotFound if the user has never saved any;
	// callers fall back to domain.NewUserSettings defaults in that case.
	Get(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error)

	// Save upserts the user's settings: inserts the row on first save,
	// updates it afterwards.
	// Returns validation errors from the domain UserSettings if data is
	// invalid.
	Save(ctx context.Context, settings *domain.UserSettings) error

	// WithTx returns a new SettingsStore instance that uses the provided
	// transaction.
	WithTx(tx *sql.Tx) SettingsStore
}
