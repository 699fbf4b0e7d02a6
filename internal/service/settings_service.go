package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/phrazzld/engram-api/internal/domain"
	"github.com/phrazzld/engram-api/internal/store"
)

// SettingsService manages the per-user scheduling knobs.
type SettingsService interface {
	// GetSettings retrieves the user's settings, returning the
	// application defaults when none have been saved yet.
	GetSettings(ctx context.Context, userID uuid.UUID) (*domain.UserSettings, error)

	// UpdateSettings validates and saves new values.
	// Out-of-range values wrap domain.ErrInvalidConfig.
	UpdateSettings(ctx context.Context, userID uuid.UUID, cardsPerSession, retentionPct int) (*domain.UserSettings, error)
}

// SettingsServiceImpl implements SettingsService.
type SettingsServiceImpl struct {
	settingsStore store.SettingsStore
	logger        *slog.Logger
}

var _ SettingsService = (*SettingsServiceImpl)(nil)

// NewSettingsService creates a new SettingsService.
func NewSettingsService(settingsStore store.SettingsStore, logger *slog.Logger) *SettingsServiceImpl {
	return &SettingsServiceImpl{
		settingsStore: settingsStore,
		logger:        logger.With(slog.String("component", "settings_service")),
	}
}

// GetSettings retrieves the user's settings or the defaults.
func (s *SettingsServiceImpl) GetSettings(
	ctx context.Context,
	userID uuid.UUID,
) (*domain.UserSettings, error) {
	settings, err := s.settingsStore.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrSettingsNotFound) {
			return domain.NewUserSettings(userID), nil
		}
		s.logger.Error("failed to load settings",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// UpdateSettings validates and saves new values. Save is an upsert, so
// first-time updates and later edits take the same path.
func (s *SettingsServiceImpl) UpdateSettings(
	ctx context.Context,
	userID uuid.UUID,
	cardsPerSession, retentionPct int,
) (*domain.UserSettings, error) {
	settings, err := s.GetSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := settings.Update(cardsPerSession, retentionPct); err != nil {
		return nil, err
	}

	if err := s.settingsStore.Save(ctx, settings); err != nil {
		s.logger.Error("failed to save settings",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}

	s.logger.Info("settings updated",
		"user_id", userID,
		"cards_per_session", cardsPerSession,
		"retention_pct", retentionPct)
	return settings, nil
}
