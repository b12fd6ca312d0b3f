package repository

import (
	"context"

	"openchime/internal/domain/entity"
)

type SettingsRepository interface {
	// Get projects the flat key-value settings table into a Settings
	// struct, applying per-key defaults for missing or unparsable values.
	Get(ctx context.Context) (entity.Settings, error)
	Update(ctx context.Context, settings entity.Settings) error
}
