package repository

import (
	"context"

	"github.com/whoamid/backend/domain"
)

type SettingsRepository interface {
	// GetByUserID returns (nil, nil) when the user has no settings row.
	// Errors are reserved for store-level failures.
	GetByUserID(ctx context.Context, userID string) (*domain.Settings, error)
}
