package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whoamid/backend/domain"
	"github.com/whoamid/backend/repository"
)

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository instantiates a Postgres-backed settings repository.
func NewSettingsRepository(pool *pgxpool.Pool) repository.SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID string) (*domain.Settings, error) {
	const query = `
		SELECT user_id, locale, no_ads, newsletter, updated_at
		FROM settings
		WHERE user_id = $1
	`
	row := r.pool.QueryRow(ctx, query, userID)

	var settings domain.Settings
	if err := row.Scan(
		&settings.UserID,
		&settings.Locale,
		&settings.NoAds,
		&settings.Newsletter,
		&settings.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No stored preferences yet. Not an error.
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}
