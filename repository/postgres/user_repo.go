package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/whoamid/backend/domain"
	"github.com/whoamid/backend/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	const query = `
		SELECT id, email, avatar_url, is_subscriber, subscription_type, last_seen_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)

	var user domain.User
	var subscriptionType *string

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.AvatarURL,
		&user.IsSubscriber,
		&subscriptionType,
		&user.LastSeenAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	// A NULL subscription type is reported as the empty string; clients
	// expect the field to always carry a value for signed-in users.
	user.SubscriptionType = textOrEmpty(subscriptionType)

	return &user, nil
}

func (r *userRepository) TouchSeen(ctx context.Context, id string, at time.Time) error {
	const query = `
		UPDATE users
		SET last_seen_at = $2, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
