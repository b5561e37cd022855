package repository

import (
	"context"
	"time"

	"github.com/whoamid/backend/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// TouchSeen records account activity; it never influences reads.
	TouchSeen(ctx context.Context, id string, at time.Time) error
}
