package usecase

import (
	"context"
	"time"
)

// ActivityBuffer abstracts the activity write path so use cases stay
// storage-agnostic. Implementations are expected to absorb storage outages.
type ActivityBuffer interface {
	MarkSeen(ctx context.Context, userID string, at time.Time) error
}
