package whoami

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/whoamid/backend/domain"
	"github.com/whoamid/backend/repository"
	"github.com/whoamid/backend/usecase"
)

// seenInterval throttles activity writes: a user already marked seen within
// this window is not touched again.
const seenInterval = 5 * time.Minute

type UseCase struct {
	users    repository.UserRepository
	settings repository.SettingsRepository
	activity usecase.ActivityBuffer
	logger   *zap.Logger
}

func New(users repository.UserRepository, settings repository.SettingsRepository, activity usecase.ActivityBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		settings: settings,
		activity: activity,
		logger:   logger,
	}
}

// Resolve maps an optional session token to everything known about the
// caller. No token means an anonymous caller and yields (nil, nil). A token
// that is present but cannot be matched to a user yields ErrInvalidSession:
// a presented session must never silently degrade to anonymous.
func (uc *UseCase) Resolve(ctx context.Context, token string, present bool) (*domain.Identity, error) {
	if !present {
		return nil, nil
	}

	user, err := uc.users.GetByID(ctx, token)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil, domain.ErrInvalidSession
		}
		return nil, domain.WrapError(domain.ErrCodeUnauthorized, "invalid session", err)
	}

	settings, err := uc.settings.GetByUserID(ctx, user.ID)
	if err != nil {
		// Store-level failure: the whole request fails, no partial document.
		return nil, err
	}

	uc.markSeen(ctx, user)

	return &domain.Identity{User: user, Settings: settings}, nil
}

func (uc *UseCase) markSeen(ctx context.Context, user *domain.User) {
	if uc.activity == nil {
		return
	}
	now := time.Now()
	if user.LastSeenAt != nil && now.Sub(*user.LastSeenAt) < seenInterval {
		return
	}
	if err := uc.activity.MarkSeen(ctx, user.ID, now); err != nil {
		uc.logger.Warn("failed to record account activity",
			zap.String("user_id", user.ID),
			zap.Error(err))
	}
}
