package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/whoamid/backend/domain"
	"github.com/whoamid/backend/internal/infrastructure/buffer"
	"github.com/whoamid/backend/usecase"
)

// ActivityBridge adapts the processor to the use-case facing ActivityBuffer port.
type ActivityBridge struct {
	processor *ActivityProcessor
}

func NewActivityBridge(processor *ActivityProcessor) *ActivityBridge {
	return &ActivityBridge{processor: processor}
}

func (b *ActivityBridge) MarkSeen(ctx context.Context, userID string, at time.Time) error {
	if b.processor == nil || userID == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(activityPayload{UserID: userID, SeenAt: at})
	if err != nil {
		return err
	}
	item := buffer.Item{
		UserID:    userID,
		Entity:    buffer.EntityActivity,
		Operation: buffer.OperationTouch,
		Data:      payload,
	}
	return b.processor.BufferOperation(ctx, item)
}

var _ usecase.ActivityBuffer = (*ActivityBridge)(nil)
