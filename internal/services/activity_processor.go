package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/whoamid/backend/internal/infrastructure/buffer"
	"github.com/whoamid/backend/repository"
)

// ConnectionHealth abstracts the connection monitor functionality.
type ConnectionHealth interface {
	IsOnline() bool
}

// ProcessorConfig controls how frequently the buffer is drained.
type ProcessorConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// ActivityProcessor replays buffered activity marks against the user store
// once it is reachable again.
type ActivityProcessor struct {
	store    *buffer.Store
	monitor  ConnectionHealth
	userRepo repository.UserRepository
	logger   *zap.Logger
	cron     *cron.Cron
	cfg      ProcessorConfig
}

type activityPayload struct {
	UserID string    `json:"user_id"`
	SeenAt time.Time `json:"seen_at"`
}

func NewActivityProcessor(
	store *buffer.Store,
	monitor ConnectionHealth,
	userRepo repository.UserRepository,
	logger *zap.Logger,
	cfg ProcessorConfig,
) *ActivityProcessor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ap := &ActivityProcessor{
		store:    store,
		monitor:  monitor,
		userRepo: userRepo,
		logger:   logger,
		cfg:      cfg,
		cron:     cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = ap.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := ap.Drain(ctx); err != nil {
			ap.logger.Error("activity buffer drain failed", zap.Error(err))
		}
	})

	return ap
}

// Start launches the cron scheduler.
func (ap *ActivityProcessor) Start() {
	if ap == nil || ap.cron == nil {
		return
	}
	ap.cron.Start()
	ap.logger.Info("activity processor started")
}

// Stop gracefully stops the scheduler.
func (ap *ActivityProcessor) Stop(ctx context.Context) {
	if ap == nil || ap.cron == nil {
		return
	}
	stopCtx := ap.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	ap.logger.Info("activity processor stopped")
}

// Drain processes buffered items synchronously. Items that exceed the
// retention window are discarded: a stale "seen at" mark has no value.
func (ap *ActivityProcessor) Drain(ctx context.Context) error {
	if ap == nil || ap.store == nil {
		return nil
	}
	if err := ap.store.Cleanup(time.Now().Add(-ap.cfg.Retention)); err != nil {
		ap.logger.Warn("activity buffer cleanup failed", zap.Error(err))
	}
	if ap.monitor != nil && !ap.monitor.IsOnline() {
		ap.logger.Debug("skipping activity drain (offline)")
		return nil
	}

	items, err := ap.store.GetBatch(ap.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, item := range items {
		if err := ap.processItem(ctx, item); err != nil {
			ap.logger.Error("failed to process activity item",
				zap.String("item_id", item.ID),
				zap.String("entity", item.Entity),
				zap.Error(err))

			item.Retries++
			if item.Retries >= ap.cfg.MaxRetries {
				ap.logger.Warn("dropping activity item (max retries reached)", zap.String("item_id", item.ID))
				_ = ap.store.Remove(item)
				continue
			}

			if err := ap.store.Remove(item); err != nil {
				ap.logger.Warn("failed to remove activity item", zap.Error(err))
			}
			if err := ap.store.Requeue(item); err != nil {
				ap.logger.Error("failed to requeue activity item", zap.Error(err))
			}
			continue
		}

		if err := ap.store.Remove(item); err != nil {
			ap.logger.Warn("failed to purge processed activity item", zap.Error(err))
		}
	}
	return nil
}

// BufferOperation attempts to run the operation immediately and falls back to persisting it.
func (ap *ActivityProcessor) BufferOperation(ctx context.Context, item buffer.Item) error {
	if ap == nil || ap.store == nil {
		return fmt.Errorf("activity processor not configured")
	}

	if ap.monitor == nil || ap.monitor.IsOnline() {
		if err := ap.processItem(ctx, item); err == nil {
			return nil
		} else {
			ap.logger.Warn("immediate processing failed, buffering", zap.Error(err))
		}
	}
	return ap.store.Enqueue(item)
}

// Size returns the number of buffered items.
func (ap *ActivityProcessor) Size() int {
	if ap == nil || ap.store == nil {
		return 0
	}
	size, err := ap.store.Size()
	if err != nil {
		return 0
	}
	return size
}

func (ap *ActivityProcessor) processItem(ctx context.Context, item buffer.Item) error {
	if ctx == nil {
		ctx = context.Background()
	}

	switch item.Entity {
	case buffer.EntityActivity:
		var payload activityPayload
		if err := json.Unmarshal(item.Data, &payload); err != nil {
			return err
		}
		return ap.userRepo.TouchSeen(ctx, payload.UserID, payload.SeenAt)
	default:
		return fmt.Errorf("unsupported entity %s", item.Entity)
	}
}
