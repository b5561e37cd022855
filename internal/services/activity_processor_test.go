package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whoamid/backend/domain"
	"github.com/whoamid/backend/internal/infrastructure/buffer"
)

type fakeMonitor struct {
	online bool
}

func (f *fakeMonitor) IsOnline() bool { return f.online }

type fakeUserRepo struct {
	mu      sync.Mutex
	touched map[string]time.Time
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{touched: map[string]time.Time{}}
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) TouchSeen(ctx context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.touched[id] = at
	return nil
}

func openProcessor(t *testing.T, repo *fakeUserRepo, mon *fakeMonitor, cfg ProcessorConfig) (*ActivityProcessor, *buffer.Store) {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), "activity")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewActivityProcessor(store, mon, repo, nil, cfg), store
}

func TestMarkSeenImmediateWhenOnline(t *testing.T) {
	repo := newFakeUserRepo()
	processor, _ := openProcessor(t, repo, &fakeMonitor{online: true}, ProcessorConfig{})
	bridge := NewActivityBridge(processor)

	at := time.Now()
	require.NoError(t, bridge.MarkSeen(context.Background(), "user-123", at))

	assert.Len(t, repo.touched, 1)
	assert.Zero(t, processor.Size(), "nothing should be buffered on the happy path")
}

func TestMarkSeenBuffersWhenOffline(t *testing.T) {
	repo := newFakeUserRepo()
	mon := &fakeMonitor{online: false}
	processor, _ := openProcessor(t, repo, mon, ProcessorConfig{})
	bridge := NewActivityBridge(processor)

	require.NoError(t, bridge.MarkSeen(context.Background(), "user-123", time.Now()))

	assert.Empty(t, repo.touched)
	assert.Equal(t, 1, processor.Size())

	mon.online = true
	require.NoError(t, processor.Drain(context.Background()))

	assert.Len(t, repo.touched, 1)
	assert.Zero(t, processor.Size())
}

func TestMarkSeenBuffersWhenWriteFails(t *testing.T) {
	repo := newFakeUserRepo()
	repo.err = errors.New("write timeout")
	processor, _ := openProcessor(t, repo, &fakeMonitor{online: true}, ProcessorConfig{})
	bridge := NewActivityBridge(processor)

	require.NoError(t, bridge.MarkSeen(context.Background(), "user-123", time.Now()))

	assert.Equal(t, 1, processor.Size())
}

func TestDrainDropsItemAfterMaxRetries(t *testing.T) {
	repo := newFakeUserRepo()
	repo.err = errors.New("write timeout")
	processor, store := openProcessor(t, repo, &fakeMonitor{online: true}, ProcessorConfig{MaxRetries: 2})

	payload := []byte(`{"user_id":"user-123","seen_at":"2026-01-02T15:04:05Z"}`)
	require.NoError(t, store.Enqueue(buffer.Item{
		Entity:    buffer.EntityActivity,
		Operation: buffer.OperationTouch,
		UserID:    "user-123",
		Data:      payload,
	}))

	require.NoError(t, processor.Drain(context.Background()))
	assert.Equal(t, 1, processor.Size(), "first failure requeues the item")

	require.NoError(t, processor.Drain(context.Background()))
	assert.Zero(t, processor.Size(), "second failure exceeds max retries and drops it")
}

func TestDrainSkipsWhileOffline(t *testing.T) {
	repo := newFakeUserRepo()
	mon := &fakeMonitor{online: false}
	processor, store := openProcessor(t, repo, mon, ProcessorConfig{})

	require.NoError(t, store.Enqueue(buffer.Item{
		Entity: buffer.EntityActivity,
		UserID: "user-123",
		Data:   []byte(`{"user_id":"user-123","seen_at":"2026-01-02T15:04:05Z"}`),
	}))

	require.NoError(t, processor.Drain(context.Background()))
	assert.Equal(t, 1, processor.Size())
	assert.Empty(t, repo.touched)
}
