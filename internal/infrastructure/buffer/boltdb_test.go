package buffer

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "buffer.db"), "activity")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEnqueueAndBatchOrder(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Minute)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Enqueue(Item{
			ID:        id,
			UserID:    "user-" + id,
			Entity:    EntityActivity,
			Operation: OperationTouch,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}))
	}

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, "c", items[2].ID)

	size, err := store.Size()
	require.NoError(t, err)
	assert.Equal(t, 3, size)
}

func TestGetBatchHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Enqueue(Item{ID: id, Entity: EntityActivity}))
	}

	items, err := store.GetBatch(2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestRemove(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Enqueue(Item{ID: "a", Entity: EntityActivity}))

	items, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, store.Remove(items[0]))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestRemoveByIDWithoutBucketKey(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Enqueue(Item{ID: "a", Entity: EntityActivity}))

	require.NoError(t, store.Remove(Item{ID: "a"}))

	size, err := store.Size()
	require.NoError(t, err)
	assert.Zero(t, size)
}

func TestRequeueBumpsTimestamp(t *testing.T) {
	store := openTestStore(t)
	old := time.Now().Add(-time.Hour)
	require.NoError(t, store.Enqueue(Item{ID: "a", Entity: EntityActivity, Timestamp: old}))

	items, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, store.Remove(items[0]))
	require.NoError(t, store.Requeue(items[0]))

	requeued, err := store.GetBatch(1)
	require.NoError(t, err)
	require.Len(t, requeued, 1)
	assert.True(t, requeued[0].Timestamp.After(old))
}

func TestCleanupDropsStaleItems(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.Enqueue(Item{ID: "stale", Entity: EntityActivity, Timestamp: time.Now().Add(-48 * time.Hour)}))
	require.NoError(t, store.Enqueue(Item{ID: "fresh", Entity: EntityActivity}))

	require.NoError(t, store.Cleanup(time.Now().Add(-24*time.Hour)))

	items, err := store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].ID)
}
