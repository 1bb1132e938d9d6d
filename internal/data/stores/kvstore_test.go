package stores

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/colonyops/roster/internal/data/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func newTestKVStore(t *testing.T) *KVStore {
	t.Helper()
	return NewKVStore(openTestDB(t))
}

func TestKVStore_SetGetOverwrite(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	type payload struct {
		PageSize int    `json:"page_size"`
		Sort     string `json:"sort"`
	}

	require.NoError(t, store.Set(ctx, "prefs:list", payload{PageSize: 10, Sort: "name"}))
	require.NoError(t, store.Set(ctx, "prefs:list", payload{PageSize: 20, Sort: "age"}))

	var got payload
	require.NoError(t, store.Get(ctx, "prefs:list", &got))
	assert.Equal(t, payload{PageSize: 20, Sort: "age"}, got)
}

func TestKVStore_Missing(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	var v string
	require.ErrorIs(t, store.Get(ctx, "nope", &v), sql.ErrNoRows)
	assert.True(t, IsNotFoundError(store.Get(ctx, "nope", &v)))

	_, err := store.GetRaw(ctx, "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestKVStore_DeleteAndListKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	for i, k := range []string{"b", "a", "c"} {
		require.NoError(t, store.Set(ctx, k, i))
	}
	require.NoError(t, store.Delete(ctx, "b"))

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, keys)
}

func TestKVStore_GetRaw(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	require.NoError(t, store.SetTTL(ctx, "raw", map[string]int{"x": 1}, time.Hour))

	entry, err := store.GetRaw(ctx, "raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", entry.Key)
	assert.JSONEq(t, `{"x":1}`, string(entry.Value))
	require.NotNil(t, entry.ExpiresAt)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestKVStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	store := newTestKVStore(t)

	require.NoError(t, store.Set(ctx, "permanent", "stays"))
	require.NoError(t, store.SetTTL(ctx, "ephemeral", "gone", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var v string
	require.ErrorIs(t, store.Get(ctx, "ephemeral", &v), sql.ErrNoRows)

	require.NoError(t, store.SetTTL(ctx, "ephemeral2", "gone", time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.SweepExpired(ctx))

	keys, err := store.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"permanent"}, keys)
}
