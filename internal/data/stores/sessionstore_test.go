package stores

import (
	"context"
	"testing"
	"time"

	"github.com/colonyops/roster/internal/core/identity"
	"github.com/colonyops/roster/internal/core/listview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore(newTestKVStore(t))

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, identity.ErrNoSession)

	want := identity.Session{
		User:         identity.User{UID: "uid-1", Email: "ann@x.io", DisplayName: "Ann"},
		IDToken:      "id",
		RefreshToken: "refresh",
		ExpiresAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Save(ctx, want))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.User, got.User)
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))

	require.NoError(t, store.Clear(ctx))
	_, err = store.Load(ctx)
	require.ErrorIs(t, err, identity.ErrNoSession)
}

func TestPrefsStore(t *testing.T) {
	ctx := context.Background()
	prefs := NewPrefsStore(newTestKVStore(t))

	_, ok := prefs.ListPrefs(ctx)
	assert.False(t, ok)

	want := ListPrefs{PageSize: 20, Sort: listview.Sort{Key: "age", Desc: true}}
	require.NoError(t, prefs.SaveListPrefs(ctx, want))

	got, ok := prefs.ListPrefs(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestSessionStore_SaveSetsTTL(t *testing.T) {
	ctx := context.Background()
	kvStore := newTestKVStore(t)
	store := NewSessionStore(kvStore)

	before := time.Now()
	require.NoError(t, store.Save(ctx, identity.Session{User: identity.User{UID: "uid-1"}}))

	entry, err := kvStore.GetRaw(ctx, authNamespace+":"+sessionKey)
	require.NoError(t, err)
	require.NotNil(t, entry.ExpiresAt)
	assert.WithinDuration(t, before.Add(SessionTTL), *entry.ExpiresAt, time.Minute)
}
