package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess, err := store.Create(ctx, "u1", "alice", time.Hour)
	require.NoError(t, err)
	assert.Len(t, sess.Token, 64)
	assert.Equal(t, "u1", sess.UserID)

	got, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.Equal(t, sess.Username, got.Username)
}

func TestMemoryStoreGetUnknownToken(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreLazyExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	store := NewMemoryStore(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	sess, err := store.Create(ctx, "u1", "alice", time.Minute)
	require.NoError(t, err)

	now = now.Add(time.Minute)

	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	// The expired session was deleted on access, not just hidden.
	assert.Zero(t, store.Len())
}

func TestMemoryStoreTokensAreUnique(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		sess, err := store.Create(ctx, "u1", "alice", time.Hour)
		require.NoError(t, err)
		_, dup := seen[sess.Token]
		require.False(t, dup)
		seen[sess.Token] = struct{}{}
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess, err := store.Create(ctx, "u1", "alice", time.Hour)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, sess.Token))
	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent token is not an error.
	assert.NoError(t, store.Delete(ctx, sess.Token))
}

func TestMemoryStoreSweep(t *testing.T) {
	now := time.Unix(1000, 0)
	store := NewMemoryStore(WithClock(func() time.Time { return now }))
	ctx := context.Background()

	_, err := store.Create(ctx, "u1", "alice", time.Minute)
	require.NoError(t, err)
	live, err := store.Create(ctx, "u2", "bob", time.Hour)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)

	assert.Equal(t, 1, store.Sweep())
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, live.Token)
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)
}
