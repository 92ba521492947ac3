package relay

import (
	"context"
	"testing"
	"time"

	"github.com/Sakly-Saber/TraceTrade-sub000/internal/adapters/embeddb"
	"github.com/Sakly-Saber/TraceTrade-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionCache(t *testing.T) *SessionCache {
	t.Helper()

	registry, err := embeddb.NewRegistry(t.TempDir())
	require.NoError(t, err)
	db, err := registry.Open(context.Background(), SessionDatabase)
	require.NoError(t, err)

	cache, err := NewSessionCache(context.Background(), db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })
	return cache
}

func TestSessionCacheReplaceUpsertRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cache := newTestSessionCache(t)
	older := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	newer := older.Add(time.Hour)

	require.NoError(t, cache.Replace(ctx, []domain.SessionEntry{
		{Topic: "b@2", Peer: domain.PeerMetadata{Name: "Blade"}, CreatedAt: newer},
		{Topic: "a@2", Peer: domain.PeerMetadata{Name: "HashPack", Icons: []string{"https://x/icon.png"}}, CreatedAt: older},
	}))

	sessions, err := cache.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "a@2", sessions[0].Topic)
	assert.Equal(t, []string{"https://x/icon.png"}, sessions[0].Peer.Icons)
	assert.Equal(t, older, sessions[0].CreatedAt)

	require.NoError(t, cache.Upsert(ctx, domain.SessionEntry{Topic: "a@2", Peer: domain.PeerMetadata{Name: "HashPack 2"}, CreatedAt: older}))
	require.NoError(t, cache.Remove(ctx, "b@2"))

	sessions, err = cache.List(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "HashPack 2", sessions[0].Peer.Name)

	require.NoError(t, cache.Replace(ctx, nil))
	sessions, err = cache.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestSessionCacheRejectsEmptyTopic(t *testing.T) {
	t.Parallel()

	cache := newTestSessionCache(t)
	assert.ErrorContains(t, cache.Upsert(context.Background(), domain.SessionEntry{Topic: " "}), "session topic is required")
	assert.ErrorContains(t, cache.Replace(context.Background(), []domain.SessionEntry{{Topic: "ok@2"}, {}}), "session topic is required")

	sessions, err := cache.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sessions, "failed replace must roll back")
}
