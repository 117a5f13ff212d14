package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/citychain/internal/types"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func TestRedisStore_RecordAndRecentGames(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	finished := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	for i := range 3 {
		require.NoError(t, store.RecordGameResult(ctx, types.GameResult{
			Room:       fmt.Sprintf("r%d", i),
			Winner:     "Alice",
			Standings:  []types.Standing{{Name: "Alice", Score: 2}, {Name: "Bob", Score: 1}},
			Cities:     3,
			FinishedAt: finished,
		}))
	}

	games, err := store.RecentGames(ctx, 2)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "r2", games[0].Room)
	assert.Equal(t, "r1", games[1].Room)
	assert.Equal(t, "Alice", games[0].Winner)
	assert.True(t, finished.Equal(games[0].FinishedAt))
	assert.Len(t, games[0].Standings, 2)

	count, err := store.GamesPlayed(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestRedisStore_RecentGamesCapped(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	for i := range maxRecentGames + 5 {
		require.NoError(t, store.RecordGameResult(ctx, types.GameResult{Room: fmt.Sprintf("r%d", i)}))
	}

	items, err := mr.List(recentGamesKey)
	require.NoError(t, err)
	assert.Len(t, items, maxRecentGames)
}

func TestRedisStore_Empty(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	games, err := store.RecentGames(ctx, 10)
	assert.NoError(t, err)
	assert.Empty(t, games)

	count, err := store.GamesPlayed(ctx)
	assert.NoError(t, err)
	assert.Zero(t, count)

	assert.NoError(t, store.Ping(ctx))
}

func TestRedisStore_CorruptEntry(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	_, err := mr.Lpush(recentGamesKey, "not json")
	require.NoError(t, err)

	_, err = store.RecentGames(context.Background(), 1)
	assert.Error(t, err)
}
