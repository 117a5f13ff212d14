package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/citychain/internal/types"
)

func newTestLeaderboardManager(t *testing.T) (*LeaderboardManager, *miniredis.Miniredis) {
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

	lm := NewLeaderboardManager(client)
	lm.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return lm, mr
}

func twoPlayerResult(winnerScore, loserScore int) types.GameResult {
	return types.GameResult{
		Room:   "r1",
		Winner: "Alice",
		Standings: []types.Standing{
			{Name: "Alice", Score: winnerScore},
			{Name: "Bob", Score: loserScore},
		},
		Cities: winnerScore + loserScore,
	}
}

func TestLeaderboard_RecordGameResult_NewPlayers(t *testing.T) {
	t.Parallel()

	lm, _ := newTestLeaderboardManager(t)
	ctx := context.Background()

	require.NoError(t, lm.RecordGameResult(ctx, twoPlayerResult(4, 3)))

	alice, err := lm.GetPlayerStats(ctx, "Alice")
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Equal(t, 1, alice.TotalGames)
	assert.Equal(t, 1, alice.Wins)
	assert.Equal(t, 4, alice.Cities)
	assert.Equal(t, 4+WinBonus, alice.Score)
	assert.Equal(t, 1, alice.CurrentStreak)

	bob, err := lm.GetPlayerStats(ctx, "Bob")
	require.NoError(t, err)
	require.NotNil(t, bob)
	assert.Equal(t, 1, bob.Losses)
	assert.Equal(t, 3, bob.Score)
	assert.Equal(t, -1, bob.CurrentStreak)
	assert.InDelta(t, 0.0, bob.WinRate(), 0.001)
}

func TestLeaderboard_UnknownPlayer(t *testing.T) {
	t.Parallel()

	lm, _ := newTestLeaderboardManager(t)
	stats, err := lm.GetPlayerStats(context.Background(), "Nobody")
	assert.NoError(t, err)
	assert.Nil(t, stats)

	rank, err := lm.GetPlayerRank(context.Background(), "Nobody")
	assert.NoError(t, err)
	assert.Equal(t, int64(-1), rank)
}

func TestLeaderboard_WinStreakBonus(t *testing.T) {
	t.Parallel()

	lm, _ := newTestLeaderboardManager(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, lm.RecordGameResult(ctx, twoPlayerResult(2, 1)))
	}

	alice, err := lm.GetPlayerStats(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, 3, alice.CurrentStreak)
	assert.Equal(t, 3, alice.MaxWinStreak)
	// two plain wins, then a win with the 3-streak bonus
	assert.Equal(t, 3*(2+WinBonus)+StreakBonus3, alice.Score)
	assert.Equal(t, 2, alice.BestGame)

	bob, err := lm.GetPlayerStats(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, -3, bob.CurrentStreak)
	assert.Equal(t, 0, bob.MaxWinStreak)
}

func TestLeaderboard_StreakResetsOnLoss(t *testing.T) {
	t.Parallel()

	stats := &PlayerStats{CurrentStreak: 4, MaxWinStreak: 4}
	updateWinLossStats(stats, false)
	assert.Equal(t, -1, stats.CurrentStreak)
	assert.Equal(t, 4, stats.MaxWinStreak)

	updateWinLossStats(stats, true)
	assert.Equal(t, 1, stats.CurrentStreak)
}

func TestCalculateStreakBonus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		streak int
		want   int
	}{
		{-2, 0},
		{2, 0},
		{3, StreakBonus3},
		{5, StreakBonus5},
		{12, StreakBonus10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateStreakBonus(tt.streak), "streak %d", tt.streak)
	}
}

func TestLeaderboard_GetLeaderboardAndRank(t *testing.T) {
	t.Parallel()

	lm, mr := newTestLeaderboardManager(t)
	ctx := context.Background()

	require.NoError(t, lm.RecordGameResult(ctx, twoPlayerResult(5, 1)))
	require.NoError(t, lm.RecordGameResult(ctx, types.GameResult{
		Winner:    "Carol",
		Standings: []types.Standing{{Name: "Carol", Score: 1}, {Name: "Dave", Score: 0}},
	}))

	entries, err := lm.GetLeaderboard(ctx, 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Alice", entries[0].PlayerName)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, 5+WinBonus, entries[0].Score)
	assert.InDelta(t, 100.0, entries[0].WinRate, 0.001)
	assert.Equal(t, "Carol", entries[1].PlayerName)
	assert.Equal(t, "Bob", entries[2].PlayerName)

	rank, err := lm.GetPlayerRank(ctx, "Bob")
	require.NoError(t, err)
	assert.Equal(t, int64(3), rank)

	// period boards are written and expire
	assert.True(t, mr.Exists("leaderboard:daily:2024-03-15"))
	assert.True(t, mr.Exists("leaderboard:weekly:2024-W11"))
	assert.Positive(t, mr.TTL("leaderboard:daily:2024-03-15"))

	empty, err := lm.GetLeaderboard(ctx, 0)
	assert.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLeaderboard_RedisDown(t *testing.T) {
	t.Parallel()

	lm, mr := newTestLeaderboardManager(t)
	mr.Close()

	err := lm.RecordGameResult(context.Background(), twoPlayerResult(1, 0))
	assert.Error(t, err)
}
