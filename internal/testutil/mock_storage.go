//go:build !production

package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/citychain/internal/server/storage"
	"github.com/palemoky/citychain/internal/types"
)

// MockLeaderboard 排行榜 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) GetPlayerStats(ctx context.Context, name string) (*storage.PlayerStats, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.PlayerStats), args.Error(1)
}

func (m *MockLeaderboard) GetPlayerRank(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeaderboard) GetLeaderboard(ctx context.Context, limit int) ([]*storage.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.LeaderboardEntry), args.Error(1)
}

// MockHistory 对局历史 mock
type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) RecentGames(ctx context.Context, limit int) ([]types.GameResult, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.GameResult), args.Error(1)
}

// RecordingRecorder 记录所有收到的对局结果
type RecordingRecorder struct {
	mu      sync.Mutex
	results []types.GameResult
}

func (r *RecordingRecorder) RecordGameResult(_ context.Context, result types.GameResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	return nil
}

// Results returns a copy of the recorded results
func (r *RecordingRecorder) Results() []types.GameResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.GameResult, len(r.results))
	copy(out, r.results)
	return out
}
