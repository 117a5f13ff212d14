package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/citychain/internal/types"
)

const (
	recentGamesKey = "games:recent"
	gamesPlayedKey = "games:count"

	// 保留的最近对局数
	maxRecentGames = 100
)

// RedisStore 对局历史存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// RecordGameResult 追加一局结果到最近对局列表
func (rs *RedisStore) RecordGameResult(ctx context.Context, result types.GameResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化对局结果失败: %w", err)
	}

	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, recentGamesKey, data)
		pipe.LTrim(ctx, recentGamesKey, 0, maxRecentGames-1)
		pipe.Incr(ctx, gamesPlayedKey)
		return nil
	})
	return err
}

// RecentGames 返回最近的对局，最新的在前
func (rs *RedisStore) RecentGames(ctx context.Context, limit int) ([]types.GameResult, error) {
	if limit <= 0 {
		return nil, nil
	}

	items, err := rs.client.LRange(ctx, recentGamesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	games := make([]types.GameResult, 0, len(items))
	for _, item := range items {
		var result types.GameResult
		if err := json.Unmarshal([]byte(item), &result); err != nil {
			return nil, fmt.Errorf("反序列化对局结果失败: %w", err)
		}
		games = append(games, result)
	}
	return games, nil
}

// GamesPlayed 返回累计完成的对局数
func (rs *RedisStore) GamesPlayed(ctx context.Context) (int64, error) {
	n, err := rs.client.Get(ctx, gamesPlayedKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Ping 检查 Redis 连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	return rs.client.Ping(ctx).Err()
}
