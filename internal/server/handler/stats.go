package handler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/citychain/internal/apperrors"
	"github.com/palemoky/citychain/internal/game/room"
	"github.com/palemoky/citychain/internal/protocol"
)

const (
	leaderboardSize = 10
	recentGames     = 10
)

// --- 排行榜处理 ---

// handleStats 个人统计
func (h *Handler) handleStats(ctx context.Context, s *session, _ string) (*room.Room, error) {
	if h.leaderboard == nil {
		return nil, apperrors.ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	name := s.conn.GetName()
	stats, err := h.leaderboard.GetPlayerStats(ctx, name)
	if err != nil {
		log.Error().Err(err).Str("player", name).Msg("failed to load player stats")
		return nil, apperrors.ErrUnavailable
	}
	if stats == nil {
		s.conn.SendMessage(protocol.NewText("📊 %s has not finished a game yet", name))
		return nil, nil
	}

	rank, err := h.leaderboard.GetPlayerRank(ctx, name)
	if err != nil {
		log.Warn().Err(err).Str("player", name).Msg("failed to load player rank")
		rank = 0
	}
	rankText := "unranked"
	if rank > 0 {
		rankText = fmt.Sprintf("#%d", rank)
	}

	s.conn.SendMessage(protocol.NewList([]string{
		fmt.Sprintf("📊 %s (%s)", stats.PlayerName, rankText),
		fmt.Sprintf("Score: %d", stats.Score),
		fmt.Sprintf("Games: %d  Wins: %d  Losses: %d  Win rate: %.1f%%", stats.TotalGames, stats.Wins, stats.Losses, stats.WinRate()),
		fmt.Sprintf("Cities named: %d  Best game: %d", stats.Cities, stats.BestGame),
		fmt.Sprintf("Streak: %d  Best win streak: %d", stats.CurrentStreak, stats.MaxWinStreak),
	}))
	return nil, nil
}

// handleTop 排行榜
func (h *Handler) handleTop(ctx context.Context, s *session, _ string) (*room.Room, error) {
	if h.leaderboard == nil {
		return nil, apperrors.ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	entries, err := h.leaderboard.GetLeaderboard(ctx, leaderboardSize)
	if err != nil {
		log.Error().Err(err).Msg("failed to load leaderboard")
		return nil, apperrors.ErrUnavailable
	}
	if len(entries) == 0 {
		s.conn.SendMessage(protocol.NewList([]string{"🏆 No games recorded yet"}))
		return nil, nil
	}

	lines := make([]string, 0, len(entries)+1)
	lines = append(lines, "🏆 Leaderboard")
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%d. %s  %d pts  %d wins (%.0f%%)", e.Rank, e.PlayerName, e.Score, e.Wins, e.WinRate))
	}
	s.conn.SendMessage(protocol.NewList(lines))
	return nil, nil
}

// handleRecent 最近对局
func (h *Handler) handleRecent(ctx context.Context, s *session, _ string) (*room.Room, error) {
	if h.history == nil {
		return nil, apperrors.ErrUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	games, err := h.history.RecentGames(ctx, recentGames)
	if err != nil {
		log.Error().Err(err).Msg("failed to load recent games")
		return nil, apperrors.ErrUnavailable
	}
	if len(games) == 0 {
		s.conn.SendMessage(protocol.NewList([]string{"🕘 No finished games yet"}))
		return nil, nil
	}

	lines := make([]string, 0, len(games))
	for _, g := range games {
		lines = append(lines, fmt.Sprintf("%s  %s won, %d cities, %d player(s)", g.Room, g.Winner, g.Cities, len(g.Standings)))
	}
	s.conn.SendMessage(protocol.NewList(lines))
	return nil, nil
}
