package handler

import (
	"context"
	"time"

	"github.com/palemoky/citychain/internal/game/room"
	"github.com/palemoky/citychain/internal/protocol"
	"github.com/palemoky/citychain/internal/server/storage"
	"github.com/palemoky/citychain/internal/types"
)

// 排行榜等查询超时
const queryTimeout = 3 * time.Second

// Conn 会话使用的连接
type Conn interface {
	types.ClientInterface
	SetName(name string)
	Receive(ctx context.Context) (*protocol.Message, error)
	Done() <-chan struct{}
}

// Leaderboard 排行榜查询
type Leaderboard interface {
	GetPlayerStats(ctx context.Context, name string) (*storage.PlayerStats, error)
	GetPlayerRank(ctx context.Context, name string) (int64, error)
	GetLeaderboard(ctx context.Context, limit int) ([]*storage.LeaderboardEntry, error)
}

// History 对局历史查询
type History interface {
	RecentGames(ctx context.Context, limit int) ([]types.GameResult, error)
}

// HandlerDeps 处理器依赖，Leaderboard 与 History 可为空（Redis 未启用）
type HandlerDeps struct {
	Server      types.ServerInterface
	Directory   *room.Directory
	Leaderboard Leaderboard
	History     History
}

// Handler 会话处理器
type Handler struct {
	server      types.ServerInterface
	directory   *room.Directory
	leaderboard Leaderboard
	history     History
	commands    map[string]commandFunc
}

// commandFunc 大厅命令；返回非空房间表示进入该房间
type commandFunc func(ctx context.Context, s *session, arg string) (*room.Room, error)

// NewHandler 创建处理器
func NewHandler(deps HandlerDeps) *Handler {
	h := &Handler{
		server:      deps.Server,
		directory:   deps.Directory,
		leaderboard: deps.Leaderboard,
		history:     deps.History,
	}
	h.initCommands()
	return h
}

// initCommands 初始化大厅命令映射
func (h *Handler) initCommands() {
	h.commands = map[string]commandFunc{
		// 房间操作
		protocol.CmdCreate: h.handleCreate,
		protocol.CmdJoin:   h.handleJoin,
		protocol.CmdSwitch: h.handleJoin,
		protocol.CmdList:   h.handleList,

		// 信息查询
		protocol.CmdTop:    h.handleTop,
		protocol.CmdStats:  h.handleStats,
		protocol.CmdRecent: h.handleRecent,
		protocol.CmdHelp:   h.handleHelp,
	}
}

func (h *Handler) maintenance() bool {
	return h.server != nil && h.server.IsMaintenanceMode()
}
