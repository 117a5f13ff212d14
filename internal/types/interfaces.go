package types

import (
	"context"
	"time"

	"github.com/palemoky/citychain/internal/protocol"
)

// ServerInterface 定义服务器接口（用于打破循环依赖）
type ServerInterface interface {
	IsMaintenanceMode() bool
	GetOnlineCount() int
}

// ClientInterface 定义客户端接口
type ClientInterface interface {
	GetID() string
	GetName() string
	GetRoom() string
	SetRoom(name string)
	SendMessage(msg *protocol.Message)
	Close()
}

// Standing 一名玩家的最终得分
type Standing struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// GameResult 一局结束后的结果，Standings 按名次排列
type GameResult struct {
	Room       string     `json:"room"`
	Winner     string     `json:"winner"`
	Reason     string     `json:"reason"`
	Standings  []Standing `json:"standings"`
	Cities     int        `json:"cities"`
	FinishedAt time.Time  `json:"finished_at"`
}

// ResultRecorder 接收对局结果（排行榜、历史记录）
type ResultRecorder interface {
	RecordGameResult(ctx context.Context, result GameResult) error
}
