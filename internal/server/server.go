package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/citychain/internal/config"
	"github.com/palemoky/citychain/internal/game/room"
	"github.com/palemoky/citychain/internal/protocol/codec"
	"github.com/palemoky/citychain/internal/server/handler"
	"github.com/palemoky/citychain/internal/server/storage"
	"github.com/palemoky/citychain/internal/types"
)

// Server WebSocket 服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client // Redis 关闭时为 nil
	history     *storage.RedisStore
	leaderboard *storage.LeaderboardManager
	directory   *room.Directory
	codec       *codec.Codec
	handler     *handler.Handler
	upgrader    websocket.Upgrader

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 安全组件
	rateLimiter    *RateLimiter
	originChecker  *OriginChecker
	messageLimiter *MessageRateLimiter
	ipFilter       *IPFilter

	// 连接控制
	maxConnections int
	semaphore      chan struct{} // 信号量控制并发连接数
	sessions       sync.WaitGroup

	// 维护模式
	maintenanceMode bool
	maintenanceMu   sync.RWMutex

	httpServer *http.Server
	ctx        context.Context
	cancel     context.CancelFunc
	stopOnce   sync.Once
}

// NewServer 创建服务器实例，启用 Redis 时先测试连接
func NewServer(cfg *config.Config) (*Server, error) {
	var rdb *redis.Client
	if !cfg.Redis.Disabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
	}
	return newServer(cfg, rdb)
}

// newServer wires the server around an optional, already connected Redis client.
func newServer(cfg *config.Config, rdb *redis.Client) (*Server, error) {
	format, err := codec.ParseFormat(cfg.Server.Codec)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config:  cfg,
		redis:   rdb,
		codec:   codec.New(format),
		clients: make(map[string]*Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 来源在升级前由 originChecker 校验
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		rateLimiter: NewRateLimiter(
			cfg.Security.RateLimit.MaxPerSecond,
			cfg.Security.RateLimit.Burst,
		),
		originChecker: NewOriginChecker(cfg.Security.AllowedOrigins),
		messageLimiter: NewMessageRateLimiter(
			cfg.Security.MessageLimit.MaxPerSecond,
			cfg.Security.MessageLimit.Burst,
		),
		ipFilter:       NewIPFilter(cfg.Security.BlockedIPs),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
		ctx:            ctx,
		cancel:         cancel,
	}

	deps := handler.HandlerDeps{Server: s}
	var recorders []types.ResultRecorder
	if rdb != nil {
		s.leaderboard = storage.NewLeaderboardManager(rdb)
		s.history = storage.NewRedisStore(rdb)
		recorders = append(recorders, s.leaderboard, s.history)
		deps.Leaderboard = s.leaderboard
		deps.History = s.history
	}

	s.directory = room.NewDirectory(room.Options{
		TurnTimeout:     cfg.Game.TurnTimeoutDuration(),
		RoomTimeout:     cfg.Game.RoomTimeoutDuration(),
		CleanupInterval: cfg.Game.CleanupIntervalDuration(),
		Recorders:       recorders,
	})
	deps.Directory = s.directory
	s.handler = handler.NewHandler(deps)

	log.Info().
		Float64("conn_rate", cfg.Security.RateLimit.MaxPerSecond).
		Float64("msg_rate", cfg.Security.MessageLimit.MaxPerSecond).
		Int("max_connections", cfg.Server.MaxConnections).
		Str("codec", s.codec.Format().String()).
		Bool("redis", rdb != nil).
		Msg("🔒 security configured")

	return s, nil
}

// Routes returns the HTTP handler serving the websocket and health endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start 启动服务器，阻塞直到关闭
func (s *Server) Start() error {
	addr := s.config.Server.Addr()

	s.directory.StartCleanup(s.ctx)
	go s.monitorStats(s.ctx)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second, // 防止 Slowloris 攻击
		IdleTimeout:       60 * time.Second,
	}

	log.Info().Str("addr", "ws://"+addr+"/ws").Int("cpus", runtime.NumCPU()).Msg("🚀 server started")
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Directory exposes the room directory.
func (s *Server) Directory() *room.Directory {
	return s.directory
}
