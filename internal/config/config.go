package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
	Codec          string `yaml:"codec"` // proto | json
}

// Addr returns host:port
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig Redis 配置（排行榜）
type RedisConfig struct {
	Disabled bool   `yaml:"disabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏配置
type GameConfig struct {
	TurnTimeout           int `yaml:"turn_timeout"`            // 回合超时（秒）
	RoomTimeout           int `yaml:"room_timeout"`            // 空房间回收（分钟）
	CleanupInterval       int `yaml:"cleanup_interval"`        // 空房间扫描间隔（秒）
	ShutdownTimeout       int `yaml:"shutdown_timeout"`        // 优雅关闭等待（秒）
	ShutdownCheckInterval int `yaml:"shutdown_check_interval"` // 关闭时检查间隔（秒）
}

// TurnTimeoutDuration 返回回合超时时长
func (c *GameConfig) TurnTimeoutDuration() time.Duration {
	return time.Duration(c.TurnTimeout) * time.Second
}

// RoomTimeoutDuration 返回空房间回收时长
func (c *GameConfig) RoomTimeoutDuration() time.Duration {
	return time.Duration(c.RoomTimeout) * time.Minute
}

// CleanupIntervalDuration 返回扫描间隔
func (c *GameConfig) CleanupIntervalDuration() time.Duration {
	return time.Duration(c.CleanupInterval) * time.Second
}

// ShutdownTimeoutDuration 返回优雅关闭等待时长
func (c *GameConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeout) * time.Second
}

// ShutdownCheckIntervalDuration 返回关闭检查间隔
func (c *GameConfig) ShutdownCheckIntervalDuration() time.Duration {
	return time.Duration(c.ShutdownCheckInterval) * time.Second
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	AllowedOrigins []string    `yaml:"allowed_origins"` // 为空则允许所有来源
	RateLimit      LimitConfig `yaml:"rate_limit"`      // 每 IP 建连速率
	MessageLimit   LimitConfig `yaml:"message_limit"`   // 每连接消息速率
	BlockedIPs     []string    `yaml:"blocked_ips"`
}

// LimitConfig 令牌桶参数
type LimitConfig struct {
	MaxPerSecond float64 `yaml:"max_per_second"`
	Burst        int     `yaml:"burst"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // 为空输出到 stderr
}

// Load 加载配置文件
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// 设置默认值
func (c *Config) applyDefaults() {
	def := Default()

	if c.Server.Host == "" {
		c.Server.Host = def.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = def.Server.MaxConnections
	}
	if c.Server.Codec == "" {
		c.Server.Codec = def.Server.Codec
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = def.Redis.Addr
	}
	if c.Game.TurnTimeout == 0 {
		c.Game.TurnTimeout = def.Game.TurnTimeout
	}
	if c.Game.RoomTimeout == 0 {
		c.Game.RoomTimeout = def.Game.RoomTimeout
	}
	if c.Game.CleanupInterval == 0 {
		c.Game.CleanupInterval = def.Game.CleanupInterval
	}
	if c.Game.ShutdownTimeout == 0 {
		c.Game.ShutdownTimeout = def.Game.ShutdownTimeout
	}
	if c.Game.ShutdownCheckInterval == 0 {
		c.Game.ShutdownCheckInterval = def.Game.ShutdownCheckInterval
	}
	if c.Security.RateLimit.MaxPerSecond == 0 {
		c.Security.RateLimit = def.Security.RateLimit
	}
	if c.Security.MessageLimit.MaxPerSecond == 0 {
		c.Security.MessageLimit = def.Security.MessageLimit
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// Validate rejects values the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Server.Codec != "proto" && c.Server.Codec != "json" {
		return fmt.Errorf("invalid server.codec %q (want proto or json)", c.Server.Codec)
	}
	if c.Game.TurnTimeout < 0 {
		return fmt.Errorf("invalid game.turn_timeout %d", c.Game.TurnTimeout)
	}
	return nil
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           1780,
			MaxConnections: 1000,
			Codec:          "proto",
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Game: GameConfig{
			TurnTimeout:           30,
			RoomTimeout:           10,
			CleanupInterval:       60,
			ShutdownTimeout:       300,
			ShutdownCheckInterval: 5,
		},
		Security: SecurityConfig{
			RateLimit:    LimitConfig{MaxPerSecond: 5, Burst: 10},
			MessageLimit: LimitConfig{MaxPerSecond: 10, Burst: 20},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
