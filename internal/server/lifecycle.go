package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/citychain/internal/protocol"
)

const (
	monitorInterval = 30 * time.Second
	pruneIdle       = 10 * time.Minute

	// 关闭时广播给所有房间的结束原因
	shutdownReason = "Server shutting down"
)

// monitorStats 定期记录服务器状态
func (s *Server) monitorStats(ctx context.Context) {
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		pruned := s.rateLimiter.Prune(pruneIdle)

		log.Info().
			Int("online", s.GetOnlineCount()).
			Int("rooms", s.directory.Count()).
			Int("active_games", s.directory.ActiveGamesCount()).
			Int("goroutines", runtime.NumGoroutine()).
			Str("conns", fmt.Sprintf("%d/%d", len(s.semaphore), s.maxConnections)).
			Float64("mem_mb", float64(m.Alloc)/1024/1024).
			Int("pruned_ips", pruned).
			Msg("📊 stats")
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接和新房间
func (s *Server) EnterMaintenanceMode() {
	s.maintenanceMu.Lock()
	s.maintenanceMode = true
	s.maintenanceMu.Unlock()

	s.BroadcastToLobby(protocol.NewErrorMessageWithText(protocol.ErrCodeServerMaintenance,
		"👷 Maintenance: no new rooms can be created"))

	log.Info().Msg("🔧 maintenance mode: new connections and rooms refused")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	s.maintenanceMu.RLock()
	defer s.maintenanceMu.RUnlock()
	return s.maintenanceMode
}

// GracefulShutdown 进入维护模式，等待进行中的对局结束（最多 timeout），然后关闭
func (s *Server) GracefulShutdown(timeout time.Duration) error {
	s.EnterMaintenanceMode()

	deadline := time.Now().Add(timeout)
	interval := s.config.Game.ShutdownCheckIntervalDuration()
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		active := s.directory.ActiveGamesCount()
		if active == 0 {
			log.Info().Msg("✅ all games finished")
			break
		}
		log.Info().Int("active_games", active).Msg("⏳ waiting for games to finish")
		<-ticker.C
	}

	if active := s.directory.ActiveGamesCount(); active > 0 {
		log.Warn().Int("active_games", active).Msg("⚠️ shutdown timeout, finishing remaining games")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)

	s.sendShutdownNotification()
	return err
}

// Shutdown 结束所有房间，断开客户端，等待结果写入后关闭 Redis
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	s.stopOnce.Do(func() {
		if n := s.directory.FinishAll(shutdownReason); n > 0 {
			log.Info().Int("rooms", n).Msg("🏁 rooms finished for shutdown")
		}

		s.cancel()
		for _, c := range s.snapshotClients() {
			c.Close()
		}

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(ctx); err != nil {
				errs = append(errs, fmt.Errorf("http shutdown: %w", err))
			}
		}

		if err := s.waitSessions(ctx); err != nil {
			errs = append(errs, fmt.Errorf("wait sessions: %w", err))
		}
		if err := s.directory.WaitRecorded(ctx); err != nil {
			errs = append(errs, fmt.Errorf("wait game results: %w", err))
		}

		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close redis: %w", err))
			}
		}
		log.Info().Msg("👋 server stopped")
	})
	return errors.Join(errs...)
}

func (s *Server) waitSessions(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sendShutdownNotification 向 SHUTDOWN_WEBHOOK_URL（如配置）发送关闭通知
func (s *Server) sendShutdownNotification() {
	webhookURL := os.Getenv("SHUTDOWN_WEBHOOK_URL")
	if webhookURL == "" {
		return
	}

	payload, _ := json.Marshal(map[string]string{"text": "City chain server has shut down gracefully"})
	req, err := http.NewRequest(http.MethodPost, webhookURL, bytes.NewReader(payload))
	if err != nil {
		log.Error().Err(err).Msg("build shutdown notification")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if secret := os.Getenv("SHUTDOWN_WEBHOOK_SECRET"); secret != "" {
		req.Header.Set("Authorization", "Bearer "+secret)
	}

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Error().Err(err).Msg("send shutdown notification")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusOK {
		log.Info().Msg("🔔 shutdown notification sent")
	} else {
		log.Warn().Int("status", resp.StatusCode).Msg("shutdown notification rejected")
	}
}
