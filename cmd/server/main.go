package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/citychain/internal/config"
	"github.com/palemoky/citychain/internal/logger"
	"github.com/palemoky/citychain/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	flag.Parse()

	cfg, cfgErr := config.Load(*configPath)
	if cfgErr != nil {
		cfg = config.Default()
	}

	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatal().Err(err).Msg("init logger")
	}
	defer logger.Close()

	if cfgErr != nil {
		log.Warn().Err(cfgErr).Str("path", *configPath).Msg("config not loaded, using defaults")
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("create server")
	}

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-quit
		log.Info().Msg("🛑 shutting down, waiting for running games")
		if err := srv.GracefulShutdown(cfg.Game.ShutdownTimeoutDuration()); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Msg("🏙️ city chain server starting")
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	<-stopped
}
