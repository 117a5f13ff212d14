package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/citychain/internal/client"
	"github.com/palemoky/citychain/internal/logger"
	"github.com/palemoky/citychain/internal/protocol/codec"
	"github.com/palemoky/citychain/internal/sound"
	"github.com/palemoky/citychain/internal/ui"
	"github.com/palemoky/citychain/internal/ui/model"
)

func main() {
	serverAddr := flag.String("server", "localhost:1780", "服务器地址")
	codecName := flag.String("codec", "proto", "线路编码 (proto|json)，需与服务器一致")
	withSound := flag.Bool("sound", false, "轮到自己和对局结束时播放提示音")
	soundDir := flag.String("sound-dir", "assets/sounds", "自定义提示音目录")
	flag.Parse()

	if err := logger.InitClient("info"); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
	}
	defer logger.Close()

	format, err := codec.ParseFormat(*codecName)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	conn := client.NewClient(fmt.Sprintf("ws://%s/ws", *serverAddr), codec.New(format))

	var player model.SoundPlayer
	if *withSound {
		sm := sound.NewSoundManager(*soundDir)
		defer sm.Close()
		player = sm
	}

	p := tea.NewProgram(ui.NewOnlineModel(conn, player), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("client exited")
		fmt.Fprintf(os.Stderr, "client error: %v\n", err)
		os.Exit(1)
	}
}
