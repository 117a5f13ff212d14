// Package model defines the terminal client's bubbletea model.
package model

import (
	"github.com/palemoky/citychain/internal/protocol"
)

// GamePhase represents where the player is, as far as the client can tell.
type GamePhase int

const (
	PhaseConnecting GamePhase = iota
	PhaseNaming
	PhaseOnline
	PhaseDisconnected
)

func (p GamePhase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseNaming:
		return "choosing a name"
	case PhaseOnline:
		return "online"
	default:
		return "disconnected"
	}
}

// Conn is the server connection the model drives.
type Conn interface {
	Connect() error
	Send(text string) error
	Messages() <-chan *protocol.Message
	Close()
}

// SoundPlayer plays named sounds; Init may be slow and runs in the background.
type SoundPlayer interface {
	Init() error
	Play(name string)
}

// 日志最多保留的行数
const maxLogLines = 500

// --- Tea Messages ---

// ServerMessage wraps a protocol message for tea.Msg.
type ServerMessage struct {
	Msg *protocol.Message
}

// ConnectedMsg indicates successful connection.
type ConnectedMsg struct{}

// ConnectionErrorMsg indicates the connection could not be opened.
type ConnectionErrorMsg struct {
	Err error
}

// DisconnectedMsg is sent when the server closes the connection.
type DisconnectedMsg struct{}

// logLine 一行已渲染的日志
type logLine struct {
	text  string
	style lineStyle
}

type lineStyle int

const (
	styleNormal lineStyle = iota
	styleList
	styleError
	styleTurn
	styleEcho
)
