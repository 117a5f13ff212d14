package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/citychain/internal/protocol"
	"github.com/palemoky/citychain/internal/sound"
)

const (
	placeholderName    = "Your name (leave blank for a random one)"
	placeholderCommand = "Command, e.g. list, create <room>, join <room>, help"
	placeholderMove    = "A city, 'ban <name>' or 'exit'"

	// 标题、状态栏和输入框占用的行数
	chromeHeight = 8
)

// OnlineModel is the terminal client model: a scrolling message log and an input line.
type OnlineModel struct {
	conn  Conn
	sound SoundPlayer
	phase GamePhase
	error string

	myTurn bool
	lines  []logLine

	input    textinput.Model
	viewport viewport.Model
	width    int
	height   int
}

// NewOnlineModel creates a new OnlineModel. player may be nil.
func NewOnlineModel(conn Conn, player SoundPlayer) *OnlineModel {
	ti := textinput.New()
	ti.Placeholder = placeholderName
	ti.CharLimit = 64
	ti.Width = 50
	ti.Focus()

	return &OnlineModel{
		conn:     conn,
		sound:    player,
		phase:    PhaseConnecting,
		input:    ti,
		viewport: viewport.New(80, 20),
	}
}

func (m *OnlineModel) Init() tea.Cmd {
	if m.sound != nil {
		go func() {
			_ = m.sound.Init()
		}()
	}

	return tea.Batch(
		m.connectToServer(),
		textinput.Blink,
	)
}

func (m *OnlineModel) connectToServer() tea.Cmd {
	return func() tea.Msg {
		if err := m.conn.Connect(); err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{}
	}
}

func (m *OnlineModel) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.conn.Messages()
		if !ok {
			return DisconnectedMsg{}
		}
		return ServerMessage{Msg: msg}
	}
}

// --- Accessors ---

func (m *OnlineModel) Phase() GamePhase { return m.phase }
func (m *OnlineModel) MyTurn() bool     { return m.myTurn }
func (m *OnlineModel) Error() string    { return m.error }

// Lines returns the plain text of the message log.
func (m *OnlineModel) Lines() []string {
	out := make([]string, len(m.lines))
	for i, l := range m.lines {
		out[i] = l.text
	}
	return out
}

// Update handles tea messages.
func (m *OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-6, 10)
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		m.refreshLog()

	case ConnectedMsg:
		m.error = ""
		m.phase = PhaseNaming
		cmds = append(cmds, m.listenForMessages())

	case ConnectionErrorMsg:
		m.error = fmt.Sprintf("Cannot connect to server: %v (press Esc to quit)", msg.Err)
		m.phase = PhaseDisconnected

	case DisconnectedMsg:
		m.phase = PhaseDisconnected
		m.myTurn = false
		m.appendLine("🔌 Disconnected from server. Press Esc to quit.", styleError)

	case ServerMessage:
		m.handleServerMessage(msg.Msg)
		cmds = append(cmds, m.listenForMessages())

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.conn.Close()
			return m, tea.Quit
		case tea.KeyEnter:
			m.submit()
			return m, nil
		case tea.KeyPgUp, tea.KeyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleServerMessage 记录服务器消息，并根据提示切换输入状态和播放提示音
func (m *OnlineModel) handleServerMessage(msg *protocol.Message) {
	switch msg.Kind {
	case protocol.KindList:
		for _, line := range msg.Lines {
			m.appendLine(line, styleList)
		}
		return
	case protocol.KindError:
		m.appendLine(msg.String(), styleError)
		m.play(sound.Error)
		return
	}

	text := msg.Text
	switch {
	case text == protocol.PromptName:
		m.phase = PhaseNaming
		m.input.Placeholder = placeholderName
	case strings.HasPrefix(text, protocol.PromptYourMove):
		m.myTurn = true
		m.input.Placeholder = placeholderMove
		m.appendLine(text, styleTurn)
		m.play(sound.Turn)
		return
	case strings.HasPrefix(text, protocol.PrefixGameOver):
		m.myTurn = false
		m.input.Placeholder = placeholderCommand
		m.play(sound.GameOver)
	}
	m.appendLine(text, styleNormal)
}

// submit 发送输入行
func (m *OnlineModel) submit() {
	value := strings.TrimSpace(m.input.Value())
	m.input.Reset()

	if m.phase == PhaseDisconnected || m.phase == PhaseConnecting {
		return
	}
	// 取名时允许空行，表示使用随机昵称
	if value == "" && m.phase != PhaseNaming {
		return
	}

	if err := m.conn.Send(value); err != nil {
		m.error = fmt.Sprintf("Send failed: %v", err)
		return
	}
	m.error = ""
	if value != "" {
		m.appendLine("> "+value, styleEcho)
	}

	if m.phase == PhaseNaming {
		m.phase = PhaseOnline
		m.input.Placeholder = placeholderCommand
	}
	m.myTurn = false
}

func (m *OnlineModel) play(name string) {
	if m.sound != nil {
		m.sound.Play(name)
	}
}

func (m *OnlineModel) appendLine(text string, style lineStyle) {
	m.lines = append(m.lines, logLine{text: text, style: style})
	if over := len(m.lines) - maxLogLines; over > 0 {
		m.lines = m.lines[over:]
	}
	m.refreshLog()
}
