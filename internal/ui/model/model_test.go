package model

import (
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/citychain/internal/protocol"
	"github.com/palemoky/citychain/internal/sound"
)

type fakeConn struct {
	mu       sync.Mutex
	sent     []string
	sendErr  error
	closed   bool
	messages chan *protocol.Message
}

func newFakeConn() *fakeConn {
	return &fakeConn{messages: make(chan *protocol.Message, 8)}
}

func (c *fakeConn) Connect() error { return nil }

func (c *fakeConn) Send(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, text)
	return nil
}

func (c *fakeConn) Messages() <-chan *protocol.Message { return c.messages }

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

type fakeSound struct {
	played []string
}

func (s *fakeSound) Init() error      { return nil }
func (s *fakeSound) Play(name string) { s.played = append(s.played, name) }

func newTestModel() (*OnlineModel, *fakeConn, *fakeSound) {
	conn := newFakeConn()
	snd := &fakeSound{}
	m := NewOnlineModel(conn, snd)
	m.Update(ConnectedMsg{})
	return m, conn, snd
}

func typeLine(m *OnlineModel, text string) {
	m.input.SetValue(text)
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
}

func TestOnlineModel_NamingThenCommands(t *testing.T) {
	t.Parallel()

	m, conn, _ := newTestModel()
	assert.Equal(t, PhaseNaming, m.Phase())

	m.Update(ServerMessage{Msg: protocol.Text(protocol.PromptName)})
	typeLine(m, "  Alice  ")
	assert.Equal(t, PhaseOnline, m.Phase())
	assert.Equal(t, placeholderCommand, m.input.Placeholder)

	typeLine(m, "")
	typeLine(m, "list")
	assert.Equal(t, []string{"Alice", "list"}, conn.sent)
	assert.Contains(t, m.Lines(), "> list")
	assert.Empty(t, m.input.Value())
}

func TestOnlineModel_BlankNameIsSent(t *testing.T) {
	t.Parallel()

	m, conn, _ := newTestModel()
	typeLine(m, "")
	assert.Equal(t, []string{""}, conn.sent)
	assert.Equal(t, PhaseOnline, m.Phase())
}

func TestOnlineModel_TurnPromptAndGameOver(t *testing.T) {
	t.Parallel()

	m, conn, snd := newTestModel()
	typeLine(m, "Alice")

	m.Update(ServerMessage{Msg: protocol.Text(protocol.PromptYourMove + ": name any city")})
	assert.True(t, m.MyTurn())
	assert.Equal(t, placeholderMove, m.input.Placeholder)
	assert.Contains(t, m.View(), "Your turn")

	typeLine(m, "Paris")
	assert.False(t, m.MyTurn())
	assert.Equal(t, "Paris", conn.sent[len(conn.sent)-1])

	m.Update(ServerMessage{Msg: protocol.Text(protocol.PrefixGameOver + ": Bob ran out of time. Winner: Alice with 1 cities!")})
	m.Update(ServerMessage{Msg: protocol.NewList([]string{"1. Alice: 1", "2. Bob: 0"})})
	assert.Equal(t, []string{sound.Turn, sound.GameOver}, snd.played)
	assert.Contains(t, m.Lines(), "2. Bob: 0")
}

func TestOnlineModel_ErrorMessagePlaysSound(t *testing.T) {
	t.Parallel()

	m, _, snd := newTestModel()
	m.Update(ServerMessage{Msg: protocol.NewErrorMessage(protocol.ErrCodeChainMismatch)})

	assert.Equal(t, []string{sound.Error}, snd.played)
	lines := m.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "last letter")
}

func TestOnlineModel_SendFailure(t *testing.T) {
	t.Parallel()

	m, conn, _ := newTestModel()
	conn.sendErr = errors.New("boom")
	typeLine(m, "Alice")

	assert.Contains(t, m.Error(), "boom")
	assert.Equal(t, PhaseNaming, m.Phase())
}

func TestOnlineModel_ConnectionLifecycle(t *testing.T) {
	t.Parallel()

	conn := newFakeConn()
	m := NewOnlineModel(conn, nil)
	assert.Equal(t, PhaseConnecting, m.Phase())

	typeLine(m, "ignored")
	assert.Empty(t, conn.sent)

	m.Update(ConnectionErrorMsg{Err: errors.New("refused")})
	assert.Equal(t, PhaseDisconnected, m.Phase())
	assert.Contains(t, m.Error(), "refused")

	m.Update(ConnectedMsg{})
	m.Update(DisconnectedMsg{})
	assert.Equal(t, PhaseDisconnected, m.Phase())
	assert.Contains(t, m.Lines()[len(m.Lines())-1], "Disconnected")
}

func TestOnlineModel_QuitClosesConnection(t *testing.T) {
	t.Parallel()

	m, conn, _ := newTestModel()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, conn.closed)
}

func TestOnlineModel_LogIsCapped(t *testing.T) {
	t.Parallel()

	m, _, _ := newTestModel()
	for i := 0; i < maxLogLines+10; i++ {
		m.Update(ServerMessage{Msg: protocol.NewText("line %d", i)})
	}
	lines := m.Lines()
	assert.Len(t, lines, maxLogLines)
	assert.Equal(t, "line 10", lines[0])
}

func TestGamePhase_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "connecting", PhaseConnecting.String())
	assert.Equal(t, "online", PhaseOnline.String())
	assert.Equal(t, "disconnected", PhaseDisconnected.String())
}
