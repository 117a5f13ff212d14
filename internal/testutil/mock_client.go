//go:build !production

package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/citychain/internal/apperrors"
	"github.com/palemoky/citychain/internal/protocol"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(name string) {
	m.Called(name)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 并发安全的简单客户端，记录收到的消息
type SimpleClient struct {
	ID   string
	Name string

	mu       sync.Mutex
	room     string
	messages []*protocol.Message
	closed   bool
}

// NewSimpleClient creates a SimpleClient
func NewSimpleClient(id, name string) *SimpleClient {
	return &SimpleClient{ID: id, Name: name}
}

func (c *SimpleClient) GetID() string { return c.ID }

func (c *SimpleClient) GetName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Name
}

func (c *SimpleClient) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Name = name
}

func (c *SimpleClient) GetRoom() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

func (c *SimpleClient) SetRoom(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = name
}

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed reports whether Close was called
func (c *SimpleClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// SentMessages returns a copy of every message sent so far
func (c *SimpleClient) SentMessages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*protocol.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Texts renders every sent message as terminal text
func (c *SimpleClient) Texts() []string {
	msgs := c.SentMessages()
	out := make([]string, len(msgs))
	for i, msg := range msgs {
		out[i] = msg.String()
	}
	return out
}

// Received reports whether any sent message contains substr
func (c *SimpleClient) Received(substr string) bool {
	for _, text := range c.Texts() {
		if strings.Contains(text, substr) {
			return true
		}
	}
	return false
}

// LastError returns the most recent error message, nil if none
func (c *SimpleClient) LastError() *protocol.Message {
	msgs := c.SentMessages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Kind == protocol.KindError {
			return msgs[i]
		}
	}
	return nil
}

// Reset forgets recorded messages
func (c *SimpleClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// PipeConn 内存连接：测试向 inbox 推送输入，会话通过 Receive 读取
type PipeConn struct {
	*SimpleClient

	inbox chan *protocol.Message
	done  chan struct{}
	once  sync.Once
}

// NewPipeConn creates an in-memory connection
func NewPipeConn(id, name string) *PipeConn {
	return &PipeConn{
		SimpleClient: NewSimpleClient(id, name),
		inbox:        make(chan *protocol.Message, 64),
		done:         make(chan struct{}),
	}
}

// Push queues one line of client input
func (p *PipeConn) Push(text string) {
	p.inbox <- protocol.Text(text)
}

func (p *PipeConn) Receive(ctx context.Context) (*protocol.Message, error) {
	select {
	case msg := <-p.inbox:
		return msg, nil
	case <-p.done:
		return nil, apperrors.ErrConnClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *PipeConn) Done() <-chan struct{} {
	return p.done
}

// Close marks the connection closed and releases Receive
func (p *PipeConn) Close() {
	p.SimpleClient.Close()
	p.once.Do(func() { close(p.done) })
}
