package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/citychain/internal/apperrors"
	"github.com/palemoky/citychain/internal/logger"
	"github.com/palemoky/citychain/internal/protocol"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 4096

	sendBufferSize  = 256
	inboxBufferSize = 32
)

// Client 代表一个 WebSocket 连接
type Client struct {
	ID string // 连接唯一 ID
	IP string // 客户端 IP 地址

	server *Server
	conn   *websocket.Conn
	send   chan []byte
	inbox  chan *protocol.Message
	done   chan struct{}

	mu       sync.RWMutex
	name     string
	room     string
	closed   bool
	doneOnce sync.Once
}

// NewClient 创建新客户端，初始昵称随机生成
func NewClient(s *Server, conn *websocket.Conn, ip string) *Client {
	return &Client{
		ID:     uuid.New().String(),
		IP:     ip,
		name:   GenerateNickname(),
		server: s,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		inbox:  make(chan *protocol.Message, inboxBufferSize),
		done:   make(chan struct{}),
	}
}

// ReadPump 从 WebSocket 读取消息，解码后投递到 inbox
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.markDone()
		c.server.unregisterClient(c)
		c.server.messageLimiter.RemoveClient(c.ID)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("client_id", c.ID).Msg("read error")
			}
			return
		}

		allowed, warnings := c.server.messageLimiter.AllowMessage(c.ID)
		if !allowed {
			log.Warn().Str("player", c.GetName()).Str("ip", c.IP).Int("warnings", warnings).Msg("⚠️ client sending too fast")
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRateLimit))
			if warnings > maxRateWarnings {
				log.Warn().Str("player", c.GetName()).Msg("🚫 client disconnected for flooding")
				return
			}
			continue
		}

		msg, err := c.server.codec.Decode(data)
		if err != nil {
			log.Debug().Err(err).Str("client_id", c.ID).Msg("bad frame")
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidCommand))
			continue
		}

		select {
		case c.inbox <- msg:
		default:
			c.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeRateLimit))
		}
	}
}

// WritePump 向 WebSocket 写入消息并定期发送 ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.server.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// 通道已关闭
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(frameType, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendMessage 发送消息给客户端，发送缓冲区满时断开
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := c.server.codec.Encode(msg)
	if err != nil {
		log.Error().Err(err).Str("client_id", c.ID).Msg("encode message")
		return
	}

	c.mu.RLock()
	if c.closed {
		c.mu.RUnlock()
		return
	}
	full := false
	select {
	case c.send <- data:
	default:
		full = true
	}
	c.mu.RUnlock()

	if full {
		log.Warn().Str("client_id", c.ID).Msg("send buffer full, closing")
		c.Close()
	}
}

// Receive 返回下一条输入；连接断开后返回 ErrConnClosed
func (c *Client) Receive(ctx context.Context) (*protocol.Message, error) {
	select {
	case msg := <-c.inbox:
		return msg, nil
	case <-c.done:
		return nil, apperrors.ErrConnClosed
	case <-ctx.Done():
		return nil, errors.Join(apperrors.ErrConnClosed, ctx.Err())
	}
}

// Done is closed once the read side of the connection has ended.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

func (c *Client) markDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Close 关闭发送通道，WritePump 随后发送关闭帧
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// IsClosed reports whether Close has been called.
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

func (c *Client) GetID() string {
	return c.ID
}

func (c *Client) GetName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

func (c *Client) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// SetRoom 设置客户端所在房间
func (c *Client) SetRoom(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.room = name
}

// GetRoom 获取客户端所在房间
func (c *Client) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.room
}
