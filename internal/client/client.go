// Package client is the websocket connection used by the terminal client.
package client

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/citychain/internal/apperrors"
	"github.com/palemoky/citychain/internal/logger"
	"github.com/palemoky/citychain/internal/protocol"
	"github.com/palemoky/citychain/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var errSendBufferFull = errors.New("send buffer full")

// Client WebSocket 客户端
type Client struct {
	ServerURL string

	codec   *codec.Codec
	conn    *websocket.Conn
	send    chan []byte
	receive chan *protocol.Message
	done    chan struct{}

	mu        sync.RWMutex
	connected bool
	closeOnce sync.Once
}

// NewClient 创建客户端
func NewClient(serverURL string, c *codec.Codec) *Client {
	return &Client{
		ServerURL: serverURL,
		codec:     c,
		send:      make(chan []byte, 64),
		receive:   make(chan *protocol.Message, 256),
		done:      make(chan struct{}),
	}
}

// Connect 连接服务器并启动读写协程
func (c *Client) Connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.Dial(c.ServerURL, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()
	return nil
}

// readPump 从服务器读取消息；退出时关闭 Messages 通道
func (c *Client) readPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.receive)
		c.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	// 服务器发送 ping，收到后同样延长读超时
	c.conn.SetPingHandler(func(data string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return c.conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(writeWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("connection lost")
			}
			return
		}

		msg, err := c.codec.Decode(data)
		if err != nil {
			log.Warn().Err(err).Msg("bad frame from server")
			continue
		}

		select {
		case c.receive <- msg:
		case <-c.done:
			return
		}
	}
}

// writePump 向服务器写入消息
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(frameType, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Send 发送一行输入
func (c *Client) Send(text string) error {
	data, err := c.codec.Encode(protocol.Text(text))
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return apperrors.ErrConnClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return apperrors.ErrConnClosed
	default:
		return errSendBufferFull
	}
}

// Messages 返回服务器消息通道，连接断开后关闭
func (c *Client) Messages() <-chan *protocol.Message {
	return c.receive
}

// Close 关闭连接
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// IsConnected 是否已连接
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
