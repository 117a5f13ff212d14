package handler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/citychain/internal/apperrors"
	"github.com/palemoky/citychain/internal/game/room"
	"github.com/palemoky/citychain/internal/protocol"
)

// 显示名最大长度（字符）
const maxNameLength = 24

var errQuit = errors.New("quit")

// session 单个连接的会话状态
type session struct {
	h     *Handler
	conn  Conn
	lines chan *protocol.Message

	mu   sync.Mutex
	room *room.Room
}

// Serve 驱动一个连接直到断开：取名、大厅命令、房间内对局
func (h *Handler) Serve(ctx context.Context, conn Conn) {
	s := &session{
		h:     h,
		conn:  conn,
		lines: make(chan *protocol.Message),
	}
	defer s.leave()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.readLoop(ctx)

	if err := s.askName(ctx); err != nil {
		return
	}

	for {
		r, err := s.lobby(ctx)
		if err != nil || r == nil {
			return
		}
		if !s.play(ctx, r) {
			return
		}
	}
}

// readLoop 是连接唯一的读取者；连接断开后立即把玩家移出房间
func (s *session) readLoop(ctx context.Context) {
	defer close(s.lines)
	for {
		msg, err := s.conn.Receive(ctx)
		if err != nil {
			log.Debug().Err(err).Str("client_id", s.conn.GetID()).Msg("session input closed")
			s.leave()
			return
		}
		select {
		case s.lines <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) next(ctx context.Context) (*protocol.Message, bool) {
	select {
	case msg, ok := <-s.lines:
		return msg, ok
	case <-ctx.Done():
		return nil, false
	}
}

func (s *session) setRoom(r *room.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = r
}

// leave 离开当前房间（如有）
func (s *session) leave() {
	s.mu.Lock()
	r := s.room
	s.room = nil
	s.mu.Unlock()

	if r != nil {
		r.RemovePlayer(s.conn)
	}
}

func (s *session) sendError(err error) {
	s.conn.SendMessage(apperrors.ToMessage(err))
}

// askName 询问显示名，空白则沿用连接分配的昵称
func (s *session) askName(ctx context.Context) error {
	s.conn.SendMessage(protocol.Text(protocol.PromptName))

	msg, ok := s.next(ctx)
	if !ok {
		return apperrors.ErrConnClosed
	}
	if name := sanitizeName(msg.Text); name != "" {
		s.conn.SetName(name)
	}

	name := s.conn.GetName()
	log.Info().Str("client_id", s.conn.GetID()).Str("player", name).Msg("🙋 player named")

	s.conn.SendMessage(protocol.NewText("🎉 Welcome, %s! Type 'help' for commands.", name))
	if s.h.server != nil {
		s.conn.SendMessage(protocol.NewText("🌐 %d player(s) online", s.h.server.GetOnlineCount()))
	}
	return nil
}

// sanitizeName trims the name and truncates it to maxNameLength runes.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxNameLength {
		name = strings.TrimSpace(string([]rune(name)[:maxNameLength]))
	}
	return name
}

// lobby 处理大厅命令，直到进入房间或会话结束
func (s *session) lobby(ctx context.Context) (*room.Room, error) {
	for {
		msg, ok := s.next(ctx)
		if !ok {
			return nil, apperrors.ErrConnClosed
		}

		cmd := protocol.ParseCommand(msg.Text)
		if cmd.Name == "" {
			continue
		}
		if cmd.Name == protocol.CmdQuit {
			s.conn.SendMessage(protocol.NewText("👋 Bye!"))
			s.conn.Close()
			return nil, errQuit
		}

		fn, ok := s.h.commands[cmd.Name]
		if !ok {
			s.sendError(apperrors.ErrInvalidCommand)
			continue
		}

		r, err := fn(ctx, s, cmd.Arg)
		if err != nil {
			s.sendError(err)
			continue
		}
		if r != nil {
			return r, nil
		}
	}
}

// play 在房间内对局。返回 true 表示回到大厅，false 表示会话结束
func (s *session) play(ctx context.Context, r *room.Room) bool {
	var waitCh chan error
	started, myTurn := false, false

	for {
		if waitCh == nil && !myTurn {
			waitCh = make(chan error, 1)
			go s.wait(r, started, waitCh)
		}

		select {
		case <-ctx.Done():
			return false

		case err := <-waitCh:
			waitCh = nil
			if err != nil {
				return false
			}
			if !started {
				started = true
				continue
			}
			if r.IsTurn(s.conn) {
				myTurn = true
				s.conn.SendMessage(protocol.Text(r.TurnPrompt()))
			}

		case msg, ok := <-s.lines:
			if !ok {
				return false
			}
			next, alive := s.handleInGame(r, msg.Text)
			if !alive {
				return false
			}
			if next == nil {
				return true
			}
			if next != r {
				r = next
				started = false
				waitCh = nil
			}
			myTurn = false
		}
	}
}

// wait 在后台等待开局或轮到自己
func (s *session) wait(r *room.Room, started bool, ch chan<- error) {
	if started {
		ch <- r.AwaitTurn(s.conn)
		return
	}
	ch <- r.WaitForStart(s.conn)
}

// handleInGame 处理房间内一行输入。
// 返回继续所在的房间（nil 表示回到大厅）以及会话是否继续
func (s *session) handleInGame(r *room.Room, text string) (*room.Room, bool) {
	if cmd := protocol.ParseCommand(text); cmd.Name == protocol.CmdSwitch {
		return s.switchRoom(r, cmd.Arg), true
	}

	res, err := r.AcceptMove(s.conn, text)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotInRoom) || errors.Is(err, apperrors.ErrRoomFinished) {
			return nil, false
		}
		s.sendError(err)
		return r, true
	}
	if res == room.MoveExited {
		s.setRoom(nil)
		return nil, false
	}
	return r, true
}

// switchRoom 离开当前房间并加入另一个；目标不存在时留在原房间
func (s *session) switchRoom(current *room.Room, name string) *room.Room {
	if name == "" {
		s.sendError(apperrors.ErrInvalidCommand)
		return current
	}
	next, err := s.h.directory.Lookup(name)
	if err != nil {
		s.sendError(err)
		return current
	}
	if next == current {
		s.conn.SendMessage(protocol.NewText("📍 You are already in room %s", name))
		return current
	}

	current.RemovePlayer(s.conn)
	s.setRoom(nil)

	if err := next.AddPlayer(s.conn); err != nil {
		s.sendError(err)
		s.conn.SendMessage(protocol.NewText("🏠 You are back in the lobby"))
		return nil
	}
	s.setRoom(next)
	s.conn.SendMessage(protocol.NewText("✅ Switched to room %s (admin: %s)", next.Name(), next.Admin()))
	log.Info().Str("player", s.conn.GetName()).Str("from", current.Name()).Str("to", next.Name()).Msg("🔀 player switched rooms")
	return next
}
