package handler

import (
	"context"
	"fmt"

	"github.com/palemoky/citychain/internal/apperrors"
	"github.com/palemoky/citychain/internal/game/room"
	"github.com/palemoky/citychain/internal/protocol"
)

// --- 房间处理 ---

// handleCreate 创建房间，创建者成为管理员但不自动加入
func (h *Handler) handleCreate(_ context.Context, s *session, arg string) (*room.Room, error) {
	if h.maintenance() {
		return nil, apperrors.ErrMaintenance
	}
	if arg == "" {
		return nil, apperrors.ErrInvalidCommand
	}

	r, err := h.directory.Create(arg, s.conn.GetName())
	if err != nil {
		return nil, err
	}
	s.conn.SendMessage(protocol.NewText("🏠 Room %s created, you are its admin. Type 'join %s' to enter.", r.Name(), r.Name()))
	return nil, nil
}

// handleJoin 加入房间（大厅中的 switch 与 join 相同）
func (h *Handler) handleJoin(_ context.Context, s *session, arg string) (*room.Room, error) {
	if h.maintenance() {
		return nil, apperrors.ErrMaintenance
	}
	if arg == "" {
		return nil, apperrors.ErrInvalidCommand
	}

	r, err := h.directory.Lookup(arg)
	if err != nil {
		return nil, err
	}
	if err := r.AddPlayer(s.conn); err != nil {
		return nil, err
	}
	s.setRoom(r)
	s.conn.SendMessage(protocol.NewText("✅ Joined room %s (admin: %s)", r.Name(), r.Admin()))
	return r, nil
}

// handleList 列出房间
func (h *Handler) handleList(_ context.Context, s *session, _ string) (*room.Room, error) {
	rooms := h.directory.Rooms()
	if len(rooms) == 0 {
		s.conn.SendMessage(protocol.NewList([]string{"No rooms available. Create one with 'create <room>'."}))
		return nil, nil
	}

	lines := make([]string, 0, len(rooms))
	for _, r := range rooms {
		info := r.Snapshot()
		lines = append(lines, fmt.Sprintf("%s [%s] %d player(s), admin %s", info.Name, info.State, len(info.Players), info.Admin))
	}
	s.conn.SendMessage(protocol.NewList(lines))
	return nil, nil
}

// handleHelp 命令帮助
func (h *Handler) handleHelp(_ context.Context, s *session, _ string) (*room.Room, error) {
	s.conn.SendMessage(protocol.NewList(protocol.HelpLines))
	return nil, nil
}
