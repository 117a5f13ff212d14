package room

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/citychain/internal/apperrors"
	"github.com/palemoky/citychain/internal/game/deadline"
	"github.com/palemoky/citychain/internal/types"
)

// Options 房间目录配置
type Options struct {
	TurnTimeout     time.Duration // 回合超时
	RoomTimeout     time.Duration // 空房间回收时长
	CleanupInterval time.Duration // 回收扫描间隔
	Clock           deadline.Clock
	Recorders       []types.ResultRecorder
}

// Directory 房间目录：房间名 -> 房间。
// 目录锁独立于房间锁，目录方法从不获取房间锁。
type Directory struct {
	opts  Options
	timer *deadline.Timer

	rooms map[string]*Room
	order []string // 创建顺序
	mu    sync.RWMutex

	recording sync.WaitGroup // 进行中的结果写入
	recordMu  sync.Mutex     // 保护 draining 与 recording.Add
	draining  bool
}

// NewDirectory 创建房间目录
func NewDirectory(opts Options) *Directory {
	if opts.TurnTimeout <= 0 {
		opts.TurnTimeout = 30 * time.Second
	}
	if opts.RoomTimeout <= 0 {
		opts.RoomTimeout = 10 * time.Minute
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = time.Minute
	}
	return &Directory{
		opts:  opts,
		timer: deadline.NewTimer(opts.Clock),
		rooms: make(map[string]*Room),
	}
}

// Create 创建房间，创建者成为管理员（不会自动加入）
func (d *Directory) Create(name, admin string) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.ErrInvalidCommand
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.rooms[name]; exists {
		return nil, apperrors.ErrNameConflict
	}

	room := newRoom(name, admin, d)
	d.rooms[name] = room
	d.order = append(d.order, name)

	log.Info().Str("room", name).Str("admin", admin).Msg("🏠 room created")
	return room, nil
}

// Lookup 按名称查找房间
func (d *Directory) Lookup(name string) (*Room, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	room, exists := d.rooms[strings.TrimSpace(name)]
	if !exists {
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

// List 返回按创建顺序排列的房间名
func (d *Directory) List() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.order)
}

// Rooms 返回按创建顺序排列的房间快照。
// 调用方在目录锁释放后再访问房间。
func (d *Directory) Rooms() []*Room {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rooms := make([]*Room, 0, len(d.order))
	for _, name := range d.order {
		rooms = append(rooms, d.rooms[name])
	}
	return rooms
}

// Count 返回房间数
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// ActiveGamesCount 返回进行中的对局数
func (d *Directory) ActiveGamesCount() int {
	count := 0
	for _, room := range d.Rooms() {
		if room.State() == StateInProgress {
			count++
		}
	}
	return count
}

// remove 由房间 gameOver 调用（持有房间锁，锁顺序 房间 -> 目录）
func (d *Directory) remove(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.rooms[name]; !exists {
		return
	}
	delete(d.rooms, name)
	if i := slices.Index(d.order, name); i >= 0 {
		d.order = slices.Delete(d.order, i, i+1)
	}
	log.Info().Str("room", name).Msg("🏠 room removed")
}

// FinishAll 结束所有房间（服务器关闭）
func (d *Directory) FinishAll(reason string) int {
	finished := 0
	for _, room := range d.Rooms() {
		if room.Finish(reason) {
			finished++
		}
	}
	return finished
}

// beginRecord registers one pending result write. It reports false once
// WaitRecorded has started.
func (d *Directory) beginRecord() bool {
	d.recordMu.Lock()
	defer d.recordMu.Unlock()
	if d.draining {
		return false
	}
	d.recording.Add(1)
	return true
}

// WaitRecorded blocks until in-flight game results are handed to every
// recorder or ctx ends. Results of games ending afterwards are dropped.
func (d *Directory) WaitRecorded(ctx context.Context) error {
	d.recordMu.Lock()
	d.draining = true
	d.recordMu.Unlock()

	done := make(chan struct{})
	go func() {
		d.recording.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StartCleanup 启动空房间回收协程，ctx 取消时退出
func (d *Directory) StartCleanup(ctx context.Context) {
	go d.cleanupLoop(ctx)
}

func (d *Directory) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(d.opts.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.cleanup()
		}
	}
}

// cleanup 回收空闲超时的空房间，返回回收数量
func (d *Directory) cleanup() int {
	now := d.timer.Clock().Now()
	reaped := 0
	for _, room := range d.Rooms() {
		if room.finishIfAbandoned(now, d.opts.RoomTimeout) {
			reaped++
		}
	}
	if reaped > 0 {
		log.Info().Int("reaped", reaped).Int("rooms", d.Count()).Msg("🧹 abandoned rooms cleaned up")
	}
	return reaped
}
