//go:build !production

package room

import (
	"time"

	"github.com/palemoky/citychain/internal/game/deadline"
	"github.com/palemoky/citychain/internal/types"
)

// NewTestDirectory 创建使用 FakeClock 的目录
func NewTestDirectory(turnTimeout time.Duration, recorders ...types.ResultRecorder) (*Directory, *deadline.FakeClock) {
	clock := deadline.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	d := NewDirectory(Options{
		TurnTimeout: turnTimeout,
		RoomTimeout: 10 * time.Minute,
		Clock:       clock,
		Recorders:   recorders,
	})
	return d, clock
}

// Cleanup 立即执行一次空房间回收
func (d *Directory) Cleanup() int {
	return d.cleanup()
}

// Turn returns the current turn index
func (r *Room) Turn() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.turn
}

// DeadlineID returns the id of the live deadline, 0 if none
func (r *Room) DeadlineID() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deadline.ID()
}

// FireDeadline invokes the deadline callback with id, as a timer goroutine would.
func (r *Room) FireDeadline(id uint64) {
	r.timeout(id)
}
