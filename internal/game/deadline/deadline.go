// Package deadline schedules one-shot turn deadlines.
//
// Every scheduled deadline carries a fresh id. A callback that fires after
// its deadline was cancelled or replaced still runs, so the owner must
// compare the id it receives against the handle it currently holds.
package deadline

import (
	"sync/atomic"
	"time"
)

// Stopper stops a pending callback, reporting whether it was still pending.
type Stopper interface {
	Stop() bool
}

// Clock 时间源
type Clock interface {
	AfterFunc(d time.Duration, f func()) Stopper
	Now() time.Time
}

// RealClock 基于 time 包的时间源
type RealClock struct{}

func (RealClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

func (RealClock) Now() time.Time {
	return time.Now()
}

// Handle 一次性计时器句柄
type Handle struct {
	id   uint64
	stop Stopper
}

// ID returns the deadline id, 0 for a nil handle.
func (h *Handle) ID() uint64 {
	if h == nil {
		return 0
	}
	return h.id
}

// Timer 发放单调递增 id 的计时器
type Timer struct {
	clock Clock
	seq   atomic.Uint64
}

// NewTimer creates a timer on clock, nil means RealClock.
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Timer{clock: clock}
}

// Clock returns the underlying time source
func (t *Timer) Clock() Clock {
	return t.clock
}

// Schedule arranges for fn(id) to run once after d.
func (t *Timer) Schedule(d time.Duration, fn func(id uint64)) *Handle {
	id := t.seq.Add(1)
	h := &Handle{id: id}
	h.stop = t.clock.AfterFunc(d, func() { fn(id) })
	return h
}

// Cancel stops h if it has not fired yet. Nil handles are ignored.
func (t *Timer) Cancel(h *Handle) bool {
	if h == nil || h.stop == nil {
		return false
	}
	return h.stop.Stop()
}
