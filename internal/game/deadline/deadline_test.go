package deadline

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimer_ScheduleFiresWithID(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(time.Unix(0, 0))
	timer := NewTimer(clock)

	var got uint64
	h := timer.Schedule(30*time.Second, func(id uint64) { got = id })

	assert.Equal(t, 0, clock.Advance(29*time.Second))
	assert.Zero(t, got)

	assert.Equal(t, 1, clock.Advance(time.Second))
	assert.Equal(t, h.ID(), got)
	assert.Zero(t, clock.Pending())
}

func TestTimer_CancelPreventsFire(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(time.Unix(0, 0))
	timer := NewTimer(clock)

	fired := false
	h := timer.Schedule(time.Second, func(uint64) { fired = true })

	assert.True(t, timer.Cancel(h))
	assert.False(t, timer.Cancel(h))
	clock.Advance(time.Minute)
	assert.False(t, fired)
}

func TestTimer_CancelNil(t *testing.T) {
	t.Parallel()

	timer := NewTimer(nil)
	assert.False(t, timer.Cancel(nil))
	assert.Zero(t, (*Handle)(nil).ID())
}

func TestTimer_IDsIncrease(t *testing.T) {
	t.Parallel()

	timer := NewTimer(NewFakeClock(time.Unix(0, 0)))
	a := timer.Schedule(time.Second, func(uint64) {})
	b := timer.Schedule(time.Second, func(uint64) {})
	assert.Greater(t, b.ID(), a.ID())
}

func TestFakeClock_FiresInDeadlineOrder(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(time.Unix(0, 0))
	timer := NewTimer(clock)

	var order []uint64
	late := timer.Schedule(2*time.Second, func(id uint64) { order = append(order, id) })
	early := timer.Schedule(time.Second, func(id uint64) { order = append(order, id) })

	assert.Equal(t, 2, clock.Advance(5*time.Second))
	assert.Equal(t, []uint64{early.ID(), late.ID()}, order)
	assert.Equal(t, time.Unix(5, 0), clock.Now())
}

func TestRealClock_Fires(t *testing.T) {
	t.Parallel()

	timer := NewTimer(RealClock{})
	var fired atomic.Bool
	timer.Schedule(10*time.Millisecond, func(uint64) { fired.Store(true) })

	assert.Eventually(t, fired.Load, time.Second, 5*time.Millisecond)
}
