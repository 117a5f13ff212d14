package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/citychain/internal/apperrors"
	"github.com/palemoky/citychain/internal/testutil"
	"github.com/palemoky/citychain/internal/types"
)

func TestDirectory_CreateLookupList(t *testing.T) {
	t.Parallel()

	d, _ := NewTestDirectory(testTurnTimeout)

	r1, err := d.Create("r1", "Alice")
	require.NoError(t, err)
	_, err = d.Create("r2", "Bob")
	require.NoError(t, err)

	_, err = d.Create("r1", "Carol")
	assert.ErrorIs(t, err, apperrors.ErrNameConflict)
	_, err = d.Create("  ", "Carol")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCommand)

	got, err := d.Lookup("r1")
	require.NoError(t, err)
	assert.Same(t, r1, got)
	assert.Equal(t, "Alice", got.Admin())

	_, err = d.Lookup("nope")
	assert.ErrorIs(t, err, apperrors.ErrRoomNotFound)

	assert.Equal(t, []string{"r1", "r2"}, d.List())
	assert.Len(t, d.Rooms(), 2)
	assert.Equal(t, 2, d.Count())
	assert.Zero(t, d.ActiveGamesCount())

	info := r1.Snapshot()
	assert.Equal(t, StateWaiting, info.State)
	assert.Equal(t, map[string]int{"Alice": 0}, info.Scores)
	assert.Empty(t, info.Players)
}

func TestDirectory_EmptyList(t *testing.T) {
	t.Parallel()

	d, _ := NewTestDirectory(testTurnTimeout)
	assert.Empty(t, d.List())
}

func TestDirectory_GameOverRemovesRoom(t *testing.T) {
	t.Parallel()

	d, clock, _, _, _ := newGame(t)
	_, err := d.Create("r2", "Bob")
	require.NoError(t, err)
	assert.Equal(t, 1, d.ActiveGamesCount())

	clock.Advance(testTurnTimeout)

	assert.Equal(t, []string{"r2"}, d.List())
	assert.Zero(t, d.ActiveGamesCount())

	// the name is free again
	_, err = d.Create("r1", "Carol")
	assert.NoError(t, err)
}

func TestDirectory_CleanupReapsAbandonedRooms(t *testing.T) {
	t.Parallel()

	d, clock := NewTestDirectory(testTurnTimeout)

	empty, err := d.Create("empty", "Alice")
	require.NoError(t, err)
	waiting, err := d.Create("waiting", "Bob")
	require.NoError(t, err)
	require.NoError(t, waiting.AddPlayer(testutil.NewSimpleClient("p2", "Bob")))

	assert.Zero(t, d.Cleanup())

	clock.Advance(11 * time.Minute)
	assert.Equal(t, 1, d.Cleanup())

	assert.Equal(t, StateFinished, empty.State())
	assert.Equal(t, StateWaiting, waiting.State())
	assert.Equal(t, []string{"waiting"}, d.List())
}

func TestDirectory_CleanupUsesIdleSinceLastLeave(t *testing.T) {
	t.Parallel()

	d, clock := NewTestDirectory(testTurnTimeout)
	r, err := d.Create("r1", "Alice")
	require.NoError(t, err)

	clock.Advance(9 * time.Minute)
	alice := testutil.NewSimpleClient("p1", "Alice")
	require.NoError(t, r.AddPlayer(alice))
	clock.Advance(5 * time.Minute)
	require.True(t, r.RemovePlayer(alice))

	clock.Advance(5 * time.Minute)
	assert.Zero(t, d.Cleanup())
	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, d.Cleanup())
}

func TestDirectory_StartCleanupReaps(t *testing.T) {
	t.Parallel()

	d := NewDirectory(Options{CleanupInterval: 10 * time.Millisecond, RoomTimeout: time.Nanosecond})
	_, err := d.Create("r1", "Alice")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.StartCleanup(ctx)

	assert.Eventually(t, func() bool { return d.Count() == 0 }, time.Second, 10*time.Millisecond)
}

func TestDirectory_FinishAll(t *testing.T) {
	t.Parallel()

	d, _, _, alice, bob := newGame(t)
	_, err := d.Create("r2", "Carol")
	require.NoError(t, err)

	assert.Equal(t, 2, d.FinishAll("server shutting down"))
	assert.Zero(t, d.Count())
	assert.True(t, alice.IsClosed())
	assert.True(t, bob.Received("server shutting down"))
}

type failingRecorder struct{}

func (failingRecorder) RecordGameResult(context.Context, types.GameResult) error {
	return errors.New("redis down")
}

func TestRoom_GameOverRecordsResult(t *testing.T) {
	t.Parallel()

	rec := &testutil.RecordingRecorder{}
	d, clock := NewTestDirectory(testTurnTimeout, rec, failingRecorder{})
	r, err := d.Create("r1", "Alice")
	require.NoError(t, err)

	alice := testutil.NewSimpleClient("p1", "Alice")
	bob := testutil.NewSimpleClient("p2", "Bob")
	require.NoError(t, r.AddPlayer(alice))
	require.NoError(t, r.AddPlayer(bob))

	_, err = r.AcceptMove(alice, "Berlin")
	require.NoError(t, err)
	_, err = r.AcceptMove(bob, "Nice")
	require.NoError(t, err)
	_, err = r.AcceptMove(alice, "Edinburgh")
	require.NoError(t, err)
	clock.Advance(testTurnTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.WaitRecorded(ctx))
	require.Len(t, rec.Results(), 1)
	result := rec.Results()[0]
	assert.Equal(t, "r1", result.Room)
	assert.Equal(t, "Alice", result.Winner)
	assert.Equal(t, 3, result.Cities)
	assert.Equal(t, []types.Standing{{Name: "Alice", Score: 2}, {Name: "Bob", Score: 1}}, result.Standings)
	assert.Equal(t, "Bob ran out of time", result.Reason)
}

func TestRoom_UnplayedRoomNotRecorded(t *testing.T) {
	t.Parallel()

	rec := &testutil.RecordingRecorder{}
	d, _ := NewTestDirectory(testTurnTimeout, rec)
	r, err := d.Create("r1", "Alice")
	require.NoError(t, err)

	alice := testutil.NewSimpleClient("p1", "Alice")
	require.NoError(t, r.AddPlayer(alice))
	assert.True(t, r.Finish("server shutting down"))
	assert.True(t, alice.Received("The game never started"))

	require.NoError(t, d.WaitRecorded(context.Background()))
	assert.Empty(t, rec.Results())
}

func TestRoomState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state RoomState
		want  string
	}{
		{StateWaiting, "waiting"},
		{StateInProgress, "in progress"},
		{StateFinished, "finished"},
		{RoomState(99), "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
	assert.Equal(t, "exited", MoveExited.String())
}

func TestDirectory_ResultsAfterWaitRecordedAreDropped(t *testing.T) {
	t.Parallel()

	rec := &testutil.RecordingRecorder{}
	d, clock := NewTestDirectory(testTurnTimeout, rec)
	r, err := d.Create("r1", "Alice")
	require.NoError(t, err)

	alice := testutil.NewSimpleClient("p1", "Alice")
	bob := testutil.NewSimpleClient("p2", "Bob")
	require.NoError(t, r.AddPlayer(alice))
	require.NoError(t, r.AddPlayer(bob))
	_, err = r.AcceptMove(alice, "Oslo")
	require.NoError(t, err)

	require.NoError(t, d.WaitRecorded(context.Background()))

	assert.NotPanics(t, func() { clock.Advance(testTurnTimeout) })
	assert.Equal(t, StateFinished, r.State())
	require.NoError(t, d.WaitRecorded(context.Background()))
	assert.Empty(t, rec.Results())
}

func TestDirectory_WaitRecordedDuringGameOver(t *testing.T) {
	t.Parallel()

	rec := &testutil.RecordingRecorder{}
	d, _ := NewTestDirectory(testTurnTimeout, rec)

	rooms := make([]*Room, 20)
	for i := range rooms {
		r, err := d.Create(fmt.Sprintf("r%d", i), "Alice")
		require.NoError(t, err)
		require.NoError(t, r.AddPlayer(testutil.NewSimpleClient("a", "Alice")))
		require.NoError(t, r.AddPlayer(testutil.NewSimpleClient("b", "Bob")))
		rooms[i] = r
	}

	var wg sync.WaitGroup
	for _, r := range rooms {
		wg.Add(1)
		go func(r *Room) {
			defer wg.Done()
			r.Finish("server shutting down")
		}(r)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.WaitRecorded(ctx))
	wg.Wait()

	assert.LessOrEqual(t, len(rec.Results()), len(rooms))
}
