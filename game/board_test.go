package game

import (
	"testing"
	"time"

	"blockfall/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ms = time.Millisecond

func TestBoardFallLoop(t *testing.T) {
	board, c := NewTestBoard(NewTestConfig(300))
	board.Start()
	require.Equal(t, 0, board.Read().Row)

	require.NoError(t, c.Advance(300*ms))
	assert.Equal(t, 1, board.Read().Row)

	require.NoError(t, c.Advance(300*ms))
	assert.Equal(t, 2, board.Read().Row)
}

func TestBoardFallsOnIntervalBoundary(t *testing.T) {
	board, c := NewTestBoard(NewTestConfig(300))
	board.Start()

	require.NoError(t, c.Advance(299*ms))
	assert.Equal(t, 0, board.Read().Row)
	require.NoError(t, c.Advance(ms))
	assert.Equal(t, 1, board.Read().Row)
}

func TestBoardLands(t *testing.T) {
	cfg := NewTestConfig(100)
	cfg.Rows = 5
	rec := &SnapshotRecorder{}
	board, c := NewTestBoard(cfg, WithRenderer(rec))
	board.Start()

	require.NoError(t, c.Advance(400*ms))
	s := board.Read()
	assert.Equal(t, 4, s.Row)
	assert.True(t, s.Landed)
	assert.True(t, rec.Last().Landed)

	require.NoError(t, c.Advance(10*time.Second))
	assert.Equal(t, 4, board.Read().Row)
	// start plus four falls
	assert.Len(t, rec.Snapshots, 5)
}

func TestBoardIdleDoesNotFall(t *testing.T) {
	board, c := NewTestBoard(NewTestConfig(100))
	require.NoError(t, c.Advance(time.Second))
	s := board.Read()
	assert.Equal(t, Idle, s.State)
	assert.Equal(t, 0, s.Row)
	assert.False(t, board.HandleMove(Left))
	assert.Zero(t, c.Pending())
}

func TestBoardAutoStart(t *testing.T) {
	board, c := NewTestBoard(NewTestConfig(100), WithAutoStart())
	assert.Equal(t, Running, board.State())
	require.NoError(t, c.Advance(100*ms))
	assert.Equal(t, 1, board.Read().Row)
}

func TestBoardHandleMove(t *testing.T) {
	board, c := NewTestBoard(NewTestConfig(1000))
	board.Start()
	require.Equal(t, 5, board.Read().Col)

	require.True(t, board.HandleMove(Left))
	s := board.Read()
	assert.Equal(t, 4, s.Col)
	assert.Equal(t, Sliding, s.State)
	assert.True(t, s.Sliding)
	assert.Equal(t, Left, s.Pending)

	// moves during the slide are ignored.
	assert.False(t, board.HandleMove(Right))
	assert.Equal(t, 4, board.Read().Col)

	require.NoError(t, c.Advance(DefaultSlideDuration))
	s = board.Read()
	assert.Equal(t, Running, s.State)
	assert.Empty(t, s.Pending)

	require.True(t, board.HandleMove(Right))
	assert.Equal(t, 5, board.Read().Col)
	assert.False(t, board.HandleMove("up"))
}

func TestBoardMoveAgainstWall(t *testing.T) {
	board, c := NewTestBoard(NewTestConfig(1000), WithSpawn(func(int) int { return 0 }))
	board.Start()
	assert.False(t, board.HandleMove(Left))
	assert.Equal(t, Running, board.State(), "a rejected move doesn't slide")

	for range DefaultCols - 1 {
		require.True(t, board.HandleMove(Right))
		require.NoError(t, c.Advance(DefaultSlideDuration))
	}
	assert.Equal(t, DefaultCols-1, board.Read().Col)
	assert.False(t, board.HandleMove(Right))
}

func TestBoardSpawnIsClamped(t *testing.T) {
	board, _ := NewTestBoard(DefaultConfig(), WithSpawn(func(cols int) int { return cols + 3 }))
	assert.Equal(t, DefaultCols-1, board.Read().Col)
	board, _ = NewTestBoard(DefaultConfig(), WithSpawn(func(int) int { return -3 }))
	assert.Equal(t, 0, board.Read().Col)
}

func TestBoardMoveDoesNotResetFallCountdown(t *testing.T) {
	board, c := NewTestBoard(NewTestConfig(300))
	board.Start()

	require.NoError(t, c.Advance(100*ms))
	require.True(t, board.HandleMove(Left))
	require.NoError(t, c.Advance(199*ms))
	assert.Equal(t, 0, board.Read().Row)
	require.NoError(t, c.Advance(ms))
	assert.Equal(t, 1, board.Read().Row)
}

func TestBoardFallDeferredWhileSliding(t *testing.T) {
	cfg := NewTestConfig(300)
	cfg.SlideDuration = 100 * ms
	board, c := NewTestBoard(cfg)
	board.Start()

	require.NoError(t, c.Advance(250*ms))
	require.True(t, board.HandleMove(Right))
	require.NoError(t, c.Advance(50*ms))
	assert.Equal(t, 0, board.Read().Row, "fall waits for the slide")

	require.NoError(t, c.Advance(50*ms))
	s := board.Read()
	assert.Equal(t, 1, s.Row)
	assert.Equal(t, Running, s.State)

	// the countdown restarts from the deferred fall.
	require.NoError(t, c.Advance(299*ms))
	assert.Equal(t, 1, board.Read().Row)
	require.NoError(t, c.Advance(ms))
	assert.Equal(t, 2, board.Read().Row)
}

func TestBoardMoveWindow(t *testing.T) {
	cfg := NewTestConfig(1000)
	cfg.MoveInterval = 100 * ms
	cfg.SlideDuration = MinInterval
	cfg.MovePolicy = MoveWindowed
	board, c := NewTestBoard(cfg)
	board.Start()

	require.True(t, board.HandleMove(Left), "window opens on spawn")
	require.NoError(t, c.Advance(85*ms))
	require.True(t, board.HandleMove(Left))

	require.NoError(t, c.Advance(16*ms))
	assert.False(t, board.HandleMove(Left), "window closed")
	assert.Equal(t, 3, board.Read().Col)

	require.NoError(t, c.Advance(899*ms))
	require.Equal(t, 1, board.Read().Row)
	assert.True(t, board.HandleMove(Right), "window reopens after landing in the next cell")
}

func TestBoardSlidingRejectsThenAccepts(t *testing.T) {
	board, c := NewTestBoard(NewTestConfig(1000))
	board.Start()
	require.True(t, board.HandleMove(Right))
	before := board.Read().Col

	assert.False(t, board.HandleMove(Right))
	assert.Equal(t, before, board.Read().Col)

	require.NoError(t, c.Advance(DefaultSlideDuration))
	assert.True(t, board.HandleMove(Right))
	assert.Equal(t, before+1, board.Read().Col)
}

func TestBoardProgress(t *testing.T) {
	board, c := NewTestBoard(NewTestConfig(300))
	assert.Equal(t, 300*ms, board.TimeUntilFall())
	assert.Zero(t, board.Progress())

	board.Start()
	require.NoError(t, c.Advance(150*ms))
	assert.Equal(t, 150*ms, board.TimeUntilFall())
	assert.InDelta(t, 0.5, board.Progress(), 1e-9)

	require.NoError(t, c.Advance(150*ms))
	assert.Equal(t, 300*ms, board.TimeUntilFall())
}

func TestBoardPauseResume(t *testing.T) {
	board, c := NewTestBoard(NewTestConfig(300))
	board.Start()
	require.NoError(t, c.Advance(200*ms))

	board.Pause()
	assert.Equal(t, Paused, board.State())
	assert.False(t, board.HandleMove(Left))
	require.NoError(t, c.Advance(time.Second))
	s := board.Read()
	assert.Equal(t, 0, s.Row)
	assert.Equal(t, 100*ms, s.Remaining)
	assert.Zero(t, c.Pending())

	board.Resume()
	require.NoError(t, c.Advance(99*ms))
	assert.Equal(t, 0, board.Read().Row)
	require.NoError(t, c.Advance(ms))
	assert.Equal(t, 1, board.Read().Row)

	board.Resume()
	assert.Equal(t, Running, board.State())
}

func TestBoardPauseDropsSlide(t *testing.T) {
	board, c := NewTestBoard(NewTestConfig(300))
	board.Start()
	require.True(t, board.HandleMove(Left))
	board.Pause()
	assert.Empty(t, board.Read().Pending)
	board.Resume()
	assert.Equal(t, Running, board.State())
	assert.True(t, board.HandleMove(Left))
	require.NoError(t, c.Advance(DefaultSlideDuration))
	assert.Equal(t, 3, board.Read().Col)
}

func TestBoardReset(t *testing.T) {
	board, c := NewTestBoard(NewTestConfig(100))
	board.Start()
	require.NoError(t, c.Advance(200*ms))
	require.True(t, board.HandleMove(Left))
	require.Equal(t, 2, board.Read().Row)

	require.NoError(t, c.Advance(10*ms))
	board.Reset()
	s := board.Read()
	assert.Equal(t, 0, s.Row)
	assert.Equal(t, 5, s.Col)
	assert.Equal(t, Running, s.State)
	assert.Empty(t, s.Pending)

	require.NoError(t, c.Advance(99*ms))
	assert.Equal(t, 0, board.Read().Row)
	require.NoError(t, c.Advance(ms))
	assert.Equal(t, 1, board.Read().Row)
}

func TestBoardStop(t *testing.T) {
	rec := &SnapshotRecorder{}
	board, c := NewTestBoard(NewTestConfig(100), WithRenderer(rec))
	board.Start()
	require.True(t, board.HandleMove(Left))
	board.Stop()
	board.Stop()

	assert.Equal(t, Stopped, board.State())
	assert.Equal(t, Stopped, rec.Last().State)
	assert.Zero(t, c.Pending())
	require.NoError(t, c.Advance(time.Second))
	assert.Equal(t, 0, board.Read().Row)
	assert.False(t, board.HandleMove(Left))

	board.Start()
	board.Reset()
	board.Resume()
	assert.Equal(t, Stopped, board.State())
	assert.NoError(t, board.Controls().BotMove(Left))
}

func TestBoardPlayerControls(t *testing.T) {
	hub := NewKeyHub()
	c := clock.NewMock()
	board, err := New(NewTestConfig(1000), ControlPlayer, WithClock(c), WithEventTarget(hub))
	require.NoError(t, err)
	assert.Equal(t, KindPlayer, board.Player().Kind)
	board.Start()

	hub.Dispatch(KeyEvent{Rune: 'a'})
	assert.Equal(t, 4, board.Read().Col)
	require.NoError(t, c.Advance(DefaultSlideDuration))
	hub.Dispatch(KeyEvent{Key: KeyArrowRight})
	assert.Equal(t, 5, board.Read().Col)
	assert.ErrorIs(t, board.Controls().BotMove(Left), ErrNotBot)

	board.Stop()
	require.NoError(t, c.Advance(DefaultSlideDuration))
	hub.Dispatch(KeyEvent{Rune: 'a'})
	assert.Equal(t, 5, board.Read().Col)
}

func TestBoardConstructionErrors(t *testing.T) {
	_, err := New(DefaultConfig(), ControlPlayer, WithClock(clock.NewMock()))
	assert.ErrorIs(t, err, ErrNoEventTarget)

	_, err = New(DefaultConfig(), ControlBot, WithClock(clock.NewMock()), WithPlayer(Player{Kind: "alien"}))
	assert.ErrorIs(t, err, ErrUnknownPlayerKind)
}

func TestBoardPlayerColor(t *testing.T) {
	board, _ := NewTestBoard(DefaultConfig(), WithPlayer(Player{Kind: KindFakePlayer, Name: "fake"}))
	s := board.Read()
	assert.Equal(t, "#10b981", s.Color)
	assert.Equal(t, "fake", s.Name)

	board, _ = NewTestBoard(DefaultConfig(), WithPlayer(Player{Name: "robot"}))
	assert.Equal(t, KindBot, board.Player().Kind)
	assert.Equal(t, "robot", board.Player().Name)
}

func TestBoardRealClock(t *testing.T) {
	cfg := NewTestConfig(20)
	cfg.Rows = 3
	board, err := New(cfg, ControlBot, WithAutoStart())
	require.NoError(t, err)
	defer board.Stop()

	require.Eventually(t, func() bool { return board.Read().Landed }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, board.Read().Row)
}
