package game

import (
	"testing"
	"time"

	"blockfall/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockMoveDown(t *testing.T) {
	b := NewBlock(0, 5, "")
	require.True(t, b.MoveDown(DefaultRows))
	assert.Equal(t, 1, b.Row)
	assert.Equal(t, 5, b.Col)

	for b.Row < DefaultRows-1 {
		require.True(t, b.MoveDown(DefaultRows))
	}
	assert.False(t, b.MoveDown(DefaultRows))
	assert.Equal(t, 19, b.Row)
}

func TestBlockLateralMoves(t *testing.T) {
	b := NewBlock(5, 0, "")
	assert.False(t, b.MoveLeft(0))
	assert.Equal(t, 0, b.Col)

	b = NewBlock(5, 8, "")
	assert.True(t, b.MoveRight(10))
	assert.Equal(t, 9, b.Col)
	assert.False(t, b.MoveRight(10))
	assert.Equal(t, 9, b.Col)

	b = NewBlock(5, 5, "")
	assert.True(t, b.MoveLeft(0))
	assert.Equal(t, 4, b.Col)
	assert.Equal(t, 5, b.Row)
}

func TestBlockSequentialMoves(t *testing.T) {
	b := NewBlock(0, 0, "")
	b.MoveRight(10)
	b.MoveRight(10)
	b.MoveDown(20)
	b.MoveDown(20)
	b.MoveLeft(0)
	assert.Equal(t, 1, b.Col)
	assert.Equal(t, 2, b.Row)
}

func TestBlockBoundsAreNeverExceeded(t *testing.T) {
	for _, bound := range []int{1, 2, 7, 20} {
		b := NewBlock(0, 0, "")
		for range bound * 3 {
			b.MoveDown(bound)
			b.MoveRight(bound)
			require.Less(t, b.Row, bound)
			require.Less(t, b.Col, bound)
		}
		for range bound * 3 {
			b.MoveLeft(0)
			require.GreaterOrEqual(t, b.Col, 0)
		}
		assert.Equal(t, 0, b.Col)
	}
}

func TestBlockInvalidBounds(t *testing.T) {
	tests := []struct {
		name string
		move func(*Block) bool
	}{
		{name: "zero rows", move: func(b *Block) bool { return b.MoveDown(0) }},
		{name: "negative rows", move: func(b *Block) bool { return b.MoveDown(-3) }},
		{name: "negative min col", move: func(b *Block) bool { return b.MoveLeft(-5) }},
		{name: "zero cols", move: func(b *Block) bool { return b.MoveRight(0) }},
		{name: "negative cols", move: func(b *Block) bool { return b.MoveRight(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, pos := range [][2]int{{0, 0}, {5, 5}, {19, 9}} {
				b := NewBlock(pos[0], pos[1], "")
				assert.False(t, tt.move(b))
				assert.Equal(t, pos[0], b.Row)
				assert.Equal(t, pos[1], b.Col)
			}
		})
	}
}

func TestBlockOversizedBounds(t *testing.T) {
	b := NewBlock(5, 9, "")
	assert.True(t, b.MoveRight(100))
	assert.Equal(t, 10, b.Col)

	b = NewBlock(19, 5, "")
	assert.True(t, b.MoveDown(100))
	assert.Equal(t, 20, b.Row)
	assert.False(t, b.MoveDown(20))
	assert.Equal(t, 20, b.Row)
}

func TestBlockIntervals(t *testing.T) {
	ms := time.Millisecond
	tests := []struct {
		name               string
		fall, move         time.Duration
		wantFall, wantMove time.Duration
	}{
		{name: "negative falls back to defaults", fall: -100 * ms, move: -100 * ms, wantFall: DefaultFallInterval, wantMove: DefaultMoveInterval},
		{name: "zero falls back to defaults", wantFall: DefaultFallInterval, wantMove: DefaultMoveInterval},
		{name: "huge falls back to defaults", fall: 1_000_000_000 * ms, move: 1_000_000_000 * ms, wantFall: DefaultFallInterval, wantMove: DefaultMoveInterval},
		{name: "fractional is rounded", fall: Millis(123.4), move: Millis(99.6), wantFall: 123 * ms, wantMove: 100 * ms},
		{name: "integers are kept", fall: 100 * ms, move: 200 * ms, wantFall: 100 * ms, wantMove: 200 * ms},
		{name: "sub-frame is clamped", fall: 5 * ms, move: ms, wantFall: MinInterval, wantMove: MinInterval},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBlock(0, 0, "#fff", WithFallInterval(tt.fall), WithMoveInterval(tt.move))
			assert.Equal(t, tt.wantFall, b.FallInterval)
			assert.Equal(t, tt.wantMove, b.MoveInterval)
			assert.GreaterOrEqual(t, b.FallInterval, MinInterval)
		})
	}
}

func TestNewBlockDefaults(t *testing.T) {
	b := NewBlock(3, 4, "")
	assert.Equal(t, DefaultBlockColor, b.Color)
	assert.Equal(t, DefaultFallInterval, b.FallInterval)
	assert.Equal(t, DefaultMoveInterval, b.MoveInterval)
}

func TestSpawnAtTop(t *testing.T) {
	p, err := NewPlayer(KindBot, "")
	require.NoError(t, err)
	b := SpawnAtTop(42, p)
	assert.Equal(t, 0, b.Row)
	assert.Equal(t, 42, b.Col, "spawn does not clamp")
	assert.Equal(t, "#3b82f6", b.Color)
}

func TestBlockDescendAfter(t *testing.T) {
	c := clock.NewMock()
	b := NewBlock(0, 5, "", WithFallInterval(DefaultFallInterval))
	var results []bool
	done := func(ok bool) { results = append(results, ok) }

	for range 3 {
		b.DescendAfter(c, DefaultRows, done)
		_, ok := c.AdvanceToNext()
		require.True(t, ok)
	}
	assert.Equal(t, 3, b.Row)
	assert.Equal(t, 3*DefaultFallInterval, c.Now())
	assert.Equal(t, []bool{true, true, true}, results)

	id := b.DescendAfter(c, DefaultRows, done)
	c.Cancel(id)
	require.NoError(t, c.Advance(time.Second))
	assert.Equal(t, 3, b.Row)

	last := NewBlock(1, 0, "")
	last.DescendAfter(c, 2, done)
	require.NoError(t, c.RunToIdle())
	assert.Equal(t, []bool{true, true, true, false}, results)
}
