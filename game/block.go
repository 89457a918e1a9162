package game

import (
	"time"

	"blockfall/clock"
)

// Block is the single falling piece.
// Rows grow downwards from 0 at the top, columns grow left to right from 0.
type Block struct {
	Row, Col     int
	Color        string
	FallInterval time.Duration
	MoveInterval time.Duration
}

type BlockOption func(*Block)

func WithFallInterval(d time.Duration) BlockOption {
	return func(b *Block) { b.FallInterval = normInterval(d, DefaultFallInterval) }
}

func WithMoveInterval(d time.Duration) BlockOption {
	return func(b *Block) { b.MoveInterval = normInterval(d, DefaultMoveInterval) }
}

func NewBlock(row, col int, color string, opts ...BlockOption) *Block {
	if color == "" {
		color = DefaultBlockColor
	}
	b := &Block{
		Row:          row,
		Col:          col,
		Color:        color,
		FallInterval: DefaultFallInterval,
		MoveInterval: DefaultMoveInterval,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// SpawnAtTop creates a block on row 0 colored after p. col is not checked
// against the board.
func SpawnAtTop(col int, p Player, opts ...BlockOption) *Block {
	return NewBlock(0, col, p.Color, opts...)
}

// MoveDown moves the block one row down unless it is already on the last of
// maxRows rows.
func (b *Block) MoveDown(maxRows int) bool {
	if maxRows <= 0 || b.Row >= maxRows-1 {
		return false
	}
	b.Row++
	return true
}

// MoveLeft moves the block one column left unless it is already at minCol.
func (b *Block) MoveLeft(minCol int) bool {
	if minCol < 0 || b.Col <= minCol {
		return false
	}
	b.Col--
	return true
}

// MoveRight moves the block one column right unless it is already on the last
// of maxCols columns.
func (b *Block) MoveRight(maxCols int) bool {
	if maxCols <= 0 || b.Col >= maxCols-1 {
		return false
	}
	b.Col++
	return true
}

// DescendAfter schedules a single MoveDown on c after the block's
// FallInterval and reports the outcome to done, which may be nil. The block
// is only mutated inside the clock callback.
func (b *Block) DescendAfter(c clock.Clock, maxRows int, done func(bool)) clock.EventID {
	return c.ScheduleOnce(func() {
		ok := b.MoveDown(maxRows)
		if done != nil {
			done(ok)
		}
	}, b.FallInterval)
}

func (b *Block) copy() *Block {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}
