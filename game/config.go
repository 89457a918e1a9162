package game

import (
	"math"
	"time"
)

const (
	DefaultRows          = 20
	DefaultCols          = 10
	DefaultFallInterval  = 250 * time.Millisecond
	DefaultMoveInterval  = 100 * time.Millisecond
	DefaultSlideDuration = 50 * time.Millisecond
	// DefaultTickPeriod is roughly one animation frame.
	DefaultTickPeriod = 16 * time.Millisecond
	DefaultBlockColor = "#ef4444"

	// MinInterval keeps intervals above a frame so nothing is scheduled
	// faster than the board polls.
	MinInterval  = 16 * time.Millisecond
	MaxInterval  = 10 * time.Minute
	MaxDimension = 1000
)

type MovePolicy int

const (
	// MoveFree accepts a lateral move whenever the block is not sliding.
	MoveFree MovePolicy = iota
	// MoveWindowed additionally requires the move to land within
	// MoveInterval of the block entering its current cell.
	MoveWindowed
)

func (p MovePolicy) String() string {
	if p == MoveWindowed {
		return "windowed"
	}
	return "free"
}

// Config is the board configuration. Invalid fields are replaced by their
// defaults when a Board is built, never reported.
type Config struct {
	Rows, Cols    int
	FallInterval  time.Duration // time between automatic descents
	MoveInterval  time.Duration // width of the post-landing move window
	SlideDuration time.Duration // how long a move blocks the next one
	TickPeriod    time.Duration
	MovePolicy    MovePolicy
}

func DefaultConfig() Config {
	return Config{
		Rows:          DefaultRows,
		Cols:          DefaultCols,
		FallInterval:  DefaultFallInterval,
		MoveInterval:  DefaultMoveInterval,
		SlideDuration: DefaultSlideDuration,
		TickPeriod:    DefaultTickPeriod,
		MovePolicy:    MoveFree,
	}
}

// Normalize returns c with every invalid field replaced by its default.
func (c Config) Normalize() Config {
	c.Rows = normDimension(c.Rows, DefaultRows)
	c.Cols = normDimension(c.Cols, DefaultCols)
	c.FallInterval = normInterval(c.FallInterval, DefaultFallInterval)
	c.MoveInterval = normInterval(c.MoveInterval, DefaultMoveInterval)
	c.SlideDuration = normInterval(c.SlideDuration, DefaultSlideDuration)
	if c.TickPeriod <= 0 || c.TickPeriod > time.Second {
		c.TickPeriod = DefaultTickPeriod
	}
	if c.MovePolicy != MoveWindowed {
		c.MovePolicy = MoveFree
	}
	return c
}

func normDimension(n, def int) int {
	if n <= 0 || n > MaxDimension {
		return def
	}
	return n
}

// normInterval falls back to def for non-positive or absurd values, rounds to
// whole milliseconds and clamps to MinInterval.
func normInterval(d, def time.Duration) time.Duration {
	if d <= 0 || d > MaxInterval {
		return def
	}
	d = d.Round(time.Millisecond)
	if d < MinInterval {
		return MinInterval
	}
	return d
}

// Millis converts a float millisecond value, as it arrives from flags or the
// wire, into a Duration. Negative, non-finite or oversized input yields zero
// so it normalizes to a default.
func Millis(ms float64) time.Duration {
	if math.IsNaN(ms) || math.IsInf(ms, 0) || ms < 0 || ms > float64(MaxInterval/time.Millisecond) {
		return 0
	}
	return time.Duration(ms * float64(time.Millisecond))
}
