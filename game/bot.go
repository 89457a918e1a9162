package game

import (
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"

	"blockfall/clock"
)

// Bot steers a bot-controlled board. Every MoveInterval it takes one step
// towards a target column, and it picks a new target whenever the block
// reaches a new row.
type Bot struct {
	board  *Board
	rng    *rand.Rand
	logger *slog.Logger

	mu     sync.Mutex
	id     clock.EventID
	row    int
	target int
}

// NewBot returns a bot for b. A nil rng gets a randomly seeded one.
func NewBot(b *Board, rng *rand.Rand) (*Bot, error) {
	if b.Controls().Type != ControlBot {
		return nil, ErrNotBot
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Bot{board: b, rng: rng, logger: b.logger, row: -1}, nil
}

func (bt *Bot) Start() {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	if bt.id != 0 {
		return
	}
	bt.id = bt.board.Clock().ScheduleRepeating(bt.step, bt.board.Config().MoveInterval)
}

func (bt *Bot) Stop() {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	bt.board.Clock().Cancel(bt.id)
	bt.id = 0
}

// Target returns the column the bot is currently heading for.
func (bt *Bot) Target() int {
	bt.mu.Lock()
	defer bt.mu.Unlock()
	return bt.target
}

func (bt *Bot) step() {
	s := bt.board.Read()
	if s.State == Stopped {
		bt.Stop()
		return
	}

	bt.mu.Lock()
	if s.Row != bt.row {
		bt.row = s.Row
		bt.target = bt.rng.IntN(s.Cols)
	}
	target := bt.target
	bt.mu.Unlock()

	var d Direction
	switch {
	case s.Col < target:
		d = Right
	case s.Col > target:
		d = Left
	default:
		return
	}
	if err := bt.board.Controls().BotMove(d); err != nil && !errors.Is(err, ErrInvalidDirection) {
		bt.logger.Error("bot move failed", slog.String("error", err.Error()))
	}
}
