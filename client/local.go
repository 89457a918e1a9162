package client

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"blockfall/clock"
	"blockfall/game"
)

// refreshPeriod redraws the boards between state changes so the fall bars
// move smoothly.
const refreshPeriod = 50 * time.Millisecond

// localSession is a keyboard-driven board next to a bot board, both on one
// clock.
type localSession struct {
	clock    clock.Clock
	ownClock *clock.Real
	player   *game.Board
	bot      *game.Board
	agent    *game.Bot
	out      func(...game.Snapshot)

	mu      sync.Mutex
	stopped bool
	refresh clock.EventID
}

func newLocalSession(o *Options, keys game.EventTarget, out func(...game.Snapshot), l *slog.Logger) (*localSession, error) {
	s := &localSession{clock: o.Clock, out: out}
	if s.clock == nil {
		s.ownClock = clock.NewReal()
		s.clock = s.ownClock
	}
	r := game.RendererFunc(func(game.Snapshot) { s.draw() })

	player, err := game.NewPlayer(game.KindPlayer, o.Name)
	if err != nil {
		return nil, s.abort(err)
	}
	s.player, err = game.New(o.Config, game.ControlPlayer,
		game.WithClock(s.clock),
		game.WithPlayer(player),
		game.WithEventTarget(keys),
		game.WithRenderer(r),
		game.WithLogger(l.With(slog.String("board", "player"))),
	)
	if err != nil {
		return nil, s.abort(fmt.Errorf("failed to create player board: %w", err))
	}

	bot, err := game.NewPlayer(game.KindBot, "bot")
	if err != nil {
		return nil, s.abort(err)
	}
	rng := o.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	botRng := rand.New(rand.NewPCG(rng.Uint64(), rng.Uint64()))
	s.bot, err = game.New(o.Config, game.ControlBot,
		game.WithClock(s.clock),
		game.WithPlayer(bot),
		game.WithRenderer(r),
		game.WithSpawn(game.RandomSpawn(rng)),
		game.WithLogger(l.With(slog.String("board", "bot"))),
	)
	if err != nil {
		return nil, s.abort(fmt.Errorf("failed to create bot board: %w", err))
	}
	// the bot and the spawn run on different goroutines, so they don't share
	// a source.
	if s.agent, err = game.NewBot(s.bot, botRng); err != nil {
		return nil, s.abort(fmt.Errorf("failed to create bot: %w", err))
	}
	return s, nil
}

func (s *localSession) abort(err error) error {
	if s.player != nil {
		s.player.Stop()
	}
	if s.ownClock != nil {
		s.ownClock.Close()
	}
	return err
}

func (s *localSession) start() {
	s.player.Start()
	s.bot.Start()
	s.agent.Start()
	s.mu.Lock()
	s.refresh = s.clock.ScheduleRepeating(s.draw, refreshPeriod)
	s.mu.Unlock()
}

// draw hands both boards to the output. Nothing is drawn once the session
// has stopped, so a late tick can't paint over the lobby.
func (s *localSession) draw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.out(s.player.Read(), s.bot.Read())
}

func (s *localSession) reset() {
	s.player.Reset()
	s.bot.Reset()
}

func (s *localSession) stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.clock.Cancel(s.refresh)
	s.mu.Unlock()

	s.agent.Stop()
	s.player.Stop()
	s.bot.Stop()
	if s.ownClock != nil {
		s.ownClock.Close()
	}
}
