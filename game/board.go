// Package game contains the logic of the falling block: the block itself,
// the controls that steer it and the board that drives it against a clock.
package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"blockfall/clock"
)

type State int

const (
	Idle    State = iota // built, not ticking yet
	Running              // fall loop active
	Sliding              // a move is in progress, new moves are rejected
	Paused
	Stopped // terminal
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Sliding:
		return "sliding"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Snapshot is a copy of the board state that's safe to hand to renderers.
type Snapshot struct {
	Rows, Cols   int
	Row, Col     int
	Color        string
	Name         string
	State        State
	Sliding      bool
	Pending      Direction // last accepted move while it slides, a rendering hint
	Landed       bool      // the block sits on the last row
	FallInterval time.Duration
	MoveInterval time.Duration
	Remaining    time.Duration // until the next fall
	Progress     float64       // fraction of the fall interval elapsed, 0 to 1
}

type Renderer interface {
	Render(Snapshot)
}

type RendererFunc func(Snapshot)

func (f RendererFunc) Render(s Snapshot) { f(s) }

type nopRenderer struct{}

func (nopRenderer) Render(Snapshot) {}

type Option func(*Board)

// WithClock sets the clock the board runs on. Without it the board creates
// and owns a clock.Real, which is closed on Stop.
func WithClock(c clock.Clock) Option { return func(b *Board) { b.clock = c } }

func WithPlayer(p Player) Option { return func(b *Board) { b.player = p } }

// WithEventTarget sets where player controls listen for keys.
func WithEventTarget(t EventTarget) Option { return func(b *Board) { b.target = t } }

func WithRenderer(r Renderer) Option { return func(b *Board) { b.renderer = r } }

func WithLogger(l *slog.Logger) Option { return func(b *Board) { b.logger = l } }

// WithSpawn sets how the spawn column is picked for a board of cols columns.
// Out of range results are clamped.
func WithSpawn(fn func(cols int) int) Option { return func(b *Board) { b.spawn = fn } }

// WithAutoStart starts the fall loop as part of New.
func WithAutoStart() Option { return func(b *Board) { b.autoStart = true } }

// CenterSpawn spawns blocks in the middle column.
func CenterSpawn(cols int) int { return cols / 2 }

func RandomSpawn(rng *rand.Rand) func(int) int {
	return func(cols int) int { return rng.IntN(cols) }
}

// Board drives a single block against a clock.
type Board struct {
	cfg       Config
	clock     clock.Clock
	ownClock  *clock.Real
	player    Player
	target    EventTarget
	controls  *Controls
	renderer  Renderer
	logger    *slog.Logger
	spawn     func(cols int) int
	autoStart bool

	mu       sync.Mutex
	block    *Block
	state    State
	lastFall time.Duration
	landedAt time.Duration // when the block entered its current cell
	pausedAt time.Duration
	pending  Direction
	pollID   clock.EventID
	fallID   clock.EventID
	slideID  clock.EventID
}

func New(cfg Config, t ControlType, opts ...Option) (*Board, error) {
	b := &Board{
		cfg:      cfg.Normalize(),
		renderer: nopRenderer{},
		logger:   slog.New(slog.DiscardHandler),
		spawn:    CenterSpawn,
	}
	for _, o := range opts {
		o(b)
	}

	switch {
	case b.player.Kind == "":
		kind := KindPlayer
		if t == ControlBot {
			kind = KindBot
		}
		p, err := NewPlayer(kind, b.player.Name)
		if err != nil {
			return nil, err
		}
		b.player = p
	case b.player.Color == "":
		c, err := DefaultColor(b.player.Kind)
		if err != nil {
			return nil, fmt.Errorf("failed to set player color: %w", err)
		}
		b.player.Color = c
	}

	controls, err := NewControls(t, b.onMove, b.target)
	if err != nil {
		return nil, fmt.Errorf("failed to create controls: %w", err)
	}
	b.controls = controls

	if b.clock == nil {
		r := clock.NewReal()
		b.clock, b.ownClock = r, r
	}
	b.block = b.newBlock()
	b.logger = b.logger.With(slog.String("player", string(b.player.Kind)))

	if b.autoStart {
		b.Start()
	}
	return b, nil
}

func (b *Board) newBlock() *Block {
	col := min(max(b.spawn(b.cfg.Cols), 0), b.cfg.Cols-1)
	return SpawnAtTop(col, b.player,
		WithFallInterval(b.cfg.FallInterval),
		WithMoveInterval(b.cfg.MoveInterval),
	)
}

func (b *Board) onMove(d Direction) { b.HandleMove(d) }

// Start begins the fall loop. It only has an effect on an idle board.
func (b *Board) Start() {
	b.mu.Lock()
	if b.state != Idle {
		b.mu.Unlock()
		return
	}
	now := b.clock.Now()
	b.state = Running
	b.lastFall, b.landedAt = now, now
	b.pollID = b.clock.ScheduleRepeating(b.poll, b.cfg.TickPeriod)
	b.armFall(now)
	s := b.snapshot(now)
	b.mu.Unlock()

	b.logger.Info("board started",
		slog.Int("rows", b.cfg.Rows),
		slog.Int("cols", b.cfg.Cols),
		slog.Duration("fall", s.FallInterval),
		slog.String("policy", b.cfg.MovePolicy.String()),
	)
	b.renderer.Render(s)
}

// poll is the fall loop body. It runs on every tick and on the fall
// deadline.
func (b *Board) poll() {
	b.mu.Lock()
	if b.state != Running && b.state != Sliding {
		b.mu.Unlock()
		return
	}
	now := b.clock.Now()
	if !b.fall(now) {
		b.mu.Unlock()
		return
	}
	s := b.snapshot(now)
	b.mu.Unlock()
	b.renderer.Render(s)
}

// fall moves the block down if its interval has elapsed. A fall that comes
// due while sliding waits for the slide to end. Callers hold b.mu.
func (b *Board) fall(now time.Duration) bool {
	if b.block.Row >= b.cfg.Rows-1 || now-b.lastFall < b.block.FallInterval {
		return false
	}
	if b.state == Sliding {
		return false
	}
	if !b.block.MoveDown(b.cfg.Rows) {
		return false
	}
	b.lastFall, b.landedAt = now, now
	b.armFall(now)
	if b.block.Row == b.cfg.Rows-1 {
		b.logger.Debug("block landed", slog.Int("col", b.block.Col))
	}
	return true
}

// armFall schedules a poll for the exact moment the next fall is due, so
// falls don't drift to the next tick boundary. Callers hold b.mu.
func (b *Board) armFall(now time.Duration) {
	b.clock.Cancel(b.fallID)
	b.fallID = 0
	if b.block.Row >= b.cfg.Rows-1 {
		return
	}
	b.fallID = b.clock.ScheduleOnce(b.poll, max(0, b.lastFall+b.block.FallInterval-now))
}

// HandleMove applies a lateral move intent. It reports whether the block
// moved. Moves are ignored unless the board is running, and with
// MoveWindowed also once the move window has closed.
// A move does not reset the fall countdown.
func (b *Board) HandleMove(d Direction) bool {
	if !d.Valid() {
		b.logger.Warn("ignoring move", slog.String("direction", string(d)))
		return false
	}

	b.mu.Lock()
	if b.state != Running {
		b.mu.Unlock()
		return false
	}
	now := b.clock.Now()
	if b.cfg.MovePolicy == MoveWindowed && now-b.landedAt > b.block.MoveInterval {
		b.mu.Unlock()
		return false
	}
	var ok bool
	switch d {
	case Left:
		ok = b.block.MoveLeft(0)
	case Right:
		ok = b.block.MoveRight(b.cfg.Cols)
	}
	if !ok {
		b.mu.Unlock()
		return false
	}
	b.pending = d
	b.state = Sliding
	b.slideID = b.clock.ScheduleOnce(b.endSlide, b.cfg.SlideDuration)
	s := b.snapshot(now)
	b.mu.Unlock()

	b.renderer.Render(s)
	return true
}

func (b *Board) endSlide() {
	b.mu.Lock()
	if b.state != Sliding {
		b.mu.Unlock()
		return
	}
	now := b.clock.Now()
	b.state = Running
	b.pending = ""
	b.slideID = 0
	// catch up on a fall that came due during the slide.
	b.fall(now)
	s := b.snapshot(now)
	b.mu.Unlock()
	b.renderer.Render(s)
}

// Pause freezes the fall countdown. Any slide in progress is dropped.
func (b *Board) Pause() {
	b.mu.Lock()
	if b.state != Running && b.state != Sliding {
		b.mu.Unlock()
		return
	}
	b.cancelAll()
	b.pending = ""
	b.pausedAt = b.clock.Now()
	b.state = Paused
	s := b.snapshot(b.pausedAt)
	b.mu.Unlock()

	b.logger.Debug("board paused")
	b.renderer.Render(s)
}

// Resume continues a paused board where its countdown left off.
func (b *Board) Resume() {
	b.mu.Lock()
	if b.state != Paused {
		b.mu.Unlock()
		return
	}
	now := b.clock.Now()
	shift := now - b.pausedAt
	b.lastFall += shift
	b.landedAt += shift
	b.state = Running
	b.pollID = b.clock.ScheduleRepeating(b.poll, b.cfg.TickPeriod)
	b.armFall(now)
	s := b.snapshot(now)
	b.mu.Unlock()

	b.logger.Debug("board resumed")
	b.renderer.Render(s)
}

// Reset discards the block and spawns a new one at the top. The fall
// countdown starts over.
func (b *Board) Reset() {
	b.mu.Lock()
	if b.state == Stopped {
		b.mu.Unlock()
		return
	}
	b.clock.Cancel(b.slideID)
	b.slideID = 0
	b.pending = ""
	if b.state == Sliding {
		b.state = Running
	}
	b.block = b.newBlock()
	now := b.clock.Now()
	base := now
	if b.state == Paused {
		base = b.pausedAt
	}
	b.lastFall, b.landedAt = base, base
	if b.state == Running {
		b.armFall(now)
	}
	s := b.snapshot(now)
	b.mu.Unlock()

	b.logger.Debug("board reset", slog.Int("col", s.Col))
	b.renderer.Render(s)
}

// Stop tears the board down: every scheduled event is cancelled and the
// controls are detached. A stopped board can't be restarted.
func (b *Board) Stop() {
	b.mu.Lock()
	if b.state == Stopped {
		b.mu.Unlock()
		return
	}
	b.cancelAll()
	b.pending = ""
	b.state = Stopped
	s := b.snapshot(b.clock.Now())
	b.mu.Unlock()

	b.controls.Dispose()
	if b.ownClock != nil {
		b.ownClock.Close()
	}
	b.logger.Info("board stopped")
	b.renderer.Render(s)
}

// cancelAll drops every event the board scheduled. Callers hold b.mu.
func (b *Board) cancelAll() {
	for _, id := range []*clock.EventID{&b.pollID, &b.fallID, &b.slideID} {
		b.clock.Cancel(*id)
		*id = 0
	}
}

// Read returns a snapshot of the current board state.
func (b *Board) Read() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshot(b.clock.Now())
}

func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Block returns a copy of the current block.
func (b *Board) Block() *Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.block.copy()
}

func (b *Board) Controls() *Controls { return b.controls }

func (b *Board) Config() Config { return b.cfg }

func (b *Board) Clock() clock.Clock { return b.clock }

func (b *Board) Player() Player { return b.player }

// TimeUntilFall returns how long until the block falls again.
func (b *Board) TimeUntilFall() time.Duration { return b.Read().Remaining }

// Progress returns the fraction of the fall interval already elapsed.
func (b *Board) Progress() float64 { return b.Read().Progress }

// snapshot copies the state out. Callers hold b.mu.
func (b *Board) snapshot(now time.Duration) Snapshot {
	var elapsed time.Duration
	switch b.state {
	case Running, Sliding:
		elapsed = now - b.lastFall
	case Paused:
		elapsed = b.pausedAt - b.lastFall
	}
	remaining, progress := fallProgress(elapsed, b.block.FallInterval)
	return Snapshot{
		Rows:         b.cfg.Rows,
		Cols:         b.cfg.Cols,
		Row:          b.block.Row,
		Col:          b.block.Col,
		Color:        b.block.Color,
		Name:         b.player.Name,
		State:        b.state,
		Sliding:      b.state == Sliding,
		Pending:      b.pending,
		Landed:       b.block.Row >= b.cfg.Rows-1,
		FallInterval: b.block.FallInterval,
		MoveInterval: b.block.MoveInterval,
		Remaining:    remaining,
		Progress:     progress,
	}
}

// fallProgress returns the time left until the next fall and the fraction of
// the interval elapsed. A non-positive interval always reports as complete.
func fallProgress(elapsed, interval time.Duration) (time.Duration, float64) {
	if interval <= 0 {
		return 0, 1
	}
	remaining := max(0, interval-elapsed)
	p := float64(elapsed) / float64(interval)
	return remaining, min(max(p, 0), 1)
}
