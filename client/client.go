package client

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"blockfall/clock"
	"blockfall/game"

	"github.com/eiannone/keyboard"
	"google.golang.org/grpc"
)

type clientState int

const (
	lobby clientState = iota
	waiting
	playing
)

type state struct {
	current clientState
	mu      sync.Mutex
}

func (s *state) get() clientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *state) set(c clientState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
}

type renderer interface {
	boards(...game.Snapshot)
	lobby(message)
}

type session interface {
	reset()
	stop()
}

type Client struct {
	render  renderer
	options *Options
	logger  *slog.Logger
	kbCh    <-chan keyboard.KeyEvent
	closeKB func() error
	keys    *game.KeyHub
	state   *state

	mu      sync.Mutex
	session session
	cancel  context.CancelFunc
}

type Options struct {
	Config  game.Config
	Address string
	Name    string

	// Clock drives local sessions. Each session gets its own real clock when
	// nil.
	Clock       clock.Clock
	Rand        *rand.Rand
	DialOptions []grpc.DialOption
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	o.Config = o.Config.Normalize()
	r, err := newRender(l, o.Config, o.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	return &Client{
		render:  r,
		options: o,
		logger:  l,
		kbCh:    kb,
		closeKB: keyboard.Close,
		keys:    game.NewKeyHub(),
		state:   &state{current: lobby},
	}, nil
}

// Start shows the lobby and blocks until the player quits.
func (c *Client) Start() {
	c.render.lobby(defaultLobby())
	var wg sync.WaitGroup
	wg.Add(1)
	go c.listenKB(&wg)
	wg.Wait()

	c.endSession(nil, nil)
	if c.closeKB != nil {
		if err := c.closeKB(); err != nil {
			c.logger.Error("unable to close keyboard", slog.String("error", err.Error()))
		}
	}
}

func (c *Client) listenKB(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		quit := event.Rune == 'q' || event.Key == keyboard.KeyEsc
		switch c.state.get() {
		case lobby:
			switch {
			case event.Rune == 'p':
				c.playLocal()
			case event.Rune == 'o':
				c.playRemote()
			case quit:
				return
			}
		case waiting:
			if event.Rune == 'c' || quit {
				c.endSession(nil, defaultLobby())
			}
		case playing:
			switch {
			case event.Rune == 'r':
				if s := c.current(); s != nil {
					s.reset()
				}
			case quit:
				c.endSession(nil, defaultLobby())
			default:
				c.keys.Dispatch(keyEvent(event))
			}
		}
	}
}

func (c *Client) playLocal() {
	s, err := newLocalSession(c.options, c.keys, c.render.boards, c.logger)
	if err != nil {
		c.logger.Error("unable to start local session", slog.String("error", err.Error()))
		c.render.lobby(errorMessage())
		return
	}
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	c.state.set(playing)
	s.start()
}

func (c *Client) playRemote() {
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()
	c.state.set(waiting)
	c.render.lobby(waitingServer())
	go c.listenRemote(ctx)
}

func (c *Client) listenRemote(ctx context.Context) {
	s, err := dialRemote(ctx, c.options, c.keys, c.logger)
	if err != nil {
		if ctx.Err() != nil {
			c.logger.Debug("remote session cancelled while connecting")
			return
		}
		c.logger.Error("unable to start remote session", slog.String("error", err.Error()))
		c.endSession(nil, errorMessage())
		return
	}

	// the player may have cancelled while we were connecting.
	c.mu.Lock()
	if ctx.Err() != nil {
		c.mu.Unlock()
		s.stop()
		return
	}
	c.session = s
	c.mu.Unlock()
	c.state.set(playing)

	msg := boardClosed()
	if err := s.watch(c.render.boards); err != nil {
		c.logger.Error("remote session ended", slog.String("error", err.Error()))
		msg = errorMessage()
	}
	c.endSession(s, msg)
}

func (c *Client) current() session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// endSession stops the running session and goes back to the lobby showing m.
// With a non-nil s it only acts if s is still the running session.
func (c *Client) endSession(s session, m message) {
	c.mu.Lock()
	if s != nil && c.session != s {
		c.mu.Unlock()
		return
	}
	cur, cancel := c.session, c.cancel
	c.session, c.cancel = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if cur != nil {
		cur.stop()
	}
	c.state.set(lobby)
	if m != nil {
		c.render.lobby(m)
	}
}
