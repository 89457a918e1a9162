package game

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

type Direction string

const (
	Left  Direction = "left"  // Moves the block one column to the left.
	Right Direction = "right" // Moves the block one column to the right.
)

func (d Direction) Valid() bool { return d == Left || d == Right }

type ControlType string

const (
	ControlPlayer ControlType = "player"
	ControlBot    ControlType = "bot"
)

var (
	ErrNoEventTarget    = errors.New("player controls require an event target")
	ErrNotBot           = errors.New("bot move on non-bot controls")
	ErrInvalidDirection = errors.New("invalid direction")
)

type Key int

const (
	KeyNone Key = iota
	KeyArrowLeft
	KeyArrowRight
	KeyArrowUp
	KeyArrowDown
	KeySpace
	KeyEsc
	KeyCtrlC
)

type KeyEvent struct {
	Key  Key
	Rune rune
}

// EventTarget is anything key events can be listened on. The returned func
// removes the listener.
type EventTarget interface {
	AddKeyListener(func(KeyEvent)) (remove func())
}

// Controls turns key presses or programmatic calls into move intents.
type Controls struct {
	Type ControlType

	onMove func(Direction)
	remove func()
	once   sync.Once
}

func NewControls(t ControlType, onMove func(Direction), target EventTarget) (*Controls, error) {
	c := &Controls{Type: t, onMove: onMove}
	switch t {
	case ControlPlayer:
		if target == nil {
			return nil, ErrNoEventTarget
		}
		c.remove = target.AddKeyListener(c.keyDown)
	case ControlBot:
		// bots call BotMove.
	default:
		return nil, fmt.Errorf("unknown control type %q", t)
	}
	return c, nil
}

func (c *Controls) keyDown(e KeyEvent) {
	switch {
	case e.Key == KeyArrowLeft || e.Rune == 'a':
		c.onMove(Left)
	case e.Key == KeyArrowRight || e.Rune == 'd':
		c.onMove(Right)
	}
}

// BotMove issues a move on behalf of an automated agent.
func (c *Controls) BotMove(d Direction) error {
	if c.Type != ControlBot {
		return ErrNotBot
	}
	if !d.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, d)
	}
	c.onMove(d)
	return nil
}

// Dispose detaches the controls from their event target.
func (c *Controls) Dispose() {
	c.once.Do(func() {
		if c.remove != nil {
			c.remove()
		}
	})
}

// KeyHub is an in-memory EventTarget. Dispatch delivers an event to every
// current listener.
type KeyHub struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(KeyEvent)
}

func NewKeyHub() *KeyHub {
	return &KeyHub{listeners: make(map[int]func(KeyEvent))}
}

func (h *KeyHub) AddKeyListener(fn func(KeyEvent)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	id := h.nextID
	h.listeners[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.listeners, id)
	}
}

func (h *KeyHub) Dispatch(e KeyEvent) {
	h.mu.Lock()
	ids := make([]int, 0, len(h.listeners))
	for id := range h.listeners {
		ids = append(ids, id)
	}
	h.mu.Unlock()
	// listeners run without the lock held and in registration order.
	slices.Sort(ids)
	for _, id := range ids {
		h.mu.Lock()
		fn, ok := h.listeners[id]
		h.mu.Unlock()
		if ok {
			fn(e)
		}
	}
}
