package game

import (
	"errors"
	"fmt"
)

type PlayerKind string

const (
	KindPlayer     PlayerKind = "player"
	KindBot        PlayerKind = "bot"
	KindFakePlayer PlayerKind = "fakeplayer"
)

var ErrUnknownPlayerKind = errors.New("unknown player kind")

// Player is whoever drives a board. It only supplies the block color.
type Player struct {
	Kind  PlayerKind
	Color string
	Name  string
}

func DefaultColor(k PlayerKind) (string, error) {
	switch k {
	case KindPlayer:
		return "#f59e42", nil
	case KindBot:
		return "#3b82f6", nil
	case KindFakePlayer:
		return "#10b981", nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlayerKind, k)
}

func NewPlayer(k PlayerKind, name string) (Player, error) {
	c, err := DefaultColor(k)
	if err != nil {
		return Player{}, err
	}
	return Player{Kind: k, Color: c, Name: name}, nil
}

// ControlType returns the kind of controls a player of this kind uses.
func (p Player) ControlType() ControlType {
	if p.Kind == KindPlayer {
		return ControlPlayer
	}
	return ControlBot
}
