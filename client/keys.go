package client

import (
	"blockfall/game"

	"github.com/eiannone/keyboard"
)

var keyMap = map[keyboard.Key]game.Key{
	keyboard.KeyArrowLeft:  game.KeyArrowLeft,
	keyboard.KeyArrowRight: game.KeyArrowRight,
	keyboard.KeyArrowUp:    game.KeyArrowUp,
	keyboard.KeyArrowDown:  game.KeyArrowDown,
	keyboard.KeySpace:      game.KeySpace,
	keyboard.KeyEsc:        game.KeyEsc,
	keyboard.KeyCtrlC:      game.KeyCtrlC,
}

// keyEvent translates a terminal key press into the game's key event.
func keyEvent(e keyboard.KeyEvent) game.KeyEvent {
	k, ok := keyMap[e.Key]
	if !ok {
		k = game.KeyNone
	}
	return game.KeyEvent{Key: k, Rune: e.Rune}
}
