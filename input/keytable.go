package input

import (
	"maps"
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// KeyTable maps terminal keys to vehicle actions
type KeyTable struct {
	// Special keys (arrows, space-like named keys)
	Keys map[tcell.Key]Action

	// Printable rune bindings, matched lower-case
	Runes map[rune]Action
}

// DefaultKeyTable returns the default bindings: arrows and WASD drive, space brakes, h honks
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		Keys: map[tcell.Key]Action{
			tcell.KeyUp:    ActionThrottle,
			tcell.KeyDown:  ActionReverse,
			tcell.KeyLeft:  ActionLeft,
			tcell.KeyRight: ActionRight,
		},
		Runes: map[rune]Action{
			'w': ActionThrottle,
			's': ActionReverse,
			'a': ActionLeft,
			'd': ActionRight,
			' ': ActionHandbrake,
			'h': ActionHorn,
		},
	}
}

// Clone returns a deep copy
func (kt *KeyTable) Clone() *KeyTable {
	return &KeyTable{
		Keys:  maps.Clone(kt.Keys),
		Runes: maps.Clone(kt.Runes),
	}
}

// Lookup resolves a key event to its bound action
func (kt *KeyTable) Lookup(ev *tcell.EventKey) (Action, bool) {
	if ev == nil {
		return 0, false
	}
	if ev.Key() == tcell.KeyRune {
		a, ok := kt.Runes[unicode.ToLower(ev.Rune())]
		return a, ok
	}
	a, ok := kt.Keys[ev.Key()]
	return a, ok
}
