package input

import (
	"fmt"
	"strings"
)

// Action is one of the fixed vehicle control actions
type Action uint8

const (
	ActionThrottle Action = iota
	ActionReverse
	ActionLeft
	ActionRight
	ActionHandbrake
	ActionHorn

	ActionCount
)

// actionNone unbinds a key in config overrides
const actionNone Action = ActionCount

var actionNames = [ActionCount]string{
	ActionThrottle:  "throttle",
	ActionReverse:   "reverse",
	ActionLeft:      "left",
	ActionRight:     "right",
	ActionHandbrake: "handbrake",
	ActionHorn:      "horn",
}

// actionRegistry maps canonical action names to actions for the keymap loader
var actionRegistry map[string]Action

func init() {
	actionRegistry = make(map[string]Action, ActionCount+1)
	for a, name := range actionNames {
		actionRegistry[name] = Action(a)
	}
	actionRegistry["none"] = actionNone
}

func (a Action) String() string {
	if a < ActionCount {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", uint8(a))
}

// ParseAction resolves a canonical action name, case-insensitive
func ParseAction(name string) (Action, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	a, ok := actionRegistry[name]
	if !ok || a == actionNone {
		return 0, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	return a, nil
}

// ActionNames returns canonical names in action order
func ActionNames() []string {
	out := make([]string, ActionCount)
	copy(out, actionNames[:])
	return out
}
