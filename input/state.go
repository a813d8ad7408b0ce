package input

// State is the per-action pressed flag plus one-cycle edge flags
// Edges stay set until ClearEdges; the consumer clears them once observed
type State struct {
	pressed      [ActionCount]bool
	justPressed  [ActionCount]bool
	justReleased [ActionCount]bool
}

// Press marks a held; the edge fires only on the up→down transition
func (s *State) Press(a Action) {
	if a >= ActionCount || s.pressed[a] {
		return
	}
	s.pressed[a] = true
	s.justPressed[a] = true
}

// Release marks a up; the edge fires only on the down→up transition
func (s *State) Release(a Action) {
	if a >= ActionCount || !s.pressed[a] {
		return
	}
	s.pressed[a] = false
	s.justReleased[a] = true
}

// Set presses or releases a
func (s *State) Set(a Action, down bool) {
	if down {
		s.Press(a)
	} else {
		s.Release(a)
	}
}

func (s *State) Pressed(a Action) bool      { return a < ActionCount && s.pressed[a] }
func (s *State) JustPressed(a Action) bool  { return a < ActionCount && s.justPressed[a] }
func (s *State) JustReleased(a Action) bool { return a < ActionCount && s.justReleased[a] }

// AnyPressed reports whether at least one action is held
func (s *State) AnyPressed() bool {
	for _, p := range s.pressed {
		if p {
			return true
		}
	}
	return false
}

// ClearEdges drops justPressed/justReleased after a cycle consumed them
func (s *State) ClearEdges() {
	s.justPressed = [ActionCount]bool{}
	s.justReleased = [ActionCount]bool{}
}

// ReleaseAll releases every held action, firing a justReleased edge for each
func (s *State) ReleaseAll() {
	for a := Action(0); a < ActionCount; a++ {
		s.Release(a)
	}
}

// Merge folds src into s: pressed follows src, edges accumulate until cleared
func (s *State) Merge(src State) {
	s.pressed = src.pressed
	for a := range s.justPressed {
		s.justPressed[a] = s.justPressed[a] || src.justPressed[a]
		s.justReleased[a] = s.justReleased[a] || src.justReleased[a]
	}
}
