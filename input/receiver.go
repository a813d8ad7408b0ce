package input

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
)

// DefaultHoldTimeout bridges the gap between terminal key-repeat events
const DefaultHoldTimeout = 120 * time.Millisecond

// Receiver turns terminal key events into held action state
// Terminals report presses and repeats but never releases, so an action stays
// pressed until no event for it arrives within the hold timeout
// HandleKey runs on the event goroutine; Poll runs on the simulation goroutine
type Receiver struct {
	mu       sync.Mutex
	table    *KeyTable
	timeout  time.Duration
	state    State
	lastSeen [ActionCount]time.Time
}

// NewReceiver creates a receiver; nil table uses the defaults, non-positive timeout uses DefaultHoldTimeout
func NewReceiver(table *KeyTable, timeout time.Duration) *Receiver {
	if table == nil {
		table = DefaultKeyTable()
	}
	if timeout <= 0 {
		timeout = DefaultHoldTimeout
	}
	return &Receiver{table: table, timeout: timeout}
}

// HandleKey presses the bound action and refreshes its hold; returns false for unbound keys
func (r *Receiver) HandleKey(ev *tcell.EventKey, now time.Time) bool {
	a, ok := r.table.Lookup(ev)
	if !ok {
		return false
	}
	r.mu.Lock()
	r.state.Press(a)
	r.lastSeen[a] = now
	r.mu.Unlock()
	return true
}

// Poll expires stale holds and returns the state with edges accumulated since the last poll
// Edges are handed over exactly once
func (r *Receiver) Poll(now time.Time) State {
	r.mu.Lock()
	defer r.mu.Unlock()

	for a := Action(0); a < ActionCount; a++ {
		if r.state.pressed[a] && now.Sub(r.lastSeen[a]) > r.timeout {
			r.state.Release(a)
		}
	}
	snap := r.state
	r.state.ClearEdges()
	return snap
}

// Reset releases everything without reporting edges
func (r *Receiver) Reset() {
	r.mu.Lock()
	r.state = State{}
	r.lastSeen = [ActionCount]time.Time{}
	r.mu.Unlock()
}
