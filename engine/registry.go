package engine

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/raycar/vehicle"
)

var (
	ErrUnknownHandle = errors.New("engine: unknown vehicle handle")
	ErrStaleHandle   = errors.New("engine: stale vehicle handle")
)

// Handle names a spawned vehicle; it goes stale once the vehicle is removed
// The zero Handle is never issued
type Handle struct {
	index uint32
	gen   uint32
}

func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string { return fmt.Sprintf("vehicle#%d.%d", h.index, h.gen) }

type slot struct {
	gen  uint32
	ctrl *vehicle.Controller
}

// registry is a generational slot table; freed slots are reused with a bumped generation
type registry struct {
	slots []slot
	free  []uint32
	live  int
}

func (r *registry) insert(c *vehicle.Controller) Handle {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{})
	}
	s := &r.slots[idx]
	s.gen++
	s.ctrl = c
	r.live++
	return Handle{index: idx, gen: s.gen}
}

func (r *registry) get(h Handle) (*vehicle.Controller, error) {
	if h.IsZero() || int(h.index) >= len(r.slots) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	s := &r.slots[h.index]
	if s.gen != h.gen || s.ctrl == nil {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, h)
	}
	return s.ctrl, nil
}

func (r *registry) remove(h Handle) (*vehicle.Controller, error) {
	c, err := r.get(h)
	if err != nil {
		return nil, err
	}
	r.slots[h.index].ctrl = nil
	r.free = append(r.free, h.index)
	r.live--
	return c, nil
}

// each visits live vehicles in slot order; fn may not insert or remove
func (r *registry) each(fn func(Handle, *vehicle.Controller)) {
	for i := range r.slots {
		s := &r.slots[i]
		if s.ctrl != nil {
			fn(Handle{index: uint32(i), gen: s.gen}, s.ctrl)
		}
	}
}
