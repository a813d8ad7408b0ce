package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/raycar/vmath"
)

var ErrUnknownBody = errors.New("physics: unknown body")

// HookID identifies a registered step callback
type HookID uint64

// StepFunc is invoked once per fixed step with the step length in seconds
type StepFunc func(dt float64)

type hook struct {
	id      HookID
	fn      StepFunc
	removed bool
}

// World advances rigid bodies on a fixed step
// Step order: pre-step hooks → velocity integration → position integration →
// ground contact → post-step hooks. Hooks run in registration order
// Not safe for concurrent use; the scheduler owns the calling goroutine
type World struct {
	gravity mgl64.Vec3
	ground  Ground

	bodies []*Body
	nextID BodyID

	pre      []hook
	post     []hook
	nextHook HookID
	stepping bool

	steps uint64
}

// NewWorld creates a world with gravity along Y and the given ground
func NewWorld(gravityY float64, ground Ground) *World {
	if ground == nil {
		ground = NoGround{}
	}
	return &World{
		gravity: mgl64.Vec3{0, gravityY, 0},
		ground:  ground,
		nextID:  1,
	}
}

func (w *World) Gravity() mgl64.Vec3 { return w.gravity }
func (w *World) Ground() Ground      { return w.ground }
func (w *World) Steps() uint64       { return w.steps }
func (w *World) BodyCount() int      { return len(w.bodies) }

// AddBody assigns an ID and includes the body in integration
func (w *World) AddBody(b *Body) BodyID {
	b.id = w.nextID
	w.nextID++
	w.bodies = append(w.bodies, b)
	return b.id
}

// RemoveBody excludes the body from integration
func (w *World) RemoveBody(id BodyID) error {
	for i, b := range w.bodies {
		if b.id == id {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return nil
		}
	}
	return ErrUnknownBody
}

// HasBody reports whether id is currently simulated
func (w *World) HasBody(id BodyID) bool {
	for _, b := range w.bodies {
		if b.id == id {
			return true
		}
	}
	return false
}

// Raycast probes the ground along unit dir
func (w *World) Raycast(from, dir mgl64.Vec3, maxDist float64) (vmath.RayHit, bool) {
	return w.ground.Raycast(from, dir, maxDist)
}

// AddPreStep registers fn to run before velocity integration of every step
func (w *World) AddPreStep(fn StepFunc) HookID {
	w.nextHook++
	w.pre = append(w.pre, hook{id: w.nextHook, fn: fn})
	return w.nextHook
}

// AddPostStep registers fn to run after integration of every step
func (w *World) AddPostStep(fn StepFunc) HookID {
	w.nextHook++
	w.post = append(w.post, hook{id: w.nextHook, fn: fn})
	return w.nextHook
}

// RemoveHook unregisters a pre- or post-step hook
// Takes effect immediately: a hook removed mid-step is not invoked again
func (w *World) RemoveHook(id HookID) bool {
	if markRemoved(w.pre, id) || markRemoved(w.post, id) {
		if !w.stepping {
			w.compactHooks()
		}
		return true
	}
	return false
}

// HookCount returns the number of live hooks
func (w *World) HookCount() int {
	n := 0
	for _, h := range w.pre {
		if !h.removed {
			n++
		}
	}
	for _, h := range w.post {
		if !h.removed {
			n++
		}
	}
	return n
}

// Step advances the simulation by exactly dt
func (w *World) Step(dt float64) {
	w.stepping = true
	runHooks(&w.pre, dt)

	for _, b := range w.bodies {
		b.integrateVelocity(dt, w.gravity)
	}
	for _, b := range w.bodies {
		b.integratePosition(dt)
		resolveGround(b, w.ground)
		b.clearForces()
	}
	w.steps++

	runHooks(&w.post, dt)
	w.stepping = false
	w.compactHooks()
}

func runHooks(hooks *[]hook, dt float64) {
	// Hooks registered during the step run from the next step
	n := len(*hooks)
	for i := 0; i < n; i++ {
		h := (*hooks)[i]
		if !h.removed {
			h.fn(dt)
		}
	}
}

func markRemoved(hooks []hook, id HookID) bool {
	for i := range hooks {
		if hooks[i].id == id && !hooks[i].removed {
			hooks[i].removed = true
			return true
		}
	}
	return false
}

func (w *World) compactHooks() {
	w.pre = compact(w.pre)
	w.post = compact(w.post)
}

func compact(hooks []hook) []hook {
	out := hooks[:0]
	for _, h := range hooks {
		if !h.removed {
			out = append(out, h)
		}
	}
	return out
}
