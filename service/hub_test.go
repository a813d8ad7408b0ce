package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trace struct{ events []string }

func (tr *trace) svc(name string, deps ...string) Func {
	return Func{
		ID:        name,
		DependsOn: deps,
		OnStart:   func() error { tr.events = append(tr.events, "start "+name); return nil },
		OnStop:    func() error { tr.events = append(tr.events, "stop "+name); return nil },
	}
}

func TestHubStartsInDependencyOrder(t *testing.T) {
	tr := &trace{}
	h := NewHub(nil)
	require.NoError(t, h.Register(tr.svc("engine", "audio", "telemetry")))
	require.NoError(t, h.Register(tr.svc("audio")))
	require.NoError(t, h.Register(tr.svc("telemetry")))

	require.NoError(t, h.StartAll())
	assert.Equal(t, []string{"audio", "telemetry", "engine"}, h.Started())

	require.NoError(t, h.StopAll())
	assert.Equal(t, []string{
		"start audio", "start telemetry", "start engine",
		"stop engine", "stop telemetry", "stop audio",
	}, tr.events)
	assert.Empty(t, h.Started())

	// Second stop is a no-op
	require.NoError(t, h.StopAll())
	assert.Len(t, tr.events, 6)
}

func TestHubRegisterDuplicate(t *testing.T) {
	h := NewHub(nil)
	require.NoError(t, h.Register(Func{ID: "a"}))
	assert.ErrorIs(t, h.Register(Func{ID: "a"}), ErrDuplicate)

	svc, ok := h.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", svc.Name())
	_, ok = h.Get("b")
	assert.False(t, ok)
}

func TestHubSortErrors(t *testing.T) {
	h := NewHub(nil)
	require.NoError(t, h.Register(Func{ID: "a", DependsOn: []string{"missing"}}))
	assert.ErrorIs(t, h.StartAll(), ErrUnknown)

	h = NewHub(nil)
	require.NoError(t, h.Register(Func{ID: "a", DependsOn: []string{"b"}}))
	require.NoError(t, h.Register(Func{ID: "b", DependsOn: []string{"a"}}))
	assert.ErrorIs(t, h.StartAll(), ErrCycle)
}

func TestHubStartFailureRollsBack(t *testing.T) {
	tr := &trace{}
	boom := errors.New("no device")
	h := NewHub(nil)
	require.NoError(t, h.Register(tr.svc("telemetry")))
	require.NoError(t, h.Register(Func{ID: "audio", DependsOn: []string{"telemetry"}, OnStart: func() error { return boom }}))

	err := h.StartAll()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"start telemetry", "stop telemetry"}, tr.events)
	assert.Empty(t, h.Started())
}

func TestHubStopJoinsErrors(t *testing.T) {
	e1, e2 := errors.New("one"), errors.New("two")
	h := NewHub(nil)
	require.NoError(t, h.Register(Func{ID: "a", OnStop: func() error { return e1 }}))
	require.NoError(t, h.Register(Func{ID: "b", OnStop: func() error { return e2 }}))
	require.NoError(t, h.StartAll())

	err := h.StopAll()
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
}

func TestFuncNilHooks(t *testing.T) {
	f := Func{ID: "noop"}
	assert.NoError(t, f.Start())
	assert.NoError(t, f.Stop())
	assert.Nil(t, f.Dependencies())
}
