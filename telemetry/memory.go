package telemetry

import (
	"context"
	"sync"
)

// MemoryRecorder keeps the most recent samples in a fixed ring
// Readers may run on another goroutine than the recorder
type MemoryRecorder struct {
	mu      sync.RWMutex
	buf     []Sample
	next    int
	full    bool
	dropped uint64
	closed  bool
}

// NewMemoryRecorder creates a ring of size samples; size below 1 becomes 1
func NewMemoryRecorder(size int) *MemoryRecorder {
	if size < 1 {
		size = 1
	}
	return &MemoryRecorder{buf: make([]Sample, size)}
}

func (m *MemoryRecorder) Record(s Sample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.full {
		m.dropped++
	}
	m.buf[m.next] = s
	m.next++
	if m.next == len(m.buf) {
		m.next = 0
		m.full = true
	}
	return nil
}

func (m *MemoryRecorder) Flush(context.Context) error { return nil }

func (m *MemoryRecorder) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Len is the number of retained samples
func (m *MemoryRecorder) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.full {
		return len(m.buf)
	}
	return m.next
}

// Dropped counts samples overwritten by newer ones
func (m *MemoryRecorder) Dropped() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dropped
}

// Samples returns retained samples oldest first
func (m *MemoryRecorder) Samples() []Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.full {
		out := make([]Sample, m.next)
		copy(out, m.buf[:m.next])
		return out
	}
	out := make([]Sample, 0, len(m.buf))
	out = append(out, m.buf[m.next:]...)
	return append(out, m.buf[:m.next]...)
}

// Last returns the newest sample
func (m *MemoryRecorder) Last() (Sample, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.full && m.next == 0 {
		return Sample{}, false
	}
	i := m.next - 1
	if i < 0 {
		i = len(m.buf) - 1
	}
	return m.buf[i], true
}
