package frame

import (
	"sync"

	"github.com/tejashwikalptaru/singularity/internal/ports"
)

// Manual is a scheduler driven explicitly by the caller.
type Manual struct {
	q *queue

	mu  sync.Mutex
	now float64
}

// NewManual creates a manual scheduler at timestamp 0.
func NewManual() *Manual {
	return &Manual{q: newQueue()}
}

// RequestFrame implements ports.FrameScheduler.
func (m *Manual) RequestFrame(cb ports.FrameCallback) ports.FrameID {
	return m.q.request(cb)
}

// CancelFrame implements ports.FrameScheduler.
func (m *Manual) CancelFrame(id ports.FrameID) {
	m.q.cancel(id)
}

// Advance moves the clock forward by ms and fires the pending requests at the
// new timestamp. It returns how many callbacks ran.
func (m *Manual) Advance(ms float64) int {
	m.mu.Lock()
	m.now += ms
	ts := m.now
	m.mu.Unlock()
	return m.q.fire(ts)
}

// FireAt sets the clock to ts and fires the pending requests.
func (m *Manual) FireAt(ts float64) int {
	m.mu.Lock()
	m.now = ts
	m.mu.Unlock()
	return m.q.fire(ts)
}

// Now returns the current timestamp in ms.
func (m *Manual) Now() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of armed requests.
func (m *Manual) Pending() int {
	return m.q.len()
}

var _ ports.FrameScheduler = (*Manual)(nil)
