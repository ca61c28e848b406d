// Package frame provides ports.FrameScheduler implementations: a wall-clock
// Ticker for real hosts and a Manual scheduler for deterministic tests.
package frame

import (
	"slices"
	"sync"

	"github.com/tejashwikalptaru/singularity/internal/ports"
)

// queue is the pending-request bookkeeping shared by both schedulers.
// Requests fire in the order they were made; a request cancelled before
// its turn never fires.
type queue struct {
	mu      sync.Mutex
	nextID  ports.FrameID
	pending map[ports.FrameID]ports.FrameCallback
}

func newQueue() *queue {
	return &queue{pending: make(map[ports.FrameID]ports.FrameCallback)}
}

func (q *queue) request(cb ports.FrameCallback) ports.FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	if cb != nil {
		q.pending[q.nextID] = cb
	}
	return q.nextID
}

func (q *queue) cancel(id ports.FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, id)
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *queue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	clear(q.pending)
}

// fire runs every request made before the call. Requests made from inside a
// callback wait for the next fire.
func (q *queue) fire(ts float64) int {
	q.mu.Lock()
	ids := make([]ports.FrameID, 0, len(q.pending))
	for id := range q.pending {
		ids = append(ids, id)
	}
	q.mu.Unlock()
	slices.Sort(ids)

	fired := 0
	for _, id := range ids {
		q.mu.Lock()
		cb, ok := q.pending[id]
		delete(q.pending, id)
		q.mu.Unlock()

		if ok {
			cb(ts)
			fired++
		}
	}
	return fired
}
