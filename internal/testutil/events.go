package testutil

import (
	"sync"

	"github.com/tejashwikalptaru/singularity/internal/domain"
	"github.com/tejashwikalptaru/singularity/internal/ports"
)

// EventRecorder captures every event published on a bus.
type EventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

// RecordEvents subscribes a recorder to all events on bus.
func RecordEvents(bus ports.EventBus) *EventRecorder {
	r := &EventRecorder{}
	bus.SubscribeAll(func(e domain.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e)
	})
	return r
}

// Events returns the recorded events in publish order.
func (r *EventRecorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

// OfType returns the recorded events of type t.
func (r *EventRecorder) OfType(t domain.EventType) []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Event
	for _, e := range r.events {
		if e.Type() == t {
			out = append(out, e)
		}
	}
	return out
}

// Types returns the types of the recorded events in publish order.
func (r *EventRecorder) Types() []domain.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type()
	}
	return out
}
