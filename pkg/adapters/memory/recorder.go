// Package memory provides an in-memory domain-event recorder.
// Safe for concurrent use; handy in tests and for host-side buffering.
package memory

import (
	"sync"

	"github.com/aretw0/pergola/pkg/domain"
)

// Recorder buffers every event its observer receives.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Observer returns the callback to pass to Machine.Subscribe.
func (r *Recorder) Observer() domain.Observer {
	return func(ev domain.Event) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, ev)
	}
}

// Events returns a copy of the recorded events in delivery order.
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Reset discards everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
