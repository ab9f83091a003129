package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/taskboard/internal/events"
)

// RecordingEmitter implements events.EventEmitter by remembering every event.
type RecordingEmitter struct {
	// Err, when set, is returned by EmitEvent after recording
	Err error

	mu     sync.Mutex
	events []*events.Event
}

var _ events.EventEmitter = (*RecordingEmitter)(nil)

// EmitEvent implements events.EventEmitter.
func (r *RecordingEmitter) EmitEvent(_ context.Context, event *events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.Err
}

// Events returns a copy of the recorded events in emission order.
func (r *RecordingEmitter) Events() []*events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*events.Event(nil), r.events...)
}

// Names returns the recorded event names in emission order.
func (r *RecordingEmitter) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.Name)
	}
	return names
}
