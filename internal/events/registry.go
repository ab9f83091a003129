package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Registry tracks connected clients by connection ID and broadcasts events to
// all of them. It is created once at startup and shared by reference.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
	logger  *slog.Logger
}

var _ EventEmitter = (*Registry)(nil)

// NewRegistry creates an empty Registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		clients: make(map[string]Client),
		logger:  logger.With("component", "event_registry"),
	}
}

// Register adds client under id, replacing any client already registered
// under the same id.
func (r *Registry) Register(id string, client Client) {
	r.mu.Lock()
	r.clients[id] = client
	count := len(r.clients)
	r.mu.Unlock()

	r.logger.Debug("client registered", "connection_id", id, "client_count", count)
}

// Unregister removes the client registered under id. Unknown ids are ignored.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.clients, id)
	count := len(r.clients)
	r.mu.Unlock()

	r.logger.Debug("client unregistered", "connection_id", id, "client_count", count)
}

// Count returns the number of connected clients.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// EmitEvent encodes event once and sends it to a snapshot of the clients
// connected at the time of the call. Every client is attempted; the first
// send error is returned.
func (r *Registry) EmitEvent(ctx context.Context, event *Event) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.Name, err)
	}

	r.mu.RLock()
	snapshot := make(map[string]Client, len(r.clients))
	for id, c := range r.clients {
		snapshot[id] = c
	}
	r.mu.RUnlock()

	r.logger.Debug("emitting event",
		"event_id", event.ID,
		"event", event.Name,
		"client_count", len(snapshot))

	var firstErr error
	for id, client := range snapshot {
		if err := client.Send(message); err != nil {
			r.logger.Warn("client missed event",
				"error", err,
				"connection_id", id,
				"event_id", event.ID,
				"event", event.Name)
			if firstErr == nil {
				firstErr = fmt.Errorf("connection %s: %w", id, err)
			}
		}
	}

	return firstErr
}
