package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event names delivered to connected clients.
const (
	TaskCreated = "taskCreated"
	TaskUpdated = "taskUpdated"
	TaskDeleted = "taskDeleted"

	// Connected is sent only to a newly registered client and carries its
	// connection ID.
	Connected = "connected"
)

// Event is the envelope written to every client.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Name is one of the event name constants
	Name string `json:"event"`

	// Payload is the event body: a full task for created/updated, a bare ID
	// string for deleted
	Payload json.RawMessage `json:"data"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"emitted_at"`
}

// NewEvent creates an Event with the given name and JSON-encoded payload.
func NewEvent(name string, payload any) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:        uuid.New(),
		Name:      name,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Client is a connected receiver of broadcast messages.
type Client interface {
	// Send queues an encoded event for delivery. It must not block; a client
	// that cannot accept the message returns an error and misses it.
	Send(message []byte) error
}

// EventEmitter publishes events to whoever is listening.
type EventEmitter interface {
	// EmitEvent delivers event to every current listener. An error reports a
	// delivery problem; it never means the triggering mutation failed.
	EmitEvent(ctx context.Context, event *Event) error
}
