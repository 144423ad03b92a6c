package events

import (
	"time"

	"github.com/google/uuid"
)

// Recommendation event types. The NATS subject is "recommender.<type>".
const (
	TypeSessionReset       = "session.reset"
	TypeCustomerIdentified = "customer.identified"
	TypeSearchCompleted    = "search.completed"
	TypeSimilarShown       = "similar.shown"
	TypeCatalogUpdated     = "catalog.updated"
)

// Event defines the contract for all system events.
type Event interface {
	// EventID is unique per emitted event.
	EventID() string

	// EventType returns the unique code for this event (e.g., "search.completed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	ID         string
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// New stamps a fresh id on the event.
func New(eventType string, data map[string]interface{}, at time.Time) BaseEvent {
	return BaseEvent{ID: uuid.NewString(), Type: eventType, Data: data, OccurredAt: at}
}

func (e BaseEvent) EventID() string {
	return e.ID
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Envelope is the wire form of an event on every bus.
type Envelope struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func ToEnvelope(e Event) Envelope {
	return Envelope{ID: e.EventID(), Type: e.EventType(), OccurredAt: e.Timestamp(), Data: e.Payload()}
}

func (env Envelope) Event() BaseEvent {
	return BaseEvent{ID: env.ID, Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}
}
