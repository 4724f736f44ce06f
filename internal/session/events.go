package session

// Event names published by the session.
const (
	EventStateChanged = "state_changed"
	EventTurnAdded    = "turn_added"
	EventError        = "error"
	EventParamsEdited = "params_edited"
	EventCleared      = "conversation_cleared"
)

// Event represents a session lifecycle event.
// Minimal and stable: name plus optional fields via key/values.
type Event struct {
	Name   string
	Fields map[string]any
}

// EventPublisher receives events from the session. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
