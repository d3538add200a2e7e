package interfaces

import (
	"context"
	"time"
)

// EventType identifies the category of an event
type EventType string

const (
	// EventResearchProgress is published as a research run moves through its
	// phases (started, searching, writing report, completed, failed)
	EventResearchProgress EventType = "research.progress"

	// EventSessionUpdated is published when a session's stored state changes
	EventSessionUpdated EventType = "session.updated"
)

// Event is a single published event with an arbitrary payload
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// EventHandler processes a published event
type EventHandler func(ctx context.Context, event Event) error

// EventService provides pub/sub event distribution between services and
// the websocket layer
type EventService interface {
	// Subscribe registers a handler for an event type
	Subscribe(eventType EventType, handler EventHandler) error

	// Publish sends an event to all subscribers asynchronously
	Publish(ctx context.Context, event Event) error
}
