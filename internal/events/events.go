package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Batch request event types.
const (
	// EventTypePortfolio requests a 15-concept portfolio generation batch.
	EventTypePortfolio = "portfolio_generation"

	// EventTypeBrandKit requests a 5-component brand kit batch.
	EventTypeBrandKit = "brand_kit"

	// EventTypeRefinement requests a 5-variant refinement batch.
	EventTypeRefinement = "refinement"
)

// BatchRequestEvent represents a request to run a generation batch in the
// background. It carries the necessary information for building the batch
// job without direct dependencies on the batch package.
type BatchRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates which batch flow should run
	Type string `json:"type"`

	// Payload contains the flow-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *BatchRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewBatchRequestEvent creates a new BatchRequestEvent with the specified
// type and payload.
func NewBatchRequestEvent(eventType string, payload interface{}) (*BatchRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &BatchRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now(),
	}, nil
}

// EventHandler defines an interface for components that can handle events.
// Handlers are responsible for processing events and taking appropriate actions.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *BatchRequestEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *BatchRequestEvent) error
}
