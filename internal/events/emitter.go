package events

import (
	"context"
	"time"

	"streams-service/internal/models"
)

// Envelope wraps a notification for the topic exchange.
type Envelope struct {
	SchemaVersion int                 `json:"schema_version"`
	EventType     string              `json:"event_type"`
	OccurredAt    string              `json:"occurred_at"`
	Service       string              `json:"service"`
	Environment   string              `json:"environment"`
	UserID        int                 `json:"user_id"`
	Payload       models.Notification `json:"payload"`
}

// Emitter publishes every notification appended to a user's log.
type Emitter struct {
	publisher   Publisher
	service     string
	environment string
}

func NewEmitter(publisher Publisher, service, environment string) *Emitter {
	return &Emitter{publisher: publisher, service: service, environment: environment}
}

// Emit publishes the notification under notifications.<kind>. Failures
// are logged by the publisher and otherwise ignored.
func (e *Emitter) Emit(kind string, userID int, n models.Notification) {
	if e == nil || e.publisher == nil {
		return
	}

	envelope := Envelope{
		SchemaVersion: 1,
		EventType:     "notification",
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		UserID:        userID,
		Payload:       n,
	}
	_ = e.publisher.Publish(context.Background(), "notifications."+kind, envelope)
}
