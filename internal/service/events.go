package service

import (
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/empathia/internal/ws"
)

// EventPublisher receives employee and check-in events after they commit.
// Publish must not block.
type EventPublisher interface {
	Publish(eventType ws.EventType, employeeID uuid.UUID, data any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(ws.EventType, uuid.UUID, any) {}

// Fanout publishes every event to each of publishers in order
type Fanout []EventPublisher

func (f Fanout) Publish(eventType ws.EventType, employeeID uuid.UUID, data any) {
	for _, p := range f {
		p.Publish(eventType, employeeID, data)
	}
}
