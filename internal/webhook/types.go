package webhook

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMaxAttempts = 5
	DefaultTimeout     = 10 * time.Second
	DefaultQueueSize   = 256
)

// Config describes the single outbound endpoint. Events lists the event
// types forwarded; an empty list forwards everything.
type Config struct {
	URL         string
	Secret      string
	Events      []string
	MaxAttempts int
	Timeout     time.Duration
	QueueSize   int
}

type EventPayload struct {
	Type       string    `json:"type"`
	EmployeeID uuid.UUID `json:"employee_id"`
	Data       any       `json:"data"`
	Timestamp  time.Time `json:"timestamp"`
}

type job struct {
	eventType string
	payload   []byte
}
