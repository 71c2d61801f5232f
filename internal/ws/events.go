package ws

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventEmployeeEnrolled  EventType = "employee.enrolled"
	EventEmployeeUpdated   EventType = "employee.updated"
	EventEmployeeDeleted   EventType = "employee.deleted"
	EventCheckinIdentified EventType = "checkin.identified"
	EventCheckinUnknown    EventType = "checkin.unrecognized"
	EventEmotionAnalyzed   EventType = "emotion.analyzed"
)

type Event struct {
	Type       EventType `json:"type"`
	EmployeeID uuid.UUID `json:"employee_id"`
	Data       any       `json:"data"`
	Timestamp  time.Time `json:"timestamp"`
}
