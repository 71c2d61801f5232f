package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/saturnino-fabrica-de-software/empathia/internal/ws"
)

func TestFanout_Publish(t *testing.T) {
	first := &recordingPublisher{}
	second := &recordingPublisher{}
	id := uuid.New()

	Fanout{first, second}.Publish(ws.EventEmployeeEnrolled, id, nil)

	want := []publishedEvent{{eventType: ws.EventEmployeeEnrolled, employeeID: id}}
	assert.Equal(t, want, first.published())
	assert.Equal(t, want, second.published())
}

func TestFanout_Empty(t *testing.T) {
	assert.NotPanics(t, func() {
		Fanout(nil).Publish(ws.EventEmployeeDeleted, uuid.New(), nil)
	})
}
