package appointment

import "github.com/google/uuid"

// Lifecycle event names pushed to connected clients.
const (
	EventCreated       = "appointmentCreated"
	EventUpdated       = "appointmentUpdated"
	EventStatusUpdated = "appointmentStatusUpdated"
	EventDeleted       = "appointmentDeleted"
)

// EventPublisher delivers a lifecycle event to every live connection of the
// target user. Delivery is best-effort; a user with no connections simply
// misses the event.
type EventPublisher interface {
	Publish(userID uuid.UUID, event string, payload interface{})
}

// NopPublisher discards events. Used when no hub is wired.
type NopPublisher struct{}

func (NopPublisher) Publish(uuid.UUID, string, interface{}) {}
