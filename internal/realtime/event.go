// Package realtime pushes user events to WebSocket clients. Each user has
// one topic; an instance delivers to its own clients and fans out to
// other instances through Redis.
package realtime

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const EventUserCreated = "user.created"

// TopicAllUsers carries events about every user. Only admins may subscribe.
const TopicAllUsers = "users.all"

// TopicForUser names the topic scoped to a single user.
func TopicForUser(userID int) string {
	return fmt.Sprintf("users.%d", userID)
}

// Event is the JSON message written to subscribers.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Topic      string    `json:"topic"`
	Data       any       `json:"data,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

var (
	newEventID = uuid.NewString
	eventNow   = time.Now
)

func NewEvent(topic, eventType string, data any) Event {
	return Event{
		ID:         newEventID(),
		Type:       eventType,
		Topic:      topic,
		Data:       data,
		OccurredAt: eventNow().UTC(),
	}
}
