package events

import "time"

// Event types
const (
	UserCreated = "user.created"
	UserDeleted = "user.deleted"
)

// UserEventsStream is the Redis stream directory events are appended to.
const UserEventsStream = "user.events"

// Base event structure
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type UserCreatedEvent struct {
	UserID        string `json:"userId"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	ContactNumber int64  `json:"contactNumber"`
}

type UserDeletedEvent struct {
	UserID string `json:"userId"`
}
