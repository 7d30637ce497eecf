package dto

import (
	"time"
)

// Topic names for domain events
const (
	TopicHostelChanged  = "hostel.changed"
	TopicRoomChanged    = "room.changed"
	TopicGuestChanged   = "guest.changed"
	TopicBookingChanged = "booking.changed"
	TopicPaymentChanged = "payment.changed"
	TopicUserRegistered = "user.registered"
)

// ChangeType describes what happened to an entity
type ChangeType string

const (
	ChangeCreated       ChangeType = "created"
	ChangeUpdated       ChangeType = "updated"
	ChangeDeleted       ChangeType = "deleted"
	ChangeStatusChanged ChangeType = "status_changed"
)

// EntityChangedEvent is published after every successful tenant-scoped mutation
type EntityChangedEvent struct {
	EventType  string      `json:"eventType"`
	Change     ChangeType  `json:"change"`
	HostelID   string      `json:"hostelId"`
	EntityID   string      `json:"entityId"`
	ActorID    string      `json:"actorId,omitempty"`
	FromStatus string      `json:"fromStatus,omitempty"`
	ToStatus   string      `json:"toStatus,omitempty"`
	Entity     interface{} `json:"entity,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Key returns the Kafka message key; events for one hostel stay ordered on one partition
func (e *EntityChangedEvent) Key() string {
	return e.HostelID
}

// UserRegisteredEvent is published when a hostel signs up
type UserRegisteredEvent struct {
	EventType string    `json:"eventType"`
	UserID    string    `json:"userId"`
	HostelID  string    `json:"hostelId"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// Key returns the Kafka message key for partitioning
func (e *UserRegisteredEvent) Key() string {
	return e.HostelID
}
