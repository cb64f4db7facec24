package entities

import "time"

// EmergencyEventType identifies the lifecycle transition an event describes
type EmergencyEventType string

const (
	EmergencyEventCreated EmergencyEventType = "emergency.created"
	EmergencyEventUpdated EmergencyEventType = "emergency.updated"
	EmergencyEventDeleted EmergencyEventType = "emergency.deleted"
)

// EmergencyEvent is published on the event bus for dashboard consumers
type EmergencyEvent struct {
	ID          string             `json:"id"`
	EventType   EmergencyEventType `json:"event_type"`
	EmergencyID string             `json:"emergency_id"`
	Location    *Location          `json:"location,omitempty"`
	DoctorID    *string            `json:"doctor_id,omitempty"`
	IsActive    bool               `json:"is_active"`
	Timestamp   time.Time          `json:"timestamp"`
}
