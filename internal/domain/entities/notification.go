package entities

import "time"

// NotificationChannel identifies the audience of a dispatch notification
type NotificationChannel string

const (
	ChannelPatient   NotificationChannel = "patient"
	ChannelDoctor    NotificationChannel = "doctor"
	ChannelAdmin     NotificationChannel = "admin"
	ChannelAmbulance NotificationChannel = "ambulance"
)

// NotificationStatus represents the send outcome. There are no delivery
// receipts in this design; "sent" means the gateway accepted the message.
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// DispatchNotification is the audit row written for every send attempt
type DispatchNotification struct {
	ID           string              `json:"id" db:"id"`
	EmergencyID  string              `json:"emergency_id" db:"emergency_id"`
	Channel      NotificationChannel `json:"channel" db:"channel"`
	Recipient    string              `json:"recipient" db:"recipient"`
	Status       NotificationStatus  `json:"status" db:"status"`
	MessageID    *string             `json:"message_id,omitempty" db:"message_id"`
	SentAt       *time.Time          `json:"sent_at,omitempty" db:"sent_at"`
	FailedAt     *time.Time          `json:"failed_at,omitempty" db:"failed_at"`
	ErrorMessage *string             `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" db:"updated_at"`
}
