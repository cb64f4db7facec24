package entities

import (
	"fmt"
	"strconv"
	"time"
)

// Location is a WGS84 coordinate pair
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MapsLink returns the Google Maps URL for the location. The link is always
// derived from the coordinates and never stored as a source of truth.
func (l Location) MapsLink() string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s",
		strconv.FormatFloat(l.Latitude, 'f', -1, 64),
		strconv.FormatFloat(l.Longitude, 'f', -1, 64))
}

// EmergencyRecord is the durable record of a patient distress signal
type EmergencyRecord struct {
	ID       string   `json:"id"`
	Phone    string   `json:"phone"`
	Location Location `json:"location"`

	// AssignedDoctorID is set at most once, during dispatch, and may stay
	// nil when no eligible candidate existed at matching time.
	AssignedDoctorID *string        `json:"assigned_doctor_id,omitempty"`
	AssignedDoctor   *DoctorSummary `json:"assigned_doctor,omitempty"`

	VideoCallLink *string `json:"video_call_link,omitempty"`

	// IsActive is true while a doctor holds this assignment; the doctor
	// directory excludes doctors with an active, non-completed record.
	IsActive    bool       `json:"is_active"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MapsLink returns the maps URL for the record's location
func (e *EmergencyRecord) MapsLink() string {
	return e.Location.MapsLink()
}
