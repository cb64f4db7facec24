package entities

import "time"

// AmbulanceService is an ambulance provider that can be alerted on dispatch.
// Services are never locked by an emergency; every active service is a
// candidate for every dispatch.
type AmbulanceService struct {
	ID          string    `json:"id"`
	ServiceName string    `json:"service_name"`
	Phone       string    `json:"phone"`
	Location    *Location `json:"location,omitempty"`
	District    string    `json:"district"`

	// Priority ranks services 1..10; higher priority services are alerted
	// before closer, lower-priority ones.
	Priority int `json:"priority"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
