package repositories

import (
	"context"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
)

// EmergencyRepository defines the interface for emergency record persistence
type EmergencyRepository interface {
	// Create persists a new emergency record
	Create(ctx context.Context, record *entities.EmergencyRecord) error

	// GetByID retrieves a record with its doctor projection populated
	GetByID(ctx context.Context, id string) (*entities.EmergencyRecord, error)

	// List retrieves all records, newest first, with doctor projections
	// populated. Video-call links are excluded from the list projection.
	List(ctx context.Context) ([]*entities.EmergencyRecord, error)

	// Update overwrites the mutable fields of a record. Read-modify-write,
	// last writer wins.
	Update(ctx context.Context, record *entities.EmergencyRecord) error

	// SetVideoCallLink persists the derived video-call link
	SetVideoCallLink(ctx context.Context, id, link string) error

	// Delete unconditionally removes a record
	Delete(ctx context.Context, id string) error
}
