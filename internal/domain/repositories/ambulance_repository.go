package repositories

import (
	"context"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
)

// AmbulanceRepository defines ambulance service persistence. ListActive
// feeds dispatch ranking; the remaining operations back the administrative
// surface.
type AmbulanceRepository interface {
	ListActive(ctx context.Context) ([]*entities.AmbulanceService, error)
	GetByID(ctx context.Context, id string) (*entities.AmbulanceService, error)
	Create(ctx context.Context, service *entities.AmbulanceService) error
	Update(ctx context.Context, service *entities.AmbulanceService) error
	Delete(ctx context.Context, id string) error
}
