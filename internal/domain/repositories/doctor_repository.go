package repositories

import (
	"context"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
)

// DoctorRepository defines the read-only candidate directory for matching
type DoctorRepository interface {
	// ListEligible returns doctors that are verified, active, have a known
	// location, and hold no active, non-completed emergency assignment.
	// The busy-doctor exclusion is resolved against the emergencies table
	// in the same query, never aggregated in memory.
	ListEligible(ctx context.Context) ([]*entities.Doctor, error)

	// ListActiveGovernment returns the government fallback pool in stable
	// registry order
	ListActiveGovernment(ctx context.Context) ([]*entities.GovernmentDoctor, error)
}
