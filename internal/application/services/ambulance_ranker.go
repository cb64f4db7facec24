package services

import (
	"context"
	"sort"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
	"github.com/carebridge/telemed-backend/internal/domain/repositories"
	"github.com/carebridge/telemed-backend/pkg/geo"
)

// DefaultAmbulanceLimit caps how many services are alerted per dispatch
// when no limit is configured
const DefaultAmbulanceLimit = 3

// RankedAmbulance pairs an ambulance service with its distance to the
// patient. DistanceKm is nil when the service has no registered location.
type RankedAmbulance struct {
	Service    *entities.AmbulanceService `json:"service"`
	DistanceKm *float64                   `json:"distance_km,omitempty"`
}

// AmbulanceRanker orders ambulance services for alerting
type AmbulanceRanker struct {
	ambulanceRepo repositories.AmbulanceRepository
}

// NewAmbulanceRanker creates a new ambulance ranker
func NewAmbulanceRanker(ambulanceRepo repositories.AmbulanceRepository) *AmbulanceRanker {
	return &AmbulanceRanker{ambulanceRepo: ambulanceRepo}
}

// Rank returns up to limit active services, ordered by priority descending
// and, within equal priority, by distance ascending with unlocated services
// after any located one. The sort is stable, so the total order is well
// defined even among unlocated services of equal priority.
func (r *AmbulanceRanker) Rank(ctx context.Context, location entities.Location, limit int) ([]RankedAmbulance, error) {
	if limit <= 0 {
		limit = DefaultAmbulanceLimit
	}

	services, err := r.ambulanceRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	ranked := make([]RankedAmbulance, 0, len(services))
	for _, service := range services {
		entry := RankedAmbulance{Service: service}
		if service.Location != nil {
			d := geo.Distance(
				location.Latitude, location.Longitude,
				service.Location.Latitude, service.Location.Longitude,
			)
			entry.DistanceKm = &d
		}
		ranked = append(ranked, entry)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Service.Priority != b.Service.Priority {
			return a.Service.Priority > b.Service.Priority
		}
		switch {
		case a.DistanceKm == nil:
			return false
		case b.DistanceKm == nil:
			return true
		default:
			return *a.DistanceKm < *b.DistanceKm
		}
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked, nil
}
