package services

import (
	"context"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
	"github.com/carebridge/telemed-backend/internal/domain/repositories"
	"github.com/carebridge/telemed-backend/pkg/geo"
)

// MatchResult is the flattened projection of the doctor selected for an
// emergency. DistanceKm is nil for government fallbacks, which have no
// location semantics.
type MatchResult struct {
	DoctorID           string   `json:"doctor_id"`
	FullName           string   `json:"full_name"`
	Specialty          string   `json:"specialty"`
	Phone              string   `json:"phone"`
	DistanceKm         *float64 `json:"distance_km,omitempty"`
	GovernmentFallback bool     `json:"government_fallback"`
}

// DoctorMatcher selects the doctor for an emergency dispatch
type DoctorMatcher struct {
	doctorRepo repositories.DoctorRepository
}

// NewDoctorMatcher creates a new doctor matcher
func NewDoctorMatcher(doctorRepo repositories.DoctorRepository) *DoctorMatcher {
	return &DoctorMatcher{doctorRepo: doctorRepo}
}

// Match returns the nearest eligible doctor, or the first active government
// doctor when the platform directory has no candidate, or nil when both
// pools are empty. Exact distance ties keep the earlier directory entry.
// Entries without a location cannot be ranked and are skipped.
// A nil result is not an error; dispatch proceeds without a doctor.
func (m *DoctorMatcher) Match(ctx context.Context, location entities.Location) (*MatchResult, error) {
	doctors, err := m.doctorRepo.ListEligible(ctx)
	if err != nil {
		return nil, err
	}

	var best *entities.Doctor
	var bestDistance float64
	for _, doctor := range doctors {
		if doctor.Location == nil {
			continue
		}
		d := geo.Distance(
			location.Latitude, location.Longitude,
			doctor.Location.Latitude, doctor.Location.Longitude,
		)
		if best == nil || d < bestDistance {
			best = doctor
			bestDistance = d
		}
	}

	if best != nil {
		return &MatchResult{
			DoctorID:   best.ID,
			FullName:   best.FullName,
			Specialty:  best.Specialty,
			Phone:      best.Phone,
			DistanceKm: &bestDistance,
		}, nil
	}

	government, err := m.doctorRepo.ListActiveGovernment(ctx)
	if err != nil {
		return nil, err
	}
	if len(government) == 0 {
		return nil, nil
	}

	fallback := government[0]
	return &MatchResult{
		DoctorID:           fallback.ID,
		FullName:           fallback.FullName,
		Specialty:          fallback.Specialty,
		Phone:              fallback.Phone,
		GovernmentFallback: true,
	}, nil
}
