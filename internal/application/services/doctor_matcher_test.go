package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/telemed-backend/internal/application/services"
	"github.com/carebridge/telemed-backend/internal/domain/entities"
)

type stubDoctorRepo struct {
	eligible   []*entities.Doctor
	government []*entities.GovernmentDoctor
	err        error
}

func (s *stubDoctorRepo) ListEligible(ctx context.Context) ([]*entities.Doctor, error) {
	return s.eligible, s.err
}

func (s *stubDoctorRepo) ListActiveGovernment(ctx context.Context) ([]*entities.GovernmentDoctor, error) {
	return s.government, s.err
}

func doctorAt(id string, lat, lon float64) *entities.Doctor {
	return &entities.Doctor{
		ID:       id,
		FullName: "Dr. " + id,
		Phone:    "+919000000000",
		Location: &entities.Location{Latitude: lat, Longitude: lon},
	}
}

func TestDoctorMatcher_PicksNearest(t *testing.T) {
	repo := &stubDoctorRepo{
		eligible: []*entities.Doctor{
			doctorAt("far", 20.0, 73.0),
			doctorAt("near", 19.01, 72.81),
			doctorAt("mid", 19.2, 72.9),
		},
	}
	matcher := services.NewDoctorMatcher(repo)

	match, err := matcher.Match(context.Background(), entities.Location{Latitude: 19.0, Longitude: 72.8})
	require.NoError(t, err)
	require.NotNil(t, match)

	assert.Equal(t, "near", match.DoctorID)
	assert.False(t, match.GovernmentFallback)
	require.NotNil(t, match.DistanceKm)
	assert.Greater(t, *match.DistanceKm, 0.0)
	assert.Less(t, *match.DistanceKm, 5.0)
}

func TestDoctorMatcher_TieKeepsFirstEntry(t *testing.T) {
	// Two doctors at the exact same coordinates; the earlier directory
	// entry wins.
	repo := &stubDoctorRepo{
		eligible: []*entities.Doctor{
			doctorAt("first", 19.01, 72.81),
			doctorAt("second", 19.01, 72.81),
		},
	}
	matcher := services.NewDoctorMatcher(repo)

	match, err := matcher.Match(context.Background(), entities.Location{Latitude: 19.0, Longitude: 72.8})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "first", match.DoctorID)
}

func TestDoctorMatcher_SkipsUnlocatedDoctors(t *testing.T) {
	unlocated := &entities.Doctor{ID: "unlocated", FullName: "Dr. unlocated", Phone: "+919333333333"}
	repo := &stubDoctorRepo{
		eligible: []*entities.Doctor{
			unlocated,
			doctorAt("near", 19.01, 72.81),
		},
	}
	matcher := services.NewDoctorMatcher(repo)

	match, err := matcher.Match(context.Background(), entities.Location{Latitude: 19.0, Longitude: 72.8})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "near", match.DoctorID)
}

func TestDoctorMatcher_AllUnlocatedFallsBackToGovernment(t *testing.T) {
	repo := &stubDoctorRepo{
		eligible: []*entities.Doctor{
			{ID: "unlocated", FullName: "Dr. unlocated", Phone: "+919333333333"},
		},
		government: []*entities.GovernmentDoctor{
			{ID: "gov-1", FullName: "Dr. Gov", Phone: "+919111111111"},
		},
	}
	matcher := services.NewDoctorMatcher(repo)

	match, err := matcher.Match(context.Background(), entities.Location{Latitude: 19.0, Longitude: 72.8})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "gov-1", match.DoctorID)
	assert.True(t, match.GovernmentFallback)
}

func TestDoctorMatcher_GovernmentFallback(t *testing.T) {
	repo := &stubDoctorRepo{
		government: []*entities.GovernmentDoctor{
			{ID: "gov-1", FullName: "Dr. Gov", Phone: "+919111111111"},
			{ID: "gov-2", FullName: "Dr. Gov Two", Phone: "+919222222222"},
		},
	}
	matcher := services.NewDoctorMatcher(repo)

	match, err := matcher.Match(context.Background(), entities.Location{Latitude: 19.0, Longitude: 72.8})
	require.NoError(t, err)
	require.NotNil(t, match)

	assert.Equal(t, "gov-1", match.DoctorID)
	assert.True(t, match.GovernmentFallback)
	assert.Nil(t, match.DistanceKm)
}

func TestDoctorMatcher_NoMatch(t *testing.T) {
	matcher := services.NewDoctorMatcher(&stubDoctorRepo{})

	match, err := matcher.Match(context.Background(), entities.Location{Latitude: 19.0, Longitude: 72.8})
	require.NoError(t, err)
	assert.Nil(t, match)
}
