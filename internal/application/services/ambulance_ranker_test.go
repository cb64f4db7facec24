package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/telemed-backend/internal/application/services"
	"github.com/carebridge/telemed-backend/internal/domain/entities"
	apperrors "github.com/carebridge/telemed-backend/pkg/errors"
)

type stubAmbulanceRepo struct {
	services []*entities.AmbulanceService
	err      error
}

func (s *stubAmbulanceRepo) ListActive(ctx context.Context) ([]*entities.AmbulanceService, error) {
	return s.services, s.err
}

func (s *stubAmbulanceRepo) GetByID(ctx context.Context, id string) (*entities.AmbulanceService, error) {
	for _, service := range s.services {
		if service.ID == id {
			return service, nil
		}
	}
	return nil, apperrors.NewNotFoundError("ambulance service not found")
}

func (s *stubAmbulanceRepo) Create(ctx context.Context, service *entities.AmbulanceService) error {
	s.services = append(s.services, service)
	return s.err
}

func (s *stubAmbulanceRepo) Update(ctx context.Context, service *entities.AmbulanceService) error {
	for i, existing := range s.services {
		if existing.ID == service.ID {
			s.services[i] = service
			return nil
		}
	}
	return apperrors.NewNotFoundError("ambulance service not found")
}

func (s *stubAmbulanceRepo) Delete(ctx context.Context, id string) error {
	for i, existing := range s.services {
		if existing.ID == id {
			s.services = append(s.services[:i], s.services[i+1:]...)
			return nil
		}
	}
	return apperrors.NewNotFoundError("ambulance service not found")
}

func ambulanceAt(id string, priority int, lat, lon float64) *entities.AmbulanceService {
	return &entities.AmbulanceService{
		ID:          id,
		ServiceName: "Service " + id,
		Phone:       "+918000000000",
		Priority:    priority,
		IsActive:    true,
		Location:    &entities.Location{Latitude: lat, Longitude: lon},
	}
}

func TestAmbulanceRanker_PriorityBeforeDistance(t *testing.T) {
	// Priority dominates: the priority-8 service 100 km away outranks both
	// priority-5 services; among equal priority the nearer one wins.
	repo := &stubAmbulanceRepo{
		services: []*entities.AmbulanceService{
			ambulanceAt("p5-10km", 5, 0.09, 0),
			ambulanceAt("p8-100km", 8, 0.9, 0),
			ambulanceAt("p5-2km", 5, 0.018, 0),
		},
	}
	ranker := services.NewAmbulanceRanker(repo)

	ranked, err := ranker.Rank(context.Background(), entities.Location{}, 3)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "p8-100km", ranked[0].Service.ID)
	assert.Equal(t, "p5-2km", ranked[1].Service.ID)
	assert.Equal(t, "p5-10km", ranked[2].Service.ID)
}

func TestAmbulanceRanker_UnlocatedSortsLast(t *testing.T) {
	unlocated := &entities.AmbulanceService{
		ID: "no-location", ServiceName: "Unlocated", Priority: 5, IsActive: true,
	}
	repo := &stubAmbulanceRepo{
		services: []*entities.AmbulanceService{
			unlocated,
			ambulanceAt("located", 5, 0.5, 0),
		},
	}
	ranker := services.NewAmbulanceRanker(repo)

	ranked, err := ranker.Rank(context.Background(), entities.Location{}, 3)
	require.NoError(t, err)
	require.Len(t, ranked, 2)

	assert.Equal(t, "located", ranked[0].Service.ID)
	assert.Equal(t, "no-location", ranked[1].Service.ID)
	assert.Nil(t, ranked[1].DistanceKm)
}

func TestAmbulanceRanker_TruncatesToLimit(t *testing.T) {
	repo := &stubAmbulanceRepo{
		services: []*entities.AmbulanceService{
			ambulanceAt("a", 9, 0.1, 0),
			ambulanceAt("b", 8, 0.1, 0),
			ambulanceAt("c", 7, 0.1, 0),
			ambulanceAt("d", 6, 0.1, 0),
		},
	}
	ranker := services.NewAmbulanceRanker(repo)

	ranked, err := ranker.Rank(context.Background(), entities.Location{}, 3)
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "a", ranked[0].Service.ID)
	assert.Equal(t, "c", ranked[2].Service.ID)
}

func TestAmbulanceRanker_DefaultLimit(t *testing.T) {
	var all []*entities.AmbulanceService
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		all = append(all, ambulanceAt(id, 5, 0.1, 0))
	}
	ranker := services.NewAmbulanceRanker(&stubAmbulanceRepo{services: all})

	ranked, err := ranker.Rank(context.Background(), entities.Location{}, 0)
	require.NoError(t, err)
	assert.Len(t, ranked, services.DefaultAmbulanceLimit)
}

func TestAmbulanceRanker_RepoError(t *testing.T) {
	ranker := services.NewAmbulanceRanker(&stubAmbulanceRepo{err: errors.New("db down")})

	_, err := ranker.Rank(context.Background(), entities.Location{}, 3)
	assert.Error(t, err)
}
