package database

import (
	"context"
	"encoding/json"
	"log"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
	"github.com/carebridge/telemed-backend/internal/domain/providers"
	"github.com/carebridge/telemed-backend/internal/domain/repositories"
	"github.com/carebridge/telemed-backend/internal/infrastructure/observability"
)

// CachedAmbulanceAdapter wraps AmbulanceAdapter with caching of the active
// directory. The directory changes rarely relative to dispatch volume, and
// a slightly stale ambulance list is acceptable for alerting; doctor
// eligibility is never cached because the busy set must be fresh.
type CachedAmbulanceAdapter struct {
	adapter repositories.AmbulanceRepository
	cache   providers.CacheProvider
	metrics *observability.Metrics
}

// NewCachedAmbulanceAdapter creates a new cached ambulance adapter
func NewCachedAmbulanceAdapter(adapter repositories.AmbulanceRepository, cache providers.CacheProvider, metrics *observability.Metrics) repositories.AmbulanceRepository {
	return &CachedAmbulanceAdapter{
		adapter: adapter,
		cache:   cache,
		metrics: metrics,
	}
}

const (
	ambulanceListCacheKey = "ambulances:active"
	ambulanceListTTL      = 60 // seconds
)

// ListActive returns the active directory, served from cache when possible
func (a *CachedAmbulanceAdapter) ListActive(ctx context.Context) ([]*entities.AmbulanceService, error) {
	if cached, err := a.cache.Get(ctx, ambulanceListCacheKey); err == nil {
		var services []*entities.AmbulanceService
		if err := json.Unmarshal(cached, &services); err == nil {
			observability.RecordCacheHit(ctx, a.metrics, ambulanceListCacheKey)
			return services, nil
		} else {
			log.Printf("Failed to unmarshal cached ambulance directory: %v", err)
		}
	}
	observability.RecordCacheMiss(ctx, a.metrics, ambulanceListCacheKey)

	services, err := a.adapter.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	// Update cache asynchronously to avoid blocking the dispatch path
	go func() {
		bgCtx := context.Background()
		if data, err := json.Marshal(services); err == nil {
			if err := a.cache.Set(bgCtx, ambulanceListCacheKey, data, ambulanceListTTL); err != nil {
				log.Printf("Failed to cache ambulance directory: %v", err)
			}
		}
	}()

	return services, nil
}

// GetByID passes through; single-service reads are admin traffic
func (a *CachedAmbulanceAdapter) GetByID(ctx context.Context, id string) (*entities.AmbulanceService, error) {
	return a.adapter.GetByID(ctx, id)
}

// Create inserts a service and invalidates the directory cache
func (a *CachedAmbulanceAdapter) Create(ctx context.Context, service *entities.AmbulanceService) error {
	if err := a.adapter.Create(ctx, service); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

// Update updates a service and invalidates the directory cache
func (a *CachedAmbulanceAdapter) Update(ctx context.Context, service *entities.AmbulanceService) error {
	if err := a.adapter.Update(ctx, service); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

// Delete deactivates a service and invalidates the directory cache
func (a *CachedAmbulanceAdapter) Delete(ctx context.Context, id string) error {
	if err := a.adapter.Delete(ctx, id); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

func (a *CachedAmbulanceAdapter) invalidate(ctx context.Context) {
	if err := a.cache.Delete(ctx, ambulanceListCacheKey); err != nil {
		log.Printf("Failed to invalidate ambulance directory cache: %v", err)
	}
}
