package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
	"github.com/carebridge/telemed-backend/internal/domain/repositories"
	"github.com/carebridge/telemed-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/carebridge/telemed-backend/pkg/errors"
)

// AmbulanceAdapter implements ambulance service persistence in Postgres
type AmbulanceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAmbulanceAdapter creates a new ambulance adapter
func NewAmbulanceAdapter(client *postgres.Client) repositories.AmbulanceRepository {
	return &AmbulanceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var ambulanceColumns = []interface{}{
	"id", "service_name", "phone", "latitude", "longitude",
	"district", "priority", "is_active", "created_at", "updated_at",
}

// ListActive returns every active ambulance service in registry order
func (a *AmbulanceAdapter) ListActive(ctx context.Context) ([]*entities.AmbulanceService, error) {
	query, args, err := a.db.Select(ambulanceColumns...).
		From("ambulance_services").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build ambulance list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list ambulance services", err)
	}
	defer rows.Close()

	var services []*entities.AmbulanceService
	for rows.Next() {
		service, err := scanAmbulance(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan ambulance service", err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate ambulance services", err)
	}

	return services, nil
}

// GetByID retrieves an ambulance service by id
func (a *AmbulanceAdapter) GetByID(ctx context.Context, id string) (*entities.AmbulanceService, error) {
	query, args, err := a.db.Select(ambulanceColumns...).
		From("ambulance_services").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build ambulance query", err)
	}

	service, err := scanAmbulance(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("ambulance service with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get ambulance service", err)
	}

	return service, nil
}

// Create inserts a new ambulance service
func (a *AmbulanceAdapter) Create(ctx context.Context, service *entities.AmbulanceService) error {
	query, args, err := a.db.Insert("ambulance_services").
		Rows(ambulanceRecord(service, true)).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build ambulance insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create ambulance service", err)
	}

	return nil
}

// Update updates an ambulance service
func (a *AmbulanceAdapter) Update(ctx context.Context, service *entities.AmbulanceService) error {
	service.UpdatedAt = time.Now()

	query, args, err := a.db.Update("ambulance_services").
		Set(ambulanceRecord(service, false)).
		Where(goqu.Ex{"id": service.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build ambulance update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update ambulance service", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("ambulance service with id %s not found", service.ID))
	}

	return nil
}

// Delete deactivates an ambulance service. Soft delete keeps the row for
// historical dispatch audit.
func (a *AmbulanceAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Update("ambulance_services").
		Set(goqu.Record{
			"is_active":  false,
			"updated_at": time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build ambulance delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete ambulance service", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("ambulance service with id %s not found", id))
	}

	return nil
}

func ambulanceRecord(service *entities.AmbulanceService, includeID bool) goqu.Record {
	var lat, lon sql.NullFloat64
	if service.Location != nil {
		lat = sql.NullFloat64{Float64: service.Location.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: service.Location.Longitude, Valid: true}
	}

	record := goqu.Record{
		"service_name": service.ServiceName,
		"phone":        service.Phone,
		"latitude":     lat,
		"longitude":    lon,
		"district":     service.District,
		"priority":     service.Priority,
		"is_active":    service.IsActive,
		"updated_at":   service.UpdatedAt,
	}
	if includeID {
		record["id"] = service.ID
		record["created_at"] = service.CreatedAt
	}

	return record
}

func scanAmbulance(row rowScanner) (*entities.AmbulanceService, error) {
	service := &entities.AmbulanceService{}
	var lat, lon sql.NullFloat64

	if err := row.Scan(
		&service.ID,
		&service.ServiceName,
		&service.Phone,
		&lat,
		&lon,
		&service.District,
		&service.Priority,
		&service.IsActive,
		&service.CreatedAt,
		&service.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if lat.Valid && lon.Valid {
		service.Location = &entities.Location{
			Latitude:  lat.Float64,
			Longitude: lon.Float64,
		}
	}

	return service, nil
}
