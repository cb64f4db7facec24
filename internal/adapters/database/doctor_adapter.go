package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
	"github.com/carebridge/telemed-backend/internal/domain/repositories"
	"github.com/carebridge/telemed-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/carebridge/telemed-backend/pkg/errors"
)

// DoctorAdapter implements the candidate directory reads against the
// doctors and government_doctors tables
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDoctorAdapter creates a new doctor directory adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListEligible returns doctors that are verified, active, located, and not
// busy. The busy set (doctors holding an active, non-completed emergency)
// is resolved by the database against the indexed assignment columns, not
// aggregated in memory.
func (a *DoctorAdapter) ListEligible(ctx context.Context) ([]*entities.Doctor, error) {
	busy := a.db.Select("assigned_doctor_id").
		From("emergencies").
		Where(
			goqu.Ex{"is_active": true, "is_completed": false},
			goqu.I("assigned_doctor_id").IsNotNull(),
		)

	query, args, err := a.db.Select(
		"id", "full_name", "specialty", "phone", "email",
		"latitude", "longitude", "verification_status", "is_active",
	).From("doctors").
		Where(
			goqu.Ex{
				"verification_status": string(entities.VerificationStatusVerified),
				"is_active":           true,
			},
			goqu.I("latitude").IsNotNull(),
			goqu.I("longitude").IsNotNull(),
			goqu.I("id").NotIn(busy),
		).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build eligible doctors query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list eligible doctors", err)
	}
	defer rows.Close()

	var doctors []*entities.Doctor
	for rows.Next() {
		doctor := &entities.Doctor{}
		var lat, lon sql.NullFloat64
		var status string

		if err := rows.Scan(
			&doctor.ID,
			&doctor.FullName,
			&doctor.Specialty,
			&doctor.Phone,
			&doctor.Email,
			&lat,
			&lon,
			&status,
			&doctor.IsActive,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan doctor", err)
		}

		doctor.VerificationStatus = entities.VerificationStatus(status)
		if lat.Valid && lon.Valid {
			doctor.Location = &entities.Location{
				Latitude:  lat.Float64,
				Longitude: lon.Float64,
			}
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate doctors", err)
	}

	return doctors, nil
}

// ListActiveGovernment returns the government fallback pool in stable
// registry order
func (a *DoctorAdapter) ListActiveGovernment(ctx context.Context) ([]*entities.GovernmentDoctor, error) {
	query, args, err := a.db.Select(
		"id", "full_name", "specialty", "phone", "is_active",
	).From("government_doctors").
		Where(goqu.Ex{"is_active": true}).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build government doctors query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list government doctors", err)
	}
	defer rows.Close()

	var doctors []*entities.GovernmentDoctor
	for rows.Next() {
		doctor := &entities.GovernmentDoctor{}
		if err := rows.Scan(
			&doctor.ID,
			&doctor.FullName,
			&doctor.Specialty,
			&doctor.Phone,
			&doctor.IsActive,
		); err != nil {
			return nil, apperrors.NewInternalError("failed to scan government doctor", err)
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate government doctors", err)
	}

	return doctors, nil
}
