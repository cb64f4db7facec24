package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
	"github.com/carebridge/telemed-backend/internal/domain/repositories"
	"github.com/carebridge/telemed-backend/internal/infrastructure/clients/postgres"
	"github.com/carebridge/telemed-backend/internal/infrastructure/observability"
	apperrors "github.com/carebridge/telemed-backend/pkg/errors"
)

// EmergencyAdapter implements emergency record persistence in Postgres
type EmergencyAdapter struct {
	client  *postgres.Client
	db      *goqu.Database
	metrics *observability.Metrics
}

// NewEmergencyAdapter creates a new emergency adapter
func NewEmergencyAdapter(client *postgres.Client, metrics *observability.Metrics) repositories.EmergencyRepository {
	return &EmergencyAdapter{
		client:  client,
		db:      goqu.New("postgres", client.DB()),
		metrics: metrics,
	}
}

// Create persists a new emergency record
func (a *EmergencyAdapter) Create(ctx context.Context, record *entities.EmergencyRecord) error {
	defer a.timeQuery(ctx, "emergency.create", time.Now())
	row := goqu.Record{
		"id":        record.ID,
		"phone":     record.Phone,
		"latitude":  record.Location.Latitude,
		"longitude": record.Location.Longitude,
		"assigned_doctor_id": sql.NullString{
			String: derefString(record.AssignedDoctorID),
			Valid:  record.AssignedDoctorID != nil,
		},
		"is_active":    record.IsActive,
		"is_completed": record.IsCompleted,
		"created_at":   record.CreatedAt,
		"updated_at":   record.UpdatedAt,
	}

	query, args, err := a.db.Insert("emergencies").Rows(row).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build emergency insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create emergency record", err)
	}

	return nil
}

// emergencyColumns is the select list shared by GetByID and List, joined
// against doctors for the assigned-doctor projection. The video-call link
// is only selected for single-record reads.
func (a *EmergencyAdapter) selectEmergencies(includeVideoLink bool) *goqu.SelectDataset {
	cols := []interface{}{
		goqu.I("emergencies.id"),
		goqu.I("emergencies.phone"),
		goqu.I("emergencies.latitude"),
		goqu.I("emergencies.longitude"),
		goqu.I("emergencies.assigned_doctor_id"),
		goqu.I("emergencies.is_active"),
		goqu.I("emergencies.is_completed"),
		goqu.I("emergencies.completed_at"),
		goqu.I("emergencies.created_at"),
		goqu.I("emergencies.updated_at"),
		goqu.I("doctors.full_name").As("doctor_full_name"),
		goqu.I("doctors.specialty").As("doctor_specialty"),
		goqu.I("doctors.phone").As("doctor_phone"),
	}
	if includeVideoLink {
		cols = append(cols, goqu.I("emergencies.video_call_link"))
	}

	return a.db.Select(cols...).
		From("emergencies").
		LeftJoin(
			goqu.T("doctors"),
			goqu.On(goqu.I("emergencies.assigned_doctor_id").Eq(goqu.I("doctors.id"))),
		)
}

// GetByID retrieves a record with its doctor projection populated
func (a *EmergencyAdapter) GetByID(ctx context.Context, id string) (*entities.EmergencyRecord, error) {
	defer a.timeQuery(ctx, "emergency.get", time.Now())
	query, args, err := a.selectEmergencies(true).
		Where(goqu.Ex{"emergencies.id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build emergency query", err)
	}

	record, err := scanEmergency(a.client.DB().QueryRowContext(ctx, query, args...), true)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("emergency with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get emergency record", err)
	}

	return record, nil
}

// List retrieves all records, newest first. Video-call links are excluded
// from the list projection.
func (a *EmergencyAdapter) List(ctx context.Context) ([]*entities.EmergencyRecord, error) {
	defer a.timeQuery(ctx, "emergency.list", time.Now())
	query, args, err := a.selectEmergencies(false).
		Order(goqu.I("emergencies.created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build emergency list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list emergency records", err)
	}
	defer rows.Close()

	var records []*entities.EmergencyRecord
	for rows.Next() {
		record, err := scanEmergency(rows, false)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan emergency record", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate emergency records", err)
	}

	return records, nil
}

// Update overwrites the mutable fields of a record. Last writer wins.
func (a *EmergencyAdapter) Update(ctx context.Context, record *entities.EmergencyRecord) error {
	defer a.timeQuery(ctx, "emergency.update", time.Now())
	record.UpdatedAt = time.Now()

	row := goqu.Record{
		"phone":        record.Phone,
		"latitude":     record.Location.Latitude,
		"longitude":    record.Location.Longitude,
		"is_active":    record.IsActive,
		"is_completed": record.IsCompleted,
		"completed_at": record.CompletedAt,
		"updated_at":   record.UpdatedAt,
	}

	query, args, err := a.db.Update("emergencies").
		Set(row).
		Where(goqu.Ex{"id": record.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build emergency update query", err)
	}

	return a.execExpectingRow(ctx, query, args, record.ID, "update")
}

// SetVideoCallLink persists the derived video-call link
func (a *EmergencyAdapter) SetVideoCallLink(ctx context.Context, id, link string) error {
	query, args, err := a.db.Update("emergencies").
		Set(goqu.Record{
			"video_call_link": link,
			"updated_at":      time.Now(),
		}).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build video-call link update query", err)
	}

	return a.execExpectingRow(ctx, query, args, id, "set video-call link")
}

// Delete unconditionally removes a record
func (a *EmergencyAdapter) Delete(ctx context.Context, id string) error {
	defer a.timeQuery(ctx, "emergency.delete", time.Now())
	query, args, err := a.db.Delete("emergencies").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build emergency delete query", err)
	}

	return a.execExpectingRow(ctx, query, args, id, "delete")
}

func (a *EmergencyAdapter) timeQuery(ctx context.Context, operation string, start time.Time) {
	observability.RecordDBMetric(ctx, a.metrics, operation, time.Since(start))
}

func (a *EmergencyAdapter) execExpectingRow(ctx context.Context, query string, args []interface{}, id, op string) error {
	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError(fmt.Sprintf("failed to %s emergency record", op), err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("emergency with id %s not found", id))
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmergency(row rowScanner, includeVideoLink bool) (*entities.EmergencyRecord, error) {
	record := &entities.EmergencyRecord{}
	var (
		doctorID        sql.NullString
		completedAt     sql.NullTime
		doctorFullName  sql.NullString
		doctorSpecialty sql.NullString
		doctorPhone     sql.NullString
		videoCallLink   sql.NullString
	)

	dest := []interface{}{
		&record.ID,
		&record.Phone,
		&record.Location.Latitude,
		&record.Location.Longitude,
		&doctorID,
		&record.IsActive,
		&record.IsCompleted,
		&completedAt,
		&record.CreatedAt,
		&record.UpdatedAt,
		&doctorFullName,
		&doctorSpecialty,
		&doctorPhone,
	}
	if includeVideoLink {
		dest = append(dest, &videoCallLink)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if doctorID.Valid {
		record.AssignedDoctorID = &doctorID.String
		if doctorFullName.Valid {
			record.AssignedDoctor = &entities.DoctorSummary{
				ID:        doctorID.String,
				FullName:  doctorFullName.String,
				Specialty: doctorSpecialty.String,
				Phone:     doctorPhone.String,
			}
		}
	}
	if completedAt.Valid {
		record.CompletedAt = &completedAt.Time
	}
	if videoCallLink.Valid {
		record.VideoCallLink = &videoCallLink.String
	}

	return record, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
