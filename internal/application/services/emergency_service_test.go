package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/telemed-backend/internal/application/services"
	"github.com/carebridge/telemed-backend/internal/domain/entities"
	"github.com/carebridge/telemed-backend/pkg/config"
	apperrors "github.com/carebridge/telemed-backend/pkg/errors"
)

type stubEmergencyRepo struct {
	records map[string]*entities.EmergencyRecord
}

func newStubEmergencyRepo() *stubEmergencyRepo {
	return &stubEmergencyRepo{records: make(map[string]*entities.EmergencyRecord)}
}

func (s *stubEmergencyRepo) Create(ctx context.Context, record *entities.EmergencyRecord) error {
	s.records[record.ID] = record
	return nil
}

func (s *stubEmergencyRepo) GetByID(ctx context.Context, id string) (*entities.EmergencyRecord, error) {
	record, ok := s.records[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("emergency with id %s not found", id))
	}
	copied := *record
	return &copied, nil
}

func (s *stubEmergencyRepo) List(ctx context.Context) ([]*entities.EmergencyRecord, error) {
	var all []*entities.EmergencyRecord
	for _, record := range s.records {
		all = append(all, record)
	}
	return all, nil
}

func (s *stubEmergencyRepo) Update(ctx context.Context, record *entities.EmergencyRecord) error {
	if _, ok := s.records[record.ID]; !ok {
		return apperrors.NewNotFoundError("not found")
	}
	s.records[record.ID] = record
	return nil
}

func (s *stubEmergencyRepo) SetVideoCallLink(ctx context.Context, id, link string) error {
	record, ok := s.records[id]
	if !ok {
		return apperrors.NewNotFoundError("not found")
	}
	record.VideoCallLink = &link
	return nil
}

func (s *stubEmergencyRepo) Delete(ctx context.Context, id string) error {
	if _, ok := s.records[id]; !ok {
		return apperrors.NewNotFoundError("not found")
	}
	delete(s.records, id)
	return nil
}

func newTestService(
	emergencyRepo *stubEmergencyRepo,
	doctorRepo *stubDoctorRepo,
	ambulanceRepo *stubAmbulanceRepo,
	sms *recordingSMS,
) *services.EmergencyService {
	return services.NewEmergencyService(
		emergencyRepo,
		services.NewDoctorMatcher(doctorRepo),
		services.NewAmbulanceRanker(ambulanceRepo),
		services.NewNotificationFanout(sms, nil, nil, testDispatchConfig()),
		nil,
		nil,
		"https://meet.carebridge.health/room",
		3,
	)
}

func TestCreateEmergency_FullDispatch(t *testing.T) {
	emergencyRepo := newStubEmergencyRepo()
	doctorRepo := &stubDoctorRepo{
		eligible: []*entities.Doctor{doctorAt("doc-1", 19.05, 72.85)},
	}
	ambulanceRepo := &stubAmbulanceRepo{
		services: []*entities.AmbulanceService{
			ambulanceAt("amb-1", 8, 19.02, 72.82),
			ambulanceAt("amb-2", 5, 19.1, 72.9),
		},
	}
	sms := &recordingSMS{}
	service := newTestService(emergencyRepo, doctorRepo, ambulanceRepo, sms)

	result, err := service.CreateEmergency(context.Background(), &services.CreateEmergencyRequest{
		Phone:     "+919876543210",
		Latitude:  19.0,
		Longitude: 72.8,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://www.google.com/maps?q=19,72.8", result.MapsLink)
	assert.Equal(t, 2, result.AmbulancesNotified)

	require.NotNil(t, result.Assignment)
	assert.Equal(t, "doc-1", result.Assignment.DoctorID)
	require.NotNil(t, result.Assignment.DistanceKm)
	assert.InDelta(t, 7.66, *result.Assignment.DistanceKm, 0.1)

	stored, ok := emergencyRepo.records[result.Record.ID]
	require.True(t, ok, "record must be persisted")
	assert.True(t, stored.IsActive)
	require.NotNil(t, stored.AssignedDoctorID)
	assert.Equal(t, "doc-1", *stored.AssignedDoctorID)
}

func TestCreateEmergency_ValidationReportsAllViolations(t *testing.T) {
	service := newTestService(newStubEmergencyRepo(), &stubDoctorRepo{}, &stubAmbulanceRepo{}, &recordingSMS{})

	_, err := service.CreateEmergency(context.Background(), &services.CreateEmergencyRequest{
		Phone:     "abc",
		Latitude:  200,
		Longitude: 72.8,
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
	assert.Len(t, appErr.Violations, 2)
}

func TestCreateEmergency_NoDoctorAvailable(t *testing.T) {
	emergencyRepo := newStubEmergencyRepo()
	sms := &recordingSMS{}
	service := newTestService(emergencyRepo, &stubDoctorRepo{}, &stubAmbulanceRepo{}, sms)

	result, err := service.CreateEmergency(context.Background(), &services.CreateEmergencyRequest{
		Phone:     "+919876543210",
		Latitude:  19.0,
		Longitude: 72.8,
	})
	require.NoError(t, err)

	assert.Nil(t, result.Assignment)
	assert.Equal(t, 0, result.AmbulancesNotified)

	stored := emergencyRepo.records[result.Record.ID]
	assert.False(t, stored.IsActive)
	assert.Nil(t, stored.AssignedDoctorID)
}

func TestCreateEmergency_RankingFailureStillDispatches(t *testing.T) {
	emergencyRepo := newStubEmergencyRepo()
	doctorRepo := &stubDoctorRepo{
		eligible: []*entities.Doctor{doctorAt("doc-1", 19.05, 72.85)},
	}
	ambulanceRepo := &stubAmbulanceRepo{err: fmt.Errorf("db down")}
	sms := &recordingSMS{}
	service := newTestService(emergencyRepo, doctorRepo, ambulanceRepo, sms)

	result, err := service.CreateEmergency(context.Background(), &services.CreateEmergencyRequest{
		Phone:     "+919876543210",
		Latitude:  19.0,
		Longitude: 72.8,
	})
	require.NoError(t, err, "a persisted emergency must not fail because ranking did")

	assert.Equal(t, 0, result.AmbulancesNotified)
	require.NotNil(t, result.Assignment)
	assert.True(t, sms.sentTo("+919876543210"))
}

func TestTriggerAlarm(t *testing.T) {
	emergencyRepo := newStubEmergencyRepo()
	sms := &recordingSMS{}
	service := services.NewEmergencyService(
		emergencyRepo,
		services.NewDoctorMatcher(&stubDoctorRepo{
			eligible: []*entities.Doctor{doctorAt("doc-1", 19.05, 72.85)},
		}),
		services.NewAmbulanceRanker(&stubAmbulanceRepo{}),
		services.NewNotificationFanout(sms, nil, nil, &config.DispatchConfig{
			OperationsPhone: "+919999999999",
			CountryCode:     "+91",
		}),
		nil,
		nil,
		"https://meet.carebridge.health/room",
		3,
	)

	result, err := service.TriggerAlarm(context.Background(), &services.CreateEmergencyRequest{
		Phone:     "+919876543210",
		Latitude:  19.0,
		Longitude: 72.8,
	})
	require.NoError(t, err)

	assert.Equal(t, "https://www.google.com/maps?q=19,72.8", result.MapsLink)

	// Only operations is alerted; no matching runs on the alarm path
	assert.True(t, sms.sentTo("+919999999999"))
	assert.False(t, sms.sentTo("+919876543210"))

	stored := emergencyRepo.records[result.EmergencyID]
	require.NotNil(t, stored)
	assert.False(t, stored.IsActive)
	assert.Nil(t, stored.AssignedDoctorID)
}

func TestGenerateVideoCallLink(t *testing.T) {
	emergencyRepo := newStubEmergencyRepo()
	emergencyRepo.records["em-1"] = &entities.EmergencyRecord{ID: "em-1", Phone: "+919876543210"}
	service := newTestService(emergencyRepo, &stubDoctorRepo{}, &stubAmbulanceRepo{}, &recordingSMS{})

	result, err := service.GenerateVideoCallLink(context.Background(), "em-1")
	require.NoError(t, err)

	assert.Equal(t, "em-1", result.RoomID)
	assert.Equal(t, "https://meet.carebridge.health/room/em-1", result.VideoCallLink)

	stored := emergencyRepo.records["em-1"]
	require.NotNil(t, stored.VideoCallLink)
	assert.Equal(t, result.VideoCallLink, *stored.VideoCallLink)
}

func TestGenerateVideoCallLink_NotFound(t *testing.T) {
	service := newTestService(newStubEmergencyRepo(), &stubDoctorRepo{}, &stubAmbulanceRepo{}, &recordingSMS{})

	_, err := service.GenerateVideoCallLink(context.Background(), "missing")
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
}

func TestUpdateEmergency_MarkCompleted(t *testing.T) {
	emergencyRepo := newStubEmergencyRepo()
	emergencyRepo.records["em-1"] = &entities.EmergencyRecord{ID: "em-1", Phone: "+919876543210", IsActive: true}
	service := newTestService(emergencyRepo, &stubDoctorRepo{}, &stubAmbulanceRepo{}, &recordingSMS{})

	completed := true
	record, err := service.UpdateEmergency(context.Background(), "em-1", &services.UpdateEmergencyRequest{
		IsCompleted: &completed,
	})
	require.NoError(t, err)

	assert.True(t, record.IsCompleted)
	require.NotNil(t, record.CompletedAt)
}

func TestUpdateEmergency_InvalidPhone(t *testing.T) {
	emergencyRepo := newStubEmergencyRepo()
	emergencyRepo.records["em-1"] = &entities.EmergencyRecord{ID: "em-1", Phone: "+919876543210"}
	service := newTestService(emergencyRepo, &stubDoctorRepo{}, &stubAmbulanceRepo{}, &recordingSMS{})

	bad := "nope"
	_, err := service.UpdateEmergency(context.Background(), "em-1", &services.UpdateEmergencyRequest{
		Phone: &bad,
	})
	require.Error(t, err)

	appErr, ok := err.(*apperrors.AppError)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
}

func TestDeleteEmergency(t *testing.T) {
	emergencyRepo := newStubEmergencyRepo()
	emergencyRepo.records["em-1"] = &entities.EmergencyRecord{ID: "em-1", Phone: "+919876543210"}
	service := newTestService(emergencyRepo, &stubDoctorRepo{}, &stubAmbulanceRepo{}, &recordingSMS{})

	require.NoError(t, service.DeleteEmergency(context.Background(), "em-1"))
	assert.Empty(t, emergencyRepo.records)

	err := service.DeleteEmergency(context.Background(), "em-1")
	require.Error(t, err)
}
