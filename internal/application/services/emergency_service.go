package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
	"github.com/carebridge/telemed-backend/internal/domain/providers"
	"github.com/carebridge/telemed-backend/internal/domain/repositories"
	"github.com/carebridge/telemed-backend/internal/infrastructure/observability"
	apperrors "github.com/carebridge/telemed-backend/pkg/errors"
)

// phoneRegex accepts international numbers with optional +, spaces, dashes
// and parentheses, 7 to 20 characters total.
var phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{6,19}$`)

// CreateEmergencyRequest is the input for creating a dispatch
type CreateEmergencyRequest struct {
	Phone     string  `json:"phone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// UpdateEmergencyRequest carries the mutable fields of a record. Nil fields
// are left unchanged.
type UpdateEmergencyRequest struct {
	Phone       *string  `json:"phone,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
	IsCompleted *bool    `json:"is_completed,omitempty"`
}

// DispatchResult is the outcome of a full dispatch
type DispatchResult struct {
	Record             *entities.EmergencyRecord `json:"record"`
	Assignment         *MatchResult              `json:"assignment,omitempty"`
	AmbulancesNotified int                       `json:"ambulances_notified"`
	MapsLink           string                    `json:"maps_link"`
}

// AlarmResult is the outcome of the alarm path, which records the signal
// and alerts operations without running doctor matching.
type AlarmResult struct {
	EmergencyID string            `json:"emergency_id"`
	Location    entities.Location `json:"location"`
	MapsLink    string            `json:"maps_link"`
}

// VideoCallResult carries the derived video-call link for an emergency
type VideoCallResult struct {
	EmergencyID   string `json:"emergency_id"`
	RoomID        string `json:"room_id"`
	VideoCallLink string `json:"video_call_link"`
}

// EmergencyService orchestrates the dispatch pipeline: validate, match,
// persist, rank, notify, publish.
type EmergencyService struct {
	emergencyRepo repositories.EmergencyRepository
	matcher       *DoctorMatcher
	ranker        *AmbulanceRanker
	fanout        *NotificationFanout
	eventBus      providers.EventBus
	metrics       *observability.Metrics

	videoCallBaseURL string
	ambulanceLimit   int
}

// NewEmergencyService creates a new emergency service. eventBus and metrics
// may be nil.
func NewEmergencyService(
	emergencyRepo repositories.EmergencyRepository,
	matcher *DoctorMatcher,
	ranker *AmbulanceRanker,
	fanout *NotificationFanout,
	eventBus providers.EventBus,
	metrics *observability.Metrics,
	videoCallBaseURL string,
	ambulanceLimit int,
) *EmergencyService {
	return &EmergencyService{
		emergencyRepo:    emergencyRepo,
		matcher:          matcher,
		ranker:           ranker,
		fanout:           fanout,
		eventBus:         eventBus,
		metrics:          metrics,
		videoCallBaseURL: videoCallBaseURL,
		ambulanceLimit:   ambulanceLimit,
	}
}

// CreateEmergency runs the full dispatch pipeline for a distress signal.
// The record is durable before any notification goes out, and notification
// failures never fail the dispatch. A ranking failure after the record is
// persisted downgrades the dispatch to zero ambulances rather than failing
// an already-recorded emergency.
func (s *EmergencyService) CreateEmergency(ctx context.Context, req *CreateEmergencyRequest) (*DispatchResult, error) {
	if err := validateSignal(req.Phone, req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	logger := observability.LoggerFromContext(ctx)
	location := entities.Location{Latitude: req.Latitude, Longitude: req.Longitude}

	match, err := s.matcher.Match(ctx, location)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to match doctor", err)
	}

	now := time.Now()
	record := &entities.EmergencyRecord{
		ID:        uuid.New().String(),
		Phone:     req.Phone,
		Location:  location,
		IsActive:  match != nil,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if match != nil {
		record.AssignedDoctorID = &match.DoctorID
		record.AssignedDoctor = &entities.DoctorSummary{
			ID:        match.DoctorID,
			FullName:  match.FullName,
			Specialty: match.Specialty,
			Phone:     match.Phone,
		}
	}

	if err := s.emergencyRepo.Create(ctx, record); err != nil {
		return nil, apperrors.NewInternalError("failed to persist emergency record", err)
	}

	ranked, err := s.ranker.Rank(ctx, location, s.ambulanceLimit)
	if err != nil {
		logger.Error().Err(err).Str("emergency_id", record.ID).Msg("ambulance ranking failed, dispatching without ambulances")
		ranked = nil
	}

	notified := s.fanout.Dispatch(ctx, record, match, ranked)

	observability.RecordDispatch(ctx, s.metrics, match != nil, match != nil && match.GovernmentFallback)
	s.publishEvent(ctx, entities.EmergencyEventCreated, record)

	logger.Info().
		Str("emergency_id", record.ID).
		Bool("doctor_assigned", match != nil).
		Int("ambulances_notified", notified).
		Msg("emergency dispatched")

	return &DispatchResult{
		Record:             record,
		Assignment:         match,
		AmbulancesNotified: notified,
		MapsLink:           record.MapsLink(),
	}, nil
}

// TriggerAlarm records a distress signal and alerts operations only. No
// doctor is matched and no ambulances are ranked; the record stays inactive
// so it never blocks a doctor in the directory.
func (s *EmergencyService) TriggerAlarm(ctx context.Context, req *CreateEmergencyRequest) (*AlarmResult, error) {
	if err := validateSignal(req.Phone, req.Latitude, req.Longitude); err != nil {
		return nil, err
	}

	now := time.Now()
	record := &entities.EmergencyRecord{
		ID:        uuid.New().String(),
		Phone:     req.Phone,
		Location:  entities.Location{Latitude: req.Latitude, Longitude: req.Longitude},
		IsActive:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.emergencyRepo.Create(ctx, record); err != nil {
		return nil, apperrors.NewInternalError("failed to persist emergency record", err)
	}

	s.fanout.SendAdminAlarm(ctx, record)
	s.publishEvent(ctx, entities.EmergencyEventCreated, record)

	observability.LoggerFromContext(ctx).Info().Str("emergency_id", record.ID).Msg("alarm recorded")

	return &AlarmResult{
		EmergencyID: record.ID,
		Location:    record.Location,
		MapsLink:    record.MapsLink(),
	}, nil
}

// GetEmergency retrieves a single record with its doctor projection
func (s *EmergencyService) GetEmergency(ctx context.Context, id string) (*entities.EmergencyRecord, error) {
	return s.emergencyRepo.GetByID(ctx, id)
}

// ListEmergencies retrieves all records, newest first
func (s *EmergencyService) ListEmergencies(ctx context.Context) ([]*entities.EmergencyRecord, error) {
	return s.emergencyRepo.List(ctx)
}

// UpdateEmergency applies a partial update to a record. Read-modify-write,
// last writer wins. Marking a record completed stamps CompletedAt once.
func (s *EmergencyService) UpdateEmergency(ctx context.Context, id string, req *UpdateEmergencyRequest) (*entities.EmergencyRecord, error) {
	var violations []string
	if req.Phone != nil && !phoneRegex.MatchString(*req.Phone) {
		violations = append(violations, "phone must be a valid phone number")
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		violations = append(violations, "latitude must be between -90 and 90")
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		violations = append(violations, "longitude must be between -180 and 180")
	}
	if len(violations) > 0 {
		return nil, apperrors.NewValidationErrors(violations)
	}

	record, err := s.emergencyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Phone != nil {
		record.Phone = *req.Phone
	}
	if req.Latitude != nil {
		record.Location.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		record.Location.Longitude = *req.Longitude
	}
	if req.IsActive != nil {
		record.IsActive = *req.IsActive
	}
	if req.IsCompleted != nil {
		if *req.IsCompleted && !record.IsCompleted {
			now := time.Now()
			record.CompletedAt = &now
		}
		record.IsCompleted = *req.IsCompleted
	}
	record.UpdatedAt = time.Now()

	if err := s.emergencyRepo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, entities.EmergencyEventUpdated, record)
	return record, nil
}

// DeleteEmergency removes a record unconditionally
func (s *EmergencyService) DeleteEmergency(ctx context.Context, id string) error {
	record, err := s.emergencyRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.emergencyRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.publishEvent(ctx, entities.EmergencyEventDeleted, record)
	return nil
}

// GenerateVideoCallLink derives and persists a video-call link for an
// existing emergency. The emergency id is the room identifier, so the
// operation is idempotent.
func (s *EmergencyService) GenerateVideoCallLink(ctx context.Context, id string) (*VideoCallResult, error) {
	record, err := s.emergencyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	link := strings.TrimRight(s.videoCallBaseURL, "/") + "/" + record.ID
	if err := s.emergencyRepo.SetVideoCallLink(ctx, record.ID, link); err != nil {
		return nil, err
	}

	return &VideoCallResult{
		EmergencyID:   record.ID,
		RoomID:        record.ID,
		VideoCallLink: link,
	}, nil
}

// publishEvent publishes a lifecycle event to the firehose and the
// per-record channel. Best effort: failures are logged, never propagated.
func (s *EmergencyService) publishEvent(ctx context.Context, eventType entities.EmergencyEventType, record *entities.EmergencyRecord) {
	if s.eventBus == nil {
		return
	}

	event := &entities.EmergencyEvent{
		ID:          uuid.New().String(),
		EventType:   eventType,
		EmergencyID: record.ID,
		Location:    &record.Location,
		DoctorID:    record.AssignedDoctorID,
		IsActive:    record.IsActive,
		Timestamp:   time.Now(),
	}

	for _, channel := range []string{
		providers.EventChannelEmergencyUpdates,
		providers.GetEmergencyChannel(record.ID),
	} {
		if err := s.eventBus.Publish(ctx, channel, event); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).
				Str("emergency_id", record.ID).
				Str("channel", channel).
				Msg("failed to publish emergency event")
		}
	}
}

// validateSignal checks a distress signal and reports every violated rule
// at once.
func validateSignal(phone string, latitude, longitude float64) error {
	var violations []string
	if phone == "" {
		violations = append(violations, "phone is required")
	} else if !phoneRegex.MatchString(phone) {
		violations = append(violations, "phone must be a valid phone number")
	}
	if latitude < -90 || latitude > 90 {
		violations = append(violations, fmt.Sprintf("latitude must be between -90 and 90, got %g", latitude))
	}
	if longitude < -180 || longitude > 180 {
		violations = append(violations, fmt.Sprintf("longitude must be between -180 and 180, got %g", longitude))
	}
	if len(violations) > 0 {
		return apperrors.NewValidationErrors(violations)
	}
	return nil
}
