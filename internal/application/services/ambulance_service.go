package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
	"github.com/carebridge/telemed-backend/internal/domain/repositories"
	apperrors "github.com/carebridge/telemed-backend/pkg/errors"
)

// CreateAmbulanceRequest is the input for registering an ambulance service
type CreateAmbulanceRequest struct {
	ServiceName string   `json:"service_name"`
	Phone       string   `json:"phone"`
	District    string   `json:"district"`
	Priority    int      `json:"priority"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// UpdateAmbulanceRequest carries partial updates for an ambulance service
type UpdateAmbulanceRequest struct {
	ServiceName *string  `json:"service_name,omitempty"`
	Phone       *string  `json:"phone,omitempty"`
	District    *string  `json:"district,omitempty"`
	Priority    *int     `json:"priority,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	IsActive    *bool    `json:"is_active,omitempty"`
}

// AmbulanceAdminService manages the ambulance service directory that
// dispatch ranking draws from.
type AmbulanceAdminService struct {
	ambulanceRepo repositories.AmbulanceRepository
}

// NewAmbulanceAdminService creates a new ambulance admin service
func NewAmbulanceAdminService(ambulanceRepo repositories.AmbulanceRepository) *AmbulanceAdminService {
	return &AmbulanceAdminService{ambulanceRepo: ambulanceRepo}
}

// ListAmbulances returns all active ambulance services
func (s *AmbulanceAdminService) ListAmbulances(ctx context.Context) ([]*entities.AmbulanceService, error) {
	return s.ambulanceRepo.ListActive(ctx)
}

// GetAmbulance retrieves an ambulance service by id
func (s *AmbulanceAdminService) GetAmbulance(ctx context.Context, id string) (*entities.AmbulanceService, error) {
	return s.ambulanceRepo.GetByID(ctx, id)
}

// CreateAmbulance registers a new ambulance service. Location is optional;
// unlocated services still receive alerts, ranked after located ones.
func (s *AmbulanceAdminService) CreateAmbulance(ctx context.Context, req *CreateAmbulanceRequest) (*entities.AmbulanceService, error) {
	var violations []string
	if req.ServiceName == "" {
		violations = append(violations, "service_name is required")
	}
	if req.Phone == "" {
		violations = append(violations, "phone is required")
	} else if !phoneRegex.MatchString(req.Phone) {
		violations = append(violations, "phone must be a valid phone number")
	}
	if req.Priority < 1 || req.Priority > 10 {
		violations = append(violations, "priority must be between 1 and 10")
	}
	violations = append(violations, validateOptionalLocation(req.Latitude, req.Longitude)...)
	if len(violations) > 0 {
		return nil, apperrors.NewValidationErrors(violations)
	}

	now := time.Now()
	service := &entities.AmbulanceService{
		ID:          uuid.New().String(),
		ServiceName: req.ServiceName,
		Phone:       req.Phone,
		District:    req.District,
		Priority:    req.Priority,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Latitude != nil && req.Longitude != nil {
		service.Location = &entities.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}

	if err := s.ambulanceRepo.Create(ctx, service); err != nil {
		return nil, apperrors.NewInternalError("failed to create ambulance service", err)
	}
	return service, nil
}

// UpdateAmbulance applies a partial update to an ambulance service
func (s *AmbulanceAdminService) UpdateAmbulance(ctx context.Context, id string, req *UpdateAmbulanceRequest) (*entities.AmbulanceService, error) {
	var violations []string
	if req.ServiceName != nil && *req.ServiceName == "" {
		violations = append(violations, "service_name must not be empty")
	}
	if req.Phone != nil && !phoneRegex.MatchString(*req.Phone) {
		violations = append(violations, "phone must be a valid phone number")
	}
	if req.Priority != nil && (*req.Priority < 1 || *req.Priority > 10) {
		violations = append(violations, "priority must be between 1 and 10")
	}
	violations = append(violations, validateOptionalLocation(req.Latitude, req.Longitude)...)
	if len(violations) > 0 {
		return nil, apperrors.NewValidationErrors(violations)
	}

	service, err := s.ambulanceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ServiceName != nil {
		service.ServiceName = *req.ServiceName
	}
	if req.Phone != nil {
		service.Phone = *req.Phone
	}
	if req.District != nil {
		service.District = *req.District
	}
	if req.Priority != nil {
		service.Priority = *req.Priority
	}
	if req.Latitude != nil && req.Longitude != nil {
		service.Location = &entities.Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	service.UpdatedAt = time.Now()

	if err := s.ambulanceRepo.Update(ctx, service); err != nil {
		return nil, err
	}
	return service, nil
}

// DeleteAmbulance retires an ambulance service from the directory
func (s *AmbulanceAdminService) DeleteAmbulance(ctx context.Context, id string) error {
	return s.ambulanceRepo.Delete(ctx, id)
}

// validateOptionalLocation validates a latitude/longitude pair where both
// must be present together.
func validateOptionalLocation(latitude, longitude *float64) []string {
	var violations []string
	if (latitude == nil) != (longitude == nil) {
		violations = append(violations, "latitude and longitude must be provided together")
	}
	if latitude != nil && (*latitude < -90 || *latitude > 90) {
		violations = append(violations, "latitude must be between -90 and 90")
	}
	if longitude != nil && (*longitude < -180 || *longitude > 180) {
		violations = append(violations, "longitude must be between -180 and 180")
	}
	return violations
}
