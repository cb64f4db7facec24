package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/carebridge/telemed-backend/internal/application/services"
)

// EmergencyHandler handles emergency dispatch HTTP requests
type EmergencyHandler struct {
	emergencyService *services.EmergencyService
}

// NewEmergencyHandler creates a new emergency handler
func NewEmergencyHandler(emergencyService *services.EmergencyService) *EmergencyHandler {
	return &EmergencyHandler{
		emergencyService: emergencyService,
	}
}

// CreateEmergency handles POST /api/emergencies
func (h *EmergencyHandler) CreateEmergency(w http.ResponseWriter, r *http.Request) {
	var req services.CreateEmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.emergencyService.CreateEmergency(r.Context(), &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// TriggerAlarm handles POST /api/emergencies/alarm
func (h *EmergencyHandler) TriggerAlarm(w http.ResponseWriter, r *http.Request) {
	var req services.CreateEmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.emergencyService.TriggerAlarm(r.Context(), &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// GetEmergency handles GET /api/emergencies/{id}
func (h *EmergencyHandler) GetEmergency(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "emergency ID is required")
		return
	}

	record, err := h.emergencyService.GetEmergency(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// ListEmergencies handles GET /api/emergencies
func (h *EmergencyHandler) ListEmergencies(w http.ResponseWriter, r *http.Request) {
	records, err := h.emergencyService.ListEmergencies(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"emergencies": records,
		"count":       len(records),
	})
}

// UpdateEmergency handles PATCH /api/emergencies/{id}
func (h *EmergencyHandler) UpdateEmergency(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "emergency ID is required")
		return
	}

	var req services.UpdateEmergencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.emergencyService.UpdateEmergency(r.Context(), id, &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// DeleteEmergency handles DELETE /api/emergencies/{id}
func (h *EmergencyHandler) DeleteEmergency(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "emergency ID is required")
		return
	}

	if err := h.emergencyService.DeleteEmergency(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// GenerateVideoCallLink handles POST /api/emergencies/{id}/video-call
func (h *EmergencyHandler) GenerateVideoCallLink(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "emergency ID is required")
		return
	}

	result, err := h.emergencyService.GenerateVideoCallLink(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
