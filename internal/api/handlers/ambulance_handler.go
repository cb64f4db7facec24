package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/carebridge/telemed-backend/internal/application/services"
)

// AmbulanceHandler handles ambulance directory HTTP requests
type AmbulanceHandler struct {
	ambulanceService *services.AmbulanceAdminService
}

// NewAmbulanceHandler creates a new ambulance handler
func NewAmbulanceHandler(ambulanceService *services.AmbulanceAdminService) *AmbulanceHandler {
	return &AmbulanceHandler{
		ambulanceService: ambulanceService,
	}
}

// ListAmbulances handles GET /api/ambulances
func (h *AmbulanceHandler) ListAmbulances(w http.ResponseWriter, r *http.Request) {
	ambulances, err := h.ambulanceService.ListAmbulances(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"ambulances": ambulances,
		"count":      len(ambulances),
	})
}

// GetAmbulance handles GET /api/ambulances/{id}
func (h *AmbulanceHandler) GetAmbulance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "ambulance ID is required")
		return
	}

	ambulance, err := h.ambulanceService.GetAmbulance(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ambulance)
}

// CreateAmbulance handles POST /api/ambulances
func (h *AmbulanceHandler) CreateAmbulance(w http.ResponseWriter, r *http.Request) {
	var req services.CreateAmbulanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ambulance, err := h.ambulanceService.CreateAmbulance(r.Context(), &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, ambulance)
}

// UpdateAmbulance handles PATCH /api/ambulances/{id}
func (h *AmbulanceHandler) UpdateAmbulance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "ambulance ID is required")
		return
	}

	var req services.UpdateAmbulanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ambulance, err := h.ambulanceService.UpdateAmbulance(r.Context(), id, &req)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ambulance)
}

// DeleteAmbulance handles DELETE /api/ambulances/{id}
func (h *AmbulanceHandler) DeleteAmbulance(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "ambulance ID is required")
		return
	}

	if err := h.ambulanceService.DeleteAmbulance(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}
