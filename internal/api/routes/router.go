package routes

import (
	"net/http"

	"github.com/carebridge/telemed-backend/internal/api/handlers"
	"github.com/carebridge/telemed-backend/internal/api/middleware"
	"github.com/carebridge/telemed-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	emergencyHandler *handlers.EmergencyHandler
	ambulanceHandler *handlers.AmbulanceHandler
	sseHandler       *handlers.SSEHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router. sseHandler may be nil when no event bus
// is configured; the stream endpoints are then not registered.
func NewRouter(
	emergencyHandler *handlers.EmergencyHandler,
	ambulanceHandler *handlers.AmbulanceHandler,
	sseHandler *handlers.SSEHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:              http.NewServeMux(),
		emergencyHandler: emergencyHandler,
		ambulanceHandler: ambulanceHandler,
		sseHandler:       sseHandler,
		metrics:          metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Emergency dispatch endpoints
	r.mux.HandleFunc("POST /api/emergencies", r.emergencyHandler.CreateEmergency)
	r.mux.HandleFunc("POST /api/emergencies/alarm", r.emergencyHandler.TriggerAlarm)
	r.mux.HandleFunc("GET /api/emergencies", r.emergencyHandler.ListEmergencies)
	r.mux.HandleFunc("GET /api/emergencies/{id}", r.emergencyHandler.GetEmergency)
	r.mux.HandleFunc("PATCH /api/emergencies/{id}", r.emergencyHandler.UpdateEmergency)
	r.mux.HandleFunc("DELETE /api/emergencies/{id}", r.emergencyHandler.DeleteEmergency)
	r.mux.HandleFunc("POST /api/emergencies/{id}/video-call", r.emergencyHandler.GenerateVideoCallLink)

	// Ambulance directory endpoints
	r.mux.HandleFunc("GET /api/ambulances", r.ambulanceHandler.ListAmbulances)
	r.mux.HandleFunc("POST /api/ambulances", r.ambulanceHandler.CreateAmbulance)
	r.mux.HandleFunc("GET /api/ambulances/{id}", r.ambulanceHandler.GetAmbulance)
	r.mux.HandleFunc("PATCH /api/ambulances/{id}", r.ambulanceHandler.UpdateAmbulance)
	r.mux.HandleFunc("DELETE /api/ambulances/{id}", r.ambulanceHandler.DeleteAmbulance)

	// Dashboard stream endpoints
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/stream/emergencies", r.sseHandler.StreamEmergencyUpdates)
		r.mux.HandleFunc("GET /api/stream/emergencies/{id}", r.sseHandler.StreamEmergency)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS must be outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
