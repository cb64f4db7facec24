package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/carebridge/telemed-backend/internal/domain/providers"
	"github.com/carebridge/telemed-backend/internal/infrastructure/observability"
)

// SSEHandler streams emergency lifecycle events to dashboard clients over
// Server-Sent Events.
type SSEHandler struct {
	eventBus providers.EventBus
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{eventBus: eventBus}
}

// StreamEmergencyUpdates handles SSE connections for the emergency firehose
// GET /api/stream/emergencies
func (h *SSEHandler) StreamEmergencyUpdates(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, providers.EventChannelEmergencyUpdates, map[string]interface{}{
		"channel":   "emergencies",
		"timestamp": time.Now(),
	})
}

// StreamEmergency handles SSE connections for a single emergency
// GET /api/stream/emergencies/{id}
func (h *SSEHandler) StreamEmergency(w http.ResponseWriter, r *http.Request) {
	emergencyID := r.PathValue("id")
	if emergencyID == "" {
		respondWithError(w, http.StatusBadRequest, "emergency ID is required")
		return
	}

	h.stream(w, r, providers.GetEmergencyChannel(emergencyID), map[string]interface{}{
		"emergency_id": emergencyID,
		"timestamp":    time.Now(),
	})
}

func (h *SSEHandler) stream(w http.ResponseWriter, r *http.Request, channel string, connectedPayload interface{}) {
	logger := observability.LoggerFromContext(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		logger.Error().Err(err).Str("channel", channel).Msg("failed to subscribe to event channel")
		respondWithError(w, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	sendEvent(w, "connected", connectedPayload)
	flusher.Flush()

	// Heartbeats keep intermediaries from closing an idle stream
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			logger.Debug().Str("channel", channel).Msg("sse client disconnected")
			return
		case <-ticker.C:
			sendEvent(w, "heartbeat", map[string]interface{}{"timestamp": time.Now()})
			flusher.Flush()
		case event, open := <-eventChan:
			if !open {
				return
			}
			if event == nil {
				continue
			}
			sendEvent(w, string(event.EventType), event)
			flusher.Flush()
		}
	}
}

// sendEvent writes a single SSE frame
func sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		observability.GetLogger().Error().Err(err).Msg("failed to marshal sse event")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}
