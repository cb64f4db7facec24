package providers

import (
	"context"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// emergency lifecycle events
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.EmergencyEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.EmergencyEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelEmergencyUpdates is the firehose channel for all
	// emergency lifecycle events
	EventChannelEmergencyUpdates = "emergencies:updates"

	// EventChannelEmergencyPrefix is the prefix for per-record channels
	EventChannelEmergencyPrefix = "emergency:"
)

// GetEmergencyChannel returns the channel name for a specific emergency
func GetEmergencyChannel(emergencyID string) string {
	return EventChannelEmergencyPrefix + emergencyID
}
