package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/carebridge/telemed-backend/internal/infrastructure/observability"
)

// LogSender is a development stand-in for the SMS gateway. Messages are
// logged instead of sent and a synthetic message id is returned.
type LogSender struct{}

// NewLogSender creates a new log-only sender
func NewLogSender() *LogSender {
	return &LogSender{}
}

// Send logs the message and returns a synthetic message id
func (s *LogSender) Send(ctx context.Context, to, body string) (string, error) {
	messageID := uuid.New().String()
	observability.LoggerFromContext(ctx).Info().
		Str("to", to).
		Str("message_id", messageID).
		Str("body", body).
		Msg("sms (log only)")
	return messageID, nil
}
