package providers

import "context"

// SMSProvider defines the outbound SMS gateway contract. Send returns the
// gateway message id on acceptance; there are no delivery receipts.
type SMSProvider interface {
	Send(ctx context.Context, to, body string) (string, error)
}
