package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/carebridge/telemed-backend/pkg/config"
)

// SMSGatewaySender sends text messages through the platform's SMS gateway
// over its HTTP API. The gateway acknowledges acceptance with a message id;
// it offers no delivery receipts.
type SMSGatewaySender struct {
	apiKey     string
	senderID   string
	baseURL    string
	httpClient *http.Client
}

// NewSMSGatewaySender creates a new SMS gateway sender
func NewSMSGatewaySender(cfg *config.SMSConfig) (*SMSGatewaySender, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("SMS_GATEWAY_API_KEY must be set")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("SMS_GATEWAY_URL must be set")
	}

	return &SMSGatewaySender{
		apiKey:   cfg.APIKey,
		senderID: cfg.SenderID,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// SMSMessage represents an outbound message
type SMSMessage struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

// SMSResponse represents the gateway API response
type SMSResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

// Send sends a text message to a single recipient
func (s *SMSGatewaySender) Send(ctx context.Context, to, body string) (string, error) {
	message := SMSMessage{
		From: s.senderID,
		To:   to,
		Body: body,
	}

	jsonData, err := json.Marshal(message)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/v1/messages", s.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("SMS gateway error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var smsResp SMSResponse
	if err := json.Unmarshal(respBody, &smsResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if smsResp.MessageID == "" {
		return "", fmt.Errorf("no message id in response")
	}

	return smsResp.MessageID, nil
}
