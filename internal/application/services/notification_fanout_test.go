package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carebridge/telemed-backend/internal/application/services"
	"github.com/carebridge/telemed-backend/internal/domain/entities"
	"github.com/carebridge/telemed-backend/pkg/config"
)

// recordingSMS records every send and fails recipients in the fail set.
// Safe for concurrent use; ambulance sends run in parallel.
type recordingSMS struct {
	mu    sync.Mutex
	sent  []string
	fails map[string]bool
}

func (s *recordingSMS) Send(ctx context.Context, to, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, to)
	if s.fails[to] {
		return "", errors.New("gateway rejected")
	}
	return "msg-" + to, nil
}

func (s *recordingSMS) sentTo(to string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, recipient := range s.sent {
		if recipient == to {
			return true
		}
	}
	return false
}

func testDispatchConfig() *config.DispatchConfig {
	return &config.DispatchConfig{
		CountryCode:         "+91",
		AmbulanceAlertLimit: 3,
	}
}

func testRecord() *entities.EmergencyRecord {
	return &entities.EmergencyRecord{
		ID:       "em-1",
		Phone:    "+919876543210",
		Location: entities.Location{Latitude: 19.0, Longitude: 72.8},
		IsActive: true,
	}
}

func rankedAmbulances(ids ...string) []services.RankedAmbulance {
	var ranked []services.RankedAmbulance
	for _, id := range ids {
		ranked = append(ranked, services.RankedAmbulance{
			Service: &entities.AmbulanceService{ID: id, Phone: "+9180000" + id},
		})
	}
	return ranked
}

func TestNotificationFanout_AllChannels(t *testing.T) {
	sms := &recordingSMS{}
	fanout := services.NewNotificationFanout(sms, nil, nil, testDispatchConfig())

	match := &services.MatchResult{
		DoctorID: "doc-1", FullName: "Asha Rao", Specialty: "General", Phone: "+919111111111",
	}

	count := fanout.Dispatch(context.Background(), testRecord(), match, rankedAmbulances("01", "02"))

	assert.Equal(t, 2, count)
	assert.True(t, sms.sentTo("+919876543210"))
	assert.True(t, sms.sentTo("+919111111111"))
	assert.True(t, sms.sentTo("+918000001"))
	assert.True(t, sms.sentTo("+918000002"))
}

func TestNotificationFanout_FailureIsolation(t *testing.T) {
	// The second ambulance send fails; the others still go out and the
	// dispatch reports all attempted candidates.
	sms := &recordingSMS{fails: map[string]bool{"+918000002": true}}
	fanout := services.NewNotificationFanout(sms, nil, nil, testDispatchConfig())

	count := fanout.Dispatch(context.Background(), testRecord(), nil, rankedAmbulances("01", "02", "03"))

	assert.Equal(t, 3, count)
	assert.True(t, sms.sentTo("+918000001"))
	assert.True(t, sms.sentTo("+918000002"))
	assert.True(t, sms.sentTo("+918000003"))
}

func TestNotificationFanout_PatientFailureDoesNotBlockOthers(t *testing.T) {
	sms := &recordingSMS{fails: map[string]bool{"+919876543210": true}}
	fanout := services.NewNotificationFanout(sms, nil, nil, testDispatchConfig())

	match := &services.MatchResult{DoctorID: "doc-1", FullName: "Asha Rao", Phone: "+919111111111"}
	count := fanout.Dispatch(context.Background(), testRecord(), match, rankedAmbulances("01"))

	assert.Equal(t, 1, count)
	assert.True(t, sms.sentTo("+919111111111"))
	assert.True(t, sms.sentTo("+918000001"))
}

func TestNotificationFanout_GovernmentFallbackSkipsDoctor(t *testing.T) {
	sms := &recordingSMS{}
	fanout := services.NewNotificationFanout(sms, nil, nil, testDispatchConfig())

	match := &services.MatchResult{
		DoctorID: "gov-1", FullName: "Dr. Gov", Phone: "+919222222222", GovernmentFallback: true,
	}

	count := fanout.Dispatch(context.Background(), testRecord(), match, nil)

	assert.Equal(t, 0, count)
	assert.True(t, sms.sentTo("+919876543210"))
	assert.False(t, sms.sentTo("+919222222222"))
}

func TestNotificationFanout_NoDoctorNoAmbulances(t *testing.T) {
	sms := &recordingSMS{}
	fanout := services.NewNotificationFanout(sms, nil, nil, testDispatchConfig())

	count := fanout.Dispatch(context.Background(), testRecord(), nil, nil)

	assert.Equal(t, 0, count)
	require.Len(t, sms.sent, 1)
	assert.Equal(t, "+919876543210", sms.sent[0])
}

func TestNotificationFanout_NormalizesRecipients(t *testing.T) {
	sms := &recordingSMS{}
	fanout := services.NewNotificationFanout(sms, nil, nil, testDispatchConfig())

	record := testRecord()
	record.Phone = "098765 43210"
	fanout.Dispatch(context.Background(), record, nil, nil)

	assert.True(t, sms.sentTo("+919876543210"))
}

func TestNotificationFanout_SendAdminAlarm(t *testing.T) {
	sms := &recordingSMS{}
	cfg := testDispatchConfig()
	cfg.OperationsPhone = "+919999999999"
	fanout := services.NewNotificationFanout(sms, nil, nil, cfg)

	fanout.SendAdminAlarm(context.Background(), testRecord())

	assert.True(t, sms.sentTo("+919999999999"))
}
