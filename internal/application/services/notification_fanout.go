package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carebridge/telemed-backend/internal/domain/entities"
	"github.com/carebridge/telemed-backend/internal/domain/providers"
	"github.com/carebridge/telemed-backend/internal/infrastructure/notifications"
	"github.com/carebridge/telemed-backend/internal/infrastructure/observability"
	"github.com/carebridge/telemed-backend/pkg/config"
)

// NotificationFanout composes and dispatches the per-audience messages for
// an emergency. Delivery is best effort on every channel: a send failure is
// logged and recorded in the audit log, never surfaced to the caller. An
// otherwise-valid dispatch must not appear to fail because SMS did.
type NotificationFanout struct {
	sms     providers.SMSProvider
	db      *sqlx.DB
	metrics *observability.Metrics

	operationsPhone string
	countryCode     string
}

// NewNotificationFanout creates a new notification fanout. db and metrics
// may be nil; the audit log and failure counters are then skipped.
func NewNotificationFanout(sms providers.SMSProvider, db *sqlx.DB, metrics *observability.Metrics, cfg *config.DispatchConfig) *NotificationFanout {
	return &NotificationFanout{
		sms:             sms,
		db:              db,
		metrics:         metrics,
		operationsPhone: cfg.OperationsPhone,
		countryCode:     cfg.CountryCode,
	}
}

// Dispatch sends the patient, doctor, admin, and ambulance messages for a
// freshly created emergency and returns the number of ambulance services
// alerted. That count is the attempted candidate count; the gateway gives
// no delivery receipts.
//
// Patient and doctor sends complete before Dispatch returns. The admin send
// runs detached and may complete afterwards. Ambulance sends run
// concurrently and are joined all-settled: each succeeds or fails on its
// own and no failure cancels a sibling.
func (f *NotificationFanout) Dispatch(ctx context.Context, record *entities.EmergencyRecord, assignment *MatchResult, ambulances []RankedAmbulance) int {
	logger := observability.LoggerFromContext(ctx)

	if err := f.send(ctx, record.ID, entities.ChannelPatient, record.Phone, buildPatientMessage(record, assignment)); err != nil {
		logger.Error().Err(err).Str("emergency_id", record.ID).Msg("patient notification failed")
		observability.RecordNotificationFailure(ctx, f.metrics, string(entities.ChannelPatient))
	}

	if assignment != nil && !assignment.GovernmentFallback {
		if err := f.send(ctx, record.ID, entities.ChannelDoctor, assignment.Phone, buildDoctorMessage(record, assignment)); err != nil {
			logger.Error().Err(err).Str("emergency_id", record.ID).Msg("doctor notification failed")
			observability.RecordNotificationFailure(ctx, f.metrics, string(entities.ChannelDoctor))
		}
	}

	if f.operationsPhone != "" {
		// Detached on purpose: the admin alert must not delay the
		// patient-visible response, and its failure is only logged.
		adminBody := buildAdminMessage(record, assignment, len(ambulances))
		go func() {
			bgCtx := context.Background()
			if err := f.send(bgCtx, record.ID, entities.ChannelAdmin, f.operationsPhone, adminBody); err != nil {
				observability.GetLogger().Error().Err(err).Str("emergency_id", record.ID).Msg("admin notification failed")
				observability.RecordNotificationFailure(bgCtx, f.metrics, string(entities.ChannelAdmin))
			}
		}()
	}

	var wg sync.WaitGroup
	for _, ambulance := range ambulances {
		wg.Add(1)
		go func(a RankedAmbulance) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.Error().Interface("panic", r).Str("emergency_id", record.ID).Msg("ambulance notification panicked")
				}
			}()

			if err := f.send(ctx, record.ID, entities.ChannelAmbulance, a.Service.Phone, buildAmbulanceMessage(record, assignment, a)); err != nil {
				logger.Error().Err(err).
					Str("emergency_id", record.ID).
					Str("ambulance_id", a.Service.ID).
					Msg("ambulance notification failed")
				observability.RecordNotificationFailure(ctx, f.metrics, string(entities.ChannelAmbulance))
			}
		}(ambulance)
	}
	wg.Wait()

	return len(ambulances)
}

// SendAdminAlarm sends only the admin alert for the alarm path. Best
// effort, awaited.
func (f *NotificationFanout) SendAdminAlarm(ctx context.Context, record *entities.EmergencyRecord) {
	if f.operationsPhone == "" {
		return
	}
	if err := f.send(ctx, record.ID, entities.ChannelAdmin, f.operationsPhone, buildAlarmMessage(record)); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("emergency_id", record.ID).Msg("alarm notification failed")
		observability.RecordNotificationFailure(ctx, f.metrics, string(entities.ChannelAdmin))
	}
}

// send normalizes the recipient, records the attempt in the audit log, and
// sends through the gateway. Audit failures are logged and swallowed; they
// must never block a send.
func (f *NotificationFanout) send(ctx context.Context, emergencyID string, channel entities.NotificationChannel, recipient, body string) error {
	to := notifications.NormalizePhone(f.countryCode, recipient)

	now := time.Now()
	notification := &entities.DispatchNotification{
		ID:          uuid.New().String(),
		EmergencyID: emergencyID,
		Channel:     channel,
		Recipient:   to,
		Status:      entities.NotificationStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.createAuditRow(ctx, notification)

	messageID, sendErr := f.sms.Send(ctx, to, body)

	now = time.Now()
	if sendErr != nil {
		errMsg := sendErr.Error()
		notification.Status = entities.NotificationStatusFailed
		notification.FailedAt = &now
		notification.ErrorMessage = &errMsg
	} else {
		notification.Status = entities.NotificationStatusSent
		notification.MessageID = &messageID
		notification.SentAt = &now
	}
	notification.UpdatedAt = now
	f.updateAuditRow(ctx, notification)

	return sendErr
}

func (f *NotificationFanout) createAuditRow(ctx context.Context, n *entities.DispatchNotification) {
	if f.db == nil {
		return
	}
	query := `
		INSERT INTO dispatch_notifications
		(id, emergency_id, channel, recipient, status, message_id, sent_at, failed_at, error_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if _, err := f.db.ExecContext(ctx, query,
		n.ID, n.EmergencyID, n.Channel, n.Recipient, n.Status, n.MessageID,
		n.SentAt, n.FailedAt, n.ErrorMessage, n.CreatedAt, n.UpdatedAt,
	); err != nil {
		observability.GetLogger().Warn().Err(err).Str("notification_id", n.ID).Msg("failed to record notification attempt")
	}
}

func (f *NotificationFanout) updateAuditRow(ctx context.Context, n *entities.DispatchNotification) {
	if f.db == nil {
		return
	}
	query := `
		UPDATE dispatch_notifications
		SET status = $1, message_id = $2, sent_at = $3, failed_at = $4, error_message = $5, updated_at = $6
		WHERE id = $7
	`
	if _, err := f.db.ExecContext(ctx, query,
		n.Status, n.MessageID, n.SentAt, n.FailedAt, n.ErrorMessage, n.UpdatedAt, n.ID,
	); err != nil {
		observability.GetLogger().Warn().Err(err).Str("notification_id", n.ID).Msg("failed to update notification attempt")
	}
}

// Message builders. Every optional field (assigned doctor, distance,
// location) is handled explicitly so each audience has a complete message
// on every path.

func buildPatientMessage(record *entities.EmergencyRecord, assignment *MatchResult) string {
	var b strings.Builder
	b.WriteString("CareBridge: we received your emergency request and help is being arranged.")
	if assignment != nil {
		fmt.Fprintf(&b, " Dr. %s (%s) has been notified. Phone: %s.", assignment.FullName, assignment.Specialty, assignment.Phone)
	} else {
		b.WriteString(" Our operations team has been alerted and will contact you shortly.")
	}
	fmt.Fprintf(&b, " Your location: %s", record.MapsLink())
	return b.String()
}

func buildDoctorMessage(record *entities.EmergencyRecord, assignment *MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CareBridge EMERGENCY: you have been assigned a patient. Patient phone: %s.", record.Phone)
	if assignment.DistanceKm != nil {
		fmt.Fprintf(&b, " Approx. distance: %.1f km.", *assignment.DistanceKm)
	}
	fmt.Fprintf(&b, " Location: %s", record.MapsLink())
	return b.String()
}

func buildAdminMessage(record *entities.EmergencyRecord, assignment *MatchResult, ambulanceCount int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CareBridge OPS: emergency %s from %s.", record.ID, record.Phone)
	switch {
	case assignment == nil:
		b.WriteString(" No doctor available.")
	case assignment.GovernmentFallback:
		fmt.Fprintf(&b, " Government fallback: Dr. %s (%s), phone %s.", assignment.FullName, assignment.Specialty, assignment.Phone)
	default:
		fmt.Fprintf(&b, " Assigned: Dr. %s (%s), phone %s.", assignment.FullName, assignment.Specialty, assignment.Phone)
	}
	fmt.Fprintf(&b, " Ambulances alerted: %d.", ambulanceCount)
	fmt.Fprintf(&b, " Location: %s", record.MapsLink())
	return b.String()
}

func buildAmbulanceMessage(record *entities.EmergencyRecord, assignment *MatchResult, ambulance RankedAmbulance) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CareBridge EMERGENCY: patient needs transport. Patient phone: %s.", record.Phone)
	fmt.Fprintf(&b, " Coordinates: %.6f, %.6f.", record.Location.Latitude, record.Location.Longitude)
	if ambulance.DistanceKm != nil {
		fmt.Fprintf(&b, " Approx. distance: %.1f km.", *ambulance.DistanceKm)
	}
	if assignment != nil {
		fmt.Fprintf(&b, " Attending doctor: Dr. %s, phone %s.", assignment.FullName, assignment.Phone)
	}
	fmt.Fprintf(&b, " Location: %s", record.MapsLink())
	return b.String()
}

func buildAlarmMessage(record *entities.EmergencyRecord) string {
	return fmt.Sprintf(
		"CareBridge OPS ALARM: distress signal %s from %s. Location: %s",
		record.ID, record.Phone, record.MapsLink(),
	)
}
