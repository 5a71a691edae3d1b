package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"clinical-scheduling/config"
	"clinical-scheduling/internal/domain/entity"
	"clinical-scheduling/internal/infrastructure/messaging"

	"github.com/goccy/go-json"
)

const EventAppointmentCreated = "appointment.created"

type AppointmentEvent struct {
	Event          string         `json:"event"`
	AppointmentID  uint           `json:"appointment_id"`
	ProfessionalID uint           `json:"professional_id"`
	Date           time.Time      `json:"date"`
	OccurredAt     time.Time      `json:"occurred_at"`
	Payment        PaymentRequest `json:"payment"`
}

// EventNotifier publishes appointment events keyed by appointment id so consumers can de-duplicate.
type EventNotifier struct {
	producer messaging.Producer
	payment  config.PaymentConfig
	now      func() time.Time
}

func NewEventNotifier(producer messaging.Producer, payment config.PaymentConfig) *EventNotifier {
	return &EventNotifier{producer: producer, payment: payment, now: time.Now}
}

func (n *EventNotifier) Name() string {
	return "event_publisher"
}

func (n *EventNotifier) NotifyAppointmentCreated(ctx context.Context, appointment *entity.Appointment) error {
	event := AppointmentEvent{
		Event:          EventAppointmentCreated,
		AppointmentID:  appointment.ID,
		ProfessionalID: appointment.ProfessionalID,
		Date:           appointment.Date.UTC(),
		OccurredAt:     n.now().UTC(),
		Payment:        BuildPaymentRequest(n.payment, appointment),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal appointment event: %w", err)
	}

	key := []byte(strconv.FormatUint(uint64(appointment.ID), 10))
	if err := n.producer.SendMessage(ctx, key, value); err != nil {
		return fmt.Errorf("publish %s: %w", EventAppointmentCreated, err)
	}

	return nil
}
