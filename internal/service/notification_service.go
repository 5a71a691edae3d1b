package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"clinical-scheduling/internal/domain/entity"
	"clinical-scheduling/internal/infrastructure/monitoring"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

// AppointmentNotifier reacts to a committed appointment.
type AppointmentNotifier interface {
	Name() string
	NotifyAppointmentCreated(ctx context.Context, appointment *entity.Appointment) error
}

// NotificationService runs notifiers off the request path. Failures are logged and
// reported, never returned; nothing is retried.
type NotificationService interface {
	AppointmentCreated(appointment entity.Appointment)
	Close()
}

type notificationService struct {
	log       *logrus.Logger
	metrics   *monitoring.Metrics
	notifiers []AppointmentNotifier
	timeout   time.Duration

	mu     sync.Mutex
	closed bool
	wg     conc.WaitGroup
}

func NewNotificationService(log *logrus.Logger, metrics *monitoring.Metrics, timeout time.Duration, notifiers ...AppointmentNotifier) NotificationService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &notificationService{
		log:       log,
		metrics:   metrics,
		notifiers: notifiers,
		timeout:   timeout,
	}
}

// AppointmentCreated takes a copy so later changes by the caller are not observed.
func (s *notificationService) AppointmentCreated(appointment entity.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		s.log.Warnf("Notification service closed, dropping notifications for appointment %d", appointment.ID)
		return
	}

	for _, notifier := range s.notifiers {
		notifier := notifier
		s.wg.Go(func() {
			s.run(notifier, &appointment)
		})
	}
}

func (s *notificationService) run(notifier AppointmentNotifier, appointment *entity.Appointment) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var err error
	var pc panics.Catcher
	pc.Try(func() {
		err = notifier.NotifyAppointmentCreated(ctx, appointment)
	})
	if recovered := pc.Recovered(); recovered != nil {
		err = fmt.Errorf("notifier panicked: %w", recovered.AsError())
	}

	s.metrics.ObserveNotification(notifier.Name(), err)

	if err != nil {
		s.log.WithFields(logrus.Fields{
			"notifier":       notifier.Name(),
			"appointment_id": appointment.ID,
		}).Warnf("Failed to notify appointment created: %+v", err)
		monitoring.CaptureError(err, map[string]interface{}{
			"notifier":       notifier.Name(),
			"appointment_id": appointment.ID,
		})
	}
}

// Close stops accepting work and waits for in-flight notifications.
func (s *notificationService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
}
