package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clinical-scheduling/config"
	"clinical-scheduling/internal/domain/entity"
	"clinical-scheduling/internal/infrastructure/monitoring"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	name  string
	err   error
	panic bool

	mu   sync.Mutex
	seen []uint
}

func (n *recordingNotifier) Name() string { return n.name }

func (n *recordingNotifier) NotifyAppointmentCreated(_ context.Context, a *entity.Appointment) error {
	if n.panic {
		panic("notifier exploded")
	}
	n.mu.Lock()
	n.seen = append(n.seen, a.ID)
	n.mu.Unlock()
	return n.err
}

type fakeProducer struct {
	key, value []byte
	err        error
}

func (p *fakeProducer) SendMessage(_ context.Context, key, value []byte) error {
	p.key, p.value = key, value
	return p.err
}

func (p *fakeProducer) Close() error { return nil }

func paymentConfig() config.PaymentConfig {
	return config.PaymentConfig{
		Customer:           "cus_1",
		Value:              decimal.NewFromInt(200),
		ProfessionalShare:  decimal.NewFromInt(180),
		ProfessionalWallet: "wallet_pro",
		PlatformWallet:     "wallet_platform",
	}
}

func sampleAppointment() *entity.Appointment {
	return &entity.Appointment{
		ID:             7,
		Date:           time.Date(2030, 3, 4, 14, 30, 0, 0, time.UTC),
		ProfessionalID: 3,
		Professional:   entity.Professional{ID: 3, SocialName: "Dr. Joane Silva"},
	}
}

func TestBuildPaymentRequestSplitsValue(t *testing.T) {
	req := BuildPaymentRequest(paymentConfig(), sampleAppointment())

	raw, err := json.Marshal(req)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"customer": "cus_1",
		"billingType": "CREDIT_CARD",
		"value": 200.00,
		"dueDate": "2030-03-04",
		"description": "Appointment with Dr. Joane Silva on 2030-03-04 14:30",
		"split": [
			{"walletId": "wallet_pro", "fixedValue": 180.00},
			{"walletId": "wallet_platform", "fixedValue": 20.00}
		]
	}`, string(raw))
}

func TestPaymentSplitNotifierLogsCharge(t *testing.T) {
	log, hook := test.NewNullLogger()
	notifier := NewPaymentSplitNotifier(log, paymentConfig())

	result, err := notifier.Charge(context.Background(), sampleAppointment())
	require.NoError(t, err)
	assert.Equal(t, "success", result.Status)
	assert.Equal(t, "pay_000000007", result.PaymentID)

	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, "Payment split prepared", hook.LastEntry().Message)
	assert.Equal(t, "200.00", hook.LastEntry().Data["value"])
}

func TestEventNotifierPublishesKeyedEvent(t *testing.T) {
	producer := &fakeProducer{}
	notifier := NewEventNotifier(producer, paymentConfig())

	require.NoError(t, notifier.NotifyAppointmentCreated(context.Background(), sampleAppointment()))
	assert.Equal(t, "7", string(producer.key))

	var event AppointmentEvent
	require.NoError(t, json.Unmarshal(producer.value, &event))
	assert.Equal(t, EventAppointmentCreated, event.Event)
	assert.Equal(t, uint(3), event.ProfessionalID)

	producer.err = errors.New("broker down")
	assert.Error(t, notifier.NotifyAppointmentCreated(context.Background(), sampleAppointment()))
}

func TestNotificationServiceSwallowsFailures(t *testing.T) {
	log, hook := test.NewNullLogger()
	metrics := monitoring.NewMetrics(prometheus.NewRegistry())

	ok := &recordingNotifier{name: "ok"}
	failing := &recordingNotifier{name: "failing", err: errors.New("unreachable")}
	panicking := &recordingNotifier{name: "panicking", panic: true}

	svc := NewNotificationService(log, metrics, time.Second, ok, failing, panicking)
	svc.AppointmentCreated(*sampleAppointment())
	svc.Close()

	assert.Equal(t, []uint{7}, ok.seen)
	assert.Equal(t, []uint{7}, failing.seen)

	warnings := 0
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warnings++
		}
	}
	assert.Equal(t, 2, warnings)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues("ok", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues("panicking", "failure")))
}

func TestNotificationServiceDropsAfterClose(t *testing.T) {
	log, _ := test.NewNullLogger()
	ok := &recordingNotifier{name: "ok"}

	svc := NewNotificationService(log, nil, time.Second, ok)
	svc.Close()
	svc.AppointmentCreated(*sampleAppointment())
	svc.Close()

	assert.Empty(t, ok.seen)
}
