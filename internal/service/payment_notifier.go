package service

import (
	"context"
	"fmt"

	"clinical-scheduling/config"
	"clinical-scheduling/internal/domain/entity"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	billingTypeCreditCard = "CREDIT_CARD"
	paymentStatusSuccess  = "success"
)

// Amount renders as a JSON number with two decimal places.
type Amount decimal.Decimal

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(a).StringFixed(2)), nil
}

func (a Amount) String() string {
	return decimal.Decimal(a).StringFixed(2)
}

type PaymentSplit struct {
	WalletID   string `json:"walletId"`
	FixedValue Amount `json:"fixedValue"`
}

// PaymentRequest is the charge body sent to the payment processor.
type PaymentRequest struct {
	Customer    string         `json:"customer"`
	BillingType string         `json:"billingType"`
	Value       Amount         `json:"value"`
	DueDate     string         `json:"dueDate"`
	Description string         `json:"description"`
	Split       []PaymentSplit `json:"split"`
}

type PaymentResult struct {
	Status    string `json:"status"`
	PaymentID string `json:"payment_id"`
}

// BuildPaymentRequest splits the configured charge between the professional and the platform.
func BuildPaymentRequest(cfg config.PaymentConfig, appointment *entity.Appointment) PaymentRequest {
	return PaymentRequest{
		Customer:    cfg.Customer,
		BillingType: billingTypeCreditCard,
		Value:       Amount(cfg.Value),
		DueDate:     appointment.Date.UTC().Format("2006-01-02"),
		Description: fmt.Sprintf("Appointment with %s on %s",
			appointment.Professional.SocialName,
			appointment.Date.UTC().Format("2006-01-02 15:04"),
		),
		Split: []PaymentSplit{
			{WalletID: cfg.ProfessionalWallet, FixedValue: Amount(cfg.ProfessionalShare)},
			{WalletID: cfg.PlatformWallet, FixedValue: Amount(cfg.PlatformFee())},
		},
	}
}

// PaymentSplitNotifier stands in for the processor integration: it builds and logs the
// split charge without sending it anywhere.
type PaymentSplitNotifier struct {
	log    *logrus.Logger
	config config.PaymentConfig
}

func NewPaymentSplitNotifier(log *logrus.Logger, cfg config.PaymentConfig) *PaymentSplitNotifier {
	return &PaymentSplitNotifier{log: log, config: cfg}
}

func (n *PaymentSplitNotifier) Name() string {
	return "payment_split"
}

func (n *PaymentSplitNotifier) NotifyAppointmentCreated(ctx context.Context, appointment *entity.Appointment) error {
	_, err := n.Charge(ctx, appointment)
	return err
}

func (n *PaymentSplitNotifier) Charge(ctx context.Context, appointment *entity.Appointment) (*PaymentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload := BuildPaymentRequest(n.config, appointment)
	result := &PaymentResult{
		Status:    paymentStatusSuccess,
		PaymentID: fmt.Sprintf("pay_%09d", appointment.ID),
	}

	n.log.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"payment_id":     result.PaymentID,
		"value":          payload.Value.String(),
		"due_date":       payload.DueDate,
		"split":          payload.Split,
	}).Info("Payment split prepared")

	return result, nil
}
