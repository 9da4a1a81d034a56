package yookassa

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "pending"
	PaymentStatusWaitingForCapture PaymentStatus = "waiting_for_capture"
	PaymentStatusSucceeded         PaymentStatus = "succeeded"
	PaymentStatusCanceled          PaymentStatus = "canceled"
)

func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSucceeded || s == PaymentStatusCanceled
}

// Amount is the wire representation: a decimal string plus ISO currency code,
// e.g. {"value": "42.00", "currency": "RUB"}.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// NewAmount renders minor currency units as the gateway's decimal string.
func NewAmount(minor int64, currency string) Amount {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return Amount{
		Value:    fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100),
		Currency: currency,
	}
}

// MinorUnits parses the decimal string back to minor units.
func (a Amount) MinorUnits() (int64, error) {
	whole, frac, _ := strings.Cut(a.Value, ".")
	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount value %q: %w", a.Value, err)
	}
	var cents int64
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount value %q: %w", a.Value, err)
		}
	}
	if major < 0 || strings.HasPrefix(whole, "-") {
		return major*100 - cents, nil
	}
	return major*100 + cents, nil
}

type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

// Payment is the gateway's payment object. Status transitions are driven
// exclusively by the provider.
type Payment struct {
	ID           string            `json:"id"`
	Status       PaymentStatus     `json:"status"`
	Paid         bool              `json:"paid"`
	Amount       Amount            `json:"amount"`
	Description  string            `json:"description,omitempty"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	CapturedAt   *time.Time        `json:"captured_at,omitempty"`
}

type Refund struct {
	ID          string    `json:"id"`
	PaymentID   string    `json:"payment_id"`
	Status      string    `json:"status"`
	Amount      Amount    `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type CreatePaymentRequest struct {
	Amount       Amount            `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation Confirmation      `json:"confirmation"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type createRefundRequest struct {
	PaymentID   string `json:"payment_id"`
	Amount      Amount `json:"amount"`
	Description string `json:"description,omitempty"`
}

type capturePaymentRequest struct {
	Amount *Amount `json:"amount,omitempty"`
}

// WebhookNotification is the inbound push body: {"event": ..., "object": ...}.
type WebhookNotification struct {
	Type   string  `json:"type"`
	Event  string  `json:"event"`
	Object Payment `json:"object"`
}

const (
	WebhookEventPaymentSucceeded         = "payment.succeeded"
	WebhookEventPaymentCanceled          = "payment.canceled"
	WebhookEventPaymentWaitingForCapture = "payment.waiting_for_capture"
	WebhookEventRefundSucceeded          = "refund.succeeded"
)
