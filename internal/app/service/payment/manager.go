package payment

import (
	"context"
	"errors"

	"github.com/calibrestore/billing/internal/models"
	"github.com/calibrestore/billing/internal/platform/yookassa"
	"github.com/calibrestore/billing/pkg/types"
)

var (
	// ErrAttemptNotFound is returned for operations on unknown payment ids.
	ErrAttemptNotFound = errors.New("payment: attempt not found")
	// ErrAttemptTerminal rejects transitions on a payment that already
	// reached succeeded or canceled.
	ErrAttemptTerminal = errors.New("payment: attempt already terminal")
	// ErrActorMismatch rejects cancellation of another actor's payment.
	ErrActorMismatch = errors.New("payment: attempt belongs to another actor")
)

// Gateway is the outbound payment provider surface. Implemented by
// yookassa.Client; stubbed in tests.
type Gateway interface {
	CreatePayment(ctx context.Context, req *yookassa.CreatePaymentRequest, idempotenceKey string) (*yookassa.Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*yookassa.Payment, error)
	CapturePayment(ctx context.Context, paymentID string, amount *yookassa.Amount, idempotenceKey string) (*yookassa.Payment, error)
	CancelPayment(ctx context.Context, paymentID string, idempotenceKey string) (*yookassa.Payment, error)
	CreateRefund(ctx context.Context, paymentID string, amount yookassa.Amount, description string, idempotenceKey string) (*yookassa.Refund, error)
}

type CreatePaymentResult struct {
	AttemptID       string                     `json:"attempt_id"`
	PaymentID       string                     `json:"payment_id,omitempty"`
	Status          types.PaymentAttemptStatus `json:"status"`
	ConfirmationURL string                     `json:"confirmation_url,omitempty"`
}

type VerifyResult struct {
	Status yookassa.PaymentStatus `json:"status"`
	Paid   bool                   `json:"paid"`
}

type ScanAttemptsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanAttemptsResponse struct {
	Items []*models.PaymentAttempt `json:"items"`
	Total int64                    `json:"total"`
}

// Manager orchestrates the purchase flow: payment attempts against the
// gateway and the exactly-once application of their effects.
type Manager interface {
	// CreateTariffPayment starts a gateway-hosted checkout for a tariff. A
	// zero-price tariff activates immediately without a gateway round trip.
	CreateTariffPayment(ctx context.Context, actorID, tariffID, returnURL string) (*CreatePaymentResult, error)
	// CreateDepositPayment starts a gateway-hosted checkout for a wallet top-up.
	CreateDepositPayment(ctx context.Context, actorID string, amount int64, returnURL string) (*CreatePaymentResult, error)
	// Verify polls the gateway; a succeeded payment funnels through the same
	// idempotent apply path as the webhook, so both may run concurrently.
	Verify(ctx context.Context, paymentID string) (*VerifyResult, error)
	// Cancel voids a still-pending payment at the user's request.
	Cancel(ctx context.Context, actorID, paymentID string) error
	// Refund issues a gateway refund; for wallet deposits it also appends the
	// offsetting ledger entry.
	Refund(ctx context.Context, paymentID string, amount int64, description string) error
	// HandleNotification applies a webhook push. A nil return means the event
	// is acknowledged (including no-op replays); a non-nil return signals a
	// transient failure the provider should redeliver.
	HandleNotification(ctx context.Context, n *yookassa.WebhookNotification) error
	// PollPending re-verifies stale pending attempts; the bounded fallback
	// for delayed or lost webhooks.
	PollPending(ctx context.Context) error
	// ScanAttempts backs the admin list pages.
	ScanAttempts(ctx context.Context, req *ScanAttemptsRequest) (*ScanAttemptsResponse, error)

	GatewayConfigured() bool
}
