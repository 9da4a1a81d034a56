package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when gateway credentials are missing.
var ErrNotConfigured = errors.New("yookassa: shop credentials not configured")

// GatewayError carries the provider's status code and raw body for diagnostics.
type GatewayError struct {
	StatusCode int
	Body       string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("yookassa: gateway returned %d: %s", e.StatusCode, e.Body)
}

const defaultTimeout = 15 * time.Second

// Client wraps the YooKassa REST API. It performs outbound HTTP calls only and
// never mutates local state; callers record outcomes after observing a
// definitive status.
type Client struct {
	shopID    string
	secretKey string
	baseURL   string
	httpc     *http.Client
	log       *zap.SugaredLogger
}

type ClientOptions struct {
	ShopID    string
	SecretKey string
	BaseURL   string
	Logger    *zap.SugaredLogger
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ShopID == "" || opts.SecretKey == "" {
		return nil, ErrNotConfigured
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://api.yookassa.ru/v3"
	}
	return &Client{
		shopID:    opts.ShopID,
		secretKey: opts.SecretKey,
		baseURL:   baseURL,
		httpc:     &http.Client{Timeout: defaultTimeout},
		log:       opts.Logger,
	}, nil
}

// CreatePayment creates a payment object. idempotenceKey must be unique per
// attempt so a network-level retry does not double-charge.
func (c *Client) CreatePayment(ctx context.Context, req *CreatePaymentRequest, idempotenceKey string) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodPost, "/payments", idempotenceKey, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPayment is the read-only poll, used when a webhook is delayed or lost.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodGet, "/payments/"+paymentID, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CapturePayment confirms an authorized payment. amount may be nil for a full
// capture or set for a partial one.
func (c *Client) CapturePayment(ctx context.Context, paymentID string, amount *Amount, idempotenceKey string) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodPost, "/payments/"+paymentID+"/capture", idempotenceKey, &capturePaymentRequest{Amount: amount}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelPayment voids an uncaptured payment.
func (c *Client) CancelPayment(ctx context.Context, paymentID string, idempotenceKey string) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodPost, "/payments/"+paymentID+"/cancel", idempotenceKey, struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRefund refunds a captured payment. The provider enforces that amount
// does not exceed the captured amount; the client does not re-validate.
func (c *Client) CreateRefund(ctx context.Context, paymentID string, amount Amount, description string, idempotenceKey string) (*Refund, error) {
	var out Refund
	req := &createRefundRequest{PaymentID: paymentID, Amount: amount, Description: description}
	if err := c.do(ctx, http.MethodPost, "/refunds", idempotenceKey, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path, idempotenceKey string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("yookassa: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("yookassa: build request: %w", err)
	}
	req.SetBasicAuth(c.shopID, c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	if idempotenceKey != "" {
		req.Header.Set("Idempotence-Key", idempotenceKey)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("yookassa: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("yookassa: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if c.log != nil {
			c.log.Errorw("yookassa_gateway_error",
				"method", method, "path", path,
				"status", resp.StatusCode, "body", string(data))
		}
		return &GatewayError{StatusCode: resp.StatusCode, Body: string(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("yookassa: decode response: %w", err)
		}
	}
	return nil
}
