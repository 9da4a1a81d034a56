package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/calibrestore/billing/internal/app/service/payment"
	"github.com/calibrestore/billing/internal/platform/yookassa"
	"github.com/calibrestore/billing/pkg/response"
	"github.com/calibrestore/billing/pkg/types"
)

type stubPaymentMgr struct {
	createTariff  func(ctx context.Context, actorID, tariffID, returnURL string) (*payment.CreatePaymentResult, error)
	createDeposit func(ctx context.Context, actorID string, amount int64, returnURL string) (*payment.CreatePaymentResult, error)
	verify        func(ctx context.Context, paymentID string) (*payment.VerifyResult, error)
	cancel        func(ctx context.Context, actorID, paymentID string) error
	handle        func(ctx context.Context, n *yookassa.WebhookNotification) error
}

func (s *stubPaymentMgr) CreateTariffPayment(ctx context.Context, actorID, tariffID, returnURL string) (*payment.CreatePaymentResult, error) {
	return s.createTariff(ctx, actorID, tariffID, returnURL)
}

func (s *stubPaymentMgr) CreateDepositPayment(ctx context.Context, actorID string, amount int64, returnURL string) (*payment.CreatePaymentResult, error) {
	return s.createDeposit(ctx, actorID, amount, returnURL)
}

func (s *stubPaymentMgr) Verify(ctx context.Context, paymentID string) (*payment.VerifyResult, error) {
	return s.verify(ctx, paymentID)
}

func (s *stubPaymentMgr) Cancel(ctx context.Context, actorID, paymentID string) error {
	return s.cancel(ctx, actorID, paymentID)
}

func (s *stubPaymentMgr) Refund(_ context.Context, _ string, _ int64, _ string) error {
	panic("not used")
}

func (s *stubPaymentMgr) HandleNotification(ctx context.Context, n *yookassa.WebhookNotification) error {
	return s.handle(ctx, n)
}

func (s *stubPaymentMgr) PollPending(_ context.Context) error { panic("not used") }

func (s *stubPaymentMgr) ScanAttempts(_ context.Context, _ *payment.ScanAttemptsRequest) (*payment.ScanAttemptsResponse, error) {
	panic("not used")
}

func (s *stubPaymentMgr) GatewayConfigured() bool { return true }

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.APIResponse[json.RawMessage] {
	t.Helper()
	var env response.APIResponse[json.RawMessage]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestApiCreatePayment_TariffCheckout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mgr := &stubPaymentMgr{
		createTariff: func(_ context.Context, actorID, tariffID, _ string) (*payment.CreatePaymentResult, error) {
			require.Equal(t, "actor-1", actorID)
			require.Equal(t, "tariff_monthly", tariffID)
			return &payment.CreatePaymentResult{
				AttemptID:       "att-1",
				PaymentID:       "pay-1",
				Status:          types.PaymentAttemptStatusPending,
				ConfirmationURL: "https://pay.example/confirm",
			}, nil
		},
	}
	r := gin.New()
	RegisterPaymentRoutes(r.Group("/api/v1"), mgr)

	w := postJSON(t, r, "/api/v1/payments/create", map[string]any{
		"actor_id":  "actor-1",
		"purpose":   "tariff",
		"tariff_id": "tariff_monthly",
	})
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeOK, env.Code)
	require.Contains(t, w.Body.String(), "https://pay.example/confirm")
}

func TestApiCreatePayment_UnknownPurpose(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentRoutes(r.Group("/api/v1"), &stubPaymentMgr{})

	w := postJSON(t, r, "/api/v1/payments/create", map[string]any{
		"actor_id": "actor-1",
		"purpose":  "lottery",
	})
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)
}

func TestApiCreatePayment_MissingActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterPaymentRoutes(r.Group("/api/v1"), &stubPaymentMgr{})

	w := postJSON(t, r, "/api/v1/payments/create", map[string]any{"purpose": "tariff"})
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)
}

func TestApiVerifyPayment_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mgr := &stubPaymentMgr{
		verify: func(_ context.Context, _ string) (*payment.VerifyResult, error) {
			return nil, payment.ErrAttemptNotFound
		},
	}
	r := gin.New()
	RegisterPaymentRoutes(r.Group("/api/v1"), mgr)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/verify/pay-404", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeNotFound, env.Code)
}

func TestApiCancelPayment_ActorMismatch(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mgr := &stubPaymentMgr{
		cancel: func(_ context.Context, actorID, paymentID string) error {
			require.Equal(t, "actor-2", actorID)
			require.Equal(t, "pay-1", paymentID)
			return payment.ErrActorMismatch
		},
	}
	r := gin.New()
	RegisterPaymentRoutes(r.Group("/api/v1"), mgr)

	w := postJSON(t, r, "/api/v1/payments/pay-1/cancel", map[string]any{"actor_id": "actor-2"})
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)
}
