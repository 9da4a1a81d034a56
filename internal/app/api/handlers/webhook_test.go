package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calibrestore/billing/internal/platform/yookassa"
	"github.com/calibrestore/billing/pkg/response"
)

func webhookEngine(mgr *stubPaymentMgr) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterWebhookRoutes(r.Group("/api"), mgr, zap.NewNop().Sugar())
	return r
}

func TestApiPaymentWebhook_AcknowledgesHandledEvent(t *testing.T) {
	var handled *yookassa.WebhookNotification
	mgr := &stubPaymentMgr{
		handle: func(_ context.Context, n *yookassa.WebhookNotification) error {
			handled = n
			return nil
		},
	}
	r := webhookEngine(mgr)

	w := postJSON(t, r, "/api/payments/webhook", map[string]any{
		"type":  "notification",
		"event": "payment.succeeded",
		"object": map[string]any{
			"id":     "pay-1",
			"status": "succeeded",
			"paid":   true,
			"amount": map[string]any{"value": "42.00", "currency": "RUB"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, handled)
	require.Equal(t, yookassa.WebhookEventPaymentSucceeded, handled.Event)
	require.Equal(t, "pay-1", handled.Object.ID)
}

func TestApiPaymentWebhook_TransientErrorTriggersRetry(t *testing.T) {
	mgr := &stubPaymentMgr{
		handle: func(_ context.Context, _ *yookassa.WebhookNotification) error {
			return errors.New("db unavailable")
		},
	}
	r := webhookEngine(mgr)

	w := postJSON(t, r, "/api/payments/webhook", map[string]any{
		"event":  "payment.succeeded",
		"object": map[string]any{"id": "pay-1"},
	})
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestApiPaymentWebhook_MalformedBodyAcknowledged(t *testing.T) {
	mgr := &stubPaymentMgr{
		handle: func(_ context.Context, _ *yookassa.WebhookNotification) error {
			t.Fatal("handler must not run for malformed body")
			return nil
		},
	}
	r := webhookEngine(mgr)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)
}
