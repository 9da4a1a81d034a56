package yookassa

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(ClientOptions{ShopID: "shop-1", SecretKey: "sk-test", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(ClientOptions{ShopID: "", SecretKey: ""})
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewClient(ClientOptions{ShopID: "shop", SecretKey: ""})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestCreatePaymentSendsAuthAndIdempotenceKey(t *testing.T) {
	var gotKey, gotUser, gotPass string
	var gotBody CreatePaymentRequest

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/payments", r.URL.Path)
		gotKey = r.Header.Get("Idempotence-Key")
		gotUser, gotPass, _ = r.BasicAuth()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(Payment{
			ID:           "p1",
			Status:       PaymentStatusPending,
			Amount:       NewAmount(4200, "RUB"),
			Confirmation: &Confirmation{Type: "redirect", ConfirmationURL: "https://pay.example/c"},
		})
	})

	p, err := c.CreatePayment(context.Background(), &CreatePaymentRequest{
		Amount:       NewAmount(4200, "RUB"),
		Capture:      true,
		Confirmation: Confirmation{Type: "redirect", ReturnURL: "https://shop.example/done"},
		Description:  "Monthly tariff",
		Metadata:     map[string]string{"actor_id": "seller-1"},
	}, "seller-1-monthly-123")
	require.NoError(t, err)

	assert.Equal(t, "seller-1-monthly-123", gotKey)
	assert.Equal(t, "shop-1", gotUser)
	assert.Equal(t, "sk-test", gotPass)
	assert.Equal(t, "42.00", gotBody.Amount.Value)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "https://pay.example/c", p.Confirmation.ConfirmationURL)
}

func TestGatewayErrorCarriesStatusAndBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"type":"error","code":"invalid_credentials"}`))
	})

	_, err := c.GetPayment(context.Background(), "p1")
	require.Error(t, err)

	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusForbidden, gwErr.StatusCode)
	assert.Contains(t, gwErr.Body, "invalid_credentials")
}

func TestAmountRoundTrip(t *testing.T) {
	tests := []struct {
		minor int64
		value string
	}{
		{minor: 0, value: "0.00"},
		{minor: 5, value: "0.05"},
		{minor: 4200, value: "42.00"},
		{minor: 123456789, value: "1234567.89"},
		{minor: -4200, value: "-42.00"},
	}

	for _, tt := range tests {
		a := NewAmount(tt.minor, "RUB")
		assert.Equal(t, tt.value, a.Value)

		back, err := a.MinorUnits()
		require.NoError(t, err)
		assert.Equal(t, tt.minor, back)
	}
}

func TestCancelAndCaptureEndpoints(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_ = json.NewEncoder(w).Encode(Payment{ID: "p1", Status: PaymentStatusCanceled})
	})

	_, err := c.CancelPayment(context.Background(), "p1", "k1")
	require.NoError(t, err)
	_, err = c.CapturePayment(context.Background(), "p1", nil, "k2")
	require.NoError(t, err)

	assert.Equal(t, []string{"/payments/p1/cancel", "/payments/p1/capture"}, paths)
}
