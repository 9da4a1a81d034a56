package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	subsvc "github.com/calibrestore/billing/internal/app/service/subscription"
	"github.com/calibrestore/billing/internal/app/service/wallet"
	"github.com/calibrestore/billing/internal/models"
	"github.com/calibrestore/billing/pkg/response"
	"github.com/calibrestore/billing/pkg/types"
)

type stubSubMgr struct {
	activate        func(ctx context.Context, actorID, tariffID string) (*models.Subscription, error)
	status          func(ctx context.Context, actorID string) (*types.SubscriptionInfo, error)
	registerProduct func(ctx context.Context, actorID string) error
}

func (s *stubSubMgr) Activate(ctx context.Context, actorID, tariffID string) (*models.Subscription, error) {
	return s.activate(ctx, actorID, tariffID)
}

func (s *stubSubMgr) ActivateTx(_ *gorm.DB, _, _ string, _ time.Time) (*models.Subscription, error) {
	panic("not used")
}

func (s *stubSubMgr) Status(ctx context.Context, actorID string) (*types.SubscriptionInfo, error) {
	return s.status(ctx, actorID)
}

func (s *stubSubMgr) CancelAutoRenew(_ context.Context, _ string) error { return nil }
func (s *stubSubMgr) ResumeAutoRenew(_ context.Context, _ string) error { return nil }

func (s *stubSubMgr) RegisterProduct(ctx context.Context, actorID string) error {
	return s.registerProduct(ctx, actorID)
}

func (s *stubSubMgr) ReleaseProduct(_ context.Context, _ string) error { return nil }

func subscriptionEngine(mgr subsvc.Manager) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterSubscriptionRoutes(r.Group("/api/v1"), mgr)
	return r
}

func TestApiSubscriptionStatus(t *testing.T) {
	expire := time.Now().Add(10 * 24 * time.Hour)
	mgr := &stubSubMgr{
		status: func(_ context.Context, actorID string) (*types.SubscriptionInfo, error) {
			require.Equal(t, "actor-1", actorID)
			return &types.SubscriptionInfo{
				IsActive:      true,
				TariffID:      "tariff_monthly",
				ExpireAt:      &expire,
				DaysRemaining: 10,
				AutoRenew:     true,
			}, nil
		},
	}
	r := subscriptionEngine(mgr)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/actor-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"is_active":true`)
	require.Contains(t, w.Body.String(), `"days_remaining":10`)
}

func TestApiActivateSubscription_InsufficientFunds(t *testing.T) {
	mgr := &stubSubMgr{
		activate: func(_ context.Context, _, _ string) (*models.Subscription, error) {
			return nil, wallet.ErrInsufficientFunds
		},
	}
	r := subscriptionEngine(mgr)

	w := postJSON(t, r, "/api/v1/subscriptions/activate", map[string]any{
		"actor_id":  "actor-1",
		"tariff_id": "tariff_monthly",
	})
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeInsufficientFunds, env.Code)
}

func TestApiRegisterProduct_LimitReached(t *testing.T) {
	mgr := &stubSubMgr{
		registerProduct: func(_ context.Context, _ string) error {
			return subsvc.ErrProductLimitReached
		},
	}
	r := subscriptionEngine(mgr)

	w := postJSON(t, r, "/api/v1/subscriptions/actor-1/products/register", nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)
}
