package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/calibrestore/billing/internal/app/service/wallet"
	"github.com/calibrestore/billing/internal/models"
	"github.com/calibrestore/billing/pkg/response"
	"github.com/calibrestore/billing/pkg/types"
)

type stubLedger struct {
	balance func(ctx context.Context, actorID string) (int64, error)
	credit  func(ctx context.Context, actorID string, amount int64, typ types.WalletTransactionType, description string) (*models.WalletTransaction, error)
	debit   func(ctx context.Context, actorID string, amount int64, typ types.WalletTransactionType, description string) (*models.WalletTransaction, error)
	history func(ctx context.Context, actorID string, limit int) ([]*models.WalletTransaction, error)
}

func (s *stubLedger) Credit(ctx context.Context, actorID string, amount int64, typ types.WalletTransactionType, description string) (*models.WalletTransaction, error) {
	return s.credit(ctx, actorID, amount, typ, description)
}

func (s *stubLedger) Debit(ctx context.Context, actorID string, amount int64, typ types.WalletTransactionType, description string) (*models.WalletTransaction, error) {
	return s.debit(ctx, actorID, amount, typ, description)
}

func (s *stubLedger) Balance(ctx context.Context, actorID string) (int64, error) {
	return s.balance(ctx, actorID)
}

func (s *stubLedger) History(ctx context.Context, actorID string, limit int) ([]*models.WalletTransaction, error) {
	return s.history(ctx, actorID, limit)
}

func (s *stubLedger) ScanTransactions(_ context.Context, _ *wallet.ScanTransactionsRequest) (*wallet.ScanTransactionsResponse, error) {
	panic("not used")
}

func (s *stubLedger) CreditTx(_ *gorm.DB, _ string, _ int64, _ types.WalletTransactionType, _ string, _ *string) (*models.WalletTransaction, error) {
	panic("not used")
}

func (s *stubLedger) DebitTx(_ *gorm.DB, _ string, _ int64, _ types.WalletTransactionType, _ string) (*models.WalletTransaction, error) {
	panic("not used")
}

func walletEngine(ledger wallet.Ledger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterWalletRoutes(r.Group("/api/v1"), ledger)
	return r
}

func TestApiWalletBalance(t *testing.T) {
	ledger := &stubLedger{
		balance: func(_ context.Context, actorID string) (int64, error) {
			require.Equal(t, "actor-1", actorID)
			return 4200, nil
		},
	}
	r := walletEngine(ledger)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/actor-1/balance", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"balance":4200`)
}

func TestApiWalletDebit_InsufficientFunds(t *testing.T) {
	ledger := &stubLedger{
		debit: func(_ context.Context, _ string, _ int64, _ types.WalletTransactionType, _ string) (*models.WalletTransaction, error) {
			return nil, wallet.ErrInsufficientFunds
		},
	}
	r := walletEngine(ledger)

	w := postJSON(t, r, "/api/v1/wallet/debit", map[string]any{
		"actor_id": "actor-1",
		"amount":   1000,
	})
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeInsufficientFunds, env.Code)
}

func TestApiWalletCredit_DefaultsDepositType(t *testing.T) {
	ledger := &stubLedger{
		credit: func(_ context.Context, actorID string, amount int64, typ types.WalletTransactionType, _ string) (*models.WalletTransaction, error) {
			require.Equal(t, types.WalletTransactionTypeDeposit, typ)
			return &models.WalletTransaction{ID: "tx-1", ActorID: actorID, Amount: amount, Type: typ}, nil
		},
	}
	r := walletEngine(ledger)

	w := postJSON(t, r, "/api/v1/wallet/credit", map[string]any{
		"actor_id": "actor-1",
		"amount":   500,
	})
	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeOK, env.Code)
}

func TestApiWalletHistory_InvalidLimit(t *testing.T) {
	r := walletEngine(&stubLedger{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/wallet/actor-1/history?limit=abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w)
	require.Equal(t, response.APIResponseCodeBadRequest, env.Code)
}
