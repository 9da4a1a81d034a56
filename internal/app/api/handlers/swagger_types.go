package handlers

import (
	"time"

	"github.com/calibrestore/billing/internal/app/service/payment"
	"github.com/calibrestore/billing/internal/app/service/statistics"
	"github.com/calibrestore/billing/internal/app/service/wallet"
	"github.com/calibrestore/billing/pkg/response"
	"github.com/calibrestore/billing/pkg/types"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespTariffList wraps the tariff catalog in the standard envelope.
type RespTariffList struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []*types.Tariff          `json:"data"`
}

// RespTariff wraps a single tariff in the standard envelope.
type RespTariff struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    types.Tariff             `json:"data"`
}

// RespCreatePayment wraps CreatePaymentResult in the standard envelope.
type RespCreatePayment struct {
	Code    response.APIResponseCode    `json:"code"`
	Message string                      `json:"message"`
	Data    payment.CreatePaymentResult `json:"data"`
}

// RespVerifyPayment wraps VerifyResult in the standard envelope.
type RespVerifyPayment struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    payment.VerifyResult     `json:"data"`
}

// RespWalletBalance wraps the derived balance in the standard envelope.
type RespWalletBalance struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    walletBalanceResp        `json:"data"`
}

// RespWalletTransaction wraps a single ledger entry in the standard envelope.
type RespWalletTransaction struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    SwaggerWalletTransaction `json:"data"`
}

// RespWalletHistory wraps a list of ledger entries in the standard envelope.
type RespWalletHistory struct {
	Code    response.APIResponseCode   `json:"code"`
	Message string                     `json:"message"`
	Data    []SwaggerWalletTransaction `json:"data"`
}

// RespSubscriptionInfo wraps SubscriptionInfo in the standard envelope.
type RespSubscriptionInfo struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    types.SubscriptionInfo   `json:"data"`
}

// RespScanAttempts wraps ScanAttemptsResponse in the standard envelope.
type RespScanAttempts struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    payment.ScanAttemptsResponse `json:"data"`
}

// RespScanTransactions wraps ScanTransactionsResponse in the standard envelope.
type RespScanTransactions struct {
	Code    response.APIResponseCode        `json:"code"`
	Message string                          `json:"message"`
	Data    wallet.ScanTransactionsResponse `json:"data"`
}

// RespDailyStatistics wraps a list of daily snapshots in the standard envelope.
type RespDailyStatistics struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []statistics.DailyStat   `json:"data"`
}

// SwaggerWalletTransaction is a simplified view of models.WalletTransaction
// for documentation purposes.
type SwaggerWalletTransaction struct {
	ID          string                        `json:"id"`
	ActorID     string                        `json:"actor_id"`
	Type        types.WalletTransactionType   `json:"type"`
	Amount      int64                         `json:"amount"`
	Currency    string                        `json:"currency"`
	Description string                        `json:"description"`
	Status      types.WalletTransactionStatus `json:"status"`
	CreatedAt   time.Time                     `json:"created_at"`
}
