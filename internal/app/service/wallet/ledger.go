package wallet

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/calibrestore/billing/internal/models"
	"github.com/calibrestore/billing/pkg/types"
)

var (
	// ErrInvalidAmount rejects non-positive credit/debit amounts.
	ErrInvalidAmount = errors.New("wallet: amount must be positive")
	// ErrInsufficientFunds rejects a debit exceeding the actor's balance.
	ErrInsufficientFunds = errors.New("wallet: insufficient funds")
)

// DefaultHistoryLimit bounds history reads; retention beyond it is a UX
// trade-off, not a correctness requirement.
const DefaultHistoryLimit = 50

type ScanTransactionsRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanTransactionsResponse struct {
	Items []*models.WalletTransaction `json:"items"`
	Total int64                       `json:"total"`
}

// Ledger maintains per-actor append-only transaction history with a derived
// balance. Check-and-append is atomic per actor.
type Ledger interface {
	Credit(ctx context.Context, actorID string, amount int64, typ types.WalletTransactionType, description string) (*models.WalletTransaction, error)
	Debit(ctx context.Context, actorID string, amount int64, typ types.WalletTransactionType, description string) (*models.WalletTransaction, error)
	// Balance derives from the sum of completed ledger entries, never from a
	// denormalized field.
	Balance(ctx context.Context, actorID string) (int64, error)
	History(ctx context.Context, actorID string, limit int) ([]*models.WalletTransaction, error)
	// ScanTransactions backs the admin ledger page.
	ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error)

	// CreditTx and DebitTx compose into a caller-owned transaction so the
	// ledger write commits atomically with the caller's effect.
	CreditTx(tx *gorm.DB, actorID string, amount int64, typ types.WalletTransactionType, description string, attemptID *string) (*models.WalletTransaction, error)
	DebitTx(tx *gorm.DB, actorID string, amount int64, typ types.WalletTransactionType, description string) (*models.WalletTransaction, error)
}
