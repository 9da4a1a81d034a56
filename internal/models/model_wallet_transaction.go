package models

import (
	"time"

	"github.com/calibrestore/billing/pkg/types"
)

// WalletTransaction is a ledger entry. Amounts are signed minor currency units:
// positive for credits, negative for debits. Balance is derived by summing
// completed entries; the entry itself is never mutated after completion, a
// reversal is a new offsetting entry.
type WalletTransaction struct {
	ID      string `gorm:"column:id;primary_key;type:uuid;index:idx_actor_id_id,priority:2,sort:desc" json:"id"`
	ActorID string `gorm:"column:actor_id;type:varchar(64);not null;index:idx_actor_id_id,priority:1" json:"actor_id"`

	Type        types.WalletTransactionType   `gorm:"column:type;type:varchar(32);not null" json:"type"`
	Amount      int64                         `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency    string                        `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Description string                        `gorm:"column:description;type:varchar(255)" json:"description"`
	Status      types.WalletTransactionStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`

	// PaymentAttemptID correlates gateway-funded entries with their attempt.
	PaymentAttemptID *string `gorm:"column:payment_attempt_id;type:uuid;default:null" json:"payment_attempt_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WalletTransaction) TableName() string {
	return "wallet_transaction"
}

func (t *WalletTransaction) Completed() bool {
	return t != nil && t.Status == types.WalletTransactionStatusCompleted
}
