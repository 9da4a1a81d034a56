package models

import "time"

// Wallet is one row per actor. Balance here is a read-through cache refreshed
// from the ledger inside every ledger write; the row also serves as the lock
// anchor that serializes concurrent credits/debits for an actor. The ledger
// sum stays the source of truth.
type Wallet struct {
	ID      string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ActorID string `gorm:"column:actor_id;type:varchar(64);not null;uniqueIndex" json:"actor_id"`
	Balance int64  `gorm:"column:balance;type:bigint;not null;default:0" json:"balance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Wallet) TableName() string {
	return "wallet"
}
