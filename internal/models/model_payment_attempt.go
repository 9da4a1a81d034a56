package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/calibrestore/billing/pkg/types"
)

// PaymentAttempt correlates a gateway payment with the local effect it funds.
// The unique index on payment_id is the idempotency anchor: applying the same
// gateway notification twice finds the attempt already terminal and no-ops.
type PaymentAttempt struct {
	ID      string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ActorID string `gorm:"column:actor_id;type:varchar(64);not null;index" json:"actor_id"`

	Purpose  types.PaymentPurpose `gorm:"column:purpose;type:varchar(32);not null" json:"purpose"`
	TariffID string               `gorm:"column:tariff_id;type:varchar(64)" json:"tariff_id,omitempty"`

	Amount   int64  `gorm:"column:amount;type:bigint;not null" json:"amount"`
	Currency string `gorm:"column:currency;type:varchar(8);not null" json:"currency"`

	// PaymentID is assigned by the gateway once the payment object is created;
	// nil until then. NULLs do not collide on the unique index.
	PaymentID       *string                    `gorm:"column:payment_id;type:varchar(64);uniqueIndex" json:"payment_id,omitempty"`
	IdempotenceKey  string                     `gorm:"column:idempotence_key;type:varchar(128);not null" json:"idempotence_key"`
	Status          types.PaymentAttemptStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	ConfirmationURL string                     `gorm:"column:confirmation_url;type:varchar(512)" json:"confirmation_url"`

	Metadata datatypes.JSONType[*types.PaymentMetadata] `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PaymentAttempt) TableName() string {
	return "payment_attempt"
}

func (a *PaymentAttempt) Terminal() bool {
	return a != nil && a.Status.Terminal()
}
