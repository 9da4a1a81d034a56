package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/calibrestore/billing/pkg/types"
)

// SubscriptionLog records every subscription state change with before/after
// snapshots for auditing.
type SubscriptionLog struct {
	ID      string                         `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ActorID string                         `gorm:"column:actor_id;type:varchar(64);not null;index" json:"actor_id"`
	Reason  types.SubscriptionChangeReason `gorm:"column:reason;type:varchar(32);not null" json:"reason"`

	Before datatypes.JSONType[*Subscription] `gorm:"column:before;type:jsonb" json:"before"`
	After  datatypes.JSONType[*Subscription] `gorm:"column:after;type:jsonb" json:"after"`
	Extra  datatypes.JSONMap                 `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`

	CreatedAt time.Time `json:"created_at"`
}

func (SubscriptionLog) TableName() string {
	return "subscription_log"
}
