package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/calibrestore/billing/pkg/types"
)

// Subscription stores the per-actor subscription record. The stored Status
// flag may go stale past ExpireAt; Valid() is the authoritative check and
// readers must never trust Status alone.
type Subscription struct {
	ID       string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ActorID  string                   `gorm:"column:actor_id;type:varchar(64);not null;uniqueIndex" json:"actor_id"`
	TariffID string                   `gorm:"column:tariff_id;type:varchar(64);not null" json:"tariff_id"`
	Status   types.SubscriptionStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`

	StartAt  time.Time  `gorm:"column:start_at" json:"start_at"`
	ExpireAt *time.Time `gorm:"column:expire_at;default:null" json:"expire_at"`

	AutoRenew bool `gorm:"column:auto_renew;not null;default:false" json:"auto_renew"`

	// MaxProducts is copied from the tariff at activation; -1 means unlimited.
	MaxProducts  int `gorm:"column:max_products;not null;default:0" json:"max_products"`
	ProductsUsed int `gorm:"column:products_used;not null;default:0" json:"products_used"`

	Extra datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Valid recomputes activity from ExpireAt vs now instead of trusting the
// stored flag (lazy expiry).
func (s *Subscription) Valid(now time.Time) bool {
	return s != nil &&
		s.Status == types.SubscriptionStatusActive &&
		s.ExpireAt != nil &&
		s.ExpireAt.After(now)
}

func (s *Subscription) DaysRemaining(now time.Time) int {
	if !s.Valid(now) {
		return 0
	}
	return int(s.ExpireAt.Sub(now).Hours() / 24)
}

func (s *Subscription) CanAddProducts(now time.Time) bool {
	if !s.Valid(now) {
		return false
	}
	return s.MaxProducts == types.UnlimitedProducts || s.ProductsUsed < s.MaxProducts
}
