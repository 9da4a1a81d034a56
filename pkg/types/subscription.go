package types

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusInactive SubscriptionStatus = "inactive"
)

type SubscriptionChangeReason string

const (
	SubscriptionChangeReasonPurchase     SubscriptionChangeReason = "purchase"
	SubscriptionChangeReasonRenewal      SubscriptionChangeReason = "renewal"
	SubscriptionChangeReasonCancelRenew  SubscriptionChangeReason = "cancelRenew"
	SubscriptionChangeReasonResumeRenew  SubscriptionChangeReason = "resumeRenew"
	SubscriptionChangeReasonExpired      SubscriptionChangeReason = "expired"
	SubscriptionChangeReasonRefund       SubscriptionChangeReason = "refund"
	SubscriptionChangeReasonProductUsage SubscriptionChangeReason = "productUsage"
)

// SubscriptionInfo is the derived view returned to callers. IsActive is always
// recomputed from ExpireAt vs now, never read from a stored flag.
type SubscriptionInfo struct {
	IsActive       bool       `json:"is_active"`
	TariffID       string     `json:"tariff_id,omitempty"`
	ExpireAt       *time.Time `json:"expire_at,omitempty"`
	DaysRemaining  int        `json:"days_remaining"`
	AutoRenew      bool       `json:"auto_renew"`
	ProductsUsed   int        `json:"products_used"`
	MaxProducts    int        `json:"max_products"`
	CanAddProducts bool       `json:"can_add_products"`
}
