package models

import "time"

type PromoStatus string

const (
	PromoStatusActive         PromoStatus = "active"
	PromoStatusPaused         PromoStatus = "paused"
	PromoStatusExpired        PromoStatus = "expired"
	PromoStatusPendingPayment PromoStatus = "pending_payment"
)

// Banner is a time-boxed advertising placement. The stored status lags behind
// real time between sweeps; readers use EffectiveStatus.
type Banner struct {
	ID        string      `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OwnerID   string      `gorm:"column:owner_id;type:varchar(64);not null;index" json:"owner_id"`
	Title     string      `gorm:"column:title;type:varchar(255)" json:"title"`
	ImageURL  string      `gorm:"column:image_url;type:varchar(512)" json:"image_url"`
	Status    PromoStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	ExpiresAt time.Time   `gorm:"column:expires_at;not null" json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Banner) TableName() string { return "banner" }

func (b *Banner) Expired(now time.Time) bool {
	return b != nil && b.Status == PromoStatusActive && !b.ExpiresAt.After(now)
}

func (b *Banner) EffectiveStatus(now time.Time) PromoStatus {
	if b.Expired(now) {
		return PromoStatusExpired
	}
	return b.Status
}

// Story is a short-lived promotional post with the same lazy-expiry semantics
// as Banner.
type Story struct {
	ID        string      `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OwnerID   string      `gorm:"column:owner_id;type:varchar(64);not null;index" json:"owner_id"`
	MediaURL  string      `gorm:"column:media_url;type:varchar(512)" json:"media_url"`
	Status    PromoStatus `gorm:"column:status;type:varchar(32);not null;index" json:"status"`
	ExpiresAt time.Time   `gorm:"column:expires_at;not null" json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Story) TableName() string { return "story" }

func (s *Story) Expired(now time.Time) bool {
	return s != nil && s.Status == PromoStatusActive && !s.ExpiresAt.After(now)
}

func (s *Story) EffectiveStatus(now time.Time) PromoStatus {
	if s.Expired(now) {
		return PromoStatusExpired
	}
	return s.Status
}
