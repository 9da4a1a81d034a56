package models

import "time"

// RevenueDailySnapshot materializes one row of daily statistics. Day is the
// UTC date truncated to midnight.
type RevenueDailySnapshot struct {
	ID  string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Day time.Time `gorm:"column:day;not null;uniqueIndex" json:"day"`

	// Gmv is the completed payment volume for the day in minor units.
	Gmv                 int64 `gorm:"column:gmv;type:bigint;not null;default:0" json:"gmv"`
	TransactionCount    int64 `gorm:"column:transaction_count;type:bigint;not null;default:0" json:"transaction_count"`
	ActiveSubscriptions int64 `gorm:"column:active_subscriptions;type:bigint;not null;default:0" json:"active_subscriptions"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (RevenueDailySnapshot) TableName() string { return "revenue_daily_snapshot" }
