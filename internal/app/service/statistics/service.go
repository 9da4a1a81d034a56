package statistics

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calibrestore/billing/internal/models"
	"github.com/calibrestore/billing/pkg/tool"
	"github.com/calibrestore/billing/pkg/types"
)

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

type DailyStat struct {
	Day                 time.Time `json:"day"`
	Gmv                 int64     `json:"gmv"`
	TransactionCount    int64     `json:"transaction_count"`
	ActiveSubscriptions int64     `json:"active_subscriptions"`
}

// Daily returns snapshot rows for the inclusive [from, to] date range.
func (s *Service) Daily(ctx context.Context, from, to time.Time) ([]*DailyStat, error) {
	var rows []*models.RevenueDailySnapshot
	err := s.db.WithContext(ctx).
		Where("day >= ? AND day <= ?", truncateDay(from), truncateDay(to)).
		Order("day asc").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("statistics: load snapshots: %w", err)
	}

	out := make([]*DailyStat, 0, len(rows))
	for _, r := range rows {
		out = append(out, &DailyStat{
			Day:                 r.Day,
			Gmv:                 r.Gmv,
			TransactionCount:    r.TransactionCount,
			ActiveSubscriptions: r.ActiveSubscriptions,
		})
	}
	return out, nil
}

// SnapshotDay recomputes and upserts one day's snapshot from the ledger and
// attempt tables. Safe to re-run; the upsert overwrites.
func (s *Service) SnapshotDay(ctx context.Context, day time.Time) error {
	day = truncateDay(day)
	next := day.Add(24 * time.Hour)

	var gmv int64
	var count int64
	err := s.db.WithContext(ctx).Model(&models.PaymentAttempt{}).
		Where("status = ? AND updated_at >= ? AND updated_at < ?", types.PaymentAttemptStatusSucceeded, day, next).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&gmv).Error
	if err != nil {
		return fmt.Errorf("statistics: sum gmv: %w", err)
	}
	err = s.db.WithContext(ctx).Model(&models.PaymentAttempt{}).
		Where("status = ? AND updated_at >= ? AND updated_at < ?", types.PaymentAttemptStatusSucceeded, day, next).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("statistics: count transactions: %w", err)
	}

	var active int64
	err = s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("status = ? AND expire_at > ?", types.SubscriptionStatusActive, next).
		Count(&active).Error
	if err != nil {
		return fmt.Errorf("statistics: count active subscriptions: %w", err)
	}

	snap := &models.RevenueDailySnapshot{
		ID:                  tool.GenerateUUIDV7(),
		Day:                 day,
		Gmv:                 gmv,
		TransactionCount:    count,
		ActiveSubscriptions: active,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"gmv", "transaction_count", "active_subscriptions", "updated_at"}),
	}).Create(snap).Error
	if err != nil {
		return fmt.Errorf("statistics: upsert snapshot: %w", err)
	}

	s.log.Infow("statistics_snapshot", "day", day.Format("2006-01-02"), "gmv", gmv, "transactions", count)
	return nil
}

func truncateDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

var Module = fx.Options(
	fx.Provide(NewService),
)
