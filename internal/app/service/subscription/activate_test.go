package subscription

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/calibrestore/billing/internal/app/service/wallet"
	"github.com/calibrestore/billing/internal/models"
	"github.com/calibrestore/billing/pkg/config"
	"github.com/calibrestore/billing/pkg/types"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	// SQLite has no row-level locking; writes serialize on the handle.
	db.ClauseBuilders["FOR"] = func(c clause.Clause, builder clause.Builder) {}
	require.NoError(t, db.AutoMigrate(
		&models.Wallet{}, &models.WalletTransaction{},
		&models.Subscription{}, &models.SubscriptionLog{},
	))
	return db
}

func testCatalog() *config.Config {
	return &config.Config{
		Tariffs: []*types.Tariff{
			{ID: "trial", Name: "Trial", Price: 0, Currency: "RUB", Duration: types.TariffDurationTrial, MaxProducts: 10},
			{ID: "monthly", Name: "Monthly", Price: 4200, Currency: "RUB", Duration: types.TariffDurationMonth, MaxProducts: 100},
		},
	}
}

func newTestManager(t *testing.T) (Manager, wallet.Ledger) {
	t.Helper()
	db := openTestDB(t)
	log := zap.NewNop().Sugar()
	ledger := wallet.NewService(db, log)
	return NewService(testCatalog(), db, log, ledger), ledger
}

func TestActivateMonthlyChargesWalletAndActivates(t *testing.T) {
	mgr, ledger := newTestManager(t)
	ctx := context.Background()

	_, err := ledger.Credit(ctx, "actor-1", 4200, types.WalletTransactionTypeDeposit, "top up")
	require.NoError(t, err)

	sub, err := mgr.Activate(ctx, "actor-1", "monthly")
	require.NoError(t, err)
	require.Equal(t, types.SubscriptionStatusActive, sub.Status)
	require.NotNil(t, sub.ExpireAt)

	balance, err := ledger.Balance(ctx, "actor-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)

	info, err := mgr.Status(ctx, "actor-1")
	require.NoError(t, err)
	require.True(t, info.IsActive)
	require.Equal(t, "monthly", info.TariffID)
	require.GreaterOrEqual(t, info.DaysRemaining, 28)
	require.LessOrEqual(t, info.DaysRemaining, 31)
	require.Equal(t, 100, info.MaxProducts)
}

func TestActivateInsufficientFundsCreatesNoSubscription(t *testing.T) {
	mgr, ledger := newTestManager(t)
	ctx := context.Background()

	_, err := ledger.Credit(ctx, "actor-1", 100, types.WalletTransactionTypeDeposit, "not enough")
	require.NoError(t, err)

	_, err = mgr.Activate(ctx, "actor-1", "monthly")
	require.ErrorIs(t, err, wallet.ErrInsufficientFunds)

	// The charge and the activation commit together or not at all.
	balance, err := ledger.Balance(ctx, "actor-1")
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)

	info, err := mgr.Status(ctx, "actor-1")
	require.NoError(t, err)
	require.False(t, info.IsActive)
}

func TestActivateWhileActiveExtendsFromCurrentEnd(t *testing.T) {
	mgr, ledger := newTestManager(t)
	ctx := context.Background()

	_, err := ledger.Credit(ctx, "actor-1", 8400, types.WalletTransactionTypeDeposit, "top up")
	require.NoError(t, err)

	first, err := mgr.Activate(ctx, "actor-1", "monthly")
	require.NoError(t, err)
	firstEnd := *first.ExpireAt

	second, err := mgr.Activate(ctx, "actor-1", "monthly")
	require.NoError(t, err)

	// Paid-for time is never lost: the renewal extends the existing end date.
	require.Equal(t, firstEnd.AddDate(0, 1, 0).Unix(), second.ExpireAt.Unix())

	balance, err := ledger.Balance(ctx, "actor-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)
}

func TestStatusCorrectsStaleActiveFlag(t *testing.T) {
	db := openTestDB(t)
	log := zap.NewNop().Sugar()
	mgr := NewService(testCatalog(), db, log, wallet.NewService(db, log))

	expired := time.Now().Add(-24 * time.Hour)
	require.NoError(t, db.Create(&models.Subscription{
		ID:       "sub-1",
		ActorID:  "actor-1",
		TariffID: "monthly",
		Status:   types.SubscriptionStatusActive,
		StartAt:  expired.AddDate(0, -1, 0),
		ExpireAt: &expired,
	}).Error)

	info, err := mgr.Status(context.Background(), "actor-1")
	require.NoError(t, err)
	require.False(t, info.IsActive)

	var stored models.Subscription
	require.NoError(t, db.Where("actor_id = ?", "actor-1").First(&stored).Error)
	require.Equal(t, types.SubscriptionStatusInactive, stored.Status)
}
