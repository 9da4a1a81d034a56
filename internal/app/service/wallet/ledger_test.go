package wallet

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/calibrestore/billing/internal/models"
	"github.com/calibrestore/billing/pkg/types"
)

// openTestDB returns an in-memory database shared across the pool. SQLite has
// no row-level locking, so the locking clause is built as a no-op; writes
// still serialize on the single database handle.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	db.ClauseBuilders["FOR"] = func(c clause.Clause, builder clause.Builder) {}
	require.NoError(t, db.AutoMigrate(&models.Wallet{}, &models.WalletTransaction{}))
	return db
}

func TestBalanceEqualsSumOfCompletedEntries(t *testing.T) {
	db := openTestDB(t)
	ledger := NewService(db, zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := ledger.Credit(ctx, "actor-1", 1000, types.WalletTransactionTypeDeposit, "top up")
	require.NoError(t, err)
	_, err = ledger.Credit(ctx, "actor-1", 500, types.WalletTransactionTypeGamePrize, "prize")
	require.NoError(t, err)
	_, err = ledger.Debit(ctx, "actor-1", 300, types.WalletTransactionTypeWithdrawal, "payout")
	require.NoError(t, err)

	balance, err := ledger.Balance(ctx, "actor-1")
	require.NoError(t, err)
	require.Equal(t, int64(1200), balance)

	history, err := ledger.History(ctx, "actor-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 3)

	var sum int64
	for _, e := range history {
		sum += e.Amount
	}
	require.Equal(t, balance, sum)

	// Cached wallet row tracks the derived balance.
	var w models.Wallet
	require.NoError(t, db.Where("actor_id = ?", "actor-1").First(&w).Error)
	require.Equal(t, int64(1200), w.Balance)
}

func TestDebitInsufficientFundsLeavesLedgerUntouched(t *testing.T) {
	db := openTestDB(t)
	ledger := NewService(db, zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := ledger.Credit(ctx, "actor-1", 100, types.WalletTransactionTypeDeposit, "top up")
	require.NoError(t, err)

	_, err = ledger.Debit(ctx, "actor-1", 500, types.WalletTransactionTypeWithdrawal, "too much")
	require.ErrorIs(t, err, ErrInsufficientFunds)

	balance, err := ledger.Balance(ctx, "actor-1")
	require.NoError(t, err)
	require.Equal(t, int64(100), balance)

	history, err := ledger.History(ctx, "actor-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestDebitExactBalanceSucceeds(t *testing.T) {
	db := openTestDB(t)
	ledger := NewService(db, zap.NewNop().Sugar())
	ctx := context.Background()

	_, err := ledger.Credit(ctx, "actor-1", 250, types.WalletTransactionTypeDeposit, "top up")
	require.NoError(t, err)
	_, err = ledger.Debit(ctx, "actor-1", 250, types.WalletTransactionTypeWithdrawal, "all of it")
	require.NoError(t, err)

	balance, err := ledger.Balance(ctx, "actor-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), balance)
}
