package wallet

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calibrestore/billing/internal/models"
	"github.com/calibrestore/billing/pkg/logctx"
	"github.com/calibrestore/billing/pkg/tool"
	"github.com/calibrestore/billing/pkg/types"
)

const defaultCurrency = "RUB"

type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, log *zap.SugaredLogger) Ledger {
	return &Service{db: db, log: log}
}

func (s *Service) Credit(ctx context.Context, actorID string, amount int64, typ types.WalletTransactionType, description string) (*models.WalletTransaction, error) {
	var out *models.WalletTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = s.CreditTx(tx, actorID, amount, typ, description, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("wallet_credit", "actor_id", actorID, "amount", amount, "type", typ)
	return out, nil
}

func (s *Service) Debit(ctx context.Context, actorID string, amount int64, typ types.WalletTransactionType, description string) (*models.WalletTransaction, error) {
	var out *models.WalletTransaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = s.DebitTx(tx, actorID, amount, typ, description)
		return err
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("wallet_debit", "actor_id", actorID, "amount", amount, "type", typ)
	return out, nil
}

// CreditTx appends a completed positive entry inside the caller's transaction.
func (s *Service) CreditTx(tx *gorm.DB, actorID string, amount int64, typ types.WalletTransactionType, description string, attemptID *string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if actorID == "" {
		return nil, fmt.Errorf("wallet: empty actor id")
	}

	if _, err := s.lockWallet(tx, actorID); err != nil {
		return nil, err
	}

	entry := &models.WalletTransaction{
		ID:               tool.GenerateUUIDV7(),
		ActorID:          actorID,
		Type:             typ,
		Amount:           amount,
		Currency:         defaultCurrency,
		Description:      description,
		Status:           types.WalletTransactionStatusCompleted,
		PaymentAttemptID: attemptID,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("wallet: append credit: %w", err)
	}

	if err := s.refreshBalanceCache(tx, actorID); err != nil {
		return nil, err
	}
	return entry, nil
}

// DebitTx derives the balance and appends a completed negative entry inside
// the same transaction, with the wallet row locked for the duration. Two
// concurrent debits against one actor therefore serialize instead of both
// passing a stale balance check.
func (s *Service) DebitTx(tx *gorm.DB, actorID string, amount int64, typ types.WalletTransactionType, description string) (*models.WalletTransaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if actorID == "" {
		return nil, fmt.Errorf("wallet: empty actor id")
	}

	if _, err := s.lockWallet(tx, actorID); err != nil {
		return nil, err
	}

	balance, err := s.sumCompleted(tx, actorID)
	if err != nil {
		return nil, err
	}
	if amount > balance {
		return nil, ErrInsufficientFunds
	}

	entry := &models.WalletTransaction{
		ID:          tool.GenerateUUIDV7(),
		ActorID:     actorID,
		Type:        typ,
		Amount:      -amount,
		Currency:    defaultCurrency,
		Description: description,
		Status:      types.WalletTransactionStatusCompleted,
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("wallet: append debit: %w", err)
	}

	if err := s.refreshBalanceCache(tx, actorID); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) Balance(ctx context.Context, actorID string) (int64, error) {
	return s.sumCompleted(s.db.WithContext(ctx), actorID)
}

func (s *Service) History(ctx context.Context, actorID string, limit int) ([]*models.WalletTransaction, error) {
	if limit <= 0 || limit > DefaultHistoryLimit {
		limit = DefaultHistoryLimit
	}
	var items []*models.WalletTransaction
	err := s.db.WithContext(ctx).
		Where("actor_id = ?", actorID).
		Order("created_at desc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("wallet: load history: %w", err)
	}
	return items, nil
}

func (s *Service) ScanTransactions(ctx context.Context, req *ScanTransactionsRequest) (*ScanTransactionsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("wallet: nil scan request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.WalletTransaction{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("wallet: count transactions: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}

	var rows []*models.WalletTransaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("wallet: list transactions: %w", err)
	}
	return &ScanTransactionsResponse{Items: rows, Total: total}, nil
}

// filtersAnd combines multiple CommonFilter into a single clause.Expression.
type filtersAnd struct{ filters []*types.CommonFilter }

func (w filtersAnd) Build(builder clause.Builder) {
	if len(w.filters) == 0 {
		builder.WriteString("1=1")
		return
	}
	exprs := make([]clause.Expression, 0, len(w.filters))
	for _, f := range w.filters {
		exprs = append(exprs, f)
	}
	clause.And(exprs...).Build(builder)
}

// lockWallet creates the actor's wallet row if absent and takes a row lock on
// it, serializing ledger writes per actor.
func (s *Service) lockWallet(tx *gorm.DB, actorID string) (*models.Wallet, error) {
	w := &models.Wallet{ID: tool.GenerateUUIDV7(), ActorID: actorID}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "actor_id"}},
		DoNothing: true,
	}).Create(w).Error; err != nil {
		return nil, fmt.Errorf("wallet: ensure wallet row: %w", err)
	}

	var locked models.Wallet
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("actor_id = ?", actorID).
		First(&locked).Error; err != nil {
		return nil, fmt.Errorf("wallet: lock wallet row: %w", err)
	}
	return &locked, nil
}

func (s *Service) sumCompleted(tx *gorm.DB, actorID string) (int64, error) {
	var balance int64
	err := tx.Model(&models.WalletTransaction{}).
		Where("actor_id = ? AND status = ?", actorID, types.WalletTransactionStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&balance).Error
	if err != nil {
		return 0, fmt.Errorf("wallet: sum ledger: %w", err)
	}
	return balance, nil
}

// refreshBalanceCache keeps the wallet row's cached balance consistent with
// the ledger. Reads still derive from the ledger.
func (s *Service) refreshBalanceCache(tx *gorm.DB, actorID string) error {
	balance, err := s.sumCompleted(tx, actorID)
	if err != nil {
		return err
	}
	if err := tx.Model(&models.Wallet{}).
		Where("actor_id = ?", actorID).
		Update("balance", balance).Error; err != nil {
		return fmt.Errorf("wallet: refresh balance cache: %w", err)
	}
	return nil
}
