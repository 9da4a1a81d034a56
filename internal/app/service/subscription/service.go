package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calibrestore/billing/internal/app/service/wallet"
	"github.com/calibrestore/billing/internal/models"
	"github.com/calibrestore/billing/pkg/config"
	"github.com/calibrestore/billing/pkg/logctx"
	"github.com/calibrestore/billing/pkg/tool"
	"github.com/calibrestore/billing/pkg/types"
)

type Service struct {
	cfg    *config.Config
	db     *gorm.DB
	log    *zap.SugaredLogger
	ledger wallet.Ledger
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, ledger wallet.Ledger) Manager {
	return &Service{cfg: cfg, db: db, log: log, ledger: ledger}
}

func (s *Service) Activate(ctx context.Context, actorID, tariffID string) (*models.Subscription, error) {
	tariff := s.cfg.GetTariffByID(tariffID)
	if tariff == nil {
		return nil, ErrUnknownTariff
	}

	var sub *models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tariff.Price > 0 {
			if _, err := s.ledger.DebitTx(tx, actorID, tariff.Price, types.WalletTransactionTypeTariff,
				fmt.Sprintf("Tariff %s", tariff.Name)); err != nil {
				return err
			}
		}
		var err error
		sub, err = s.activateLocked(tx, actorID, tariff, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	logctx.FromCtx(ctx, s.log).Infow("subscription_activated",
		"actor_id", actorID, "tariff_id", tariffID, "expire_at", sub.ExpireAt)
	return sub, nil
}

func (s *Service) ActivateTx(tx *gorm.DB, actorID, tariffID string, now time.Time) (*models.Subscription, error) {
	tariff := s.cfg.GetTariffByID(tariffID)
	if tariff == nil {
		return nil, ErrUnknownTariff
	}
	return s.activateLocked(tx, actorID, tariff, now)
}

// activateLocked upserts the subscription record. A still-valid subscription
// renews from its current end date; anything else starts from now.
func (s *Service) activateLocked(tx *gorm.DB, actorID string, tariff *types.Tariff, now time.Time) (*models.Subscription, error) {
	original, err := s.lockSubscription(tx, actorID)
	if err != nil {
		return nil, err
	}

	reason := types.SubscriptionChangeReasonPurchase
	base := now
	sub := &models.Subscription{
		ID:          tool.GenerateUUIDV7(),
		ActorID:     actorID,
		TariffID:    tariff.ID,
		Status:      types.SubscriptionStatusActive,
		StartAt:     now,
		AutoRenew:   true,
		MaxProducts: tariff.MaxProducts,
	}

	if original != nil {
		sub.ID = original.ID
		sub.CreatedAt = original.CreatedAt
		sub.AutoRenew = original.AutoRenew
		if original.Valid(now) {
			reason = types.SubscriptionChangeReasonRenewal
			base = *original.ExpireAt
			sub.StartAt = original.StartAt
			sub.ProductsUsed = original.ProductsUsed
		}
	}

	expire := tariff.ExpiryFrom(base)
	sub.ExpireAt = &expire

	if err := tx.Save(sub).Error; err != nil {
		return nil, fmt.Errorf("subscription: upsert: %w", err)
	}

	s.writeLog(original, sub, reason)
	return sub, nil
}

func (s *Service) Status(ctx context.Context, actorID string) (*types.SubscriptionInfo, error) {
	sub, err := s.getSubscription(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &types.SubscriptionInfo{}, nil
	}

	now := time.Now()
	info := computeInfo(sub, now)

	// Lazy correction: a stored active flag past the end date is stale; fix it
	// on read so the next reader sees consistent state.
	if sub.Status == types.SubscriptionStatusActive && !sub.Valid(now) {
		before := *sub
		sub.Status = types.SubscriptionStatusInactive
		if err := s.db.WithContext(ctx).Model(&models.Subscription{}).
			Where("id = ? AND status = ?", sub.ID, types.SubscriptionStatusActive).
			Update("status", types.SubscriptionStatusInactive).Error; err != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to correct expired subscription %s: %v", sub.ID, err)
		} else {
			s.writeLog(&before, sub, types.SubscriptionChangeReasonExpired)
		}
	}

	return info, nil
}

func (s *Service) CancelAutoRenew(ctx context.Context, actorID string) error {
	return s.setAutoRenew(ctx, actorID, false, types.SubscriptionChangeReasonCancelRenew)
}

func (s *Service) ResumeAutoRenew(ctx context.Context, actorID string) error {
	return s.setAutoRenew(ctx, actorID, true, types.SubscriptionChangeReasonResumeRenew)
}

// setAutoRenew toggles the flag only; it never changes activity.
func (s *Service) setAutoRenew(ctx context.Context, actorID string, autoRenew bool, reason types.SubscriptionChangeReason) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.lockSubscription(tx, actorID)
		if err != nil {
			return err
		}
		if sub == nil {
			return ErrNoSubscription
		}
		if sub.AutoRenew == autoRenew {
			return nil
		}
		before := *sub
		sub.AutoRenew = autoRenew
		if err := tx.Save(sub).Error; err != nil {
			return fmt.Errorf("subscription: update auto renew: %w", err)
		}
		s.writeLog(&before, sub, reason)
		return nil
	})
}

func (s *Service) RegisterProduct(ctx context.Context, actorID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.lockSubscription(tx, actorID)
		if err != nil {
			return err
		}
		now := time.Now()
		if sub == nil || !sub.Valid(now) {
			return ErrNoSubscription
		}
		if !sub.CanAddProducts(now) {
			return ErrProductLimitReached
		}
		before := *sub
		sub.ProductsUsed++
		if err := tx.Save(sub).Error; err != nil {
			return fmt.Errorf("subscription: register product: %w", err)
		}
		s.writeLog(&before, sub, types.SubscriptionChangeReasonProductUsage)
		return nil
	})
}

func (s *Service) ReleaseProduct(ctx context.Context, actorID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sub, err := s.lockSubscription(tx, actorID)
		if err != nil {
			return err
		}
		if sub == nil {
			return ErrNoSubscription
		}
		if sub.ProductsUsed == 0 {
			return nil
		}
		before := *sub
		sub.ProductsUsed--
		if err := tx.Save(sub).Error; err != nil {
			return fmt.Errorf("subscription: release product: %w", err)
		}
		s.writeLog(&before, sub, types.SubscriptionChangeReasonProductUsage)
		return nil
	})
}

// computeInfo derives the caller-facing view; activity always comes from the
// end date, never the stored flag.
func computeInfo(sub *models.Subscription, now time.Time) *types.SubscriptionInfo {
	active := sub.Valid(now)
	return &types.SubscriptionInfo{
		IsActive:       active,
		TariffID:       sub.TariffID,
		ExpireAt:       sub.ExpireAt,
		DaysRemaining:  sub.DaysRemaining(now),
		AutoRenew:      sub.AutoRenew,
		ProductsUsed:   sub.ProductsUsed,
		MaxProducts:    sub.MaxProducts,
		CanAddProducts: sub.CanAddProducts(now),
	}
}

func (s *Service) getSubscription(ctx context.Context, actorID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.db.WithContext(ctx).Where("actor_id = ?", actorID).First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("subscription: load: %w", err)
	}
	return &sub, nil
}

func (s *Service) lockSubscription(tx *gorm.DB, actorID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("actor_id = ?", actorID).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("subscription: lock: %w", err)
	}
	return &sub, nil
}

// writeLog persists the change log asynchronously; failures are logged only.
func (s *Service) writeLog(before, after *models.Subscription, reason types.SubscriptionChangeReason) {
	go func() {
		entry := &models.SubscriptionLog{
			ID:      tool.GenerateUUIDV7(),
			ActorID: after.ActorID,
			Reason:  reason,
			Before:  datatypes.NewJSONType(before),
			After:   datatypes.NewJSONType(after),
			Extra:   datatypes.JSONMap{},
		}
		if err := s.db.Save(entry).Error; err != nil {
			s.log.Errorf("failed to save subscription log: %v", err)
		}
	}()
}
