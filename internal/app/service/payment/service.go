package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/calibrestore/billing/internal/app/service/subscription"
	"github.com/calibrestore/billing/internal/app/service/wallet"
	"github.com/calibrestore/billing/internal/app/service/webhooklog"
	"github.com/calibrestore/billing/internal/models"
	"github.com/calibrestore/billing/internal/platform/yookassa"
	"github.com/calibrestore/billing/pkg/config"
	"github.com/calibrestore/billing/pkg/logctx"
	"github.com/calibrestore/billing/pkg/tool"
	"github.com/calibrestore/billing/pkg/types"
)

// pendingPollAge is how old a pending attempt must be before the poll
// fallback re-verifies it against the gateway.
const pendingPollAge = 5 * time.Minute

type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *zap.SugaredLogger
	gw       Gateway
	ledger   wallet.Ledger
	subs     subscription.Manager
	eventLog *webhooklog.Service
}

func NewService(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, gw Gateway, ledger wallet.Ledger, subs subscription.Manager, eventLog *webhooklog.Service) Manager {
	return &Service{cfg: cfg, db: db, log: log, gw: gw, ledger: ledger, subs: subs, eventLog: eventLog}
}

// NewGateway provides the YooKassa client, or nil when credentials are not
// configured so the service still boots for wallet-only operation.
func NewGateway(cfg *config.Config, log *zap.SugaredLogger) Gateway {
	if !cfg.YooKassa.Configured() {
		log.Warnw("yookassa credentials missing, gateway payments disabled")
		return nil
	}
	c, err := yookassa.NewClient(yookassa.ClientOptions{
		ShopID:    cfg.YooKassa.ShopID,
		SecretKey: cfg.YooKassa.SecretKey,
		BaseURL:   cfg.YooKassa.BaseURL,
		Logger:    log,
	})
	if err != nil {
		log.Errorf("failed to build yookassa client: %v", err)
		return nil
	}
	return c
}

func (s *Service) GatewayConfigured() bool { return s.gw != nil }

func (s *Service) CreateTariffPayment(ctx context.Context, actorID, tariffID, returnURL string) (*CreatePaymentResult, error) {
	tariff := s.cfg.GetTariffByID(tariffID)
	if tariff == nil {
		return nil, subscription.ErrUnknownTariff
	}

	// Free plans skip the gateway entirely.
	if tariff.Price == 0 {
		sub, err := s.subs.Activate(ctx, actorID, tariffID)
		if err != nil {
			return nil, err
		}
		logctx.FromCtx(ctx, s.log).Infow("free_tariff_activated", "actor_id", actorID, "tariff_id", tariffID, "expire_at", sub.ExpireAt)
		return &CreatePaymentResult{Status: types.PaymentAttemptStatusSucceeded}, nil
	}

	meta := &types.PaymentMetadata{
		ActorID:  actorID,
		TariffID: tariffID,
		Purpose:  types.PaymentPurposeTariff,
	}
	return s.createGatewayPayment(ctx, meta, tariff.Price, tariff.Currency,
		fmt.Sprintf("Tariff %s", tariff.Name), returnURL)
}

func (s *Service) CreateDepositPayment(ctx context.Context, actorID string, amount int64, returnURL string) (*CreatePaymentResult, error) {
	if amount <= 0 {
		return nil, wallet.ErrInvalidAmount
	}
	meta := &types.PaymentMetadata{
		ActorID: actorID,
		Purpose: types.PaymentPurposeWalletDeposit,
	}
	return s.createGatewayPayment(ctx, meta, amount, "RUB", "Wallet deposit", returnURL)
}

func (s *Service) createGatewayPayment(ctx context.Context, meta *types.PaymentMetadata, amount int64, currency, description, returnURL string) (*CreatePaymentResult, error) {
	if s.gw == nil {
		return nil, yookassa.ErrNotConfigured
	}

	attempt := &models.PaymentAttempt{
		ID:       tool.GenerateUUIDV7(),
		ActorID:  meta.ActorID,
		Purpose:  meta.Purpose,
		TariffID: meta.TariffID,
		Amount:   amount,
		Currency: currency,
		// The key is unique per attempt so a network-level retry cannot
		// double-charge.
		IdempotenceKey: fmt.Sprintf("%s-%s-%d", meta.ActorID, meta.TariffID, time.Now().UnixNano()),
		Status:         types.PaymentAttemptStatusPending,
	}
	meta.AttemptID = attempt.ID
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	attempt.Metadata = datatypes.NewJSONType(meta)

	if err := s.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, fmt.Errorf("payment: create attempt: %w", err)
	}

	if returnURL == "" {
		returnURL = s.cfg.YooKassa.ReturnURL
	}
	p, err := s.gw.CreatePayment(ctx, &yookassa.CreatePaymentRequest{
		Amount:       yookassa.NewAmount(amount, currency),
		Capture:      true,
		Confirmation: yookassa.Confirmation{Type: "redirect", ReturnURL: returnURL},
		Description:  description,
		Metadata:     meta.ToMap(),
	}, attempt.IdempotenceKey)
	if err != nil {
		// The attempt never reached the provider; close it out.
		if uerr := s.db.WithContext(ctx).Model(attempt).
			Update("status", types.PaymentAttemptStatusCanceled).Error; uerr != nil {
			logctx.FromCtx(ctx, s.log).Errorf("failed to cancel orphaned attempt %s: %v", attempt.ID, uerr)
		}
		return nil, err
	}

	update := map[string]any{"payment_id": p.ID}
	if p.Confirmation != nil {
		update["confirmation_url"] = p.Confirmation.ConfirmationURL
	}
	if err := s.db.WithContext(ctx).Model(attempt).Updates(update).Error; err != nil {
		return nil, fmt.Errorf("payment: record gateway payment id: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("payment_created",
		"attempt_id", attempt.ID, "payment_id", p.ID, "purpose", meta.Purpose, "amount", amount)

	res := &CreatePaymentResult{
		AttemptID: attempt.ID,
		PaymentID: p.ID,
		Status:    types.PaymentAttemptStatusPending,
	}
	if p.Confirmation != nil {
		res.ConfirmationURL = p.Confirmation.ConfirmationURL
	}
	return res, nil
}

func (s *Service) Verify(ctx context.Context, paymentID string) (*VerifyResult, error) {
	if s.gw == nil {
		return nil, yookassa.ErrNotConfigured
	}
	p, err := s.gw.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	switch p.Status {
	case yookassa.PaymentStatusSucceeded:
		if err := s.applySucceeded(ctx, p); err != nil {
			return nil, err
		}
	case yookassa.PaymentStatusCanceled:
		if err := s.markCanceled(ctx, p.ID); err != nil && !errors.Is(err, ErrAttemptNotFound) {
			return nil, err
		}
	}

	return &VerifyResult{Status: p.Status, Paid: p.Paid}, nil
}

func (s *Service) Cancel(ctx context.Context, actorID, paymentID string) error {
	attempt, err := s.getAttemptByPaymentID(s.db.WithContext(ctx), paymentID, false)
	if err != nil {
		return err
	}
	if attempt.ActorID != actorID {
		return ErrActorMismatch
	}
	if attempt.Terminal() {
		return ErrAttemptTerminal
	}

	if s.gw == nil {
		return yookassa.ErrNotConfigured
	}
	if _, err := s.gw.CancelPayment(ctx, paymentID, tool.GenerateUUIDV7()); err != nil {
		return err
	}
	return s.markCanceled(ctx, paymentID)
}

func (s *Service) Refund(ctx context.Context, paymentID string, amount int64, description string) error {
	if s.gw == nil {
		return yookassa.ErrNotConfigured
	}
	attempt, err := s.getAttemptByPaymentID(s.db.WithContext(ctx), paymentID, false)
	if err != nil {
		return err
	}
	if attempt.Status != types.PaymentAttemptStatusSucceeded {
		return fmt.Errorf("payment: refund requires a succeeded payment, attempt is %s", attempt.Status)
	}

	// A refunded deposit reverses the wallet effect with an offsetting entry;
	// the original credit is never mutated. The debit happens before the
	// gateway payout: the payout is irreversible, so an already-spent deposit
	// must abort while no money has moved.
	var entry *models.WalletTransaction
	if attempt.Purpose == types.PaymentPurposeWalletDeposit {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var derr error
			entry, derr = s.ledger.DebitTx(tx, attempt.ActorID, amount, types.WalletTransactionTypeRefund, description)
			return derr
		})
		if err != nil {
			return fmt.Errorf("payment: record refund ledger entry: %w", err)
		}
	}

	if _, err := s.gw.CreateRefund(ctx, paymentID, yookassa.NewAmount(amount, attempt.Currency), description, tool.GenerateUUIDV7()); err != nil {
		if entry != nil {
			cerr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
				_, cerr := s.ledger.CreditTx(tx, attempt.ActorID, amount, types.WalletTransactionTypeRefund,
					"Refund reversal: "+description, &attempt.ID)
				return cerr
			})
			if cerr != nil {
				// The offsetting entry is stranded; flag it for reconciliation.
				logctx.FromCtx(ctx, s.log).Errorw("refund_reversal_failed",
					"payment_id", paymentID, "ledger_entry_id", entry.ID, "amount", amount, "error", cerr.Error())
			}
		}
		return err
	}

	logctx.FromCtx(ctx, s.log).Infow("payment_refunded", "payment_id", paymentID, "amount", amount)
	return nil
}

func (s *Service) HandleNotification(ctx context.Context, n *yookassa.WebhookNotification) error {
	log := logctx.FromCtx(ctx, s.log)
	raw, _ := json.Marshal(n)
	traceID, _ := ctx.Value("traceID").(string)

	s.eventLog.Save(ctx, &models.WebhookEventLog{
		Event:     n.Event,
		PaymentID: n.Object.ID,
		TraceID:   traceID,
		Data:      datatypes.JSON(raw),
		Status:    models.WebhookEventLogStatusReceived,
	})

	var handleErr error
	switch n.Event {
	case yookassa.WebhookEventPaymentSucceeded:
		handleErr = s.applySucceeded(ctx, &n.Object)
	case yookassa.WebhookEventPaymentCanceled:
		if err := s.markCanceled(ctx, n.Object.ID); err != nil && !errors.Is(err, ErrAttemptNotFound) {
			handleErr = err
		}
	case yookassa.WebhookEventPaymentWaitingForCapture:
		// Payments are created with capture=true, so this is unexpected;
		// capture now and let the succeeded event carry the effect.
		if s.gw != nil {
			if _, err := s.gw.CapturePayment(ctx, n.Object.ID, nil, tool.GenerateUUIDV7()); err != nil {
				log.Errorw("webhook_capture_failed", "payment_id", n.Object.ID, "error", err.Error())
			}
		}
	case yookassa.WebhookEventRefundSucceeded:
		log.Infow("webhook_refund_succeeded", "payment_id", n.Object.ID)
	default:
		// Unrecognized events are acknowledged to avoid provider retry storms.
		log.Warnw("webhook_unrecognized_event", "event", n.Event)
	}

	status := models.WebhookEventLogStatusHandled
	var result *datatypes.JSON
	if handleErr != nil {
		status = models.WebhookEventLogStatusHandleFailed
		resBytes, _ := json.Marshal(map[string]any{"error": handleErr.Error()})
		result = lo.ToPtr(datatypes.JSON(resBytes))
	}
	s.eventLog.Save(ctx, &models.WebhookEventLog{
		Event:     n.Event,
		PaymentID: n.Object.ID,
		TraceID:   traceID,
		Data:      datatypes.JSON(raw),
		Result:    result,
		Status:    status,
	})

	return handleErr
}

// applySucceeded applies the payment's effect exactly once. The attempt row is
// locked by gateway payment id; a replayed notification finds it terminal and
// no-ops. Effect and status flip commit in the same transaction, so a failure
// leaves the attempt pending and the provider's redelivery retries cleanly.
func (s *Service) applySucceeded(ctx context.Context, p *yookassa.Payment) error {
	log := logctx.FromCtx(ctx, s.log)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := s.getAttemptByPaymentID(tx, p.ID, true)
		if errors.Is(err, ErrAttemptNotFound) {
			// Replay of a cleaned-up payment or a payment from another system.
			log.Warnw("webhook_unknown_payment", "payment_id", p.ID)
			return nil
		}
		if err != nil {
			return err
		}
		if attempt.Terminal() {
			log.Infow("webhook_replay_ignored", "payment_id", p.ID, "status", attempt.Status)
			return nil
		}

		meta := attempt.Metadata.Data()
		if meta == nil {
			var merr error
			meta, merr = types.PaymentMetadataFromMap(p.Metadata)
			if merr != nil {
				// Malformed correlation data cannot be fixed by redelivery.
				log.Errorw("webhook_malformed_metadata", "payment_id", p.ID, "error", merr.Error())
				return nil
			}
		}

		switch meta.Purpose {
		case types.PaymentPurposeTariff:
			if _, err := s.subs.ActivateTx(tx, meta.ActorID, meta.TariffID, time.Now()); err != nil {
				if errors.Is(err, subscription.ErrUnknownTariff) {
					// The tariff left the catalog; redelivery cannot bring it
					// back. Close the attempt and acknowledge.
					log.Errorw("webhook_tariff_missing", "payment_id", p.ID, "tariff_id", meta.TariffID)
					return tx.Model(&models.PaymentAttempt{}).
						Where("id = ?", attempt.ID).
						Update("status", types.PaymentAttemptStatusCanceled).Error
				}
				return fmt.Errorf("payment: activate subscription: %w", err)
			}
		case types.PaymentPurposeWalletDeposit:
			if _, err := s.ledger.CreditTx(tx, meta.ActorID, attempt.Amount, types.WalletTransactionTypeDeposit,
				"Wallet deposit", &attempt.ID); err != nil {
				return fmt.Errorf("payment: credit wallet: %w", err)
			}
		default:
			log.Errorw("webhook_unknown_purpose", "payment_id", p.ID, "purpose", meta.Purpose)
			return nil
		}

		if err := tx.Model(&models.PaymentAttempt{}).
			Where("id = ?", attempt.ID).
			Update("status", types.PaymentAttemptStatusSucceeded).Error; err != nil {
			return fmt.Errorf("payment: mark attempt succeeded: %w", err)
		}

		log.Infow("payment_effect_applied",
			"payment_id", p.ID, "attempt_id", attempt.ID, "purpose", meta.Purpose, "amount", attempt.Amount)
		return nil
	})
}

func (s *Service) markCanceled(ctx context.Context, paymentID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := s.getAttemptByPaymentID(tx, paymentID, true)
		if err != nil {
			return err
		}
		if attempt.Terminal() {
			return nil
		}
		return tx.Model(&models.PaymentAttempt{}).
			Where("id = ?", attempt.ID).
			Update("status", types.PaymentAttemptStatusCanceled).Error
	})
}

func (s *Service) PollPending(ctx context.Context) error {
	if s.gw == nil {
		return nil
	}
	var attempts []*models.PaymentAttempt
	err := s.db.WithContext(ctx).
		Where("status = ? AND payment_id IS NOT NULL AND created_at < ?",
			types.PaymentAttemptStatusPending, time.Now().Add(-pendingPollAge)).
		Limit(100).
		Find(&attempts).Error
	if err != nil {
		return fmt.Errorf("payment: list stale pending attempts: %w", err)
	}

	for _, a := range attempts {
		if a.PaymentID == nil {
			continue
		}
		if _, err := s.Verify(ctx, *a.PaymentID); err != nil {
			logctx.FromCtx(ctx, s.log).Errorw("pending_poll_verify_failed",
				"payment_id", *a.PaymentID, "error", err.Error())
		}
	}
	return nil
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

func (s *Service) ScanAttempts(ctx context.Context, req *ScanAttemptsRequest) (*ScanAttemptsResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("payment: nil scan request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}

	tx := s.db.WithContext(ctx).Model(&models.PaymentAttempt{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{filtersAnd{filters: req.Filters}}})
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("payment: count attempts: %w", err)
	}

	q := tx.Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}

	var rows []*models.PaymentAttempt
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("payment: list attempts: %w", err)
	}
	return &ScanAttemptsResponse{Items: rows, Total: total}, nil
}

func (s *Service) getAttemptByPaymentID(tx *gorm.DB, paymentID string, forUpdate bool) (*models.PaymentAttempt, error) {
	q := tx
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var attempt models.PaymentAttempt
	err := q.Where("payment_id = ?", paymentID).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("payment: load attempt: %w", err)
	}
	return &attempt, nil
}
