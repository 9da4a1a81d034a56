package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/calibrestore/billing/internal/app/service/payment"
	"github.com/calibrestore/billing/internal/app/service/promo"
	"github.com/calibrestore/billing/internal/app/service/statistics"
	cfgpkg "github.com/calibrestore/billing/pkg/config"
)

// register wires the background jobs: promo expiry sweep, stale pending
// payment polling, and the daily statistics snapshot.
func register(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, promoSvc *promo.Service, payments payment.Manager, stats *statistics.Service) error {
	c := cron.New()

	if _, err := c.AddFunc(cfg.Sweep.PromoSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := promoSvc.Sweep(ctx); err != nil {
			log.Errorf("promo sweep failed: %v", err)
		}
	}); err != nil {
		return err
	}

	if _, err := c.AddFunc(cfg.Sweep.PendingPaymentSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := payments.PollPending(ctx); err != nil {
			log.Errorf("pending payment poll failed: %v", err)
		}
	}); err != nil {
		return err
	}

	// Snapshot the previous day shortly after midnight UTC.
	if _, err := c.AddFunc("10 0 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := stats.SnapshotDay(ctx, time.Now().UTC().Add(-24*time.Hour)); err != nil {
			log.Errorf("daily statistics snapshot failed: %v", err)
		}
	}); err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting scheduler",
				"promo_spec", cfg.Sweep.PromoSpec, "pending_payment_spec", cfg.Sweep.PendingPaymentSpec)
			c.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping scheduler")
			stopCtx := c.Stop()
			select {
			case <-stopCtx.Done():
			case <-ctx.Done():
			}
			return nil
		},
	})
	return nil
}

var Module = fx.Options(
	fx.Invoke(register),
)
