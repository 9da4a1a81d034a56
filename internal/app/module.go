package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/calibrestore/billing/internal/app/api/server"
	"github.com/calibrestore/billing/internal/app/scheduler"
	"github.com/calibrestore/billing/internal/app/service/payment"
	"github.com/calibrestore/billing/internal/app/service/promo"
	"github.com/calibrestore/billing/internal/app/service/statistics"
	"github.com/calibrestore/billing/internal/app/service/subscription"
	"github.com/calibrestore/billing/internal/app/service/wallet"
	"github.com/calibrestore/billing/internal/app/service/webhooklog"
	"github.com/calibrestore/billing/internal/platform/db"
	"github.com/calibrestore/billing/pkg/config"
	"github.com/calibrestore/billing/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	wallet.Module,
	subscription.Module,
	payment.Module,
	webhooklog.Module,
	promo.Module,
	statistics.Module,
	scheduler.Module,
)
