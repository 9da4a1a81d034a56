package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/calibrestore/billing/internal/app/service/payment"
	"github.com/calibrestore/billing/internal/platform/yookassa"
	"github.com/calibrestore/billing/pkg/logctx"
	"github.com/calibrestore/billing/pkg/response"
)

// @Summary      Payment Webhook
// @Description  Handles payment gateway notifications. Returns 200 to acknowledge, any other status triggers provider redelivery.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        notification body yookassa.WebhookNotification true "Gateway notification"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/payments/webhook [post]
func ApiPaymentWebhook(mgr payment.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var n yookassa.WebhookNotification
		if err := c.ShouldBindJSON(&n); err != nil {
			// A malformed body will never parse on redelivery either, so
			// acknowledge it and keep the record in the log.
			logctx.FromCtx(c, log).Warnw("webhook_malformed", "error", err.Error())
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "malformed notification"))
			return
		}

		logctx.FromCtx(c, log).Infow("webhook_received", "event", n.Event, "payment_id", n.Object.ID)

		if err := mgr.HandleNotification(c.Request.Context(), &n); err != nil {
			// Transient failure: a non-2xx status makes the provider retry.
			logctx.FromCtx(c, log).Errorw("webhook_handle_error", "event", n.Event, "error", err.Error())
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		logctx.FromCtx(c, log).Infow("webhook_handled", "event", n.Event, "payment_id", n.Object.ID)
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterWebhookRoutes(r gin.IRouter, mgr payment.Manager, log *zap.SugaredLogger) {
	r.POST("/payments/webhook", ApiPaymentWebhook(mgr, log))
}
