package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calibrestore/billing/internal/app/service/payment"
	"github.com/calibrestore/billing/internal/app/service/subscription"
	"github.com/calibrestore/billing/internal/app/service/wallet"
	"github.com/calibrestore/billing/internal/platform/yookassa"
	"github.com/calibrestore/billing/pkg/response"
	"github.com/calibrestore/billing/pkg/types"
)

type CreatePaymentRequest struct {
	ActorID   string               `json:"actor_id" binding:"required"`
	Purpose   types.PaymentPurpose `json:"purpose" binding:"required"`
	TariffID  string               `json:"tariff_id"`
	Amount    int64                `json:"amount"`
	ReturnURL string               `json:"return_url"`
}

// @Summary      Create Payment
// @Description  Starts a gateway checkout for a tariff purchase or a wallet deposit.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body handlers.CreatePaymentRequest true "Payment creation request"
// @Success      200  {object}  handlers.RespCreatePayment
// @Router       /api/v1/payments/create [post]
func ApiCreatePayment(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		var res *payment.CreatePaymentResult
		var err error
		switch req.Purpose {
		case types.PaymentPurposeTariff:
			res, err = mgr.CreateTariffPayment(c.Request.Context(), req.ActorID, req.TariffID, req.ReturnURL)
		case types.PaymentPurposeWalletDeposit:
			res, err = mgr.CreateDepositPayment(c.Request.Context(), req.ActorID, req.Amount, req.ReturnURL)
		default:
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "unknown purpose"))
			return
		}
		if err != nil {
			switch {
			case errors.Is(err, subscription.ErrUnknownTariff), errors.Is(err, wallet.ErrInvalidAmount):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Verify Payment
// @Description  Polls the gateway for the payment status and applies its effect when the payment succeeded.
// @Tags         Payment
// @Produce      json
// @Param        paymentId path string true "Gateway payment ID"
// @Success      200  {object}  handlers.RespVerifyPayment
// @Router       /api/v1/payments/verify/{paymentId} [get]
func ApiVerifyPayment(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := mgr.Verify(c.Request.Context(), c.Param("paymentId"))
		if err != nil {
			switch {
			case errors.Is(err, payment.ErrAttemptNotFound):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

type cancelPaymentRequest struct {
	ActorID string `json:"actor_id" binding:"required"`
}

// @Summary      Cancel Payment
// @Description  Voids a still-pending payment at the owner's request.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        paymentId path string true "Gateway payment ID"
// @Param        request body handlers.cancelPaymentRequest true "Cancel request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/payments/{paymentId}/cancel [post]
func ApiCancelPayment(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cancelPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		err := mgr.Cancel(c.Request.Context(), req.ActorID, c.Param("paymentId"))
		if err != nil {
			switch {
			case errors.Is(err, payment.ErrAttemptNotFound):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
			case errors.Is(err, payment.ErrActorMismatch), errors.Is(err, payment.ErrAttemptTerminal):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			case errors.Is(err, yookassa.ErrNotConfigured):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, mgr payment.Manager) {
	r.POST("/payments/create", ApiCreatePayment(mgr))
	r.GET("/payments/verify/:paymentId", ApiVerifyPayment(mgr))
	r.POST("/payments/:paymentId/cancel", ApiCancelPayment(mgr))
}
