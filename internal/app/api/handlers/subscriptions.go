package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	subsvc "github.com/calibrestore/billing/internal/app/service/subscription"
	"github.com/calibrestore/billing/internal/app/service/wallet"
	"github.com/calibrestore/billing/pkg/response"
)

type ActivateSubscriptionRequest struct {
	ActorID  string `json:"actor_id" binding:"required"`
	TariffID string `json:"tariff_id" binding:"required"`
}

// @Summary      Subscription Status
// @Description  Returns the actor's subscription with activity recomputed from the stored end date.
// @Tags         Subscription
// @Produce      json
// @Param        actorId path string true "Actor ID"
// @Success      200  {object}  handlers.RespSubscriptionInfo
// @Router       /api/v1/subscriptions/{actorId} [get]
func ApiSubscriptionStatus(mgr subsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		info, err := mgr.Status(c.Request.Context(), c.Param("actorId"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(info))
	}
}

// @Summary      Activate Subscription
// @Description  Charges the actor's wallet for the tariff and activates the subscription atomically.
// @Tags         Subscription
// @Accept       json
// @Produce      json
// @Param        request body handlers.ActivateSubscriptionRequest true "Activation request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/activate [post]
func ApiActivateSubscription(mgr subsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ActivateSubscriptionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}

		sub, err := mgr.Activate(c.Request.Context(), req.ActorID, req.TariffID)
		if err != nil {
			switch {
			case errors.Is(err, subsvc.ErrUnknownTariff):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			case errors.Is(err, wallet.ErrInsufficientFunds):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeInsufficientFunds, err.Error()))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(sub))
	}
}

func subscriptionToggle(op func(c *gin.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := op(c); err != nil {
			if errors.Is(err, subsvc.ErrNoSubscription) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Cancel Auto-Renew
// @Description  Turns off renewal; the subscription stays active until its end date.
// @Tags         Subscription
// @Produce      json
// @Param        actorId path string true "Actor ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{actorId}/cancel_auto_renew [post]
func ApiCancelAutoRenew(mgr subsvc.Manager) gin.HandlerFunc {
	return subscriptionToggle(func(c *gin.Context) error {
		return mgr.CancelAutoRenew(c.Request.Context(), c.Param("actorId"))
	})
}

// @Summary      Resume Auto-Renew
// @Description  Turns renewal back on for a still-active subscription.
// @Tags         Subscription
// @Produce      json
// @Param        actorId path string true "Actor ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{actorId}/resume_auto_renew [post]
func ApiResumeAutoRenew(mgr subsvc.Manager) gin.HandlerFunc {
	return subscriptionToggle(func(c *gin.Context) error {
		return mgr.ResumeAutoRenew(c.Request.Context(), c.Param("actorId"))
	})
}

// @Summary      Register Product
// @Description  Consumes one slot of the tariff's product allowance.
// @Tags         Subscription
// @Produce      json
// @Param        actorId path string true "Actor ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{actorId}/products/register [post]
func ApiRegisterProduct(mgr subsvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := mgr.RegisterProduct(c.Request.Context(), c.Param("actorId")); err != nil {
			switch {
			case errors.Is(err, subsvc.ErrNoSubscription):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
			case errors.Is(err, subsvc.ErrProductLimitReached):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Release Product
// @Description  Returns one slot of the tariff's product allowance.
// @Tags         Subscription
// @Produce      json
// @Param        actorId path string true "Actor ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/subscriptions/{actorId}/products/release [post]
func ApiReleaseProduct(mgr subsvc.Manager) gin.HandlerFunc {
	return subscriptionToggle(func(c *gin.Context) error {
		return mgr.ReleaseProduct(c.Request.Context(), c.Param("actorId"))
	})
}

func RegisterSubscriptionRoutes(r gin.IRouter, mgr subsvc.Manager) {
	r.GET("/subscriptions/:actorId", ApiSubscriptionStatus(mgr))
	r.POST("/subscriptions/activate", ApiActivateSubscription(mgr))
	r.POST("/subscriptions/:actorId/cancel_auto_renew", ApiCancelAutoRenew(mgr))
	r.POST("/subscriptions/:actorId/resume_auto_renew", ApiResumeAutoRenew(mgr))
	r.POST("/subscriptions/:actorId/products/register", ApiRegisterProduct(mgr))
	r.POST("/subscriptions/:actorId/products/release", ApiReleaseProduct(mgr))
}
