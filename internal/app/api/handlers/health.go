package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calibrestore/billing/internal/app/service/payment"
	"github.com/calibrestore/billing/pkg/response"
)

type healthStatus struct {
	Status            string `json:"status"`
	Timestamp         string `json:"timestamp"`
	GatewayConfigured bool   `json:"gateway_configured"`
}

// @Summary      Health check
// @Description  Returns service status and whether the payment gateway is configured
// @Tags         System
// @Produce      json
// @Success      200  {object}  handlers.RespOK
// @Router       /healthz [get]
func Healthz(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OKT(healthStatus{
			Status:            "ok",
			Timestamp:         time.Now().UTC().Format(time.RFC3339),
			GatewayConfigured: mgr.GatewayConfigured(),
		}))
	}
}

func RegisterHealthRoutes(r gin.IRouter, mgr payment.Manager) {
	r.GET("/healthz", Healthz(mgr))
}
