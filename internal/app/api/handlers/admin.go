package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calibrestore/billing/internal/app/service/payment"
	"github.com/calibrestore/billing/internal/app/service/statistics"
	"github.com/calibrestore/billing/internal/app/service/wallet"
	"github.com/calibrestore/billing/pkg/response"
)

// @Summary      Scan Payment Attempts (Admin)
// @Description  Paginated, filterable list of payment attempts.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body payment.ScanAttemptsRequest true "Scan request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespScanAttempts
// @Router       /api/v1/admin/attempts/scan [post]
func ApiScanAttempts(mgr payment.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.ScanAttemptsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := mgr.ScanAttempts(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Scan Wallet Transactions (Admin)
// @Description  Paginated, filterable list of wallet ledger entries.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body wallet.ScanTransactionsRequest true "Scan request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespScanTransactions
// @Router       /api/v1/admin/transactions/scan [post]
func ApiScanTransactions(ledger wallet.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req wallet.ScanTransactionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		res, err := ledger.ScanTransactions(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

// @Summary      Daily Revenue Statistics (Admin)
// @Description  Returns daily revenue snapshots for an inclusive date range.
// @Tags         Admin
// @Produce      json
// @Param        from query string true "Range start, YYYY-MM-DD"
// @Param        to query string true "Range end, YYYY-MM-DD"
// @Success      200  {object}  handlers.RespDailyStatistics
// @Router       /api/v1/admin/statistics/daily [get]
func ApiDailyStatistics(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, err := time.Parse("2006-01-02", c.Query("from"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid from date"))
			return
		}
		to, err := time.Parse("2006-01-02", c.Query("to"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid to date"))
			return
		}
		if to.Before(from) {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "to precedes from"))
			return
		}
		stats, err := svc.Daily(c.Request.Context(), from, to)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(stats))
	}
}

func RegisterAdminRoutes(r gin.IRouter, mgr payment.Manager, ledger wallet.Ledger, stats *statistics.Service) {
	r.POST("/attempts/scan", ApiScanAttempts(mgr))
	r.POST("/transactions/scan", ApiScanTransactions(ledger))
	r.GET("/statistics/daily", ApiDailyStatistics(stats))
}
