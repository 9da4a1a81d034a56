package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/calibrestore/billing/internal/app/service/wallet"
	"github.com/calibrestore/billing/pkg/response"
	"github.com/calibrestore/billing/pkg/types"
)

type WalletOpRequest struct {
	ActorID     string                      `json:"actor_id" binding:"required"`
	Amount      int64                       `json:"amount" binding:"required"`
	Type        types.WalletTransactionType `json:"type"`
	Description string                      `json:"description"`
}

type walletBalanceResp struct {
	ActorID string `json:"actor_id"`
	Balance int64  `json:"balance"`
}

// @Summary      Wallet Balance
// @Description  Returns the actor's balance derived from the ledger.
// @Tags         Wallet
// @Produce      json
// @Param        actorId path string true "Actor ID"
// @Success      200  {object}  handlers.RespWalletBalance
// @Router       /api/v1/wallet/{actorId}/balance [get]
func ApiWalletBalance(ledger wallet.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.Param("actorId")
		balance, err := ledger.Balance(c.Request.Context(), actorID)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(walletBalanceResp{ActorID: actorID, Balance: balance}))
	}
}

// @Summary      Wallet History
// @Description  Returns the actor's most recent ledger entries, newest first.
// @Tags         Wallet
// @Produce      json
// @Param        actorId path string true "Actor ID"
// @Param        limit query int false "Max entries to return"
// @Success      200  {object}  handlers.RespWalletHistory
// @Router       /api/v1/wallet/{actorId}/history [get]
func ApiWalletHistory(ledger wallet.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 0
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid limit"))
				return
			}
			limit = n
		}
		items, err := ledger.History(c.Request.Context(), c.Param("actorId"), limit)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Wallet Credit
// @Description  Appends a credit entry to the actor's ledger. Internal operations surface.
// @Tags         Wallet
// @Accept       json
// @Produce      json
// @Param        request body handlers.WalletOpRequest true "Credit request"
// @Success      200  {object}  handlers.RespWalletTransaction
// @Router       /api/v1/wallet/credit [post]
func ApiWalletCredit(ledger wallet.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WalletOpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.Type == "" {
			req.Type = types.WalletTransactionTypeDeposit
		}
		entry, err := ledger.Credit(c.Request.Context(), req.ActorID, req.Amount, req.Type, req.Description)
		if err != nil {
			if errors.Is(err, wallet.ErrInvalidAmount) {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(entry))
	}
}

// @Summary      Wallet Debit
// @Description  Appends a debit entry when the derived balance covers it.
// @Tags         Wallet
// @Accept       json
// @Produce      json
// @Param        request body handlers.WalletOpRequest true "Debit request"
// @Success      200  {object}  handlers.RespWalletTransaction
// @Router       /api/v1/wallet/debit [post]
func ApiWalletDebit(ledger wallet.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req WalletOpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		if req.Type == "" {
			req.Type = types.WalletTransactionTypeWithdrawal
		}
		entry, err := ledger.Debit(c.Request.Context(), req.ActorID, req.Amount, req.Type, req.Description)
		if err != nil {
			switch {
			case errors.Is(err, wallet.ErrInsufficientFunds):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeInsufficientFunds, err.Error()))
			case errors.Is(err, wallet.ErrInvalidAmount):
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			default:
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			}
			return
		}
		c.JSON(http.StatusOK, response.OKT(entry))
	}
}

func RegisterWalletRoutes(r gin.IRouter, ledger wallet.Ledger) {
	r.GET("/wallet/:actorId/balance", ApiWalletBalance(ledger))
	r.GET("/wallet/:actorId/history", ApiWalletHistory(ledger))
	r.POST("/wallet/credit", ApiWalletCredit(ledger))
	r.POST("/wallet/debit", ApiWalletDebit(ledger))
}
