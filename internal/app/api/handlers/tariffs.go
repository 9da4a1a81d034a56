package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/calibrestore/billing/pkg/config"
	"github.com/calibrestore/billing/pkg/response"
)

// @Summary      List Tariffs
// @Description  Returns the tariff catalog.
// @Tags         Tariff
// @Produce      json
// @Success      200  {object}  handlers.RespTariffList
// @Router       /api/v1/tariffs [get]
func ApiListTariffs(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, response.OKT(cfg.Tariffs))
	}
}

// @Summary      Get Tariff
// @Description  Returns a single tariff by id.
// @Tags         Tariff
// @Produce      json
// @Param        id path string true "Tariff ID"
// @Success      200  {object}  handlers.RespTariff
// @Router       /api/v1/tariffs/{id} [get]
func ApiGetTariff(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := cfg.GetTariffByID(c.Param("id"))
		if t == nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeNotFound, "unknown tariff"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(t))
	}
}

func RegisterTariffRoutes(r gin.IRouter, cfg *config.Config) {
	r.GET("/tariffs", ApiListTariffs(cfg))
	r.GET("/tariffs/:id", ApiGetTariff(cfg))
}
