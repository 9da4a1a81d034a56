package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/calibrestore/billing/internal/app/service/promo"
	"github.com/calibrestore/billing/pkg/response"
)

type CreateBannerRequest struct {
	OwnerID    string `json:"owner_id" binding:"required"`
	Title      string `json:"title" binding:"required"`
	ImageURL   string `json:"image_url"`
	TTLSeconds int64  `json:"ttl_seconds" binding:"required"`
}

type CreateStoryRequest struct {
	OwnerID    string `json:"owner_id" binding:"required"`
	MediaURL   string `json:"media_url" binding:"required"`
	TTLSeconds int64  `json:"ttl_seconds" binding:"required"`
}

// @Summary      Create Banner
// @Description  Creates a promotional banner that expires after the given TTL.
// @Tags         Promo
// @Accept       json
// @Produce      json
// @Param        request body handlers.CreateBannerRequest true "Banner creation request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/promo/banners [post]
func ApiCreateBanner(svc *promo.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateBannerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		b, err := svc.CreateBanner(c.Request.Context(), req.OwnerID, req.Title, req.ImageURL, time.Duration(req.TTLSeconds)*time.Second)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(b))
	}
}

// @Summary      Create Story
// @Description  Creates a promotional story that expires after the given TTL.
// @Tags         Promo
// @Accept       json
// @Produce      json
// @Param        request body handlers.CreateStoryRequest true "Story creation request"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/promo/stories [post]
func ApiCreateStory(svc *promo.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateStoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		st, err := svc.CreateStory(c.Request.Context(), req.OwnerID, req.MediaURL, time.Duration(req.TTLSeconds)*time.Second)
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(st))
	}
}

// @Summary      List Banners
// @Description  Returns the owner's banners with expiry applied at read time.
// @Tags         Promo
// @Produce      json
// @Param        ownerId path string true "Owner ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/promo/banners/{ownerId} [get]
func ApiListBanners(svc *promo.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		banners, err := svc.ListBanners(c.Request.Context(), c.Param("ownerId"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(banners))
	}
}

// @Summary      List Stories
// @Description  Returns the owner's stories with expiry applied at read time.
// @Tags         Promo
// @Produce      json
// @Param        ownerId path string true "Owner ID"
// @Success      200  {object}  handlers.RespOK
// @Router       /api/v1/promo/stories/{ownerId} [get]
func ApiListStories(svc *promo.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stories, err := svc.ListStories(c.Request.Context(), c.Param("ownerId"))
		if err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(stories))
	}
}

func RegisterPromoRoutes(r gin.IRouter, svc *promo.Service) {
	r.POST("/promo/banners", ApiCreateBanner(svc))
	r.POST("/promo/stories", ApiCreateStory(svc))
	r.GET("/promo/banners/:ownerId", ApiListBanners(svc))
	r.GET("/promo/stories/:ownerId", ApiListStories(svc))
}
