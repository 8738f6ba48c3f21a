package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursekit-backend/internal/http/response"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/services"
)

type BannerHandler struct {
	log           *logger.Logger
	bannerService services.BannerService
}

func NewBannerHandler(log *logger.Logger, bannerService services.BannerService) *BannerHandler {
	return &BannerHandler{log: log.With("handler", "BannerHandler"), bannerService: bannerService}
}

type bannerRequest struct {
	Title           string     `json:"title" binding:"required"`
	Message         string     `json:"message"`
	CTAText         string     `json:"cta_text"`
	CTAURL          string     `json:"cta_url"`
	BannerType      string     `json:"banner_type"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	IsActive        bool       `json:"is_active"`
	ShowToLoggedIn  bool       `json:"show_to_logged_in"`
	ShowToAnonymous bool       `json:"show_to_anonymous"`
	ShowOnPages     []string   `json:"show_on_pages"`
	Priority        int        `json:"priority"`
}

type bannerPatchRequest struct {
	Title           *string    `json:"title"`
	Message         *string    `json:"message"`
	CTAText         *string    `json:"cta_text"`
	CTAURL          *string    `json:"cta_url"`
	BannerType      *string    `json:"banner_type"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	IsActive        *bool      `json:"is_active"`
	ShowToLoggedIn  *bool      `json:"show_to_logged_in"`
	ShowToAnonymous *bool      `json:"show_to_anonymous"`
	ShowOnPages     *[]string  `json:"show_on_pages"`
	Priority        *int       `json:"priority"`
}

type statRequest struct {
	Stat string `json:"stat" binding:"required"`
}

// GET /banners/active?page=
func (h *BannerHandler) ActiveBanners(c *gin.Context) {
	banners, err := h.bannerService.ActiveBanners(dbcOf(c), c.Query("page"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"banners": banners})
}

// GET /banners
func (h *BannerHandler) ListBanners(c *gin.Context) {
	banners, err := h.bannerService.ListBanners(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"banners": banners})
}

// POST /banners/:id/stats
// body: { "stat": "impression" | "click" | "dismissal" | "conversion" }
func (h *BannerHandler) TrackStat(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.bannerService.TrackStat(dbcOf(c), id, req.Stat); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusAccepted)
}

// POST /banners
func (h *BannerHandler) CreateBanner(c *gin.Context) {
	var req bannerRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.bannerService.CreateBanner(dbcOf(c), services.BannerInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"banner": b})
}

// GET /banners/:id
func (h *BannerHandler) GetBanner(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	b, err := h.bannerService.GetBanner(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"banner": b})
}

// PATCH /banners/:id
func (h *BannerHandler) UpdateBanner(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req bannerPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	b, err := h.bannerService.UpdateBanner(dbcOf(c), id, services.BannerPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"banner": b})
}

// DELETE /banners/:id
func (h *BannerHandler) DeleteBanner(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.bannerService.DeleteBanner(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
