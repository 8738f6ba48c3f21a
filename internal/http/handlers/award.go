package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/http/response"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/services"
)

type AwardHandler struct {
	log          *logger.Logger
	awardService services.AwardService
}

func NewAwardHandler(log *logger.Logger, awardService services.AwardService) *AwardHandler {
	return &AwardHandler{log: log.With("handler", "AwardHandler"), awardService: awardService}
}

type awardRequest struct {
	Name         string                  `json:"name" binding:"required"`
	Description  string                  `json:"description"`
	Icon         string                  `json:"icon"`
	Category     string                  `json:"category"`
	Points       int                     `json:"points"`
	Requirements types.AwardRequirements `json:"requirements"`
}

type awardPatchRequest struct {
	Name         *string                  `json:"name"`
	Description  *string                  `json:"description"`
	Icon         *string                  `json:"icon"`
	Category     *string                  `json:"category"`
	Points       *int                     `json:"points"`
	Requirements *types.AwardRequirements `json:"requirements"`
	IsActive     *bool                    `json:"is_active"`
}

type grantRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// POST /awards
func (h *AwardHandler) CreateAward(c *gin.Context) {
	var req awardRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.awardService.CreateAward(dbcOf(c), services.AwardInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"award": a})
}

// GET /awards?category=
func (h *AwardHandler) ListAwards(c *gin.Context) {
	awards, err := h.awardService.ListAwards(dbcOf(c), c.Query("category"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"awards": awards})
}

// GET /awards/:id
func (h *AwardHandler) GetAward(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.awardService.GetAward(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"award": a})
}

// PATCH /awards/:id
func (h *AwardHandler) UpdateAward(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req awardPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.awardService.UpdateAward(dbcOf(c), id, services.AwardPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"award": a})
}

// DELETE /awards/:id
func (h *AwardHandler) DeleteAward(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.awardService.DeleteAward(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /awards/:id/grant
// body: { "user_id": "..." }
func (h *AwardHandler) Grant(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req grantRequest
	if !bindJSON(c, &req) {
		return
	}
	ua, granted, err := h.awardService.Grant(dbcOf(c), req.UserID, id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user_award": ua, "granted": granted})
}

// POST /me/awards/check
func (h *AwardHandler) Check(c *gin.Context) {
	earned, err := h.awardService.Check(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"earned": earned})
}

// GET /me/awards
func (h *AwardHandler) MyAwards(c *gin.Context) {
	rows, err := h.awardService.MyAwards(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"awards": rows})
}

// GET /users/:id/awards
func (h *AwardHandler) UserAwards(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.awardService.UserAwards(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user_id": id, "awards": rows})
}
