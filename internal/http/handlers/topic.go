package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursekit-backend/internal/http/response"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/services"
)

type TopicHandler struct {
	log          *logger.Logger
	topicService services.TopicService
}

func NewTopicHandler(log *logger.Logger, topicService services.TopicService) *TopicHandler {
	return &TopicHandler{log: log.With("handler", "TopicHandler"), topicService: topicService}
}

type topicRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	IsPublished bool   `json:"is_published"`
}

type topicPatchRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsPublished *bool   `json:"is_published"`
}

// POST /modules/:id/topics
func (h *TopicHandler) CreateTopic(c *gin.Context) {
	moduleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req topicRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.topicService.CreateTopic(dbcOf(c), moduleID, services.TopicInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"topic": t})
}

// GET /modules/:id/topics
func (h *TopicHandler) ListModuleTopics(c *gin.Context) {
	moduleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	topics, err := h.topicService.ListTopics(dbcOf(c), moduleID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topics": topics})
}

// GET /topics/:id
func (h *TopicHandler) GetTopic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	t, err := h.topicService.GetTopic(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topic": t})
}

// PATCH /topics/:id
func (h *TopicHandler) UpdateTopic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req topicPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.topicService.UpdateTopic(dbcOf(c), id, services.TopicPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topic": t})
}

// DELETE /topics/:id
func (h *TopicHandler) DeleteTopic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.topicService.DeleteTopic(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /topics/:id/reorder
func (h *TopicHandler) ReorderTopic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	t, err := h.topicService.ReorderTopic(dbcOf(c), id, *req.NewOrder)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"topic": t})
}
