package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursekit-backend/internal/http/response"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/services"
)

type LessonHandler struct {
	log           *logger.Logger
	lessonService services.LessonService
}

func NewLessonHandler(log *logger.Logger, lessonService services.LessonService) *LessonHandler {
	return &LessonHandler{log: log.With("handler", "LessonHandler"), lessonService: lessonService}
}

type lessonRequest struct {
	Title           string `json:"title" binding:"required"`
	Content         string `json:"content"`
	LessonType      string `json:"lesson_type"`
	MediaURL        string `json:"media_url"`
	DurationMinutes int    `json:"duration_minutes"`
	IsPublished     bool   `json:"is_published"`
}

type lessonPatchRequest struct {
	Title           *string `json:"title"`
	Content         *string `json:"content"`
	LessonType      *string `json:"lesson_type"`
	MediaURL        *string `json:"media_url"`
	DurationMinutes *int    `json:"duration_minutes"`
	IsPublished     *bool   `json:"is_published"`
}

// POST /topics/:id/lessons
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	topicID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req lessonRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.lessonService.CreateLesson(dbcOf(c), topicID, services.LessonInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"lesson": l})
}

// GET /topics/:id/lessons
func (h *LessonHandler) ListTopicLessons(c *gin.Context) {
	topicID, ok := pathID(c, "id")
	if !ok {
		return
	}
	lessons, err := h.lessonService.ListLessons(dbcOf(c), topicID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lessons": lessons})
}

// GET /lessons/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	l, err := h.lessonService.GetLesson(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lesson": l})
}

// PATCH /lessons/:id
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req lessonPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.lessonService.UpdateLesson(dbcOf(c), id, services.LessonPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lesson": l})
}

// DELETE /lessons/:id
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.lessonService.DeleteLesson(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /lessons/:id/reorder
func (h *LessonHandler) ReorderLesson(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	l, err := h.lessonService.ReorderLesson(dbcOf(c), id, *req.NewOrder)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lesson": l})
}
