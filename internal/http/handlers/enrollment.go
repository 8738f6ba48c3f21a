package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/http/response"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/services"
)

type EnrollmentHandler struct {
	log               *logger.Logger
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(log *logger.Logger, enrollmentService services.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{log: log.With("handler", "EnrollmentHandler"), enrollmentService: enrollmentService}
}

type progressRequest struct {
	ContentType string    `json:"content_type" binding:"required"`
	ContentID   uuid.UUID `json:"content_id" binding:"required"`
	IsCompleted bool      `json:"is_completed"`
}

// POST /courses/:id/enroll
// 201 on a new enrollment, 200 when the caller was already enrolled.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	e, created, err := h.enrollmentService.Enroll(dbcOf(c), courseID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"enrollment": e})
}

// GET /enrollments
func (h *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	rows, err := h.enrollmentService.ListMyEnrollments(dbcOf(c))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollments": rows})
}

// GET /enrollments/:id
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	e, err := h.enrollmentService.GetEnrollment(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollment": e})
}

// POST /enrollments/:id/complete
func (h *EnrollmentHandler) CompleteEnrollment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	e, err := h.enrollmentService.CompleteEnrollment(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"enrollment": e})
}

// POST /enrollments/:id/progress
// body: { "content_type": "lesson", "content_id": "...", "is_completed": true }
func (h *EnrollmentHandler) RecordProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req progressRequest
	if !bindJSON(c, &req) {
		return
	}
	p, e, err := h.enrollmentService.RecordProgress(dbcOf(c), id, req.ContentType, req.ContentID, req.IsCompleted)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": p, "enrollment": e})
}

// GET /enrollments/:id/progress
func (h *EnrollmentHandler) ListProgress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.enrollmentService.ListProgress(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": rows})
}
