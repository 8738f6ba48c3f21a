package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursekit-backend/internal/http/response"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/services"
)

type ModuleHandler struct {
	log           *logger.Logger
	moduleService services.ModuleService
}

func NewModuleHandler(log *logger.Logger, moduleService services.ModuleService) *ModuleHandler {
	return &ModuleHandler{log: log.With("handler", "ModuleHandler"), moduleService: moduleService}
}

type moduleRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	IsPublished   bool   `json:"is_published"`
	IsFreePreview bool   `json:"is_free_preview"`
}

type modulePatchRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	IsPublished   *bool   `json:"is_published"`
	IsFreePreview *bool   `json:"is_free_preview"`
}

// POST /courses/:id/modules
func (h *ModuleHandler) CreateModule(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req moduleRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.moduleService.CreateModule(dbcOf(c), courseID, services.ModuleInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"module": m})
}

// GET /courses/:id/modules
func (h *ModuleHandler) ListCourseModules(c *gin.Context) {
	courseID, ok := pathID(c, "id")
	if !ok {
		return
	}
	mods, err := h.moduleService.ListModules(dbcOf(c), courseID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"modules": mods})
}

// GET /modules/:id
func (h *ModuleHandler) GetModule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	m, err := h.moduleService.GetModule(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": m})
}

// PATCH /modules/:id
func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req modulePatchRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.moduleService.UpdateModule(dbcOf(c), id, services.ModulePatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": m})
}

// DELETE /modules/:id
func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.moduleService.DeleteModule(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /modules/:id/reorder
// body: { "new_order": 2 }
func (h *ModuleHandler) ReorderModule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.moduleService.ReorderModule(dbcOf(c), id, *req.NewOrder)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": m})
}
