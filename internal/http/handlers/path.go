package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/http/response"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/services"
)

type PathHandler struct {
	log         *logger.Logger
	pathService services.LearningPathService
}

func NewPathHandler(log *logger.Logger, pathService services.LearningPathService) *PathHandler {
	return &PathHandler{log: log.With("handler", "PathHandler"), pathService: pathService}
}

type pathRequest struct {
	Title            string   `json:"title" binding:"required"`
	Slug             string   `json:"slug"`
	Description      string   `json:"description"`
	LongDescription  string   `json:"long_description"`
	CoverImage       string   `json:"cover_image"`
	Difficulty       string   `json:"difficulty"`
	EstimatedHours   int      `json:"estimated_hours"`
	Tags             []string `json:"tags"`
	LearningOutcomes []string `json:"learning_outcomes"`
	Prerequisites    []string `json:"prerequisites"`
	IsPublished      bool     `json:"is_published"`
	IsFeatured       bool     `json:"is_featured"`
}

type pathPatchRequest struct {
	Title            *string   `json:"title"`
	Slug             *string   `json:"slug"`
	Description      *string   `json:"description"`
	LongDescription  *string   `json:"long_description"`
	CoverImage       *string   `json:"cover_image"`
	Difficulty       *string   `json:"difficulty"`
	EstimatedHours   *int      `json:"estimated_hours"`
	Tags             *[]string `json:"tags"`
	LearningOutcomes *[]string `json:"learning_outcomes"`
	Prerequisites    *[]string `json:"prerequisites"`
	IsFeatured       *bool     `json:"is_featured"`
}

type pathModuleRequest struct {
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimated_time"`
	IsPremium     bool   `json:"is_premium"`
	IsUnlocked    bool   `json:"is_unlocked"`
	StartURL      string `json:"start_url"`
}

type pathModulePatchRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	EstimatedTime *string `json:"estimated_time"`
	IsPremium     *bool   `json:"is_premium"`
	IsUnlocked    *bool   `json:"is_unlocked"`
	StartURL      *string `json:"start_url"`
}

type pathItemRequest struct {
	Title    string `json:"title" binding:"required"`
	ItemType string `json:"item_type"`
	URL      string `json:"url"`
}

type pathItemPatchRequest struct {
	Title    *string `json:"title"`
	ItemType *string `json:"item_type"`
	URL      *string `json:"url"`
}

type pathResourceRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	ResourceType string `json:"resource_type"`
	URL          string `json:"url"`
}

type pathResourcePatchRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	ResourceType *string `json:"resource_type"`
	URL          *string `json:"url"`
}

type attachRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

type pathCourseView struct {
	OrderIndex int           `json:"order_index"`
	Course     *types.Course `json:"course"`
}

type pathModuleView struct {
	*types.LearningPathModule
	Items []*types.LearningPathItem `json:"items"`
}

// POST /paths
func (h *PathHandler) CreatePath(c *gin.Context) {
	var req pathRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.pathService.CreatePath(dbcOf(c), services.LearningPathInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"path": p})
}

// GET /paths?published=&tag=&offset=&limit=
func (h *PathHandler) ListPaths(c *gin.Context) {
	offset, limit, ok := page(c)
	if !ok {
		return
	}
	published, ok := queryBool(c, "published")
	if !ok {
		return
	}
	paths, total, err := h.pathService.ListPaths(dbcOf(c), repos.PathFilter{
		Published: published,
		Tag:       c.Query("tag"),
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"paths": paths, "total": total})
}

// GET /paths/tag/:tag
func (h *PathHandler) ListPathsByTag(c *gin.Context) {
	offset, limit, ok := page(c)
	if !ok {
		return
	}
	paths, total, err := h.pathService.ListPaths(dbcOf(c), repos.PathFilter{
		Tag:    c.Param("tag"),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"paths": paths, "total": total})
}

// GET /paths/featured?limit=
func (h *PathHandler) ListFeatured(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	paths, err := h.pathService.ListFeatured(dbcOf(c), limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"paths": paths})
}

// GET /paths/:id/related?limit=
func (h *PathHandler) ListRelated(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	paths, err := h.pathService.ListRelated(dbcOf(c), id, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"paths": paths})
}

// GET /paths/slug/:slug
func (h *PathHandler) GetPath(c *gin.Context) {
	view, err := h.pathService.GetPathBySlug(dbcOf(c), c.Param("slug"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	courses := make([]pathCourseView, 0, len(view.Courses))
	for _, pc := range view.Courses {
		courses = append(courses, pathCourseView{OrderIndex: pc.Link.OrderIndex, Course: pc.Course})
	}
	modules := make([]pathModuleView, 0, len(view.Modules))
	for _, mv := range view.Modules {
		items := mv.Items
		if items == nil {
			items = []*types.LearningPathItem{}
		}
		modules = append(modules, pathModuleView{LearningPathModule: mv.Module, Items: items})
	}
	response.RespondOK(c, gin.H{
		"path":      view.Path,
		"courses":   courses,
		"modules":   modules,
		"resources": view.Resources,
	})
}

// PATCH /paths/:id
func (h *PathHandler) UpdatePath(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req pathPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.pathService.UpdatePath(dbcOf(c), id, services.LearningPathPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"path": p})
}

// DELETE /paths/:id
func (h *PathHandler) DeletePath(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.pathService.DeletePath(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /paths/:id/publish
func (h *PathHandler) SetPublished(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req publishRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.pathService.SetPublished(dbcOf(c), id, *req.Published)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"path": p})
}

// POST /paths/:id/courses
func (h *PathHandler) AttachCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req attachRequest
	if !bindJSON(c, &req) {
		return
	}
	link, err := h.pathService.AttachCourse(dbcOf(c), id, req.CourseID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"link": link})
}

// DELETE /paths/:id/courses/:courseId
func (h *PathHandler) DetachCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	if err := h.pathService.DetachCourse(dbcOf(c), id, courseID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /paths/:id/courses/:courseId/reorder
func (h *PathHandler) ReorderCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	courseID, ok := pathID(c, "courseId")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	link, err := h.pathService.ReorderCourse(dbcOf(c), id, courseID, *req.NewOrder)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"link": link})
}

// POST /paths/:id/modules
func (h *PathHandler) AddModule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req pathModuleRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.pathService.AddModule(dbcOf(c), id, services.PathModuleInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"module": m})
}

// PATCH /path-modules/:id
func (h *PathHandler) UpdateModule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req pathModulePatchRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.pathService.UpdateModule(dbcOf(c), id, services.PathModulePatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": m})
}

// DELETE /path-modules/:id
func (h *PathHandler) DeleteModule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.pathService.DeleteModule(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /path-modules/:id/reorder
func (h *PathHandler) ReorderModule(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := h.pathService.ReorderModule(dbcOf(c), id, *req.NewOrder)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"module": m})
}

// POST /path-modules/:id/items
func (h *PathHandler) AddItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req pathItemRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.pathService.AddItem(dbcOf(c), id, services.PathItemInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"item": item})
}

// PATCH /path-items/:id
func (h *PathHandler) UpdateItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req pathItemPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.pathService.UpdateItem(dbcOf(c), id, services.PathItemPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"item": item})
}

// DELETE /path-items/:id
func (h *PathHandler) DeleteItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.pathService.DeleteItem(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /path-items/:id/reorder
func (h *PathHandler) ReorderItem(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.pathService.ReorderItem(dbcOf(c), id, *req.NewOrder)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"item": item})
}

// POST /paths/:id/resources
func (h *PathHandler) AddResource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req pathResourceRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.pathService.AddResource(dbcOf(c), id, services.PathResourceInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"resource": res})
}

// PATCH /path-resources/:id
func (h *PathHandler) UpdateResource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req pathResourcePatchRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.pathService.UpdateResource(dbcOf(c), id, services.PathResourcePatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"resource": res})
}

// DELETE /path-resources/:id
func (h *PathHandler) DeleteResource(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.pathService.DeleteResource(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
