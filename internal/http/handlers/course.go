package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/http/response"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/services"
)

type CourseHandler struct {
	log           *logger.Logger
	courseService services.CourseService
}

func NewCourseHandler(log *logger.Logger, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		log:           log.With("handler", "CourseHandler"),
		courseService: courseService,
	}
}

type courseRequest struct {
	Title            string   `json:"title" binding:"required"`
	Slug             string   `json:"slug"`
	Description      string   `json:"description"`
	ShortDescription string   `json:"short_description"`
	Level            string   `json:"level"`
	Price            float64  `json:"price"`
	IsFeatured       bool     `json:"is_featured"`
	Tags             []string `json:"tags"`
	LearningOutcomes []string `json:"learning_outcomes"`
	Prerequisites    []string `json:"prerequisites"`
}

type coursePatchRequest struct {
	Title            *string   `json:"title"`
	Description      *string   `json:"description"`
	ShortDescription *string   `json:"short_description"`
	Level            *string   `json:"level"`
	Price            *float64  `json:"price"`
	IsFeatured       *bool     `json:"is_featured"`
	Tags             *[]string `json:"tags"`
	LearningOutcomes *[]string `json:"learning_outcomes"`
	Prerequisites    *[]string `json:"prerequisites"`
}

type publishRequest struct {
	Published *bool `json:"published" binding:"required"`
}

// POST /courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req courseRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courseService.CreateCourse(dbcOf(c), services.CourseInput{
		Title:            req.Title,
		Slug:             req.Slug,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Level:            req.Level,
		Price:            req.Price,
		IsFeatured:       req.IsFeatured,
		Tags:             req.Tags,
		LearningOutcomes: req.LearningOutcomes,
		Prerequisites:    req.Prerequisites,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"course": course})
}

// GET /courses?published=&featured=&level=&search=&offset=&limit=
func (h *CourseHandler) ListCourses(c *gin.Context) {
	offset, limit, ok := page(c)
	if !ok {
		return
	}
	published, ok := queryBool(c, "published")
	if !ok {
		return
	}
	featured, ok := queryBool(c, "featured")
	if !ok {
		return
	}
	courses, total, err := h.courseService.ListCourses(dbcOf(c), repos.CourseFilter{
		Published: published,
		Featured:  featured,
		Level:     c.Query("level"),
		Search:    c.Query("search"),
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses, "total": total})
}

// GET /courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	course, err := h.courseService.GetCourse(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// GET /courses/slug/:slug
func (h *CourseHandler) GetCourseBySlug(c *gin.Context) {
	course, err := h.courseService.GetCourseBySlug(dbcOf(c), c.Param("slug"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// PATCH /courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req coursePatchRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courseService.UpdateCourse(dbcOf(c), id, services.CoursePatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// POST /courses/:id/publish
// body: { "published": true }
func (h *CourseHandler) SetPublished(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req publishRequest
	if !bindJSON(c, &req) {
		return
	}
	course, err := h.courseService.SetPublished(dbcOf(c), id, *req.Published)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}

// DELETE /courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.courseService.DeleteCourse(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type lessonNode struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	LessonType      string `json:"lesson_type"`
	OrderIndex      int    `json:"order_index"`
	DurationMinutes int    `json:"duration_minutes"`
	IsPublished     bool   `json:"is_published"`
}

type topicNode struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	OrderIndex  int          `json:"order_index"`
	IsPublished bool         `json:"is_published"`
	Lessons     []lessonNode `json:"lessons"`
}

type moduleNode struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	OrderIndex    int         `json:"order_index"`
	IsPublished   bool        `json:"is_published"`
	IsFreePreview bool        `json:"is_free_preview"`
	Topics        []topicNode `json:"topics"`
}

type courseTree struct {
	Course  *types.Course `json:"course"`
	Modules []moduleNode  `json:"modules"`
}

// GET /courses/:id/tree
func (h *CourseHandler) GetCourseTree(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	tree, err := h.courseService.GetCourseTree(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, toCourseTree(tree))
}

func toCourseTree(tree *services.CourseTree) courseTree {
	out := courseTree{Course: tree.Course, Modules: make([]moduleNode, 0, len(tree.Modules))}
	for _, m := range tree.Modules {
		mn := moduleNode{
			ID:            m.Module.ID.String(),
			Title:         m.Module.Title,
			OrderIndex:    m.Module.OrderIndex,
			IsPublished:   m.Module.IsPublished,
			IsFreePreview: m.Module.IsFreePreview,
			Topics:        make([]topicNode, 0, len(m.Topics)),
		}
		for _, t := range m.Topics {
			tn := topicNode{
				ID:          t.Topic.ID.String(),
				Title:       t.Topic.Title,
				OrderIndex:  t.Topic.OrderIndex,
				IsPublished: t.Topic.IsPublished,
				Lessons:     make([]lessonNode, 0, len(t.Lessons)),
			}
			for _, l := range t.Lessons {
				tn.Lessons = append(tn.Lessons, lessonNode{
					ID:              l.ID.String(),
					Title:           l.Title,
					LessonType:      l.LessonType,
					OrderIndex:      l.OrderIndex,
					DurationMinutes: l.DurationMinutes,
					IsPublished:     l.IsPublished,
				})
			}
			mn.Topics = append(mn.Topics, tn)
		}
		out.Modules = append(out.Modules, mn)
	}
	return out
}
