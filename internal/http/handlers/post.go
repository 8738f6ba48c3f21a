package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/http/response"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/services"
)

type PostHandler struct {
	log         *logger.Logger
	postService services.PostService
}

func NewPostHandler(log *logger.Logger, postService services.PostService) *PostHandler {
	return &PostHandler{log: log.With("handler", "PostHandler"), postService: postService}
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type categoryPatchRequest struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

type categoryView struct {
	*types.Category
	PostCount int64 `json:"post_count"`
}

type postRequest struct {
	Title           string         `json:"title" binding:"required"`
	Slug            string         `json:"slug"`
	Excerpt         string         `json:"excerpt"`
	Content         string         `json:"content"`
	CoverImage      string         `json:"cover_image"`
	CategoryID      *uuid.UUID     `json:"category_id"`
	ReadingTime     int            `json:"reading_time"`
	Introduction    string         `json:"introduction"`
	Summary         datatypes.JSON `json:"summary"`
	TableOfContents datatypes.JSON `json:"table_of_contents"`
	Sections        datatypes.JSON `json:"sections"`
	Blocks          datatypes.JSON `json:"blocks"`
}

type postPatchRequest struct {
	Title           *string        `json:"title"`
	Slug            *string        `json:"slug"`
	Excerpt         *string        `json:"excerpt"`
	Content         *string        `json:"content"`
	CoverImage      *string        `json:"cover_image"`
	CategoryID      *uuid.UUID     `json:"category_id"`
	ReadingTime     *int           `json:"reading_time"`
	Introduction    *string        `json:"introduction"`
	Summary         datatypes.JSON `json:"summary"`
	TableOfContents datatypes.JSON `json:"table_of_contents"`
	Sections        datatypes.JSON `json:"sections"`
	Blocks          datatypes.JSON `json:"blocks"`
}

// GET /categories?offset=&limit=
func (h *PostHandler) ListCategories(c *gin.Context) {
	offset, limit, ok := page(c)
	if !ok {
		return
	}
	counted, err := h.postService.ListCategories(dbcOf(c), offset, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out := make([]categoryView, 0, len(counted))
	for _, cc := range counted {
		out = append(out, categoryView{Category: cc.Category, PostCount: cc.PostCount})
	}
	response.RespondOK(c, gin.H{"categories": out})
}

// GET /categories/slug/:slug
func (h *PostHandler) GetCategory(c *gin.Context) {
	cat, err := h.postService.GetCategoryBySlug(dbcOf(c), c.Param("slug"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"category": cat})
}

// POST /categories
func (h *PostHandler) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.postService.CreateCategory(dbcOf(c), services.CategoryInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"category": cat})
}

// PATCH /categories/:id
func (h *PostHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req categoryPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	cat, err := h.postService.UpdateCategory(dbcOf(c), id, services.CategoryPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"category": cat})
}

// DELETE /categories/:id
func (h *PostHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.postService.DeleteCategory(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /posts?offset=&limit=
func (h *PostHandler) ListPosts(c *gin.Context) {
	offset, limit, ok := page(c)
	if !ok {
		return
	}
	posts, total, err := h.postService.ListPosts(dbcOf(c), offset, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": posts, "total": total})
}

// GET /posts/category/:slug
func (h *PostHandler) ListByCategory(c *gin.Context) {
	offset, limit, ok := page(c)
	if !ok {
		return
	}
	posts, total, err := h.postService.ListPostsByCategory(dbcOf(c), c.Param("slug"), offset, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": posts, "total": total})
}

// GET /posts/author/:id
func (h *PostHandler) ListByAuthor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	offset, limit, ok := page(c)
	if !ok {
		return
	}
	posts, total, err := h.postService.ListPostsByAuthor(dbcOf(c), id, offset, limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": posts, "total": total})
}

// GET /posts/slug/:slug
func (h *PostHandler) GetPost(c *gin.Context) {
	p, err := h.postService.GetPostBySlug(dbcOf(c), c.Param("slug"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"post": p})
}

// GET /posts/slug/:slug/related?limit=
func (h *PostHandler) RelatedPosts(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	posts, err := h.postService.RelatedPosts(dbcOf(c), c.Param("slug"), limit)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"posts": posts})
}

// POST /posts
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.postService.CreatePost(dbcOf(c), services.PostInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"post": p})
}

// PATCH /posts/:id
func (h *PostHandler) UpdatePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req postPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.postService.UpdatePost(dbcOf(c), id, services.PostPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"post": p})
}

// DELETE /posts/:id
func (h *PostHandler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.postService.DeletePost(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
