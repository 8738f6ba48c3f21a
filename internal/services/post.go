package services

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type CategoryInput struct {
	Name        string
	Slug        string
	Description string
}

type CategoryPatch struct {
	Name        *string
	Slug        *string
	Description *string
}

type CategoryCount struct {
	Category  *types.Category
	PostCount int64
}

// PostInput carries a new post. Summary, TableOfContents, Sections and
// Blocks must be JSON arrays when set.
type PostInput struct {
	Title           string
	Slug            string
	Excerpt         string
	Content         string
	CoverImage      string
	CategoryID      *uuid.UUID
	ReadingTime     int
	Introduction    string
	Summary         datatypes.JSON
	TableOfContents datatypes.JSON
	Sections        datatypes.JSON
	Blocks          datatypes.JSON
}

// PostPatch holds the fields to change; nil means unchanged. A CategoryID of
// uuid.Nil clears the category.
type PostPatch struct {
	Title           *string
	Slug            *string
	Excerpt         *string
	Content         *string
	CoverImage      *string
	CategoryID      *uuid.UUID
	ReadingTime     *int
	Introduction    *string
	Summary         datatypes.JSON
	TableOfContents datatypes.JSON
	Sections        datatypes.JSON
	Blocks          datatypes.JSON
}

const (
	wordsPerMinute     = 200
	defaultRelatedPost = 2
)

type PostService interface {
	CreateCategory(dbc dbctx.Context, in CategoryInput) (*types.Category, error)
	GetCategoryBySlug(dbc dbctx.Context, slug string) (*types.Category, error)
	ListCategories(dbc dbctx.Context, offset, limit int) ([]CategoryCount, error)
	UpdateCategory(dbc dbctx.Context, categoryID uuid.UUID, patch CategoryPatch) (*types.Category, error)
	// DeleteCategory removes the category; its posts become uncategorized.
	DeleteCategory(dbc dbctx.Context, categoryID uuid.UUID) error

	CreatePost(dbc dbctx.Context, in PostInput) (*types.Post, error)
	GetPostBySlug(dbc dbctx.Context, slug string) (*types.Post, error)
	ListPosts(dbc dbctx.Context, offset, limit int) ([]*types.Post, int64, error)
	ListPostsByCategory(dbc dbctx.Context, categorySlug string, offset, limit int) ([]*types.Post, int64, error)
	ListPostsByAuthor(dbc dbctx.Context, authorID uuid.UUID, offset, limit int) ([]*types.Post, int64, error)
	// RelatedPosts lists other posts in the same category as slug.
	RelatedPosts(dbc dbctx.Context, slug string, limit int) ([]*types.Post, error)
	UpdatePost(dbc dbctx.Context, postID uuid.UUID, patch PostPatch) (*types.Post, error)
	DeletePost(dbc dbctx.Context, postID uuid.UUID) error
}

type postService struct {
	db           *gorm.DB
	log          *logger.Logger
	postRepo     repos.PostRepo
	categoryRepo repos.CategoryRepo
}

func NewPostService(db *gorm.DB, baseLog *logger.Logger, postRepo repos.PostRepo, categoryRepo repos.CategoryRepo) PostService {
	return &postService{
		db:           db,
		log:          baseLog.With("service", "PostService"),
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
	}
}

func slugOrTitle(slug, title string) (string, error) {
	s := Slugify(slug)
	if s == "" {
		s = Slugify(title)
	}
	if s == "" {
		return "", apierr.Invalid("slug is required")
	}
	return s, nil
}

// jsonArray checks raw is a JSON array; empty input stores [].
func jsonArray(field string, raw datatypes.JSON) (datatypes.JSON, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return datatypes.JSON("[]"), nil
	}
	if trimmed[0] != '[' || !json.Valid(trimmed) {
		return nil, apierr.Invalid("%s must be a JSON array", field)
	}
	return datatypes.JSON(trimmed), nil
}

// estimateReadingTime returns whole minutes at wordsPerMinute, rounding up.
func estimateReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}

func (ps *postService) CreateCategory(dbc dbctx.Context, in CategoryInput) (*types.Category, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apierr.Invalid("name is required")
	}
	slug, err := slugOrTitle(in.Slug, name)
	if err != nil {
		return nil, err
	}
	c := &types.Category{Name: name, Slug: slug, Description: in.Description}
	if _, err := ps.categoryRepo.Create(dbc, c); err != nil {
		return nil, apierr.MapDB("create category", err)
	}
	return c, nil
}

func (ps *postService) GetCategoryBySlug(dbc dbctx.Context, slug string) (*types.Category, error) {
	c, err := ps.categoryRepo.GetBySlug(dbc, strings.TrimSpace(slug))
	if err != nil {
		return nil, apierr.MapDB("get category", err)
	}
	if c == nil {
		return nil, apierr.NotFound("category %q", slug)
	}
	return c, nil
}

func (ps *postService) ListCategories(dbc dbctx.Context, offset, limit int) ([]CategoryCount, error) {
	cats, err := ps.categoryRepo.List(dbc, offset, limit)
	if err != nil {
		return nil, apierr.MapDB("list categories", err)
	}
	ids := make([]uuid.UUID, 0, len(cats))
	for _, c := range cats {
		ids = append(ids, c.ID)
	}
	counts, err := ps.categoryRepo.CountPosts(dbc, ids)
	if err != nil {
		return nil, apierr.MapDB("count category posts", err)
	}
	out := make([]CategoryCount, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryCount{Category: c, PostCount: counts[c.ID]})
	}
	return out, nil
}

func (ps *postService) loadCategory(dbc dbctx.Context, categoryID uuid.UUID) (*types.Category, error) {
	c, err := ps.categoryRepo.GetByID(dbc, categoryID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apierr.NotFound("category %s", categoryID)
	}
	return c, nil
}

func (ps *postService) UpdateCategory(dbc dbctx.Context, categoryID uuid.UUID, patch CategoryPatch) (*types.Category, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.Category
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadCategory(dbc, categoryID); err != nil {
			return err
		}
		fields := map[string]any{}
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return apierr.Invalid("name must not be empty")
			}
			fields["name"] = name
		}
		if patch.Slug != nil {
			slug := Slugify(*patch.Slug)
			if slug == "" {
				return apierr.Invalid("slug must not be empty")
			}
			fields["slug"] = slug
		}
		if patch.Description != nil {
			fields["description"] = *patch.Description
		}
		if err := ps.categoryRepo.UpdateFields(dbc, categoryID, fields); err != nil {
			return err
		}
		var err error
		out, err = ps.categoryRepo.GetByID(dbc, categoryID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update category", err)
	}
	return out, nil
}

func (ps *postService) DeleteCategory(dbc dbctx.Context, categoryID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadCategory(dbc, categoryID); err != nil {
			return err
		}
		return ps.categoryRepo.Delete(dbc, categoryID)
	})
	return apierr.MapDB("delete category", err)
}

func (ps *postService) CreatePost(dbc dbctx.Context, in PostInput) (*types.Post, error) {
	rd, err := currentUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Invalid("title is required")
	}
	slug, err := slugOrTitle(in.Slug, title)
	if err != nil {
		return nil, err
	}
	if in.ReadingTime < 0 {
		return nil, apierr.Invalid("reading time must not be negative")
	}
	p := &types.Post{
		Title:        title,
		Slug:         slug,
		Excerpt:      in.Excerpt,
		Content:      in.Content,
		CoverImage:   in.CoverImage,
		AuthorID:     rd.UserID,
		ReadingTime:  in.ReadingTime,
		Introduction: in.Introduction,
	}
	if p.ReadingTime == 0 {
		p.ReadingTime = estimateReadingTime(in.Content)
	}
	for _, f := range []struct {
		name string
		raw  datatypes.JSON
		dst  *datatypes.JSON
	}{
		{"summary", in.Summary, &p.Summary},
		{"table_of_contents", in.TableOfContents, &p.TableOfContents},
		{"sections", in.Sections, &p.Sections},
		{"blocks", in.Blocks, &p.Blocks},
	} {
		if *f.dst, err = jsonArray(f.name, f.raw); err != nil {
			return nil, err
		}
	}
	err = db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if in.CategoryID != nil && *in.CategoryID != uuid.Nil {
			if _, err := ps.loadCategory(dbc, *in.CategoryID); err != nil {
				return err
			}
			p.CategoryID = in.CategoryID
		}
		_, err := ps.postRepo.Create(dbc, p)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("create post", err)
	}
	ps.log.Info("Post created", "post_id", p.ID, "slug", slug)
	return p, nil
}

func (ps *postService) GetPostBySlug(dbc dbctx.Context, slug string) (*types.Post, error) {
	p, err := ps.postRepo.GetBySlug(dbc, strings.TrimSpace(slug))
	if err != nil {
		return nil, apierr.MapDB("get post", err)
	}
	if p == nil {
		return nil, apierr.NotFound("post %q", slug)
	}
	return p, nil
}

func (ps *postService) list(dbc dbctx.Context, f repos.PostFilter) ([]*types.Post, int64, error) {
	out, total, err := ps.postRepo.List(dbc, f)
	if err != nil {
		return nil, 0, apierr.MapDB("list posts", err)
	}
	return out, total, nil
}

func (ps *postService) ListPosts(dbc dbctx.Context, offset, limit int) ([]*types.Post, int64, error) {
	return ps.list(dbc, repos.PostFilter{Offset: offset, Limit: limit})
}

func (ps *postService) ListPostsByCategory(dbc dbctx.Context, categorySlug string, offset, limit int) ([]*types.Post, int64, error) {
	c, err := ps.GetCategoryBySlug(dbc, categorySlug)
	if err != nil {
		return nil, 0, err
	}
	return ps.list(dbc, repos.PostFilter{CategoryID: &c.ID, Offset: offset, Limit: limit})
}

func (ps *postService) ListPostsByAuthor(dbc dbctx.Context, authorID uuid.UUID, offset, limit int) ([]*types.Post, int64, error) {
	return ps.list(dbc, repos.PostFilter{AuthorID: &authorID, Offset: offset, Limit: limit})
}

func (ps *postService) RelatedPosts(dbc dbctx.Context, slug string, limit int) ([]*types.Post, error) {
	if limit <= 0 {
		limit = defaultRelatedPost
	}
	p, err := ps.GetPostBySlug(dbc, slug)
	if err != nil {
		return nil, err
	}
	if p.CategoryID == nil {
		return []*types.Post{}, nil
	}
	out, _, err := ps.list(dbc, repos.PostFilter{CategoryID: p.CategoryID, ExcludeSlug: p.Slug, Limit: limit})
	return out, err
}

func (ps *postService) loadPost(dbc dbctx.Context, postID uuid.UUID) (*types.Post, error) {
	p, err := ps.postRepo.GetByID(dbc, postID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("post %s", postID)
	}
	if _, err := requireOwner(dbc.Ctx, p.AuthorID, "post"); err != nil {
		return nil, err
	}
	return p, nil
}

func (ps *postService) UpdatePost(dbc dbctx.Context, postID uuid.UUID, patch PostPatch) (*types.Post, error) {
	if _, err := currentUser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.Post
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadPost(dbc, postID); err != nil {
			return err
		}
		fields := map[string]any{}
		if patch.Title != nil {
			t := strings.TrimSpace(*patch.Title)
			if t == "" {
				return apierr.Invalid("title must not be empty")
			}
			fields["title"] = t
		}
		if patch.Slug != nil {
			slug := Slugify(*patch.Slug)
			if slug == "" {
				return apierr.Invalid("slug must not be empty")
			}
			fields["slug"] = slug
		}
		if patch.Excerpt != nil {
			fields["excerpt"] = *patch.Excerpt
		}
		if patch.Content != nil {
			fields["content"] = *patch.Content
		}
		if patch.CoverImage != nil {
			fields["cover_image"] = *patch.CoverImage
		}
		if patch.Introduction != nil {
			fields["introduction"] = *patch.Introduction
		}
		if patch.ReadingTime != nil {
			if *patch.ReadingTime < 0 {
				return apierr.Invalid("reading time must not be negative")
			}
			fields["reading_time"] = *patch.ReadingTime
		}
		if patch.CategoryID != nil {
			if *patch.CategoryID == uuid.Nil {
				fields["category_id"] = nil
			} else {
				if _, err := ps.loadCategory(dbc, *patch.CategoryID); err != nil {
					return err
				}
				fields["category_id"] = *patch.CategoryID
			}
		}
		for column, raw := range map[string]datatypes.JSON{
			"summary":           patch.Summary,
			"table_of_contents": patch.TableOfContents,
			"sections":          patch.Sections,
			"blocks":            patch.Blocks,
		} {
			if len(raw) == 0 {
				continue
			}
			v, err := jsonArray(column, raw)
			if err != nil {
				return err
			}
			fields[column] = v
		}
		if err := ps.postRepo.UpdateFields(dbc, postID, fields); err != nil {
			return err
		}
		var err error
		out, err = ps.postRepo.GetByID(dbc, postID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update post", err)
	}
	return out, nil
}

func (ps *postService) DeletePost(dbc dbctx.Context, postID uuid.UUID) error {
	if _, err := currentUser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadPost(dbc, postID); err != nil {
			return err
		}
		return ps.postRepo.Delete(dbc, postID)
	})
	return apierr.MapDB("delete post", err)
}
