package blog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type PostFilter struct {
	CategoryID  *uuid.UUID
	AuthorID    *uuid.UUID
	ExcludeSlug string
	Offset      int
	Limit       int
}

type PostRepo interface {
	Create(dbc dbctx.Context, p *types.Post) (*types.Post, error)
	GetByID(dbc dbctx.Context, postID uuid.UUID) (*types.Post, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Post, error)
	// List returns matching posts newest first, with the unpaged total.
	List(dbc dbctx.Context, f PostFilter) ([]*types.Post, int64, error)
	UpdateFields(dbc dbctx.Context, postID uuid.UUID, fields map[string]any) error
	Delete(dbc dbctx.Context, postID uuid.UUID) error
}

type postRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostRepo(db *gorm.DB, baseLog *logger.Logger) PostRepo {
	return &postRepo{db: db, log: baseLog.With("repo", "PostRepo")}
}

func (r *postRepo) Create(dbc dbctx.Context, p *types.Post) (*types.Post, error) {
	if err := dbc.DB(r.db).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *postRepo) GetByID(dbc dbctx.Context, postID uuid.UUID) (*types.Post, error) {
	return r.first(dbc, "id = ?", postID)
}

func (r *postRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Post, error) {
	return r.first(dbc, "slug = ?", slug)
}

func (r *postRepo) first(dbc dbctx.Context, where string, arg any) (*types.Post, error) {
	var p types.Post
	if err := dbc.DB(r.db).Where(where, arg).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *postRepo) List(dbc dbctx.Context, f PostFilter) ([]*types.Post, int64, error) {
	q := dbc.DB(r.db).Model(&types.Post{})
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if f.ExcludeSlug != "" {
		q = q.Where("slug <> ?", f.ExcludeSlug)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	var results []*types.Post
	if err := q.Session(&gorm.Session{}).
		Order("published_at DESC, created_at DESC").
		Offset(f.Offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *postRepo) UpdateFields(dbc dbctx.Context, postID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Post{}).Where("id = ?", postID).Updates(fields).Error
}

func (r *postRepo) Delete(dbc dbctx.Context, postID uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", postID).Delete(&types.Post{}).Error
}
