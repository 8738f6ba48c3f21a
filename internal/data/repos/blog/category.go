package blog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type CategoryRepo interface {
	Create(dbc dbctx.Context, c *types.Category) (*types.Category, error)
	GetByID(dbc dbctx.Context, categoryID uuid.UUID) (*types.Category, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Category, error)
	List(dbc dbctx.Context, offset, limit int) ([]*types.Category, error)
	// CountPosts returns the number of posts filed under each category.
	CountPosts(dbc dbctx.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	UpdateFields(dbc dbctx.Context, categoryID uuid.UUID, fields map[string]any) error
	// Delete removes the category and leaves its posts uncategorized.
	Delete(dbc dbctx.Context, categoryID uuid.UUID) error
}

type categoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return &categoryRepo{db: db, log: baseLog.With("repo", "CategoryRepo")}
}

func (r *categoryRepo) Create(dbc dbctx.Context, c *types.Category) (*types.Category, error) {
	if err := dbc.DB(r.db).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *categoryRepo) GetByID(dbc dbctx.Context, categoryID uuid.UUID) (*types.Category, error) {
	return r.first(dbc, "id = ?", categoryID)
}

func (r *categoryRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Category, error) {
	return r.first(dbc, "slug = ?", slug)
}

func (r *categoryRepo) first(dbc dbctx.Context, where string, arg any) (*types.Category, error) {
	var c types.Category
	if err := dbc.DB(r.db).Where(where, arg).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) List(dbc dbctx.Context, offset, limit int) ([]*types.Category, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var results []*types.Category
	if err := dbc.DB(r.db).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *categoryRepo) CountPosts(dbc dbctx.Context, categoryIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		CategoryID uuid.UUID
		N          int64
	}
	if err := dbc.DB(r.db).Model(&types.Post{}).
		Select("category_id, COUNT(*) AS n").
		Where("category_id IN ?", categoryIDs).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.CategoryID] = row.N
	}
	return out, nil
}

func (r *categoryRepo) UpdateFields(dbc dbctx.Context, categoryID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Category{}).Where("id = ?", categoryID).Updates(fields).Error
}

func (r *categoryRepo) Delete(dbc dbctx.Context, categoryID uuid.UUID) error {
	tx := dbc.DB(r.db)
	if err := tx.Model(&types.Post{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", categoryID).Delete(&types.Category{}).Error
}
