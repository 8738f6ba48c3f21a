package learningpath

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type PathFilter struct {
	Published *bool
	Featured  *bool
	Tag       string
	// ExcludeID drops one path from the result.
	ExcludeID uuid.UUID
	Offset    int
	Limit     int
}

type LearningPathRepo interface {
	Create(dbc dbctx.Context, p *types.LearningPath) (*types.LearningPath, error)
	GetByID(dbc dbctx.Context, pathID uuid.UUID) (*types.LearningPath, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.LearningPath, error)
	List(dbc dbctx.Context, f PathFilter) ([]*types.LearningPath, int64, error)
	UpdateFields(dbc dbctx.Context, pathID uuid.UUID, fields map[string]any) error
	// SoftDelete hides the path and removes its course links, modules, items
	// and resources.
	SoftDelete(dbc dbctx.Context, pathID uuid.UUID) error
}

type learningPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) LearningPathRepo {
	return &learningPathRepo{db: db, log: baseLog.With("repo", "LearningPathRepo")}
}

func (r *learningPathRepo) Create(dbc dbctx.Context, p *types.LearningPath) (*types.LearningPath, error) {
	if err := dbc.DB(r.db).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *learningPathRepo) GetByID(dbc dbctx.Context, pathID uuid.UUID) (*types.LearningPath, error) {
	return r.first(dbc, "id = ?", pathID)
}

func (r *learningPathRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.LearningPath, error) {
	return r.first(dbc, "slug = ?", slug)
}

func (r *learningPathRepo) first(dbc dbctx.Context, where string, arg any) (*types.LearningPath, error) {
	var p types.LearningPath
	if err := dbc.DB(r.db).Where(where, arg).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *learningPathRepo) List(dbc dbctx.Context, f PathFilter) ([]*types.LearningPath, int64, error) {
	q := dbc.DB(r.db).Model(&types.LearningPath{})
	if f.Published != nil {
		q = q.Where("is_published = ?", *f.Published)
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	if f.ExcludeID != uuid.Nil {
		q = q.Where("id <> ?", f.ExcludeID)
	}
	if f.Tag != "" {
		// Tags is a JSON array of strings; match the quoted element.
		q = q.Where("CAST(tags AS TEXT) LIKE ?", `%"`+f.Tag+`"%`)
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
	var results []*types.LearningPath
	if err := q.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset(f.Offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *learningPathRepo) UpdateFields(dbc dbctx.Context, pathID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.LearningPath{}).Where("id = ?", pathID).Updates(fields).Error
}

func (r *learningPathRepo) SoftDelete(dbc dbctx.Context, pathID uuid.UUID) error {
	tx := dbc.DB(r.db)
	modules := tx.Model(&types.LearningPathModule{}).Select("id").Where("learning_path_id = ?", pathID)
	if err := tx.Where("module_id IN (?)", modules).Delete(&types.LearningPathItem{}).Error; err != nil {
		return err
	}
	for _, child := range []any{&types.LearningPathModule{}, &types.LearningPathResource{}, &types.CourseLearningPath{}} {
		if err := tx.Where("learning_path_id = ?", pathID).Delete(child).Error; err != nil {
			return err
		}
	}
	return tx.Where("id = ?", pathID).Delete(&types.LearningPath{}).Error
}
