package catalog

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

// CourseFilter narrows List. Nil pointers mean "any".
type CourseFilter struct {
	Published *bool
	Featured  *bool
	Level     string
	AuthorID  *uuid.UUID
	Search    string
	Offset    int
	Limit     int
}

type CourseRepo interface {
	Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error)
	GetByID(dbc dbctx.Context, courseID uuid.UUID) (*types.Course, error)
	GetByIDs(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.Course, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Course, error)
	List(dbc dbctx.Context, f CourseFilter) ([]*types.Course, int64, error)
	UpdateFields(dbc dbctx.Context, courseID uuid.UUID, fields map[string]any) error
	SoftDeleteByIDs(dbc dbctx.Context, courseIDs []uuid.UUID) error
}

type courseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return &courseRepo{db: db, log: baseLog.With("repo", "CourseRepo")}
}

func (r *courseRepo) Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error) {
	if len(courses) == 0 {
		return []*types.Course{}, nil
	}
	if err := dbc.DB(r.db).Create(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

func (r *courseRepo) GetByID(dbc dbctx.Context, courseID uuid.UUID) (*types.Course, error) {
	if courseID == uuid.Nil {
		return nil, nil
	}
	var c types.Course
	if err := dbc.DB(r.db).Where("id = ?", courseID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) GetByIDs(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.Course, error) {
	var results []*types.Course
	if len(courseIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", courseIDs).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Course, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, nil
	}
	var c types.Course
	if err := dbc.DB(r.db).Where("slug = ?", slug).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *courseRepo) List(dbc dbctx.Context, f CourseFilter) ([]*types.Course, int64, error) {
	q := dbc.DB(r.db).Model(&types.Course{})
	if f.Published != nil {
		q = q.Where("is_published = ?", *f.Published)
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	if f.Level != "" {
		q = q.Where("level = ?", f.Level)
	}
	if f.AuthorID != nil {
		q = q.Where("author_id = ?", *f.AuthorID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var results []*types.Course
	if err := q.Order("created_at DESC").Offset(f.Offset).Limit(limit).Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *courseRepo) UpdateFields(dbc dbctx.Context, courseID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Course{}).Where("id = ?", courseID).Updates(fields).Error
}

func (r *courseRepo) SoftDeleteByIDs(dbc dbctx.Context, courseIDs []uuid.UUID) error {
	if len(courseIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", courseIDs).Delete(&types.Course{}).Error
}
