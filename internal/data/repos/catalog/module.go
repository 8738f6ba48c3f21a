package catalog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type CourseModuleRepo interface {
	Create(dbc dbctx.Context, modules []*types.CourseModule) ([]*types.CourseModule, error)
	GetByID(dbc dbctx.Context, moduleID uuid.UUID) (*types.CourseModule, error)
	ListByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.CourseModule, error)
	UpdateFields(dbc dbctx.Context, moduleID uuid.UUID, fields map[string]any) error
	FullDeleteByIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) error
}

type courseModuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseModuleRepo(db *gorm.DB, baseLog *logger.Logger) CourseModuleRepo {
	return &courseModuleRepo{db: db, log: baseLog.With("repo", "CourseModuleRepo")}
}

func (r *courseModuleRepo) Create(dbc dbctx.Context, modules []*types.CourseModule) ([]*types.CourseModule, error) {
	if len(modules) == 0 {
		return []*types.CourseModule{}, nil
	}
	if err := dbc.DB(r.db).Create(&modules).Error; err != nil {
		return nil, err
	}
	return modules, nil
}

func (r *courseModuleRepo) GetByID(dbc dbctx.Context, moduleID uuid.UUID) (*types.CourseModule, error) {
	var m types.CourseModule
	if err := dbc.DB(r.db).Where("id = ?", moduleID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *courseModuleRepo) ListByCourseIDs(dbc dbctx.Context, courseIDs []uuid.UUID) ([]*types.CourseModule, error) {
	var results []*types.CourseModule
	if len(courseIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("course_id IN ?", courseIDs).
		Order("course_id, order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseModuleRepo) UpdateFields(dbc dbctx.Context, moduleID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.CourseModule{}).Where("id = ?", moduleID).Updates(fields).Error
}

func (r *courseModuleRepo) FullDeleteByIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) error {
	if len(moduleIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", moduleIDs).Delete(&types.CourseModule{}).Error
}
