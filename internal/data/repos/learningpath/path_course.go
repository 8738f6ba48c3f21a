package learningpath

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type CourseLearningPathRepo interface {
	Create(dbc dbctx.Context, row *types.CourseLearningPath) (*types.CourseLearningPath, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CourseLearningPath, error)
	GetByPathCourse(dbc dbctx.Context, pathID, courseID uuid.UUID) (*types.CourseLearningPath, error)
	ListByPath(dbc dbctx.Context, pathID uuid.UUID) ([]*types.CourseLearningPath, error)
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type courseLearningPathRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseLearningPathRepo(db *gorm.DB, baseLog *logger.Logger) CourseLearningPathRepo {
	return &courseLearningPathRepo{db: db, log: baseLog.With("repo", "CourseLearningPathRepo")}
}

func (r *courseLearningPathRepo) Create(dbc dbctx.Context, row *types.CourseLearningPath) (*types.CourseLearningPath, error) {
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *courseLearningPathRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.CourseLearningPath, error) {
	var row types.CourseLearningPath
	if err := dbc.DB(r.db).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *courseLearningPathRepo) GetByPathCourse(dbc dbctx.Context, pathID, courseID uuid.UUID) (*types.CourseLearningPath, error) {
	var row types.CourseLearningPath
	if err := dbc.DB(r.db).
		Where("learning_path_id = ? AND course_id = ?", pathID, courseID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *courseLearningPathRepo) ListByPath(dbc dbctx.Context, pathID uuid.UUID) ([]*types.CourseLearningPath, error) {
	var results []*types.CourseLearningPath
	if err := dbc.DB(r.db).
		Where("learning_path_id = ?", pathID).
		Order("order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseLearningPathRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.CourseLearningPath{}).Error
}
