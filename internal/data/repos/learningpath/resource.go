package learningpath

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type PathResourceRepo interface {
	Create(dbc dbctx.Context, res *types.LearningPathResource) (*types.LearningPathResource, error)
	GetByID(dbc dbctx.Context, resourceID uuid.UUID) (*types.LearningPathResource, error)
	ListByPath(dbc dbctx.Context, pathID uuid.UUID) ([]*types.LearningPathResource, error)
	UpdateFields(dbc dbctx.Context, resourceID uuid.UUID, fields map[string]any) error
	Delete(dbc dbctx.Context, resourceID uuid.UUID) error
}

type pathResourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPathResourceRepo(db *gorm.DB, baseLog *logger.Logger) PathResourceRepo {
	return &pathResourceRepo{db: db, log: baseLog.With("repo", "PathResourceRepo")}
}

func (r *pathResourceRepo) Create(dbc dbctx.Context, res *types.LearningPathResource) (*types.LearningPathResource, error) {
	if err := dbc.DB(r.db).Create(res).Error; err != nil {
		return nil, err
	}
	return res, nil
}

func (r *pathResourceRepo) GetByID(dbc dbctx.Context, resourceID uuid.UUID) (*types.LearningPathResource, error) {
	var res types.LearningPathResource
	if err := dbc.DB(r.db).Where("id = ?", resourceID).First(&res).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *pathResourceRepo) ListByPath(dbc dbctx.Context, pathID uuid.UUID) ([]*types.LearningPathResource, error) {
	var results []*types.LearningPathResource
	if err := dbc.DB(r.db).
		Where("learning_path_id = ?", pathID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *pathResourceRepo) UpdateFields(dbc dbctx.Context, resourceID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.LearningPathResource{}).Where("id = ?", resourceID).Updates(fields).Error
}

func (r *pathResourceRepo) Delete(dbc dbctx.Context, resourceID uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", resourceID).Delete(&types.LearningPathResource{}).Error
}
