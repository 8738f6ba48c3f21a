package catalog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type CourseTopicRepo interface {
	Create(dbc dbctx.Context, topics []*types.CourseTopic) ([]*types.CourseTopic, error)
	GetByID(dbc dbctx.Context, topicID uuid.UUID) (*types.CourseTopic, error)
	ListByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]*types.CourseTopic, error)
	UpdateFields(dbc dbctx.Context, topicID uuid.UUID, fields map[string]any) error
	FullDeleteByIDs(dbc dbctx.Context, topicIDs []uuid.UUID) error
}

type courseTopicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseTopicRepo(db *gorm.DB, baseLog *logger.Logger) CourseTopicRepo {
	return &courseTopicRepo{db: db, log: baseLog.With("repo", "CourseTopicRepo")}
}

func (r *courseTopicRepo) Create(dbc dbctx.Context, topics []*types.CourseTopic) ([]*types.CourseTopic, error) {
	if len(topics) == 0 {
		return []*types.CourseTopic{}, nil
	}
	if err := dbc.DB(r.db).Create(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *courseTopicRepo) GetByID(dbc dbctx.Context, topicID uuid.UUID) (*types.CourseTopic, error) {
	var t types.CourseTopic
	if err := dbc.DB(r.db).Where("id = ?", topicID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *courseTopicRepo) ListByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]*types.CourseTopic, error) {
	var results []*types.CourseTopic
	if len(moduleIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("module_id IN ?", moduleIDs).
		Order("module_id, order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseTopicRepo) UpdateFields(dbc dbctx.Context, topicID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.CourseTopic{}).Where("id = ?", topicID).Updates(fields).Error
}

func (r *courseTopicRepo) FullDeleteByIDs(dbc dbctx.Context, topicIDs []uuid.UUID) error {
	if len(topicIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", topicIDs).Delete(&types.CourseTopic{}).Error
}
