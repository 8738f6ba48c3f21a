package catalog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type TopicLessonRepo interface {
	Create(dbc dbctx.Context, lessons []*types.TopicLesson) ([]*types.TopicLesson, error)
	GetByID(dbc dbctx.Context, lessonID uuid.UUID) (*types.TopicLesson, error)
	ListByTopicIDs(dbc dbctx.Context, topicIDs []uuid.UUID) ([]*types.TopicLesson, error)
	UpdateFields(dbc dbctx.Context, lessonID uuid.UUID, fields map[string]any) error
	FullDeleteByIDs(dbc dbctx.Context, lessonIDs []uuid.UUID) error
	// CountByCourse counts every leaf lesson under the course's modules and topics.
	CountByCourse(dbc dbctx.Context, courseID uuid.UUID) (int64, error)
}

type topicLessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicLessonRepo(db *gorm.DB, baseLog *logger.Logger) TopicLessonRepo {
	return &topicLessonRepo{db: db, log: baseLog.With("repo", "TopicLessonRepo")}
}

func (r *topicLessonRepo) Create(dbc dbctx.Context, lessons []*types.TopicLesson) ([]*types.TopicLesson, error) {
	if len(lessons) == 0 {
		return []*types.TopicLesson{}, nil
	}
	if err := dbc.DB(r.db).Create(&lessons).Error; err != nil {
		return nil, err
	}
	return lessons, nil
}

func (r *topicLessonRepo) GetByID(dbc dbctx.Context, lessonID uuid.UUID) (*types.TopicLesson, error) {
	var l types.TopicLesson
	if err := dbc.DB(r.db).Where("id = ?", lessonID).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *topicLessonRepo) ListByTopicIDs(dbc dbctx.Context, topicIDs []uuid.UUID) ([]*types.TopicLesson, error) {
	var results []*types.TopicLesson
	if len(topicIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("topic_id IN ?", topicIDs).
		Order("topic_id, order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *topicLessonRepo) UpdateFields(dbc dbctx.Context, lessonID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.TopicLesson{}).Where("id = ?", lessonID).Updates(fields).Error
}

func (r *topicLessonRepo) FullDeleteByIDs(dbc dbctx.Context, lessonIDs []uuid.UUID) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", lessonIDs).Delete(&types.TopicLesson{}).Error
}

func (r *topicLessonRepo) CountByCourse(dbc dbctx.Context, courseID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.TopicLesson{}).
		Joins("JOIN course_topic ON course_topic.id = topic_lesson.topic_id").
		Joins("JOIN course_module ON course_module.id = course_topic.module_id").
		Where("course_module.course_id = ?", courseID).
		Count(&n).Error
	return n, err
}
