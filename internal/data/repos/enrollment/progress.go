package enrollment

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	enrollmentdomain "github.com/yungbote/coursekit-backend/internal/domain/enrollment"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type CourseProgressRepo interface {
	// Upsert writes row by (enrollment_id, content_type, content_id).
	// An existing completed_at is kept; the first completion wins.
	Upsert(dbc dbctx.Context, row *types.CourseProgress) (*types.CourseProgress, error)
	GetByKey(dbc dbctx.Context, enrollmentID uuid.UUID, contentType string, contentID uuid.UUID) (*types.CourseProgress, error)
	ListByEnrollment(dbc dbctx.Context, enrollmentID uuid.UUID) ([]*types.CourseProgress, error)
	// CountCompletedLessons counts completed lesson records whose lesson still
	// belongs to courseID.
	CountCompletedLessons(dbc dbctx.Context, enrollmentID, courseID uuid.UUID) (int64, error)
}

type courseProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseProgressRepo(db *gorm.DB, baseLog *logger.Logger) CourseProgressRepo {
	return &courseProgressRepo{db: db, log: baseLog.With("repo", "CourseProgressRepo")}
}

func (r *courseProgressRepo) Upsert(dbc dbctx.Context, row *types.CourseProgress) (*types.CourseProgress, error) {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	err := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "enrollment_id"}, {Name: "content_type"}, {Name: "content_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"is_completed":     gorm.Expr("excluded.is_completed"),
				"completed_at":     gorm.Expr("COALESCE(course_progress.completed_at, excluded.completed_at)"),
				"last_accessed_at": gorm.Expr("excluded.last_accessed_at"),
				"updated_at":       gorm.Expr("excluded.updated_at"),
			}),
		}).
		Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.GetByKey(dbc, row.EnrollmentID, row.ContentType, row.ContentID)
}

func (r *courseProgressRepo) GetByKey(dbc dbctx.Context, enrollmentID uuid.UUID, contentType string, contentID uuid.UUID) (*types.CourseProgress, error) {
	var row types.CourseProgress
	err := dbc.DB(r.db).
		Where("enrollment_id = ? AND content_type = ? AND content_id = ?", enrollmentID, contentType, contentID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *courseProgressRepo) ListByEnrollment(dbc dbctx.Context, enrollmentID uuid.UUID) ([]*types.CourseProgress, error) {
	var results []*types.CourseProgress
	if err := dbc.DB(r.db).
		Where("enrollment_id = ?", enrollmentID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseProgressRepo) CountCompletedLessons(dbc dbctx.Context, enrollmentID, courseID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).
		Model(&types.CourseProgress{}).
		Joins("JOIN topic_lesson ON topic_lesson.id = course_progress.content_id").
		Joins("JOIN course_topic ON course_topic.id = topic_lesson.topic_id").
		Joins("JOIN course_module ON course_module.id = course_topic.module_id").
		Where("course_progress.enrollment_id = ?", enrollmentID).
		Where("course_progress.content_type = ?", enrollmentdomain.ContentLesson).
		Where("course_progress.is_completed = ?", true).
		Where("course_module.course_id = ?", courseID).
		Count(&n).Error
	return n, err
}
