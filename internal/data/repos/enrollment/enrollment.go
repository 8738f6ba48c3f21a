package enrollment

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type CourseEnrollmentRepo interface {
	Create(dbc dbctx.Context, e *types.CourseEnrollment) (*types.CourseEnrollment, error)
	GetByID(dbc dbctx.Context, enrollmentID uuid.UUID) (*types.CourseEnrollment, error)
	// GetForUpdate row-locks the enrollment on postgres.
	GetForUpdate(dbc dbctx.Context, enrollmentID uuid.UUID) (*types.CourseEnrollment, error)
	GetByUserCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.CourseEnrollment, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.CourseEnrollment, error)
	CountByCourse(dbc dbctx.Context, courseID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, enrollmentID uuid.UUID, fields map[string]any) error
}

type courseEnrollmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCourseEnrollmentRepo(db *gorm.DB, baseLog *logger.Logger) CourseEnrollmentRepo {
	return &courseEnrollmentRepo{db: db, log: baseLog.With("repo", "CourseEnrollmentRepo")}
}

func (r *courseEnrollmentRepo) Create(dbc dbctx.Context, e *types.CourseEnrollment) (*types.CourseEnrollment, error) {
	if err := dbc.DB(r.db).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (r *courseEnrollmentRepo) GetByID(dbc dbctx.Context, enrollmentID uuid.UUID) (*types.CourseEnrollment, error) {
	return r.first(dbc.DB(r.db).Where("id = ?", enrollmentID))
}

func (r *courseEnrollmentRepo) GetForUpdate(dbc dbctx.Context, enrollmentID uuid.UUID) (*types.CourseEnrollment, error) {
	q := dbc.DB(r.db)
	if db.IsPostgres(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.first(q.Where("id = ?", enrollmentID))
}

func (r *courseEnrollmentRepo) GetByUserCourse(dbc dbctx.Context, userID, courseID uuid.UUID) (*types.CourseEnrollment, error) {
	return r.first(dbc.DB(r.db).Where("user_id = ? AND course_id = ?", userID, courseID))
}

func (r *courseEnrollmentRepo) first(q *gorm.DB) (*types.CourseEnrollment, error) {
	var e types.CourseEnrollment
	if err := q.First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *courseEnrollmentRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.CourseEnrollment, error) {
	var results []*types.CourseEnrollment
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *courseEnrollmentRepo) CountByCourse(dbc dbctx.Context, courseID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.CourseEnrollment{}).Where("course_id = ?", courseID).Count(&n).Error
	return n, err
}

func (r *courseEnrollmentRepo) UpdateFields(dbc dbctx.Context, enrollmentID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.CourseEnrollment{}).Where("id = ?", enrollmentID).Updates(fields).Error
}
