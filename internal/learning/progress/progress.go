// Package progress records per-item completion for an enrollment and keeps
// the enrollment's aggregate percentage and completion state in step.
package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	enrollmentdomain "github.com/yungbote/coursekit-backend/internal/domain/enrollment"
	"github.com/yungbote/coursekit-backend/internal/learning/rewards"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

// Result is the enrollment state after an aggregation.
type Result struct {
	// Enrollment is nil when the enrollment or its course no longer exists.
	Enrollment *types.CourseEnrollment
	// Completed is true only for the call that moved the enrollment to completed.
	Completed bool
	// Reward is the course completion reward, set when Completed.
	Reward *rewards.Outcome
}

type Aggregator interface {
	// RecordProgress upserts one progress record and recomputes the enrollment
	// in the same transaction.
	RecordProgress(dbc dbctx.Context, enrollmentID uuid.UUID, contentType string, contentID uuid.UUID, isCompleted bool) (*types.CourseProgress, Result, error)
	// RecomputeEnrollment derives progress_percentage from completed leaf lessons.
	RecomputeEnrollment(dbc dbctx.Context, enrollmentID uuid.UUID) (Result, error)
	// Complete marks the enrollment completed regardless of lesson progress.
	Complete(dbc dbctx.Context, enrollmentID uuid.UUID) (Result, error)
}

type aggregator struct {
	db          *gorm.DB
	log         *logger.Logger
	enrollments repos.CourseEnrollmentRepo
	progress    repos.CourseProgressRepo
	courses     repos.CourseRepo
	lessons     repos.TopicLessonRepo
	rewarder    *rewards.Rewarder
}

func NewAggregator(
	gdb *gorm.DB,
	baseLog *logger.Logger,
	enrollments repos.CourseEnrollmentRepo,
	progress repos.CourseProgressRepo,
	courses repos.CourseRepo,
	lessons repos.TopicLessonRepo,
	rewarder *rewards.Rewarder,
) Aggregator {
	return &aggregator{
		db:          gdb,
		log:         baseLog.With("component", "ProgressAggregator"),
		enrollments: enrollments,
		progress:    progress,
		courses:     courses,
		lessons:     lessons,
		rewarder:    rewarder,
	}
}

func (a *aggregator) RecordProgress(dbc dbctx.Context, enrollmentID uuid.UUID, contentType string, contentID uuid.UUID, isCompleted bool) (*types.CourseProgress, Result, error) {
	if !enrollmentdomain.ValidContentType(contentType) {
		return nil, Result{}, apierr.Invalid("invalid content type %q", contentType)
	}
	var (
		row *types.CourseProgress
		res Result
	)
	err := db.Within(dbc, a.db, func(dbc dbctx.Context) error {
		e, err := a.enrollments.GetByID(dbc, enrollmentID)
		if err != nil {
			return err
		}
		if e == nil {
			return apierr.NotFound("enrollment %s", enrollmentID)
		}

		now := time.Now().UTC()
		in := &types.CourseProgress{
			EnrollmentID:   enrollmentID,
			ContentType:    contentType,
			ContentID:      contentID,
			IsCompleted:    isCompleted,
			LastAccessedAt: &now,
		}
		if isCompleted {
			in.CompletedAt = &now
		}
		row, err = a.progress.Upsert(dbc, in)
		if err != nil {
			return err
		}

		res, err = a.recompute(dbc, enrollmentID, now)
		return err
	})
	if err != nil {
		return nil, Result{}, apierr.MapDB("record progress", err)
	}
	return row, res, nil
}

func (a *aggregator) RecomputeEnrollment(dbc dbctx.Context, enrollmentID uuid.UUID) (Result, error) {
	var res Result
	err := db.Within(dbc, a.db, func(dbc dbctx.Context) error {
		var err error
		res, err = a.recompute(dbc, enrollmentID, time.Now().UTC())
		return err
	})
	if err != nil {
		return Result{}, apierr.MapDB("recompute enrollment", err)
	}
	return res, nil
}

func (a *aggregator) Complete(dbc dbctx.Context, enrollmentID uuid.UUID) (Result, error) {
	var res Result
	err := db.Within(dbc, a.db, func(dbc dbctx.Context) error {
		e, err := a.enrollments.GetForUpdate(dbc, enrollmentID)
		if err != nil {
			return err
		}
		if e == nil {
			return apierr.NotFound("enrollment %s", enrollmentID)
		}
		course, err := a.courses.GetByID(dbc, e.CourseID)
		if err != nil {
			return err
		}
		if course == nil {
			return apierr.NotFound("course %s", e.CourseID)
		}
		now := time.Now().UTC()
		fields := map[string]any{
			"progress_percentage": float64(100),
			"last_accessed_at":    now,
		}
		e.ProgressPercentage = 100
		e.LastAccessedAt = &now
		res, err = a.finish(dbc, e, course, fields, now)
		return err
	})
	if err != nil {
		return Result{}, apierr.MapDB("complete enrollment", err)
	}
	return res, nil
}

func (a *aggregator) recompute(dbc dbctx.Context, enrollmentID uuid.UUID, now time.Time) (Result, error) {
	e, err := a.enrollments.GetForUpdate(dbc, enrollmentID)
	if err != nil || e == nil {
		return Result{}, err
	}
	course, err := a.courses.GetByID(dbc, e.CourseID)
	if err != nil || course == nil {
		return Result{}, err
	}

	total, err := a.lessons.CountByCourse(dbc, course.ID)
	if err != nil {
		return Result{}, err
	}
	done, err := a.progress.CountCompletedLessons(dbc, e.ID, course.ID)
	if err != nil {
		return Result{}, err
	}
	pct := Percentage(done, total)

	fields := map[string]any{"last_accessed_at": now}
	e.LastAccessedAt = &now
	// A completed enrollment keeps its percentage unless lessons push it higher.
	if !e.IsCompleted || pct > e.ProgressPercentage {
		fields["progress_percentage"] = pct
		e.ProgressPercentage = pct
	}

	if e.IsCompleted || pct < 100 {
		if err := a.enrollments.UpdateFields(dbc, e.ID, fields); err != nil {
			return Result{}, err
		}
		return Result{Enrollment: e}, nil
	}
	return a.finish(dbc, e, course, fields, now)
}

// finish writes fields and, on the first transition to completed, stamps
// completion and applies the course reward.
func (a *aggregator) finish(dbc dbctx.Context, e *types.CourseEnrollment, course *types.Course, fields map[string]any, now time.Time) (Result, error) {
	res := Result{Enrollment: e}
	if !e.IsCompleted {
		fields["is_completed"] = true
		e.IsCompleted = true
		if e.CompletedAt == nil {
			fields["completed_at"] = now
			e.CompletedAt = &now
		}
		res.Completed = true
	}
	if err := a.enrollments.UpdateFields(dbc, e.ID, fields); err != nil {
		return Result{}, err
	}
	if !res.Completed {
		return res, nil
	}

	a.log.Info("Enrollment completed",
		"enrollment_id", e.ID,
		"user_id", e.UserID,
		"course_id", course.ID,
	)
	if a.rewarder == nil {
		return res, nil
	}
	out, err := a.rewarder.GrantCourseCompletion(dbc, e.UserID, course.Level)
	if err != nil {
		return Result{}, err
	}
	res.Reward = &out
	return res, nil
}

// Percentage is done/total*100, or 0 for an empty course. It never exceeds 100.
func Percentage(done, total int64) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(done) / float64(total) * 100
	if pct > 100 {
		return 100
	}
	return pct
}
