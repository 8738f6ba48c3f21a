package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/learning/progress"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/realtime"
)

type EnrollmentService interface {
	// Enroll returns the caller's enrollment in courseID, creating it when
	// absent. created reports whether a new row was written.
	Enroll(dbc dbctx.Context, courseID uuid.UUID) (e *types.CourseEnrollment, created bool, err error)
	ListMyEnrollments(dbc dbctx.Context) ([]*types.CourseEnrollment, error)
	GetEnrollment(dbc dbctx.Context, enrollmentID uuid.UUID) (*types.CourseEnrollment, error)
	CompleteEnrollment(dbc dbctx.Context, enrollmentID uuid.UUID) (*types.CourseEnrollment, error)
	RecordProgress(dbc dbctx.Context, enrollmentID uuid.UUID, contentType string, contentID uuid.UUID, isCompleted bool) (*types.CourseProgress, *types.CourseEnrollment, error)
	ListProgress(dbc dbctx.Context, enrollmentID uuid.UUID) ([]*types.CourseProgress, error)
}

type enrollmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	scope          contentScope
	courseRepo     repos.CourseRepo
	enrollmentRepo repos.CourseEnrollmentRepo
	progressRepo   repos.CourseProgressRepo
	userRepo       repos.UserRepo
	aggregator     progress.Aggregator
	events         realtime.Publisher
}

func NewEnrollmentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	moduleRepo repos.CourseModuleRepo,
	topicRepo repos.CourseTopicRepo,
	lessonRepo repos.TopicLessonRepo,
	enrollmentRepo repos.CourseEnrollmentRepo,
	progressRepo repos.CourseProgressRepo,
	userRepo repos.UserRepo,
	aggregator progress.Aggregator,
	events realtime.Publisher,
) EnrollmentService {
	return &enrollmentService{
		db:             db,
		log:            baseLog.With("service", "EnrollmentService"),
		scope:          contentScope{courses: courseRepo, modules: moduleRepo, topics: topicRepo, lessons: lessonRepo},
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		progressRepo:   progressRepo,
		userRepo:       userRepo,
		aggregator:     aggregator,
		events:         events,
	}
}

func (es *enrollmentService) Enroll(dbc dbctx.Context, courseID uuid.UUID) (*types.CourseEnrollment, bool, error) {
	rd, err := currentUser(dbc.Ctx)
	if err != nil {
		return nil, false, err
	}
	c, err := es.courseRepo.GetByID(dbc, courseID)
	if err != nil {
		return nil, false, apierr.MapDB("enroll", err)
	}
	if c == nil {
		return nil, false, apierr.NotFound("course %s", courseID)
	}
	if !c.IsPublished {
		return nil, false, apierr.Invalid("course %s is not published", courseID)
	}

	existing, err := es.enrollmentRepo.GetByUserCourse(dbc, rd.UserID, courseID)
	if err != nil {
		return nil, false, apierr.MapDB("enroll", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	e := &types.CourseEnrollment{UserID: rd.UserID, CourseID: courseID}
	if _, err := es.enrollmentRepo.Create(dbc, e); err != nil {
		mapped := apierr.MapDB("enroll", err)
		if !errors.Is(mapped, apierr.ErrConflict) || dbc.Tx != nil {
			return nil, false, mapped
		}
		// Lost a concurrent enroll; return the winner's row.
		existing, err := es.enrollmentRepo.GetByUserCourse(dbc, rd.UserID, courseID)
		if err != nil || existing == nil {
			return nil, false, mapped
		}
		return existing, false, nil
	}
	es.log.Info("User enrolled", "user_id", rd.UserID, "course_id", courseID, "enrollment_id", e.ID)
	return e, true, nil
}

func (es *enrollmentService) ListMyEnrollments(dbc dbctx.Context) ([]*types.CourseEnrollment, error) {
	rd, err := currentUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	out, err := es.enrollmentRepo.ListByUser(dbc, rd.UserID)
	if err != nil {
		return nil, apierr.MapDB("list enrollments", err)
	}
	return out, nil
}

// loadOwned returns the enrollment when the caller owns it (or, with
// allowSuperuser, is a superuser).
func (es *enrollmentService) loadOwned(dbc dbctx.Context, enrollmentID uuid.UUID, allowSuperuser bool) (*types.CourseEnrollment, error) {
	rd, err := currentUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	e, err := es.enrollmentRepo.GetByID(dbc, enrollmentID)
	if err != nil {
		return nil, apierr.MapDB("get enrollment", err)
	}
	if e == nil {
		return nil, apierr.NotFound("enrollment %s", enrollmentID)
	}
	if e.UserID == rd.UserID || (allowSuperuser && rd.IsSuperuser) {
		return e, nil
	}
	return nil, apierr.Forbidden("enrollment belongs to another user")
}

func (es *enrollmentService) GetEnrollment(dbc dbctx.Context, enrollmentID uuid.UUID) (*types.CourseEnrollment, error) {
	return es.loadOwned(dbc, enrollmentID, true)
}

func (es *enrollmentService) CompleteEnrollment(dbc dbctx.Context, enrollmentID uuid.UUID) (*types.CourseEnrollment, error) {
	var (
		res progress.Result
		box realtime.Outbox
	)
	err := db.Within(dbc, es.db, func(dbc dbctx.Context) error {
		if _, err := es.loadOwned(dbc, enrollmentID, true); err != nil {
			return err
		}
		var err error
		res, err = es.aggregator.Complete(dbc, enrollmentID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("complete enrollment", err)
	}
	es.collect(&box, res)
	publish(dbc.Ctx, es.events, es.log, &box)
	return res.Enrollment, nil
}

func (es *enrollmentService) RecordProgress(dbc dbctx.Context, enrollmentID uuid.UUID, contentType string, contentID uuid.UUID, isCompleted bool) (*types.CourseProgress, *types.CourseEnrollment, error) {
	var (
		row *types.CourseProgress
		res progress.Result
		box realtime.Outbox
	)
	err := db.Within(dbc, es.db, func(dbc dbctx.Context) error {
		e, err := es.loadOwned(dbc, enrollmentID, false)
		if err != nil {
			return err
		}
		c, err := es.scope.contentCourse(dbc, contentType, contentID)
		if err != nil {
			return err
		}
		if c.ID != e.CourseID {
			return apierr.Invalid("%s %s is not part of course %s", contentType, contentID, e.CourseID)
		}
		row, res, err = es.aggregator.RecordProgress(dbc, enrollmentID, contentType, contentID, isCompleted)
		if err != nil {
			return err
		}
		return es.userRepo.TouchActivity(dbc, e.UserID, time.Now().UTC())
	})
	if err != nil {
		return nil, nil, apierr.MapDB("record progress", err)
	}
	es.collect(&box, res)
	publish(dbc.Ctx, es.events, es.log, &box)
	return row, res.Enrollment, nil
}

func (es *enrollmentService) ListProgress(dbc dbctx.Context, enrollmentID uuid.UUID) ([]*types.CourseProgress, error) {
	if _, err := es.loadOwned(dbc, enrollmentID, true); err != nil {
		return nil, err
	}
	out, err := es.progressRepo.ListByEnrollment(dbc, enrollmentID)
	if err != nil {
		return nil, apierr.MapDB("list progress", err)
	}
	return out, nil
}

func (es *enrollmentService) collect(box *realtime.Outbox, res progress.Result) {
	if !res.Completed || res.Enrollment == nil {
		return
	}
	data := map[string]any{
		"enrollment_id": res.Enrollment.ID,
		"course_id":     res.Enrollment.CourseID,
	}
	if res.Reward != nil {
		data["xp"] = res.Reward.XP
	}
	box.Add(realtime.Event{Event: realtime.EventCourseCompleted, UserID: res.Enrollment.UserID, Data: data})
	addRewardEvents(box, res.Reward)
}
