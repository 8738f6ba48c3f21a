package services

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/domain/catalog"
	"github.com/yungbote/coursekit-backend/internal/learning/ordering"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type LessonInput struct {
	Title           string
	Content         string
	LessonType      string
	MediaURL        string
	DurationMinutes int
	IsPublished     bool
}

type LessonPatch struct {
	Title           *string
	Content         *string
	LessonType      *string
	MediaURL        *string
	DurationMinutes *int
	IsPublished     *bool
}

type LessonService interface {
	CreateLesson(dbc dbctx.Context, topicID uuid.UUID, in LessonInput) (*types.TopicLesson, error)
	ListLessons(dbc dbctx.Context, topicID uuid.UUID) ([]*types.TopicLesson, error)
	GetLesson(dbc dbctx.Context, lessonID uuid.UUID) (*types.TopicLesson, error)
	UpdateLesson(dbc dbctx.Context, lessonID uuid.UUID, patch LessonPatch) (*types.TopicLesson, error)
	DeleteLesson(dbc dbctx.Context, lessonID uuid.UUID) error
	ReorderLesson(dbc dbctx.Context, lessonID uuid.UUID, newOrder int) (*types.TopicLesson, error)
}

type lessonService struct {
	db         *gorm.DB
	log        *logger.Logger
	scope      contentScope
	lessonRepo repos.TopicLessonRepo
	orders     ordering.Maintainer
}

func NewLessonService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	moduleRepo repos.CourseModuleRepo,
	topicRepo repos.CourseTopicRepo,
	lessonRepo repos.TopicLessonRepo,
	orders ordering.Maintainer,
) LessonService {
	return &lessonService{
		db:         db,
		log:        baseLog.With("service", "LessonService"),
		scope:      contentScope{courses: courseRepo, modules: moduleRepo, topics: topicRepo, lessons: lessonRepo},
		lessonRepo: lessonRepo,
		orders:     orders,
	}
}

func normalizeLessonType(t string) (string, error) {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return catalog.LessonTypeText, nil
	}
	if !catalog.ValidLessonType(t) {
		return "", apierr.Invalid("unknown lesson type %q", t)
	}
	return t, nil
}

func (ls *lessonService) CreateLesson(dbc dbctx.Context, topicID uuid.UUID, in LessonInput) (*types.TopicLesson, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Invalid("title is required")
	}
	lessonType, err := normalizeLessonType(in.LessonType)
	if err != nil {
		return nil, err
	}
	if in.DurationMinutes < 0 {
		return nil, apierr.Invalid("duration must not be negative")
	}
	var out *types.TopicLesson
	err = db.Within(dbc, ls.db, func(dbc dbctx.Context) error {
		_, c, err := ls.scope.topic(dbc, topicID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(dbc.Ctx, c.AuthorID, "course"); err != nil {
			return err
		}
		next, err := ls.orders.NextOrder(dbc, ordering.Lessons, topicID)
		if err != nil {
			return err
		}
		out = &types.TopicLesson{
			TopicID:         topicID,
			OrderIndex:      next,
			Title:           title,
			Content:         in.Content,
			LessonType:      lessonType,
			MediaURL:        in.MediaURL,
			DurationMinutes: in.DurationMinutes,
			IsPublished:     in.IsPublished,
		}
		_, err = ls.lessonRepo.Create(dbc, []*types.TopicLesson{out})
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("create lesson", err)
	}
	return out, nil
}

func (ls *lessonService) ListLessons(dbc dbctx.Context, topicID uuid.UUID) ([]*types.TopicLesson, error) {
	_, c, err := ls.scope.topic(dbc, topicID)
	if err != nil {
		return nil, apierr.MapDB("list lessons", err)
	}
	if !readable(dbc, c) {
		return nil, apierr.NotFound("topic %s", topicID)
	}
	out, err := ls.lessonRepo.ListByTopicIDs(dbc, []uuid.UUID{topicID})
	if err != nil {
		return nil, apierr.MapDB("list lessons", err)
	}
	return out, nil
}

func (ls *lessonService) GetLesson(dbc dbctx.Context, lessonID uuid.UUID) (*types.TopicLesson, error) {
	l, c, err := ls.scope.lesson(dbc, lessonID)
	if err != nil {
		return nil, apierr.MapDB("get lesson", err)
	}
	if !readable(dbc, c) {
		return nil, apierr.NotFound("lesson %s", lessonID)
	}
	return l, nil
}

func (ls *lessonService) UpdateLesson(dbc dbctx.Context, lessonID uuid.UUID, patch LessonPatch) (*types.TopicLesson, error) {
	var out *types.TopicLesson
	err := db.Within(dbc, ls.db, func(dbc dbctx.Context) error {
		_, c, err := ls.scope.lesson(dbc, lessonID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(dbc.Ctx, c.AuthorID, "course"); err != nil {
			return err
		}
		fields := map[string]any{}
		if patch.Title != nil {
			t := strings.TrimSpace(*patch.Title)
			if t == "" {
				return apierr.Invalid("title must not be empty")
			}
			fields["title"] = t
		}
		if patch.Content != nil {
			fields["content"] = *patch.Content
		}
		if patch.LessonType != nil {
			lt, err := normalizeLessonType(*patch.LessonType)
			if err != nil {
				return err
			}
			fields["lesson_type"] = lt
		}
		if patch.MediaURL != nil {
			fields["media_url"] = *patch.MediaURL
		}
		if patch.DurationMinutes != nil {
			if *patch.DurationMinutes < 0 {
				return apierr.Invalid("duration must not be negative")
			}
			fields["duration_minutes"] = *patch.DurationMinutes
		}
		if patch.IsPublished != nil {
			fields["is_published"] = *patch.IsPublished
		}
		if err := ls.lessonRepo.UpdateFields(dbc, lessonID, fields); err != nil {
			return err
		}
		out, err = ls.lessonRepo.GetByID(dbc, lessonID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update lesson", err)
	}
	return out, nil
}

func (ls *lessonService) DeleteLesson(dbc dbctx.Context, lessonID uuid.UUID) error {
	err := db.Within(dbc, ls.db, func(dbc dbctx.Context) error {
		l, c, err := ls.scope.lesson(dbc, lessonID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(dbc.Ctx, c.AuthorID, "course"); err != nil {
			return err
		}
		if err := ls.lessonRepo.FullDeleteByIDs(dbc, []uuid.UUID{lessonID}); err != nil {
			return err
		}
		return ls.orders.Compact(dbc, ordering.Lessons, l.TopicID, l.OrderIndex)
	})
	return apierr.MapDB("delete lesson", err)
}

func (ls *lessonService) ReorderLesson(dbc dbctx.Context, lessonID uuid.UUID, newOrder int) (*types.TopicLesson, error) {
	var out *types.TopicLesson
	err := db.Within(dbc, ls.db, func(dbc dbctx.Context) error {
		_, c, err := ls.scope.lesson(dbc, lessonID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(dbc.Ctx, c.AuthorID, "course"); err != nil {
			return err
		}
		if _, err := ls.orders.Reorder(dbc, ordering.Lessons, lessonID, newOrder); err != nil {
			return err
		}
		out, err = ls.lessonRepo.GetByID(dbc, lessonID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("reorder lesson", err)
	}
	return out, nil
}
