package services

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/learning/ordering"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type TopicInput struct {
	Title       string
	Description string
	IsPublished bool
}

type TopicPatch struct {
	Title       *string
	Description *string
	IsPublished *bool
}

type TopicService interface {
	CreateTopic(dbc dbctx.Context, moduleID uuid.UUID, in TopicInput) (*types.CourseTopic, error)
	ListTopics(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.CourseTopic, error)
	GetTopic(dbc dbctx.Context, topicID uuid.UUID) (*types.CourseTopic, error)
	UpdateTopic(dbc dbctx.Context, topicID uuid.UUID, patch TopicPatch) (*types.CourseTopic, error)
	DeleteTopic(dbc dbctx.Context, topicID uuid.UUID) error
	ReorderTopic(dbc dbctx.Context, topicID uuid.UUID, newOrder int) (*types.CourseTopic, error)
}

type topicService struct {
	db        *gorm.DB
	log       *logger.Logger
	scope     contentScope
	topicRepo repos.CourseTopicRepo
	orders    ordering.Maintainer
}

func NewTopicService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	moduleRepo repos.CourseModuleRepo,
	topicRepo repos.CourseTopicRepo,
	lessonRepo repos.TopicLessonRepo,
	orders ordering.Maintainer,
) TopicService {
	return &topicService{
		db:        db,
		log:       baseLog.With("service", "TopicService"),
		scope:     contentScope{courses: courseRepo, modules: moduleRepo, topics: topicRepo, lessons: lessonRepo},
		topicRepo: topicRepo,
		orders:    orders,
	}
}

func (ts *topicService) CreateTopic(dbc dbctx.Context, moduleID uuid.UUID, in TopicInput) (*types.CourseTopic, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Invalid("title is required")
	}
	var out *types.CourseTopic
	err := db.Within(dbc, ts.db, func(dbc dbctx.Context) error {
		_, c, err := ts.scope.module(dbc, moduleID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(dbc.Ctx, c.AuthorID, "course"); err != nil {
			return err
		}
		next, err := ts.orders.NextOrder(dbc, ordering.Topics, moduleID)
		if err != nil {
			return err
		}
		out = &types.CourseTopic{
			ModuleID:    moduleID,
			OrderIndex:  next,
			Title:       title,
			Description: in.Description,
			IsPublished: in.IsPublished,
		}
		_, err = ts.topicRepo.Create(dbc, []*types.CourseTopic{out})
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("create topic", err)
	}
	return out, nil
}

func (ts *topicService) ListTopics(dbc dbctx.Context, moduleID uuid.UUID) ([]*types.CourseTopic, error) {
	_, c, err := ts.scope.module(dbc, moduleID)
	if err != nil {
		return nil, apierr.MapDB("list topics", err)
	}
	if !readable(dbc, c) {
		return nil, apierr.NotFound("module %s", moduleID)
	}
	out, err := ts.topicRepo.ListByModuleIDs(dbc, []uuid.UUID{moduleID})
	if err != nil {
		return nil, apierr.MapDB("list topics", err)
	}
	return out, nil
}

func (ts *topicService) GetTopic(dbc dbctx.Context, topicID uuid.UUID) (*types.CourseTopic, error) {
	t, c, err := ts.scope.topic(dbc, topicID)
	if err != nil {
		return nil, apierr.MapDB("get topic", err)
	}
	if !readable(dbc, c) {
		return nil, apierr.NotFound("topic %s", topicID)
	}
	return t, nil
}

func (ts *topicService) UpdateTopic(dbc dbctx.Context, topicID uuid.UUID, patch TopicPatch) (*types.CourseTopic, error) {
	var out *types.CourseTopic
	err := db.Within(dbc, ts.db, func(dbc dbctx.Context) error {
		_, c, err := ts.scope.topic(dbc, topicID)
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
		if patch.Description != nil {
			fields["description"] = *patch.Description
		}
		if patch.IsPublished != nil {
			fields["is_published"] = *patch.IsPublished
		}
		if err := ts.topicRepo.UpdateFields(dbc, topicID, fields); err != nil {
			return err
		}
		out, err = ts.topicRepo.GetByID(dbc, topicID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update topic", err)
	}
	return out, nil
}

func (ts *topicService) DeleteTopic(dbc dbctx.Context, topicID uuid.UUID) error {
	err := db.Within(dbc, ts.db, func(dbc dbctx.Context) error {
		t, c, err := ts.scope.topic(dbc, topicID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(dbc.Ctx, c.AuthorID, "course"); err != nil {
			return err
		}
		if err := ts.scope.deleteTopics(dbc, []uuid.UUID{topicID}); err != nil {
			return err
		}
		return ts.orders.Compact(dbc, ordering.Topics, t.ModuleID, t.OrderIndex)
	})
	return apierr.MapDB("delete topic", err)
}

func (ts *topicService) ReorderTopic(dbc dbctx.Context, topicID uuid.UUID, newOrder int) (*types.CourseTopic, error) {
	var out *types.CourseTopic
	err := db.Within(dbc, ts.db, func(dbc dbctx.Context) error {
		_, c, err := ts.scope.topic(dbc, topicID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(dbc.Ctx, c.AuthorID, "course"); err != nil {
			return err
		}
		if _, err := ts.orders.Reorder(dbc, ordering.Topics, topicID, newOrder); err != nil {
			return err
		}
		out, err = ts.topicRepo.GetByID(dbc, topicID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("reorder topic", err)
	}
	return out, nil
}
