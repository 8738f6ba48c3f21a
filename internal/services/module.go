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

type ModuleInput struct {
	Title         string
	Description   string
	IsPublished   bool
	IsFreePreview bool
}

type ModulePatch struct {
	Title         *string
	Description   *string
	IsPublished   *bool
	IsFreePreview *bool
}

type ModuleService interface {
	CreateModule(dbc dbctx.Context, courseID uuid.UUID, in ModuleInput) (*types.CourseModule, error)
	ListModules(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseModule, error)
	GetModule(dbc dbctx.Context, moduleID uuid.UUID) (*types.CourseModule, error)
	UpdateModule(dbc dbctx.Context, moduleID uuid.UUID, patch ModulePatch) (*types.CourseModule, error)
	DeleteModule(dbc dbctx.Context, moduleID uuid.UUID) error
	ReorderModule(dbc dbctx.Context, moduleID uuid.UUID, newOrder int) (*types.CourseModule, error)
}

type moduleService struct {
	db         *gorm.DB
	log        *logger.Logger
	scope      contentScope
	moduleRepo repos.CourseModuleRepo
	topicRepo  repos.CourseTopicRepo
	orders     ordering.Maintainer
}

func NewModuleService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	moduleRepo repos.CourseModuleRepo,
	topicRepo repos.CourseTopicRepo,
	lessonRepo repos.TopicLessonRepo,
	orders ordering.Maintainer,
) ModuleService {
	return &moduleService{
		db:         db,
		log:        baseLog.With("service", "ModuleService"),
		scope:      contentScope{courses: courseRepo, modules: moduleRepo, topics: topicRepo, lessons: lessonRepo},
		moduleRepo: moduleRepo,
		topicRepo:  topicRepo,
		orders:     orders,
	}
}

func (ms *moduleService) CreateModule(dbc dbctx.Context, courseID uuid.UUID, in ModuleInput) (*types.CourseModule, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Invalid("title is required")
	}
	var out *types.CourseModule
	err := db.Within(dbc, ms.db, func(dbc dbctx.Context) error {
		c, err := ms.scope.course(dbc, courseID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(dbc.Ctx, c.AuthorID, "course"); err != nil {
			return err
		}
		next, err := ms.orders.NextOrder(dbc, ordering.Modules, courseID)
		if err != nil {
			return err
		}
		out = &types.CourseModule{
			CourseID:      courseID,
			OrderIndex:    next,
			Title:         title,
			Description:   in.Description,
			IsPublished:   in.IsPublished,
			IsFreePreview: in.IsFreePreview,
		}
		_, err = ms.moduleRepo.Create(dbc, []*types.CourseModule{out})
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("create module", err)
	}
	return out, nil
}

func (ms *moduleService) ListModules(dbc dbctx.Context, courseID uuid.UUID) ([]*types.CourseModule, error) {
	c, err := ms.scope.course(dbc, courseID)
	if err != nil {
		return nil, apierr.MapDB("list modules", err)
	}
	if !readable(dbc, c) {
		return nil, apierr.NotFound("course %s", courseID)
	}
	out, err := ms.moduleRepo.ListByCourseIDs(dbc, []uuid.UUID{courseID})
	if err != nil {
		return nil, apierr.MapDB("list modules", err)
	}
	return out, nil
}

func (ms *moduleService) GetModule(dbc dbctx.Context, moduleID uuid.UUID) (*types.CourseModule, error) {
	m, c, err := ms.scope.module(dbc, moduleID)
	if err != nil {
		return nil, apierr.MapDB("get module", err)
	}
	if !readable(dbc, c) {
		return nil, apierr.NotFound("module %s", moduleID)
	}
	return m, nil
}

func (ms *moduleService) UpdateModule(dbc dbctx.Context, moduleID uuid.UUID, patch ModulePatch) (*types.CourseModule, error) {
	var out *types.CourseModule
	err := db.Within(dbc, ms.db, func(dbc dbctx.Context) error {
		_, c, err := ms.scope.module(dbc, moduleID)
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
		if patch.IsFreePreview != nil {
			fields["is_free_preview"] = *patch.IsFreePreview
		}
		if err := ms.moduleRepo.UpdateFields(dbc, moduleID, fields); err != nil {
			return err
		}
		out, err = ms.moduleRepo.GetByID(dbc, moduleID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update module", err)
	}
	return out, nil
}

func (ms *moduleService) DeleteModule(dbc dbctx.Context, moduleID uuid.UUID) error {
	err := db.Within(dbc, ms.db, func(dbc dbctx.Context) error {
		m, c, err := ms.scope.module(dbc, moduleID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(dbc.Ctx, c.AuthorID, "course"); err != nil {
			return err
		}
		topics, err := ms.topicRepo.ListByModuleIDs(dbc, []uuid.UUID{moduleID})
		if err != nil {
			return err
		}
		topicIDs := make([]uuid.UUID, 0, len(topics))
		for _, t := range topics {
			topicIDs = append(topicIDs, t.ID)
		}
		if err := ms.scope.deleteTopics(dbc, topicIDs); err != nil {
			return err
		}
		if err := ms.moduleRepo.FullDeleteByIDs(dbc, []uuid.UUID{moduleID}); err != nil {
			return err
		}
		return ms.orders.Compact(dbc, ordering.Modules, m.CourseID, m.OrderIndex)
	})
	return apierr.MapDB("delete module", err)
}

func (ms *moduleService) ReorderModule(dbc dbctx.Context, moduleID uuid.UUID, newOrder int) (*types.CourseModule, error) {
	var out *types.CourseModule
	err := db.Within(dbc, ms.db, func(dbc dbctx.Context) error {
		_, c, err := ms.scope.module(dbc, moduleID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(dbc.Ctx, c.AuthorID, "course"); err != nil {
			return err
		}
		if _, err := ms.orders.Reorder(dbc, ordering.Modules, moduleID, newOrder); err != nil {
			return err
		}
		out, err = ms.moduleRepo.GetByID(dbc, moduleID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("reorder module", err)
	}
	return out, nil
}
