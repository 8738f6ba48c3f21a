package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/domain/catalog"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type CourseInput struct {
	Title            string
	Slug             string
	Description      string
	ShortDescription string
	Level            string
	Price            float64
	IsFeatured       bool
	Tags             []string
	LearningOutcomes []string
	Prerequisites    []string
}

// CoursePatch holds the fields to change; nil means unchanged.
type CoursePatch struct {
	Title            *string
	Description      *string
	ShortDescription *string
	Level            *string
	Price            *float64
	IsFeatured       *bool
	Tags             *[]string
	LearningOutcomes *[]string
	Prerequisites    *[]string
}

type TopicNode struct {
	Topic   *types.CourseTopic
	Lessons []*types.TopicLesson
}

type ModuleNode struct {
	Module *types.CourseModule
	Topics []TopicNode
}

// CourseTree is a course with its modules, topics and lessons in order.
type CourseTree struct {
	Course  *types.Course
	Modules []ModuleNode
}

type CourseService interface {
	CreateCourse(dbc dbctx.Context, in CourseInput) (*types.Course, error)
	GetCourse(dbc dbctx.Context, courseID uuid.UUID) (*types.Course, error)
	GetCourseBySlug(dbc dbctx.Context, slug string) (*types.Course, error)
	ListCourses(dbc dbctx.Context, f repos.CourseFilter) ([]*types.Course, int64, error)
	UpdateCourse(dbc dbctx.Context, courseID uuid.UUID, patch CoursePatch) (*types.Course, error)
	SetPublished(dbc dbctx.Context, courseID uuid.UUID, published bool) (*types.Course, error)
	DeleteCourse(dbc dbctx.Context, courseID uuid.UUID) error
	GetCourseTree(dbc dbctx.Context, courseID uuid.UUID) (*CourseTree, error)
}

type courseService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	moduleRepo repos.CourseModuleRepo
	topicRepo  repos.CourseTopicRepo
	lessonRepo repos.TopicLessonRepo
}

func NewCourseService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	moduleRepo repos.CourseModuleRepo,
	topicRepo repos.CourseTopicRepo,
	lessonRepo repos.TopicLessonRepo,
) CourseService {
	return &courseService{
		db:         db,
		log:        baseLog.With("service", "CourseService"),
		courseRepo: courseRepo,
		moduleRepo: moduleRepo,
		topicRepo:  topicRepo,
		lessonRepo: lessonRepo,
	}
}

func jsonList(items []string) (datatypes.JSON, error) {
	if items == nil {
		items = []string{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// decodeList reads a stored string list; malformed rows read as empty.
func decodeList(raw datatypes.JSON) []string {
	var items []string
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	return items
}

// setJSONList stores the encoded list under column when the patch sets it.
func setJSONList(fields map[string]any, column string, items *[]string) error {
	if items == nil {
		return nil
	}
	raw, err := jsonList(*items)
	if err != nil {
		return err
	}
	fields[column] = raw
	return nil
}

func normalizeLevel(level string) (string, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		return catalog.LevelBeginner, nil
	}
	if !catalog.ValidLevel(level) {
		return "", apierr.Invalid("unknown course level %q", level)
	}
	return level, nil
}

func (cs *courseService) CreateCourse(dbc dbctx.Context, in CourseInput) (*types.Course, error) {
	rd, err := currentUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Invalid("title is required")
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, apierr.Invalid("slug is required")
	}
	level, err := normalizeLevel(in.Level)
	if err != nil {
		return nil, err
	}
	if in.Price < 0 {
		return nil, apierr.Invalid("price must not be negative")
	}
	tags, err := jsonList(in.Tags)
	if err != nil {
		return nil, err
	}
	outcomes, err := jsonList(in.LearningOutcomes)
	if err != nil {
		return nil, err
	}
	prereqs, err := jsonList(in.Prerequisites)
	if err != nil {
		return nil, err
	}

	course := &types.Course{
		Title:            title,
		Slug:             slug,
		Description:      in.Description,
		ShortDescription: in.ShortDescription,
		Level:            level,
		Price:            in.Price,
		IsFeatured:       in.IsFeatured,
		AuthorID:         rd.UserID,
		Tags:             tags,
		LearningOutcomes: outcomes,
		Prerequisites:    prereqs,
	}
	if _, err := cs.courseRepo.Create(dbc, []*types.Course{course}); err != nil {
		cs.log.Warn("CreateCourse failed", "error", err, "slug", slug)
		return nil, apierr.MapDB("create course", err)
	}
	cs.log.Info("Course created", "course_id", course.ID, "author_id", rd.UserID)
	return course, nil
}

// visible hides unpublished courses from everyone but their managers.
func (cs *courseService) visible(dbc dbctx.Context, c *types.Course) bool {
	return c != nil && (c.IsPublished || canManage(optionalUser(dbc.Ctx), c.AuthorID))
}

func (cs *courseService) GetCourse(dbc dbctx.Context, courseID uuid.UUID) (*types.Course, error) {
	c, err := cs.courseRepo.GetByID(dbc, courseID)
	if err != nil {
		return nil, apierr.MapDB("get course", err)
	}
	if !cs.visible(dbc, c) {
		return nil, apierr.NotFound("course %s", courseID)
	}
	return c, nil
}

func (cs *courseService) GetCourseBySlug(dbc dbctx.Context, slug string) (*types.Course, error) {
	c, err := cs.courseRepo.GetBySlug(dbc, strings.TrimSpace(slug))
	if err != nil {
		return nil, apierr.MapDB("get course", err)
	}
	if !cs.visible(dbc, c) {
		return nil, apierr.NotFound("course %q", slug)
	}
	return c, nil
}

func (cs *courseService) ListCourses(dbc dbctx.Context, f repos.CourseFilter) ([]*types.Course, int64, error) {
	rd := optionalUser(dbc.Ctx)
	ownList := rd != nil && f.AuthorID != nil && *f.AuthorID == rd.UserID
	if !ownList && (rd == nil || !rd.IsSuperuser) {
		published := true
		f.Published = &published
	}
	if f.Level != "" {
		level, err := normalizeLevel(f.Level)
		if err != nil {
			return nil, 0, err
		}
		f.Level = level
	}
	courses, total, err := cs.courseRepo.List(dbc, f)
	if err != nil {
		return nil, 0, apierr.MapDB("list courses", err)
	}
	return courses, total, nil
}

func (cs *courseService) loadManaged(dbc dbctx.Context, courseID uuid.UUID) (*types.Course, error) {
	c, err := cs.courseRepo.GetByID(dbc, courseID)
	if err != nil {
		return nil, apierr.MapDB("get course", err)
	}
	if c == nil {
		return nil, apierr.NotFound("course %s", courseID)
	}
	if _, err := requireOwner(dbc.Ctx, c.AuthorID, "course"); err != nil {
		return nil, err
	}
	return c, nil
}

func (cs *courseService) UpdateCourse(dbc dbctx.Context, courseID uuid.UUID, patch CoursePatch) (*types.Course, error) {
	var out *types.Course
	err := db.Within(dbc, cs.db, func(dbc dbctx.Context) error {
		if _, err := cs.loadManaged(dbc, courseID); err != nil {
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
		if patch.ShortDescription != nil {
			fields["short_description"] = *patch.ShortDescription
		}
		if patch.Level != nil {
			level, err := normalizeLevel(*patch.Level)
			if err != nil {
				return err
			}
			fields["level"] = level
		}
		if patch.Price != nil {
			if *patch.Price < 0 {
				return apierr.Invalid("price must not be negative")
			}
			fields["price"] = *patch.Price
		}
		if patch.IsFeatured != nil {
			fields["is_featured"] = *patch.IsFeatured
		}
		if err := setJSONList(fields, "tags", patch.Tags); err != nil {
			return err
		}
		if err := setJSONList(fields, "learning_outcomes", patch.LearningOutcomes); err != nil {
			return err
		}
		if err := setJSONList(fields, "prerequisites", patch.Prerequisites); err != nil {
			return err
		}
		if err := cs.courseRepo.UpdateFields(dbc, courseID, fields); err != nil {
			return err
		}
		var err error
		out, err = cs.courseRepo.GetByID(dbc, courseID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update course", err)
	}
	return out, nil
}

func (cs *courseService) SetPublished(dbc dbctx.Context, courseID uuid.UUID, published bool) (*types.Course, error) {
	var out *types.Course
	err := db.Within(dbc, cs.db, func(dbc dbctx.Context) error {
		c, err := cs.loadManaged(dbc, courseID)
		if err != nil {
			return err
		}
		fields := map[string]any{"is_published": published}
		if published && c.PublishedAt == nil {
			fields["published_at"] = time.Now().UTC()
		}
		if err := cs.courseRepo.UpdateFields(dbc, courseID, fields); err != nil {
			return err
		}
		out, err = cs.courseRepo.GetByID(dbc, courseID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("publish course", err)
	}
	cs.log.Info("Course publish state changed", "course_id", courseID, "published", published)
	return out, nil
}

func (cs *courseService) DeleteCourse(dbc dbctx.Context, courseID uuid.UUID) error {
	err := db.Within(dbc, cs.db, func(dbc dbctx.Context) error {
		if _, err := cs.loadManaged(dbc, courseID); err != nil {
			return err
		}
		return cs.courseRepo.SoftDeleteByIDs(dbc, []uuid.UUID{courseID})
	})
	return apierr.MapDB("delete course", err)
}

func (cs *courseService) GetCourseTree(dbc dbctx.Context, courseID uuid.UUID) (*CourseTree, error) {
	c, err := cs.GetCourse(dbc, courseID)
	if err != nil {
		return nil, err
	}
	modules, err := cs.moduleRepo.ListByCourseIDs(dbc, []uuid.UUID{c.ID})
	if err != nil {
		return nil, apierr.MapDB("list modules", err)
	}
	moduleIDs := make([]uuid.UUID, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}
	topics, err := cs.topicRepo.ListByModuleIDs(dbc, moduleIDs)
	if err != nil {
		return nil, apierr.MapDB("list topics", err)
	}
	topicIDs := make([]uuid.UUID, 0, len(topics))
	for _, t := range topics {
		topicIDs = append(topicIDs, t.ID)
	}
	lessons, err := cs.lessonRepo.ListByTopicIDs(dbc, topicIDs)
	if err != nil {
		return nil, apierr.MapDB("list lessons", err)
	}

	lessonsByTopic := map[uuid.UUID][]*types.TopicLesson{}
	for _, l := range lessons {
		lessonsByTopic[l.TopicID] = append(lessonsByTopic[l.TopicID], l)
	}
	topicsByModule := map[uuid.UUID][]TopicNode{}
	for _, t := range topics {
		topicsByModule[t.ModuleID] = append(topicsByModule[t.ModuleID], TopicNode{Topic: t, Lessons: lessonsByTopic[t.ID]})
	}
	tree := &CourseTree{Course: c, Modules: make([]ModuleNode, 0, len(modules))}
	for _, m := range modules {
		tree.Modules = append(tree.Modules, ModuleNode{Module: m, Topics: topicsByModule[m.ID]})
	}
	return tree, nil
}
