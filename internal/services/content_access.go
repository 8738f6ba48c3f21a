package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	enrollmentdomain "github.com/yungbote/coursekit-backend/internal/domain/enrollment"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
)

// contentScope resolves the course that owns a module, topic or lesson so
// access checks can be made against its author.
type contentScope struct {
	courses repos.CourseRepo
	modules repos.CourseModuleRepo
	topics  repos.CourseTopicRepo
	lessons repos.TopicLessonRepo
}

func (s contentScope) course(dbc dbctx.Context, courseID uuid.UUID) (*types.Course, error) {
	c, err := s.courses.GetByID(dbc, courseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apierr.NotFound("course %s", courseID)
	}
	return c, nil
}

func (s contentScope) module(dbc dbctx.Context, moduleID uuid.UUID) (*types.CourseModule, *types.Course, error) {
	m, err := s.modules.GetByID(dbc, moduleID)
	if err != nil {
		return nil, nil, err
	}
	if m == nil {
		return nil, nil, apierr.NotFound("module %s", moduleID)
	}
	c, err := s.course(dbc, m.CourseID)
	return m, c, err
}

func (s contentScope) topic(dbc dbctx.Context, topicID uuid.UUID) (*types.CourseTopic, *types.Course, error) {
	t, err := s.topics.GetByID(dbc, topicID)
	if err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, apierr.NotFound("topic %s", topicID)
	}
	_, c, err := s.module(dbc, t.ModuleID)
	return t, c, err
}

func (s contentScope) lesson(dbc dbctx.Context, lessonID uuid.UUID) (*types.TopicLesson, *types.Course, error) {
	l, err := s.lessons.GetByID(dbc, lessonID)
	if err != nil {
		return nil, nil, err
	}
	if l == nil {
		return nil, nil, apierr.NotFound("lesson %s", lessonID)
	}
	_, c, err := s.topic(dbc, l.TopicID)
	return l, c, err
}

// contentCourse resolves the course a module, topic or lesson belongs to.
func (s contentScope) contentCourse(dbc dbctx.Context, contentType string, contentID uuid.UUID) (*types.Course, error) {
	switch contentType {
	case enrollmentdomain.ContentModule:
		_, c, err := s.module(dbc, contentID)
		return c, err
	case enrollmentdomain.ContentTopic:
		_, c, err := s.topic(dbc, contentID)
		return c, err
	case enrollmentdomain.ContentLesson:
		_, c, err := s.lesson(dbc, contentID)
		return c, err
	}
	return nil, apierr.Invalid("invalid content type %q", contentType)
}

// readable reports whether the caller may see content of c.
func readable(dbc dbctx.Context, c *types.Course) bool {
	return c.IsPublished || canManage(optionalUser(dbc.Ctx), c.AuthorID)
}

// deleteTopics removes topics and every lesson beneath them.
func (s contentScope) deleteTopics(dbc dbctx.Context, topicIDs []uuid.UUID) error {
	if len(topicIDs) == 0 {
		return nil
	}
	lessons, err := s.lessons.ListByTopicIDs(dbc, topicIDs)
	if err != nil {
		return err
	}
	lessonIDs := make([]uuid.UUID, 0, len(lessons))
	for _, l := range lessons {
		lessonIDs = append(lessonIDs, l.ID)
	}
	if err := s.lessons.FullDeleteByIDs(dbc, lessonIDs); err != nil {
		return err
	}
	return s.topics.FullDeleteByIDs(dbc, topicIDs)
}
