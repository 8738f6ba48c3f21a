package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    username + "@example.com",
		Username: username,
		IsActive: true,
		Level:    1,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedSuperuser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *types.User {
	tb.Helper()
	u := SeedUser(tb, ctx, tx, username)
	if err := tx.WithContext(ctx).Model(u).Update("is_superuser", true).Error; err != nil {
		tb.Fatalf("seed superuser: %v", err)
	}
	u.IsSuperuser = true
	return u
}

func SeedCourse(tb testing.TB, ctx context.Context, tx *gorm.DB, authorID uuid.UUID, level string, published bool) *types.Course {
	tb.Helper()
	id := uuid.New()
	c := &types.Course{
		ID:          id,
		Title:       "course " + id.String()[:8],
		Slug:        "course-" + id.String(),
		Level:       level,
		IsPublished: published,
		AuthorID:    authorID,
		Tags:        datatypes.JSON([]byte("[]")),
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed course: %v", err)
	}
	return c
}

func SeedCourseModule(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, order int) *types.CourseModule {
	tb.Helper()
	m := &types.CourseModule{
		ID:         uuid.New(),
		CourseID:   courseID,
		OrderIndex: order,
		Title:      fmt.Sprintf("module %d", order),
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed course module: %v", err)
	}
	return m
}

func SeedCourseTopic(tb testing.TB, ctx context.Context, tx *gorm.DB, moduleID uuid.UUID, order int) *types.CourseTopic {
	tb.Helper()
	t := &types.CourseTopic{
		ID:         uuid.New(),
		ModuleID:   moduleID,
		OrderIndex: order,
		Title:      fmt.Sprintf("topic %d", order),
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed course topic: %v", err)
	}
	return t
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, topicID uuid.UUID, order int) *types.TopicLesson {
	tb.Helper()
	l := &types.TopicLesson{
		ID:         uuid.New(),
		TopicID:    topicID,
		OrderIndex: order,
		Title:      fmt.Sprintf("lesson %d", order),
		LessonType: "text",
	}
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

// CourseTree is the content seeded by SeedCourseTree, in creation order.
type CourseTree struct {
	Modules []*types.CourseModule
	Topics  []*types.CourseTopic
	Lessons []*types.TopicLesson
}

// SeedCourseTree builds modules x topicsPerModule x lessonsPerTopic under courseID.
func SeedCourseTree(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID uuid.UUID, modules, topicsPerModule, lessonsPerTopic int) CourseTree {
	tb.Helper()
	var tree CourseTree
	for mi := 0; mi < modules; mi++ {
		m := SeedCourseModule(tb, ctx, tx, courseID, mi)
		tree.Modules = append(tree.Modules, m)
		for ti := 0; ti < topicsPerModule; ti++ {
			t := SeedCourseTopic(tb, ctx, tx, m.ID, ti)
			tree.Topics = append(tree.Topics, t)
			for li := 0; li < lessonsPerTopic; li++ {
				tree.Lessons = append(tree.Lessons, SeedLesson(tb, ctx, tx, t.ID, li))
			}
		}
	}
	return tree
}

func SeedEnrollment(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, courseID uuid.UUID) *types.CourseEnrollment {
	tb.Helper()
	e := &types.CourseEnrollment{
		ID:       uuid.New(),
		UserID:   userID,
		CourseID: courseID,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed enrollment: %v", err)
	}
	return e
}

func SeedQuiz(tb testing.TB, ctx context.Context, tx *gorm.DB, courseID, lessonID, createdBy uuid.UUID, passingScore float64) *types.Quiz {
	tb.Helper()
	q := &types.Quiz{
		ID:           uuid.New(),
		ContentType:  "lesson",
		ContentID:    lessonID,
		CourseID:     courseID,
		Title:        "quiz",
		PassingScore: passingScore,
		CreatedBy:    createdBy,
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed quiz: %v", err)
	}
	return q
}

func SeedAward(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, points int, requirements string) *types.Award {
	tb.Helper()
	if requirements == "" {
		requirements = "{}"
	}
	a := &types.Award{
		ID:           uuid.New(),
		Name:         name,
		Category:     "general",
		Points:       points,
		Requirements: datatypes.JSON([]byte(requirements)),
		IsActive:     true,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed award: %v", err)
	}
	return a
}
