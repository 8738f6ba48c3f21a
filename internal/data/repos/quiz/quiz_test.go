package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
)

func TestQuizAndQuestionRepos(t *testing.T) {
	db := testutil.SQLiteDB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	log := testutil.Logger(t)

	u := testutil.SeedUser(t, ctx, db, "author")
	c := testutil.SeedCourse(t, ctx, db, u.ID, "beginner", true)
	tree := testutil.SeedCourseTree(t, ctx, db, c.ID, 1, 1, 1)

	quizRepo := NewQuizRepo(db, log)
	q, err := quizRepo.Create(dbc, &types.Quiz{
		ContentType: "lesson", ContentID: tree.Lessons[0].ID, CourseID: c.ID,
		Title: "check", PassingScore: 70, CreatedBy: u.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	qs := NewQuizQuestionRepo(db, log)
	questions, err := qs.Create(dbc, []*types.QuizQuestion{
		{QuizID: q.ID, OrderIndex: 1, Text: "second", QuestionType: "single", Points: 1},
		{QuizID: q.ID, OrderIndex: 0, Text: "first", QuestionType: "single", Points: 1},
	})
	if err != nil {
		t.Fatalf("Create questions: %v", err)
	}
	if _, err := qs.CreateAnswers(dbc, []*types.QuizAnswer{
		{QuestionID: questions[1].ID, OrderIndex: 0, Text: "yes", IsCorrect: true},
		{QuestionID: questions[1].ID, OrderIndex: 1, Text: "no"},
	}); err != nil {
		t.Fatalf("CreateAnswers: %v", err)
	}

	listed, err := qs.ListByQuizID(dbc, q.ID)
	if err != nil || len(listed) != 2 || listed[0].Text != "first" {
		t.Fatalf("ListByQuizID: err=%v listed=%v", err, listed)
	}
	answers, err := qs.ListAnswersByQuestionIDs(dbc, []uuid.UUID{questions[1].ID})
	if err != nil || len(answers) != 2 || !answers[0].IsCorrect {
		t.Fatalf("ListAnswersByQuestionIDs: err=%v answers=%v", err, answers)
	}

	byContent, err := quizRepo.ListByContent(dbc, "lesson", tree.Lessons[0].ID)
	if err != nil || len(byContent) != 1 {
		t.Fatalf("ListByContent: err=%v len=%d", err, len(byContent))
	}
}

func TestUserQuizAttemptRepo(t *testing.T) {
	db := testutil.SQLiteDB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	repo := NewUserQuizAttemptRepo(db, testutil.Logger(t))

	userID, quizID := uuid.New(), uuid.New()
	if a, err := repo.Latest(dbc, userID, quizID); err != nil || a != nil {
		t.Fatalf("Latest empty: err=%v a=%v", err, a)
	}

	base := time.Now().UTC().Add(-time.Hour)
	scores := []float64{40, 90, 75}
	var ids []uuid.UUID
	for i, s := range scores {
		a, err := repo.Create(dbc, &types.UserQuizAttempt{
			UserID: userID, QuizID: quizID, Score: s, Passed: s >= 70,
			StartedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, a.ID)
	}

	latest, err := repo.Latest(dbc, userID, quizID)
	if err != nil || latest == nil || latest.ID != ids[2] {
		t.Fatalf("Latest: err=%v latest=%v", err, latest)
	}
	best, err := repo.Best(dbc, userID, quizID)
	if err != nil || best == nil || best.Score != 90 {
		t.Fatalf("Best: err=%v best=%v", err, best)
	}
	all, err := repo.ListByUserQuiz(dbc, userID, quizID)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListByUserQuiz: err=%v len=%d", err, len(all))
	}

	if err := repo.UpdateXPAwarded(dbc, ids[1], 63); err != nil {
		t.Fatalf("UpdateXPAwarded: %v", err)
	}
	best, _ = repo.Best(dbc, userID, quizID)
	if best.XPAwarded != 63 {
		t.Fatalf("UpdateXPAwarded not persisted: %d", best.XPAwarded)
	}
	if err := repo.UpdateXPAwarded(dbc, uuid.New(), 1); err == nil {
		t.Fatalf("UpdateXPAwarded unknown: expected error")
	}
}

func TestQuestionDeleteRemovesAnswers(t *testing.T) {
	db := testutil.SQLiteDB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	log := testutil.Logger(t)

	u := testutil.SeedUser(t, ctx, db, "author")
	c := testutil.SeedCourse(t, ctx, db, u.ID, "beginner", true)
	tree := testutil.SeedCourseTree(t, ctx, db, c.ID, 1, 1, 1)
	q := testutil.SeedQuiz(t, ctx, db, c.ID, tree.Lessons[0].ID, u.ID, 70)

	qs := NewQuizQuestionRepo(db, log)
	questions, err := qs.Create(dbc, []*types.QuizQuestion{{QuizID: q.ID, Text: "only", QuestionType: "single", Points: 1}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	answers, err := qs.CreateAnswers(dbc, []*types.QuizAnswer{
		{QuestionID: questions[0].ID, OrderIndex: 0, Text: "a", IsCorrect: true},
		{QuestionID: questions[0].ID, OrderIndex: 1, Text: "b"},
	})
	if err != nil {
		t.Fatalf("CreateAnswers: %v", err)
	}
	if err := qs.UpdateAnswerFields(dbc, answers[1].ID, map[string]any{"text": "b2"}); err != nil {
		t.Fatalf("UpdateAnswerFields: %v", err)
	}
	got, err := qs.GetAnswerByID(dbc, answers[1].ID)
	if err != nil || got == nil || got.Text != "b2" {
		t.Fatalf("GetAnswerByID: %v %v", got, err)
	}

	if err := qs.DeleteByIDs(dbc, []uuid.UUID{questions[0].ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	if q, err := qs.GetByID(dbc, questions[0].ID); err != nil || q != nil {
		t.Fatalf("question survived: %v %v", q, err)
	}
	left, err := qs.ListAnswersByQuestionIDs(dbc, []uuid.UUID{questions[0].ID})
	if err != nil || len(left) != 0 {
		t.Fatalf("answers survived: %d %v", len(left), err)
	}
}
