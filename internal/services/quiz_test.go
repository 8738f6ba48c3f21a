package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/realtime"
)

func quizFixture(t *testing.T, e *env, published bool) (author, learner *types.User, lesson *types.TopicLesson) {
	t.Helper()
	ctx := context.Background()
	author = testutil.SeedUser(t, ctx, e.db, "author")
	learner = testutil.SeedUser(t, ctx, e.db, "learner")
	c := testutil.SeedCourse(t, ctx, e.db, author.ID, "beginner", published)
	tree := testutil.SeedCourseTree(t, ctx, e.db, c.ID, 1, 1, 1)
	return author, learner, tree.Lessons[0]
}

func sampleQuiz(lesson *types.TopicLesson) QuizInput {
	return QuizInput{
		ContentType: "lesson",
		ContentID:   lesson.ID,
		Title:       "Check",
		Questions: []QuestionInput{
			{Text: "2+2?", Answers: []AnswerInput{{Text: "4", IsCorrect: true}, {Text: "5"}}},
			{Text: "Pick primes", QuestionType: "multiple", Answers: []AnswerInput{
				{Text: "2", IsCorrect: true}, {Text: "3", IsCorrect: true}, {Text: "4"},
			}},
		},
	}
}

func TestCreateQuizOrdersQuestions(t *testing.T) {
	e := newEnv(t)
	author, learner, lesson := quizFixture(t, e, true)

	if _, err := e.quizzes.CreateQuiz(as(learner), sampleQuiz(lesson)); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("learner create: want forbidden, got %v", err)
	}
	view, err := e.quizzes.CreateQuiz(as(author), sampleQuiz(lesson))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if view.Quiz.PassingScore != 70 {
		t.Fatalf("default passing score: got %v", view.Quiz.PassingScore)
	}
	if len(view.Questions) != 2 {
		t.Fatalf("questions: want=2 got=%d", len(view.Questions))
	}
	for i, q := range view.Questions {
		if q.Question.OrderIndex != i {
			t.Fatalf("question %d: order=%d", i, q.Question.OrderIndex)
		}
	}
	if view.Questions[0].Question.Points != 1 || view.Questions[0].Question.QuestionType != "single" {
		t.Fatalf("question defaults: %+v", view.Questions[0].Question)
	}

	got, err := e.quizzes.GetQuiz(as(learner), view.Quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got.RevealAnswers {
		t.Fatalf("learner must not see correct answers")
	}
	if len(got.Questions) != 2 || len(got.Questions[1].Answers) != 3 {
		t.Fatalf("unexpected view: %+v", got)
	}
	own, err := e.quizzes.GetQuiz(as(author), view.Quiz.ID)
	if err != nil || !own.RevealAnswers {
		t.Fatalf("author must see correct answers: %v", err)
	}
}

func TestCreateQuizValidation(t *testing.T) {
	e := newEnv(t)
	author, _, lesson := quizFixture(t, e, true)
	over := 120.0

	cases := map[string]func(in *QuizInput){
		"no title":           func(in *QuizInput) { in.Title = " " },
		"passing over 100":   func(in *QuizInput) { in.PassingScore = &over },
		"unknown type":       func(in *QuizInput) { in.Questions[0].QuestionType = "essay" },
		"no correct answer":  func(in *QuizInput) { in.Questions[0].Answers[0].IsCorrect = false },
		"two correct single": func(in *QuizInput) { in.Questions[0].Answers[1].IsCorrect = true },
		"bad content type":   func(in *QuizInput) { in.ContentType = "course" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := sampleQuiz(lesson)
			mutate(&in)
			if _, err := e.quizzes.CreateQuiz(as(author), in); !errors.Is(err, apierr.ErrInvalidArgument) {
				t.Fatalf("want invalid argument, got %v", err)
			}
		})
	}
}

func TestSubmitAttemptPassedGrantsXP(t *testing.T) {
	e := newEnv(t)
	author, learner, lesson := quizFixture(t, e, true)
	view, err := e.quizzes.CreateQuiz(as(author), sampleQuiz(lesson))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}

	answers := json.RawMessage(`[{"question":0,"answer":0}]`)
	a, err := e.quizzes.SubmitAttempt(as(learner), view.Quiz.ID, AttemptInput{Score: 90, Answers: answers})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	// floor(70 * 90 / 100) = 63
	if !a.Passed || a.XPAwarded != 63 {
		t.Fatalf("attempt: passed=%t xp=%d", a.Passed, a.XPAwarded)
	}
	u := e.reloadUser(t, learner)
	if u.Experience != 63 || u.TotalPoints != 31 || u.Level != 1 {
		t.Fatalf("user: exp=%d points=%d level=%d", u.Experience, u.TotalPoints, u.Level)
	}
	if !e.events.has(realtime.EventQuizPassed) {
		t.Fatalf("quiz.passed not published: %v", e.events.names())
	}

	failed, err := e.quizzes.SubmitAttempt(as(learner), view.Quiz.ID, AttemptInput{Score: 40})
	if err != nil {
		t.Fatalf("SubmitAttempt failing: %v", err)
	}
	if failed.Passed || failed.XPAwarded != 0 {
		t.Fatalf("failed attempt: %+v", failed)
	}
	if u := e.reloadUser(t, learner); u.Experience != 63 {
		t.Fatalf("failed attempt paid xp: %d", u.Experience)
	}

	best, err := e.quizzes.BestAttempt(as(learner), view.Quiz.ID)
	if err != nil || best.Score != 90 {
		t.Fatalf("BestAttempt: %+v %v", best, err)
	}
	all, err := e.quizzes.ListMyAttempts(as(learner), view.Quiz.ID)
	if err != nil || len(all) != 2 {
		t.Fatalf("ListMyAttempts: %d %v", len(all), err)
	}
}

func TestSubmitAttemptRejectsInconsistentPassed(t *testing.T) {
	e := newEnv(t)
	author, learner, lesson := quizFixture(t, e, true)
	view, err := e.quizzes.CreateQuiz(as(author), sampleQuiz(lesson))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	yes := true
	if _, err := e.quizzes.SubmitAttempt(as(learner), view.Quiz.ID, AttemptInput{Score: 10, Passed: &yes}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
	if _, err := e.quizzes.SubmitAttempt(as(learner), view.Quiz.ID, AttemptInput{Score: 101}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("score > 100: want invalid argument, got %v", err)
	}
	if _, err := e.quizzes.LatestAttempt(as(learner), view.Quiz.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("rejected attempts must not persist: %v", err)
	}
}

func TestQuizOnUnpublishedCourseHidden(t *testing.T) {
	e := newEnv(t)
	author, learner, lesson := quizFixture(t, e, false)
	view, err := e.quizzes.CreateQuiz(as(author), sampleQuiz(lesson))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	if _, err := e.quizzes.GetQuiz(as(learner), view.Quiz.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if _, err := e.quizzes.SubmitAttempt(as(learner), view.Quiz.ID, AttemptInput{Score: 100}); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("submit: want not found, got %v", err)
	}
}

func TestEditQuizQuestionsKeepsOrderDense(t *testing.T) {
	e := newEnv(t)
	author, learner, lesson := quizFixture(t, e, true)
	view, err := e.quizzes.CreateQuiz(as(author), sampleQuiz(lesson))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	quizID := view.Quiz.ID

	title := "Renamed"
	passing := 50.0
	if _, err := e.quizzes.UpdateQuiz(as(learner), quizID, QuizPatch{Title: &title}); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("learner update: want forbidden, got %v", err)
	}
	q, err := e.quizzes.UpdateQuiz(as(author), quizID, QuizPatch{Title: &title, PassingScore: &passing})
	if err != nil {
		t.Fatalf("UpdateQuiz: %v", err)
	}
	if q.Title != "Renamed" || q.PassingScore != 50 {
		t.Fatalf("UpdateQuiz: %+v", q)
	}

	added, err := e.quizzes.AddQuestion(as(author), quizID, QuestionInput{
		Text: "Go is compiled", QuestionType: "true_false",
		Answers: []AnswerInput{{Text: "true", IsCorrect: true}, {Text: "false"}},
	})
	if err != nil {
		t.Fatalf("AddQuestion: %v", err)
	}
	if added.Question.OrderIndex != 2 {
		t.Fatalf("added question order: want 2 got %d", added.Question.OrderIndex)
	}
	for i, a := range added.Answers {
		if a.OrderIndex != i {
			t.Fatalf("answer %d order=%d", i, a.OrderIndex)
		}
	}

	if _, err := e.quizzes.ReorderQuestion(as(author), added.Question.ID, 0); err != nil {
		t.Fatalf("ReorderQuestion: %v", err)
	}
	if err := e.quizzes.DeleteQuestion(as(author), view.Questions[0].Question.ID); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}
	got, err := e.quizzes.GetQuiz(as(author), quizID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("questions after delete: %d", len(got.Questions))
	}
	wantIDs := []string{added.Question.ID.String(), view.Questions[1].Question.ID.String()}
	for i, qv := range got.Questions {
		if qv.Question.ID.String() != wantIDs[i] || qv.Question.OrderIndex != i {
			t.Fatalf("slot %d: id=%s order=%d", i, qv.Question.ID, qv.Question.OrderIndex)
		}
	}

	points := 3
	qt := "multiple"
	uq, err := e.quizzes.UpdateQuestion(as(author), added.Question.ID, QuestionPatch{Points: &points, QuestionType: &qt})
	if err != nil {
		t.Fatalf("UpdateQuestion: %v", err)
	}
	if uq.Points != 3 || uq.QuestionType != "multiple" {
		t.Fatalf("UpdateQuestion: %+v", uq)
	}
}

func TestEditAnswersEnforcesCorrectCount(t *testing.T) {
	e := newEnv(t)
	author, _, lesson := quizFixture(t, e, true)
	view, err := e.quizzes.CreateQuiz(as(author), sampleQuiz(lesson))
	if err != nil {
		t.Fatalf("CreateQuiz: %v", err)
	}
	single := view.Questions[0]
	multi := view.Questions[1]

	if _, err := e.quizzes.AddAnswer(as(author), single.Question.ID, AnswerInput{Text: "also 4", IsCorrect: true}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("second correct on single: want invalid, got %v", err)
	}
	extra, err := e.quizzes.AddAnswer(as(author), single.Question.ID, AnswerInput{Text: "3"})
	if err != nil {
		t.Fatalf("AddAnswer: %v", err)
	}
	if extra.OrderIndex != 2 {
		t.Fatalf("added answer order: want 2 got %d", extra.OrderIndex)
	}

	no := false
	if _, err := e.quizzes.UpdateAnswer(as(author), single.Answers[0].ID, AnswerPatch{IsCorrect: &no}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("clearing only correct answer: want invalid, got %v", err)
	}
	if err := e.quizzes.DeleteAnswer(as(author), single.Answers[0].ID); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("deleting only correct answer: want invalid, got %v", err)
	}

	text := "five"
	ua, err := e.quizzes.UpdateAnswer(as(author), single.Answers[1].ID, AnswerPatch{Text: &text})
	if err != nil || ua.Text != "five" {
		t.Fatalf("UpdateAnswer: %+v %v", ua, err)
	}
	if err := e.quizzes.DeleteAnswer(as(author), single.Answers[1].ID); err != nil {
		t.Fatalf("DeleteAnswer: %v", err)
	}
	got, err := e.quizzes.GetQuiz(as(author), view.Quiz.ID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	left := got.Questions[0].Answers
	if len(left) != 2 || left[0].OrderIndex != 0 || left[1].OrderIndex != 1 || left[1].ID != extra.ID {
		t.Fatalf("answers not compacted: %+v", left)
	}

	if err := e.quizzes.DeleteAnswer(as(author), multi.Answers[0].ID); err != nil {
		t.Fatalf("DeleteAnswer on multiple: %v", err)
	}
	single2 := "single"
	if _, err := e.quizzes.UpdateQuestion(as(author), multi.Question.ID, QuestionPatch{QuestionType: &single2}); err != nil {
		t.Fatalf("multiple with one correct answer should become single: %v", err)
	}
}
