package services

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	quizdomain "github.com/yungbote/coursekit-backend/internal/domain/quiz"
	"github.com/yungbote/coursekit-backend/internal/learning/ordering"
	"github.com/yungbote/coursekit-backend/internal/learning/rewards"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/realtime"
)

type AnswerInput struct {
	Text      string
	IsCorrect bool
}

type QuestionInput struct {
	Text         string
	QuestionType string
	Points       int
	Explanation  string
	Answers      []AnswerInput
}

type QuizInput struct {
	ContentType        string
	ContentID          uuid.UUID
	Title              string
	Description        string
	PassingScore       *float64
	TimeLimitMinutes   *int
	RandomizeQuestions bool
	ShowCorrectAnswers bool
	Questions          []QuestionInput
}

type QuizPatch struct {
	Title              *string
	Description        *string
	PassingScore       *float64
	TimeLimitMinutes   *int
	RandomizeQuestions *bool
	ShowCorrectAnswers *bool
}

type QuestionPatch struct {
	Text         *string
	QuestionType *string
	Points       *int
	Explanation  *string
}

type AnswerPatch struct {
	Text      *string
	IsCorrect *bool
}

// AttemptInput is one submitted attempt. Passed is optional and, when set,
// must agree with Score against the quiz's passing score.
type AttemptInput struct {
	Score            float64
	Passed           *bool
	TimeTakenSeconds *int
	Answers          json.RawMessage
	StartedAt        *time.Time
}

type QuestionView struct {
	Question *types.QuizQuestion
	Answers  []*types.QuizAnswer
}

// QuizView is a quiz with its questions. RevealAnswers is false when the
// caller must not see which answers are correct.
type QuizView struct {
	Quiz          *types.Quiz
	Questions     []QuestionView
	RevealAnswers bool
}

type QuizService interface {
	CreateQuiz(dbc dbctx.Context, in QuizInput) (*QuizView, error)
	GetQuiz(dbc dbctx.Context, quizID uuid.UUID) (*QuizView, error)
	ListQuizzesForContent(dbc dbctx.Context, contentType string, contentID uuid.UUID) ([]*types.Quiz, error)
	UpdateQuiz(dbc dbctx.Context, quizID uuid.UUID, patch QuizPatch) (*types.Quiz, error)
	DeleteQuiz(dbc dbctx.Context, quizID uuid.UUID) error
	AddQuestion(dbc dbctx.Context, quizID uuid.UUID, in QuestionInput) (*QuestionView, error)
	UpdateQuestion(dbc dbctx.Context, questionID uuid.UUID, patch QuestionPatch) (*types.QuizQuestion, error)
	ReorderQuestion(dbc dbctx.Context, questionID uuid.UUID, newOrder int) (*types.QuizQuestion, error)
	DeleteQuestion(dbc dbctx.Context, questionID uuid.UUID) error
	AddAnswer(dbc dbctx.Context, questionID uuid.UUID, in AnswerInput) (*types.QuizAnswer, error)
	UpdateAnswer(dbc dbctx.Context, answerID uuid.UUID, patch AnswerPatch) (*types.QuizAnswer, error)
	DeleteAnswer(dbc dbctx.Context, answerID uuid.UUID) error
	SubmitAttempt(dbc dbctx.Context, quizID uuid.UUID, in AttemptInput) (*types.UserQuizAttempt, error)
	ListMyAttempts(dbc dbctx.Context, quizID uuid.UUID) ([]*types.UserQuizAttempt, error)
	LatestAttempt(dbc dbctx.Context, quizID uuid.UUID) (*types.UserQuizAttempt, error)
	BestAttempt(dbc dbctx.Context, quizID uuid.UUID) (*types.UserQuizAttempt, error)
}

type quizService struct {
	db           *gorm.DB
	log          *logger.Logger
	scope        contentScope
	quizRepo     repos.QuizRepo
	questionRepo repos.QuizQuestionRepo
	attemptRepo  repos.UserQuizAttemptRepo
	orders       ordering.Maintainer
	rewarder     *rewards.Rewarder
	events       realtime.Publisher
}

func NewQuizService(
	db *gorm.DB,
	baseLog *logger.Logger,
	courseRepo repos.CourseRepo,
	moduleRepo repos.CourseModuleRepo,
	topicRepo repos.CourseTopicRepo,
	lessonRepo repos.TopicLessonRepo,
	quizRepo repos.QuizRepo,
	questionRepo repos.QuizQuestionRepo,
	attemptRepo repos.UserQuizAttemptRepo,
	orders ordering.Maintainer,
	rewarder *rewards.Rewarder,
	events realtime.Publisher,
) QuizService {
	return &quizService{
		db:           db,
		log:          baseLog.With("service", "QuizService"),
		scope:        contentScope{courses: courseRepo, modules: moduleRepo, topics: topicRepo, lessons: lessonRepo},
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		orders:       orders,
		rewarder:     rewarder,
		events:       events,
	}
}

func validateQuestion(i int, q QuestionInput) (string, error) {
	if strings.TrimSpace(q.Text) == "" {
		return "", apierr.Invalid("question %d: text is required", i)
	}
	qt := strings.ToLower(strings.TrimSpace(q.QuestionType))
	if qt == "" {
		qt = quizdomain.QuestionSingle
	}
	if !quizdomain.ValidQuestionType(qt) {
		return "", apierr.Invalid("question %d: unknown type %q", i, q.QuestionType)
	}
	if q.Points < 0 {
		return "", apierr.Invalid("question %d: points must not be negative", i)
	}
	if len(q.Answers) == 0 {
		return "", apierr.Invalid("question %d: at least one answer is required", i)
	}
	correct := 0
	for _, a := range q.Answers {
		if strings.TrimSpace(a.Text) == "" {
			return "", apierr.Invalid("question %d: answer text is required", i)
		}
		if a.IsCorrect {
			correct++
		}
	}
	if err := checkCorrect(qt, correct); err != nil {
		return "", fmt.Errorf("question %d: %w", i, err)
	}
	return qt, nil
}

// checkCorrect enforces how many correct answers a question type takes.
func checkCorrect(qt string, correct int) error {
	switch {
	case correct == 0:
		return apierr.Invalid("no correct answer")
	case correct > 1 && qt != quizdomain.QuestionMultiple:
		return apierr.Invalid("%s questions take one correct answer", qt)
	}
	return nil
}

func countCorrect(answers []*types.QuizAnswer) int {
	n := 0
	for _, a := range answers {
		if a.IsCorrect {
			n++
		}
	}
	return n
}

func (qs *quizService) CreateQuiz(dbc dbctx.Context, in QuizInput) (*QuizView, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Invalid("title is required")
	}
	passing := quizdomain.DefaultPassingScore
	if in.PassingScore != nil {
		passing = *in.PassingScore
	}
	if passing < 0 || passing > 100 {
		return nil, apierr.Invalid("passing score must be within [0,100]")
	}
	if in.TimeLimitMinutes != nil && *in.TimeLimitMinutes <= 0 {
		return nil, apierr.Invalid("time limit must be positive")
	}
	qtypes := make([]string, len(in.Questions))
	for i, q := range in.Questions {
		qt, err := validateQuestion(i, q)
		if err != nil {
			return nil, err
		}
		qtypes[i] = qt
	}

	view := &QuizView{RevealAnswers: true}
	err := db.Within(dbc, qs.db, func(dbc dbctx.Context) error {
		c, err := qs.scope.contentCourse(dbc, in.ContentType, in.ContentID)
		if err != nil {
			return err
		}
		rd, err := requireOwner(dbc.Ctx, c.AuthorID, "course")
		if err != nil {
			return err
		}
		quiz := &types.Quiz{
			ContentType:        in.ContentType,
			ContentID:          in.ContentID,
			CourseID:           c.ID,
			Title:              title,
			Description:        in.Description,
			PassingScore:       passing,
			TimeLimitMinutes:   in.TimeLimitMinutes,
			RandomizeQuestions: in.RandomizeQuestions,
			ShowCorrectAnswers: in.ShowCorrectAnswers,
			CreatedBy:          rd.UserID,
		}
		if _, err := qs.quizRepo.Create(dbc, quiz); err != nil {
			return err
		}
		view.Quiz = quiz

		for i, qin := range in.Questions {
			qv, err := qs.createQuestion(dbc, quiz.ID, qtypes[i], qin)
			if err != nil {
				return err
			}
			view.Questions = append(view.Questions, *qv)
		}
		return nil
	})
	if err != nil {
		return nil, apierr.MapDB("create quiz", err)
	}
	qs.log.Info("Quiz created", "quiz_id", view.Quiz.ID, "questions", len(view.Questions))
	return view, nil
}

// createQuestion appends a validated question and its answers to a quiz.
func (qs *quizService) createQuestion(dbc dbctx.Context, quizID uuid.UUID, qt string, qin QuestionInput) (*QuestionView, error) {
	next, err := qs.orders.NextOrder(dbc, ordering.Questions, quizID)
	if err != nil {
		return nil, err
	}
	points := qin.Points
	if points == 0 {
		points = 1
	}
	question := &types.QuizQuestion{
		QuizID:       quizID,
		OrderIndex:   next,
		Text:         strings.TrimSpace(qin.Text),
		QuestionType: qt,
		Points:       points,
		Explanation:  qin.Explanation,
	}
	if _, err := qs.questionRepo.Create(dbc, []*types.QuizQuestion{question}); err != nil {
		return nil, err
	}
	base, err := qs.orders.NextOrder(dbc, ordering.Answers, question.ID)
	if err != nil {
		return nil, err
	}
	answers := make([]*types.QuizAnswer, 0, len(qin.Answers))
	for j, ain := range qin.Answers {
		answers = append(answers, &types.QuizAnswer{
			QuestionID: question.ID,
			OrderIndex: base + j,
			Text:       strings.TrimSpace(ain.Text),
			IsCorrect:  ain.IsCorrect,
		})
	}
	if _, err := qs.questionRepo.CreateAnswers(dbc, answers); err != nil {
		return nil, err
	}
	return &QuestionView{Question: question, Answers: answers}, nil
}

func (qs *quizService) loadQuiz(dbc dbctx.Context, quizID uuid.UUID) (*types.Quiz, *types.Course, error) {
	quiz, err := qs.quizRepo.GetByID(dbc, quizID)
	if err != nil {
		return nil, nil, apierr.MapDB("get quiz", err)
	}
	if quiz == nil {
		return nil, nil, apierr.NotFound("quiz %s", quizID)
	}
	c, err := qs.scope.course(dbc, quiz.CourseID)
	if err != nil {
		return nil, nil, apierr.MapDB("get quiz", err)
	}
	if !readable(dbc, c) {
		return nil, nil, apierr.NotFound("quiz %s", quizID)
	}
	return quiz, c, nil
}

func (qs *quizService) GetQuiz(dbc dbctx.Context, quizID uuid.UUID) (*QuizView, error) {
	quiz, c, err := qs.loadQuiz(dbc, quizID)
	if err != nil {
		return nil, err
	}
	questions, err := qs.questionRepo.ListByQuizID(dbc, quizID)
	if err != nil {
		return nil, apierr.MapDB("list questions", err)
	}
	ids := make([]uuid.UUID, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.ID)
	}
	answers, err := qs.questionRepo.ListAnswersByQuestionIDs(dbc, ids)
	if err != nil {
		return nil, apierr.MapDB("list answers", err)
	}
	byQuestion := map[uuid.UUID][]*types.QuizAnswer{}
	for _, a := range answers {
		byQuestion[a.QuestionID] = append(byQuestion[a.QuestionID], a)
	}

	manager := canManage(optionalUser(dbc.Ctx), c.AuthorID)
	view := &QuizView{Quiz: quiz, RevealAnswers: manager || quiz.ShowCorrectAnswers}
	for _, q := range questions {
		view.Questions = append(view.Questions, QuestionView{Question: q, Answers: byQuestion[q.ID]})
	}
	if quiz.RandomizeQuestions && !manager {
		rand.Shuffle(len(view.Questions), func(i, j int) {
			view.Questions[i], view.Questions[j] = view.Questions[j], view.Questions[i]
		})
	}
	return view, nil
}

func (qs *quizService) ListQuizzesForContent(dbc dbctx.Context, contentType string, contentID uuid.UUID) ([]*types.Quiz, error) {
	c, err := qs.scope.contentCourse(dbc, contentType, contentID)
	if err != nil {
		return nil, apierr.MapDB("list quizzes", err)
	}
	if !readable(dbc, c) {
		return nil, apierr.NotFound("%s %s", contentType, contentID)
	}
	out, err := qs.quizRepo.ListByContent(dbc, contentType, contentID)
	if err != nil {
		return nil, apierr.MapDB("list quizzes", err)
	}
	return out, nil
}

func (qs *quizService) DeleteQuiz(dbc dbctx.Context, quizID uuid.UUID) error {
	err := db.Within(dbc, qs.db, func(dbc dbctx.Context) error {
		_, c, err := qs.loadQuiz(dbc, quizID)
		if err != nil {
			return err
		}
		if _, err := requireOwner(dbc.Ctx, c.AuthorID, "quiz"); err != nil {
			return err
		}
		return qs.quizRepo.SoftDeleteByIDs(dbc, []uuid.UUID{quizID})
	})
	return apierr.MapDB("delete quiz", err)
}

// manageQuiz loads a quiz the caller may edit.
func (qs *quizService) manageQuiz(dbc dbctx.Context, quizID uuid.UUID) (*types.Quiz, error) {
	quiz, c, err := qs.loadQuiz(dbc, quizID)
	if err != nil {
		return nil, err
	}
	if _, err := requireOwner(dbc.Ctx, c.AuthorID, "quiz"); err != nil {
		return nil, err
	}
	return quiz, nil
}

func (qs *quizService) manageQuestion(dbc dbctx.Context, questionID uuid.UUID) (*types.QuizQuestion, error) {
	question, err := qs.questionRepo.GetByID(dbc, questionID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, apierr.NotFound("question %s", questionID)
	}
	if _, err := qs.manageQuiz(dbc, question.QuizID); err != nil {
		return nil, err
	}
	return question, nil
}

func (qs *quizService) manageAnswer(dbc dbctx.Context, answerID uuid.UUID) (*types.QuizAnswer, *types.QuizQuestion, error) {
	answer, err := qs.questionRepo.GetAnswerByID(dbc, answerID)
	if err != nil {
		return nil, nil, err
	}
	if answer == nil {
		return nil, nil, apierr.NotFound("answer %s", answerID)
	}
	question, err := qs.manageQuestion(dbc, answer.QuestionID)
	if err != nil {
		return nil, nil, err
	}
	return answer, question, nil
}

func (qs *quizService) answersOf(dbc dbctx.Context, questionID uuid.UUID) ([]*types.QuizAnswer, error) {
	return qs.questionRepo.ListAnswersByQuestionIDs(dbc, []uuid.UUID{questionID})
}

func (qs *quizService) UpdateQuiz(dbc dbctx.Context, quizID uuid.UUID, patch QuizPatch) (*types.Quiz, error) {
	fields := map[string]any{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, apierr.Invalid("title must not be empty")
		}
		fields["title"] = title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.PassingScore != nil {
		if *patch.PassingScore < 0 || *patch.PassingScore > 100 {
			return nil, apierr.Invalid("passing score must be within [0,100]")
		}
		fields["passing_score"] = *patch.PassingScore
	}
	if patch.TimeLimitMinutes != nil {
		if *patch.TimeLimitMinutes <= 0 {
			return nil, apierr.Invalid("time limit must be positive")
		}
		fields["time_limit_minutes"] = *patch.TimeLimitMinutes
	}
	if patch.RandomizeQuestions != nil {
		fields["randomize_questions"] = *patch.RandomizeQuestions
	}
	if patch.ShowCorrectAnswers != nil {
		fields["show_correct_answers"] = *patch.ShowCorrectAnswers
	}

	var out *types.Quiz
	err := db.Within(dbc, qs.db, func(dbc dbctx.Context) error {
		if _, err := qs.manageQuiz(dbc, quizID); err != nil {
			return err
		}
		if err := qs.quizRepo.UpdateFields(dbc, quizID, fields); err != nil {
			return err
		}
		var err error
		out, err = qs.quizRepo.GetByID(dbc, quizID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update quiz", err)
	}
	return out, nil
}

func (qs *quizService) AddQuestion(dbc dbctx.Context, quizID uuid.UUID, in QuestionInput) (*QuestionView, error) {
	qt, err := validateQuestion(0, in)
	if err != nil {
		return nil, err
	}
	var out *QuestionView
	err = db.Within(dbc, qs.db, func(dbc dbctx.Context) error {
		if _, err := qs.manageQuiz(dbc, quizID); err != nil {
			return err
		}
		out, err = qs.createQuestion(dbc, quizID, qt, in)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("add question", err)
	}
	return out, nil
}

func (qs *quizService) UpdateQuestion(dbc dbctx.Context, questionID uuid.UUID, patch QuestionPatch) (*types.QuizQuestion, error) {
	var out *types.QuizQuestion
	err := db.Within(dbc, qs.db, func(dbc dbctx.Context) error {
		question, err := qs.manageQuestion(dbc, questionID)
		if err != nil {
			return err
		}
		fields := map[string]any{}
		if patch.Text != nil {
			text := strings.TrimSpace(*patch.Text)
			if text == "" {
				return apierr.Invalid("question text must not be empty")
			}
			fields["text"] = text
		}
		if patch.QuestionType != nil {
			qt := strings.ToLower(strings.TrimSpace(*patch.QuestionType))
			if !quizdomain.ValidQuestionType(qt) {
				return apierr.Invalid("unknown question type %q", *patch.QuestionType)
			}
			answers, err := qs.answersOf(dbc, questionID)
			if err != nil {
				return err
			}
			if err := checkCorrect(qt, countCorrect(answers)); err != nil {
				return err
			}
			fields["question_type"] = qt
		}
		if patch.Points != nil {
			if *patch.Points < 0 {
				return apierr.Invalid("points must not be negative")
			}
			fields["points"] = *patch.Points
		}
		if patch.Explanation != nil {
			fields["explanation"] = *patch.Explanation
		}
		if err := qs.questionRepo.UpdateFields(dbc, question.ID, fields); err != nil {
			return err
		}
		out, err = qs.questionRepo.GetByID(dbc, question.ID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update question", err)
	}
	return out, nil
}

func (qs *quizService) ReorderQuestion(dbc dbctx.Context, questionID uuid.UUID, newOrder int) (*types.QuizQuestion, error) {
	var out *types.QuizQuestion
	err := db.Within(dbc, qs.db, func(dbc dbctx.Context) error {
		if _, err := qs.manageQuestion(dbc, questionID); err != nil {
			return err
		}
		if _, err := qs.orders.Reorder(dbc, ordering.Questions, questionID, newOrder); err != nil {
			return err
		}
		var err error
		out, err = qs.questionRepo.GetByID(dbc, questionID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("reorder question", err)
	}
	return out, nil
}

func (qs *quizService) DeleteQuestion(dbc dbctx.Context, questionID uuid.UUID) error {
	err := db.Within(dbc, qs.db, func(dbc dbctx.Context) error {
		question, err := qs.manageQuestion(dbc, questionID)
		if err != nil {
			return err
		}
		if err := qs.questionRepo.DeleteByIDs(dbc, []uuid.UUID{question.ID}); err != nil {
			return err
		}
		return qs.orders.Compact(dbc, ordering.Questions, question.QuizID, question.OrderIndex)
	})
	return apierr.MapDB("delete question", err)
}

func (qs *quizService) AddAnswer(dbc dbctx.Context, questionID uuid.UUID, in AnswerInput) (*types.QuizAnswer, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, apierr.Invalid("answer text is required")
	}
	var out *types.QuizAnswer
	err := db.Within(dbc, qs.db, func(dbc dbctx.Context) error {
		question, err := qs.manageQuestion(dbc, questionID)
		if err != nil {
			return err
		}
		if in.IsCorrect {
			answers, err := qs.answersOf(dbc, questionID)
			if err != nil {
				return err
			}
			if err := checkCorrect(question.QuestionType, countCorrect(answers)+1); err != nil {
				return err
			}
		}
		next, err := qs.orders.NextOrder(dbc, ordering.Answers, questionID)
		if err != nil {
			return err
		}
		out = &types.QuizAnswer{QuestionID: questionID, OrderIndex: next, Text: text, IsCorrect: in.IsCorrect}
		_, err = qs.questionRepo.CreateAnswers(dbc, []*types.QuizAnswer{out})
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("add answer", err)
	}
	return out, nil
}

func (qs *quizService) UpdateAnswer(dbc dbctx.Context, answerID uuid.UUID, patch AnswerPatch) (*types.QuizAnswer, error) {
	var out *types.QuizAnswer
	err := db.Within(dbc, qs.db, func(dbc dbctx.Context) error {
		answer, question, err := qs.manageAnswer(dbc, answerID)
		if err != nil {
			return err
		}
		fields := map[string]any{}
		if patch.Text != nil {
			text := strings.TrimSpace(*patch.Text)
			if text == "" {
				return apierr.Invalid("answer text must not be empty")
			}
			fields["text"] = text
		}
		if patch.IsCorrect != nil && *patch.IsCorrect != answer.IsCorrect {
			answers, err := qs.answersOf(dbc, question.ID)
			if err != nil {
				return err
			}
			correct := countCorrect(answers)
			if *patch.IsCorrect {
				correct++
			} else {
				correct--
			}
			if err := checkCorrect(question.QuestionType, correct); err != nil {
				return err
			}
			fields["is_correct"] = *patch.IsCorrect
		}
		if err := qs.questionRepo.UpdateAnswerFields(dbc, answerID, fields); err != nil {
			return err
		}
		out, err = qs.questionRepo.GetAnswerByID(dbc, answerID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update answer", err)
	}
	return out, nil
}

func (qs *quizService) DeleteAnswer(dbc dbctx.Context, answerID uuid.UUID) error {
	err := db.Within(dbc, qs.db, func(dbc dbctx.Context) error {
		answer, question, err := qs.manageAnswer(dbc, answerID)
		if err != nil {
			return err
		}
		answers, err := qs.answersOf(dbc, question.ID)
		if err != nil {
			return err
		}
		if len(answers) <= 1 {
			return apierr.Invalid("a question needs at least one answer")
		}
		if answer.IsCorrect {
			if err := checkCorrect(question.QuestionType, countCorrect(answers)-1); err != nil {
				return err
			}
		}
		if err := qs.questionRepo.DeleteAnswer(dbc, answer.ID); err != nil {
			return err
		}
		return qs.orders.Compact(dbc, ordering.Answers, question.ID, answer.OrderIndex)
	})
	return apierr.MapDB("delete answer", err)
}

func (qs *quizService) SubmitAttempt(dbc dbctx.Context, quizID uuid.UUID, in AttemptInput) (*types.UserQuizAttempt, error) {
	rd, err := currentUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	if in.Score < 0 || in.Score > 100 {
		return nil, apierr.Invalid("score must be within [0,100]")
	}
	if in.TimeTakenSeconds != nil && *in.TimeTakenSeconds < 0 {
		return nil, apierr.Invalid("time taken must not be negative")
	}
	answers := datatypes.JSON([]byte("[]"))
	if len(in.Answers) > 0 {
		if !json.Valid(in.Answers) {
			return nil, apierr.Invalid("answers must be valid JSON")
		}
		answers = datatypes.JSON(in.Answers)
	}

	var (
		attempt *types.UserQuizAttempt
		box     realtime.Outbox
	)
	err = db.Within(dbc, qs.db, func(dbc dbctx.Context) error {
		quiz, _, err := qs.loadQuiz(dbc, quizID)
		if err != nil {
			return err
		}
		passed := in.Score >= quiz.PassingScore
		if in.Passed != nil && *in.Passed != passed {
			return apierr.Invalid("passed=%t does not match score %.1f against passing score %.1f", *in.Passed, in.Score, quiz.PassingScore)
		}
		now := time.Now().UTC()
		attempt = &types.UserQuizAttempt{
			UserID:           rd.UserID,
			QuizID:           quizID,
			Score:            in.Score,
			Passed:           passed,
			TimeTakenSeconds: in.TimeTakenSeconds,
			Answers:          answers,
			CompletedAt:      &now,
		}
		if in.StartedAt != nil {
			attempt.StartedAt = in.StartedAt.UTC()
		}
		if _, err := qs.attemptRepo.Create(dbc, attempt); err != nil {
			return err
		}
		if !attempt.Passed {
			return nil
		}

		xp := qs.rewarder.Rule().QuizXP(quiz.PassingScore, attempt.Score, attempt.Passed)
		out, err := qs.rewarder.GrantXP(dbc, rd.UserID, xp)
		if err != nil {
			return err
		}
		if err := qs.attemptRepo.UpdateXPAwarded(dbc, attempt.ID, xp); err != nil {
			return err
		}
		attempt.XPAwarded = xp
		box.Add(realtime.Event{
			Event:  realtime.EventQuizPassed,
			UserID: rd.UserID,
			Data:   map[string]any{"quiz_id": quizID, "attempt_id": attempt.ID, "score": attempt.Score, "xp": xp},
		})
		addRewardEvents(&box, &out)
		return nil
	})
	if err != nil {
		return nil, apierr.MapDB("submit attempt", err)
	}
	publish(dbc.Ctx, qs.events, qs.log, &box)
	return attempt, nil
}

func (qs *quizService) ListMyAttempts(dbc dbctx.Context, quizID uuid.UUID) ([]*types.UserQuizAttempt, error) {
	rd, err := currentUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	out, err := qs.attemptRepo.ListByUserQuiz(dbc, rd.UserID, quizID)
	if err != nil {
		return nil, apierr.MapDB("list attempts", err)
	}
	return out, nil
}

func (qs *quizService) LatestAttempt(dbc dbctx.Context, quizID uuid.UUID) (*types.UserQuizAttempt, error) {
	return qs.oneAttempt(dbc, quizID, qs.attemptRepo.Latest)
}

func (qs *quizService) BestAttempt(dbc dbctx.Context, quizID uuid.UUID) (*types.UserQuizAttempt, error) {
	return qs.oneAttempt(dbc, quizID, qs.attemptRepo.Best)
}

func (qs *quizService) oneAttempt(
	dbc dbctx.Context,
	quizID uuid.UUID,
	get func(dbctx.Context, uuid.UUID, uuid.UUID) (*types.UserQuizAttempt, error),
) (*types.UserQuizAttempt, error) {
	rd, err := currentUser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	a, err := get(dbc, rd.UserID, quizID)
	if err != nil {
		return nil, apierr.MapDB("get attempt", err)
	}
	if a == nil {
		return nil, apierr.NotFound("no attempts for quiz %s", quizID)
	}
	return a, nil
}
