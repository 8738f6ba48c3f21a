package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/http/response"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
	"github.com/yungbote/coursekit-backend/internal/services"
)

type QuizHandler struct {
	log         *logger.Logger
	quizService services.QuizService
}

func NewQuizHandler(log *logger.Logger, quizService services.QuizService) *QuizHandler {
	return &QuizHandler{log: log.With("handler", "QuizHandler"), quizService: quizService}
}

type answerRequest struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type questionRequest struct {
	Text         string          `json:"text"`
	QuestionType string          `json:"question_type"`
	Points       int             `json:"points"`
	Explanation  string          `json:"explanation"`
	Answers      []answerRequest `json:"answers"`
}

type quizRequest struct {
	ContentType        string            `json:"content_type" binding:"required"`
	ContentID          uuid.UUID         `json:"content_id" binding:"required"`
	Title              string            `json:"title" binding:"required"`
	Description        string            `json:"description"`
	PassingScore       *float64          `json:"passing_score"`
	TimeLimitMinutes   *int              `json:"time_limit_minutes"`
	RandomizeQuestions bool              `json:"randomize_questions"`
	ShowCorrectAnswers bool              `json:"show_correct_answers"`
	Questions          []questionRequest `json:"questions"`
}

func (q questionRequest) input() services.QuestionInput {
	qi := services.QuestionInput{
		Text:         q.Text,
		QuestionType: q.QuestionType,
		Points:       q.Points,
		Explanation:  q.Explanation,
		Answers:      make([]services.AnswerInput, 0, len(q.Answers)),
	}
	for _, a := range q.Answers {
		qi.Answers = append(qi.Answers, services.AnswerInput(a))
	}
	return qi
}

type quizPatchRequest struct {
	Title              *string  `json:"title"`
	Description        *string  `json:"description"`
	PassingScore       *float64 `json:"passing_score"`
	TimeLimitMinutes   *int     `json:"time_limit_minutes"`
	RandomizeQuestions *bool    `json:"randomize_questions"`
	ShowCorrectAnswers *bool    `json:"show_correct_answers"`
}

type questionPatchRequest struct {
	Text         *string `json:"text"`
	QuestionType *string `json:"question_type"`
	Points       *int    `json:"points"`
	Explanation  *string `json:"explanation"`
}

type answerPatchRequest struct {
	Text      *string `json:"text"`
	IsCorrect *bool   `json:"is_correct"`
}

type attemptRequest struct {
	Score            *float64        `json:"score" binding:"required"`
	Passed           *bool           `json:"passed"`
	TimeTakenSeconds *int            `json:"time_taken_seconds"`
	Answers          json.RawMessage `json:"answers"`
	StartedAt        *time.Time      `json:"started_at"`
}

type answerView struct {
	ID         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	OrderIndex int       `json:"order_index"`
	IsCorrect  *bool     `json:"is_correct,omitempty"`
}

type questionView struct {
	ID           uuid.UUID    `json:"id"`
	Text         string       `json:"text"`
	QuestionType string       `json:"question_type"`
	Points       int          `json:"points"`
	Explanation  string       `json:"explanation,omitempty"`
	OrderIndex   int          `json:"order_index"`
	Answers      []answerView `json:"answers"`
}

type quizView struct {
	Quiz      *types.Quiz    `json:"quiz"`
	Questions []questionView `json:"questions"`
}

// toQuizView drops correct flags and explanations unless the view may reveal them.
func toQuizView(v *services.QuizView) quizView {
	out := quizView{Quiz: v.Quiz, Questions: make([]questionView, 0, len(v.Questions))}
	for _, q := range v.Questions {
		qv := questionView{
			ID:           q.Question.ID,
			Text:         q.Question.Text,
			QuestionType: q.Question.QuestionType,
			Points:       q.Question.Points,
			OrderIndex:   q.Question.OrderIndex,
			Answers:      make([]answerView, 0, len(q.Answers)),
		}
		if v.RevealAnswers {
			qv.Explanation = q.Question.Explanation
		}
		for _, a := range q.Answers {
			av := answerView{ID: a.ID, Text: a.Text, OrderIndex: a.OrderIndex}
			if v.RevealAnswers {
				correct := a.IsCorrect
				av.IsCorrect = &correct
			}
			qv.Answers = append(qv.Answers, av)
		}
		out.Questions = append(out.Questions, qv)
	}
	return out
}

// POST /quizzes
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req quizRequest
	if !bindJSON(c, &req) {
		return
	}
	in := services.QuizInput{
		ContentType:        req.ContentType,
		ContentID:          req.ContentID,
		Title:              req.Title,
		Description:        req.Description,
		PassingScore:       req.PassingScore,
		TimeLimitMinutes:   req.TimeLimitMinutes,
		RandomizeQuestions: req.RandomizeQuestions,
		ShowCorrectAnswers: req.ShowCorrectAnswers,
		Questions:          make([]services.QuestionInput, 0, len(req.Questions)),
	}
	for _, q := range req.Questions {
		in.Questions = append(in.Questions, q.input())
	}
	view, err := h.quizService.CreateQuiz(dbcOf(c), in)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, toQuizView(view))
}

// GET /quizzes/:id
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.quizService.GetQuiz(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, toQuizView(view))
}

// GET /quizzes?content_type=lesson&content_id=...
func (h *QuizHandler) ListQuizzesForContent(c *gin.Context) {
	contentID, err := uuid.Parse(c.Query("content_id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	quizzes, err := h.quizService.ListQuizzesForContent(dbcOf(c), c.Query("content_type"), contentID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quizzes": quizzes})
}

// PATCH /quizzes/:id
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req quizPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	quiz, err := h.quizService.UpdateQuiz(dbcOf(c), id, services.QuizPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quiz": quiz})
}

// DELETE /quizzes/:id
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.quizService.DeleteQuiz(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /quizzes/:id/attempts
func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req attemptRequest
	if !bindJSON(c, &req) {
		return
	}
	attempt, err := h.quizService.SubmitAttempt(dbcOf(c), id, services.AttemptInput{
		Score:            *req.Score,
		Passed:           req.Passed,
		TimeTakenSeconds: req.TimeTakenSeconds,
		Answers:          req.Answers,
		StartedAt:        req.StartedAt,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"attempt": attempt})
}

// GET /quizzes/:id/attempts
func (h *QuizHandler) ListMyAttempts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	rows, err := h.quizService.ListMyAttempts(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempts": rows})
}

// GET /quizzes/:id/attempts/latest
func (h *QuizHandler) LatestAttempt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.quizService.LatestAttempt(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempt": a})
}

// GET /quizzes/:id/attempts/best
func (h *QuizHandler) BestAttempt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	a, err := h.quizService.BestAttempt(dbcOf(c), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attempt": a})
}

// POST /quizzes/:id/questions
func (h *QuizHandler) AddQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req questionRequest
	if !bindJSON(c, &req) {
		return
	}
	qv, err := h.quizService.AddQuestion(dbcOf(c), id, req.input())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"question": qv.Question, "answers": qv.Answers})
}

// PATCH /questions/:id
func (h *QuizHandler) UpdateQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req questionPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.quizService.UpdateQuestion(dbcOf(c), id, services.QuestionPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"question": q})
}

// POST /questions/:id/reorder
func (h *QuizHandler) ReorderQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req reorderRequest
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.quizService.ReorderQuestion(dbcOf(c), id, *req.NewOrder)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"question": q})
}

// DELETE /questions/:id
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.quizService.DeleteQuestion(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /questions/:id/answers
func (h *QuizHandler) AddAnswer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req answerRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.quizService.AddAnswer(dbcOf(c), id, services.AnswerInput(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"answer": a})
}

// PATCH /answers/:id
func (h *QuizHandler) UpdateAnswer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req answerPatchRequest
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.quizService.UpdateAnswer(dbcOf(c), id, services.AnswerPatch(req))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"answer": a})
}

// DELETE /answers/:id
func (h *QuizHandler) DeleteAnswer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.quizService.DeleteAnswer(dbcOf(c), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
