package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultPassingScore = 70.0

const (
	QuestionSingle    = "single"
	QuestionMultiple  = "multiple"
	QuestionTrueFalse = "true_false"
)

// Quiz is attached to a piece of course content (usually a lesson).
type Quiz struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ContentType        string         `gorm:"not null;index:idx_quiz_content,priority:1;column:content_type" json:"content_type"`
	ContentID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_quiz_content,priority:2;column:content_id" json:"content_id"`
	CourseID           uuid.UUID      `gorm:"type:uuid;not null;index;column:course_id" json:"course_id"`
	Title              string         `gorm:"not null;column:title" json:"title"`
	Description        string         `gorm:"column:description" json:"description"`
	PassingScore       float64        `gorm:"not null;column:passing_score" json:"passing_score"`
	TimeLimitMinutes   *int           `gorm:"column:time_limit_minutes" json:"time_limit_minutes,omitempty"`
	RandomizeQuestions bool           `gorm:"not null;column:randomize_questions" json:"randomize_questions"`
	ShowCorrectAnswers bool           `gorm:"not null;column:show_correct_answers" json:"show_correct_answers"`
	CreatedBy          uuid.UUID      `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Quiz) TableName() string { return "quiz" }

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type QuizQuestion struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_quiz_question_order,priority:1;column:quiz_id" json:"quiz_id"`
	OrderIndex   int       `gorm:"not null;uniqueIndex:idx_quiz_question_order,priority:2;column:order_index" json:"order_index"`
	Text         string    `gorm:"not null;column:text" json:"text"`
	QuestionType string    `gorm:"not null;default:'single';column:question_type" json:"question_type"`
	Points       int       `gorm:"not null;default:1;column:points" json:"points"`
	Explanation  string    `gorm:"column:explanation" json:"explanation"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }

func (q *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

type QuizAnswer struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuestionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_quiz_answer_order,priority:1;column:question_id" json:"question_id"`
	OrderIndex int       `gorm:"not null;uniqueIndex:idx_quiz_answer_order,priority:2;column:order_index" json:"order_index"`
	Text       string    `gorm:"not null;column:text" json:"text"`
	IsCorrect  bool      `gorm:"not null;column:is_correct" json:"is_correct"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (QuizAnswer) TableName() string { return "quiz_answer" }

func (a *QuizAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func ValidQuestionType(t string) bool {
	switch t {
	case QuestionSingle, QuestionMultiple, QuestionTrueFalse:
		return true
	}
	return false
}

// UserQuizAttempt is one submitted attempt. Score is a percentage in [0,100].
type UserQuizAttempt struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_attempt_user_quiz,priority:1;column:user_id" json:"user_id"`
	QuizID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_attempt_user_quiz,priority:2;column:quiz_id" json:"quiz_id"`
	Score            float64        `gorm:"not null;column:score" json:"score"`
	Passed           bool           `gorm:"not null;column:passed" json:"passed"`
	TimeTakenSeconds *int           `gorm:"column:time_taken_seconds" json:"time_taken_seconds,omitempty"`
	Answers          datatypes.JSON `gorm:"column:answers" json:"answers"`
	XPAwarded        int            `gorm:"not null;default:0;column:xp_awarded" json:"xp_awarded"`
	StartedAt        time.Time      `gorm:"not null;column:started_at" json:"started_at"`
	CompletedAt      *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (UserQuizAttempt) TableName() string { return "user_quiz_attempt" }

func (a *UserQuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now().UTC()
	}
	return nil
}
