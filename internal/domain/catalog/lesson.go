package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LessonTypeText  = "text"
	LessonTypeVideo = "video"
	LessonTypeQuiz  = "quiz"
)

// TopicLesson is a leaf of the content tree; progress is measured in lessons.
type TopicLesson struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TopicID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_topic_lesson_order,priority:1;column:topic_id" json:"topic_id"`
	OrderIndex      int       `gorm:"not null;uniqueIndex:idx_topic_lesson_order,priority:2;column:order_index" json:"order_index"`
	Title           string    `gorm:"not null;column:title" json:"title"`
	Content         string    `gorm:"column:content" json:"content"`
	LessonType      string    `gorm:"not null;default:'text';column:lesson_type" json:"lesson_type"`
	MediaURL        string    `gorm:"column:media_url" json:"media_url"`
	DurationMinutes int       `gorm:"not null;default:0;column:duration_minutes" json:"duration_minutes"`
	IsPublished     bool      `gorm:"not null;column:is_published" json:"is_published"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (TopicLesson) TableName() string { return "topic_lesson" }

func (l *TopicLesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

func ValidLessonType(t string) bool {
	switch t {
	case LessonTypeText, LessonTypeVideo, LessonTypeQuiz:
		return true
	}
	return false
}
