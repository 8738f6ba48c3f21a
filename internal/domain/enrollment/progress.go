package enrollment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ContentModule = "module"
	ContentTopic  = "topic"
	ContentLesson = "lesson"
)

func ValidContentType(t string) bool {
	switch t {
	case ContentModule, ContentTopic, ContentLesson:
		return true
	}
	return false
}

// CourseProgress records completion of one content item within an enrollment.
type CourseProgress struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EnrollmentID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_key,priority:1;column:enrollment_id" json:"enrollment_id"`
	ContentType    string     `gorm:"not null;uniqueIndex:idx_progress_key,priority:2;column:content_type" json:"content_type"`
	ContentID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_key,priority:3;column:content_id" json:"content_id"`
	IsCompleted    bool       `gorm:"not null;column:is_completed" json:"is_completed"`
	CompletedAt    *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	LastAccessedAt *time.Time `gorm:"column:last_accessed_at" json:"last_accessed_at,omitempty"`
	CreatedAt      time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"not null" json:"updated_at"`
}

func (CourseProgress) TableName() string { return "course_progress" }

func (p *CourseProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
