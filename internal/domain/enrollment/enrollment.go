package enrollment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseEnrollment joins one user to one course and carries aggregate progress.
type CourseEnrollment struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course,priority:1;column:user_id" json:"user_id"`
	CourseID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_enrollment_user_course,priority:2;index;column:course_id" json:"course_id"`
	EnrolledAt         time.Time  `gorm:"not null;column:enrolled_at" json:"enrolled_at"`
	IsCompleted        bool       `gorm:"not null;column:is_completed" json:"is_completed"`
	CompletedAt        *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	ProgressPercentage float64    `gorm:"not null;default:0;column:progress_percentage" json:"progress_percentage"`
	LastAccessedAt     *time.Time `gorm:"column:last_accessed_at" json:"last_accessed_at,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"not null" json:"updated_at"`
}

func (CourseEnrollment) TableName() string { return "course_enrollment" }

func (e *CourseEnrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now().UTC()
	}
	return nil
}
