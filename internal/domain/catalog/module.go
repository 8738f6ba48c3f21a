package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseModule is the first level of a course's content tree.
// OrderIndex is dense and unique within CourseID.
type CourseModule struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_module_order,priority:1;column:course_id" json:"course_id"`
	OrderIndex    int       `gorm:"not null;uniqueIndex:idx_course_module_order,priority:2;column:order_index" json:"order_index"`
	Title         string    `gorm:"not null;column:title" json:"title"`
	Description   string    `gorm:"column:description" json:"description"`
	IsPublished   bool      `gorm:"not null;column:is_published" json:"is_published"`
	IsFreePreview bool      `gorm:"not null;column:is_free_preview" json:"is_free_preview"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (CourseModule) TableName() string { return "course_module" }

func (m *CourseModule) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
