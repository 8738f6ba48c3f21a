package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CourseTopic struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_topic_order,priority:1;column:module_id" json:"module_id"`
	OrderIndex  int       `gorm:"not null;uniqueIndex:idx_course_topic_order,priority:2;column:order_index" json:"order_index"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	IsPublished bool      `gorm:"not null;column:is_published" json:"is_published"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (CourseTopic) TableName() string { return "course_topic" }

func (t *CourseTopic) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
