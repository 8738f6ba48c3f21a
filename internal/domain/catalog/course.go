package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

type Course struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string         `gorm:"not null;column:title" json:"title"`
	Slug             string         `gorm:"not null;uniqueIndex;column:slug" json:"slug"`
	Description      string         `gorm:"column:description" json:"description"`
	ShortDescription string         `gorm:"column:short_description" json:"short_description"`
	Level            string         `gorm:"not null;default:'beginner';index;column:level" json:"level"`
	Price            float64        `gorm:"not null;default:0;column:price" json:"price"`
	IsPublished      bool           `gorm:"not null;index;column:is_published" json:"is_published"`
	IsFeatured       bool           `gorm:"not null;column:is_featured" json:"is_featured"`
	AuthorID         uuid.UUID      `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	Tags             datatypes.JSON `gorm:"column:tags" json:"tags"`
	LearningOutcomes datatypes.JSON `gorm:"column:learning_outcomes" json:"learning_outcomes"`
	Prerequisites    datatypes.JSON `gorm:"column:prerequisites" json:"prerequisites"`
	PublishedAt      *time.Time     `gorm:"column:published_at" json:"published_at,omitempty"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Course) TableName() string { return "course" }

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func ValidLevel(level string) bool {
	switch level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}
