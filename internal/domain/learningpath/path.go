package learningpath

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LearningPath struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string         `gorm:"not null;column:title" json:"title"`
	Slug             string         `gorm:"not null;uniqueIndex;column:slug" json:"slug"`
	Description      string         `gorm:"column:description" json:"description"`
	LongDescription  string         `gorm:"column:long_description" json:"long_description"`
	CoverImage       string         `gorm:"column:cover_image" json:"cover_image"`
	Difficulty       string         `gorm:"not null;default:'beginner';column:difficulty" json:"difficulty"`
	EstimatedHours   int            `gorm:"not null;default:0;column:estimated_hours" json:"estimated_hours"`
	Tags             datatypes.JSON `gorm:"column:tags" json:"tags"`
	LearningOutcomes datatypes.JSON `gorm:"column:learning_outcomes" json:"learning_outcomes"`
	Prerequisites    datatypes.JSON `gorm:"column:prerequisites" json:"prerequisites"`
	IsPublished      bool           `gorm:"not null;index;column:is_published" json:"is_published"`
	IsFeatured       bool           `gorm:"not null;default:false;index;column:is_featured" json:"is_featured"`
	CreatedBy        uuid.UUID      `gorm:"type:uuid;not null;column:created_by" json:"created_by"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (LearningPath) TableName() string { return "learning_path" }

func (p *LearningPath) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CourseLearningPath places a course at a position inside a learning path.
type CourseLearningPath struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearningPathID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_path_course_order,priority:1;uniqueIndex:idx_path_course,priority:1;column:learning_path_id" json:"learning_path_id"`
	CourseID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_path_course,priority:2;index;column:course_id" json:"course_id"`
	OrderIndex     int       `gorm:"not null;uniqueIndex:idx_path_course_order,priority:2;column:order_index" json:"order_index"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (CourseLearningPath) TableName() string { return "course_learning_path" }

func (cl *CourseLearningPath) BeforeCreate(tx *gorm.DB) error {
	if cl.ID == uuid.Nil {
		cl.ID = uuid.New()
	}
	return nil
}
