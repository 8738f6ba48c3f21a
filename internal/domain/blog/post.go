package blog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"not null;index;column:name" json:"name"`
	Slug        string    `gorm:"not null;uniqueIndex;column:slug" json:"slug"`
	Description string    `gorm:"column:description" json:"description"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (Category) TableName() string { return "category" }

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Post is a blog article. Summary, TableOfContents, Sections and Blocks are
// JSON arrays rendered by the client.
type Post struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string         `gorm:"not null;index;column:title" json:"title"`
	Slug            string         `gorm:"not null;uniqueIndex;column:slug" json:"slug"`
	Excerpt         string         `gorm:"column:excerpt" json:"excerpt"`
	Content         string         `gorm:"column:content" json:"content"`
	CoverImage      string         `gorm:"column:cover_image" json:"cover_image"`
	AuthorID        uuid.UUID      `gorm:"type:uuid;not null;index;column:author_id" json:"author_id"`
	CategoryID      *uuid.UUID     `gorm:"type:uuid;index;column:category_id" json:"category_id,omitempty"`
	ReadingTime     int            `gorm:"not null;default:0;column:reading_time" json:"reading_time"`
	Introduction    string         `gorm:"column:introduction" json:"introduction"`
	Summary         datatypes.JSON `gorm:"column:summary" json:"summary"`
	TableOfContents datatypes.JSON `gorm:"column:table_of_contents" json:"table_of_contents"`
	Sections        datatypes.JSON `gorm:"column:sections" json:"sections"`
	Blocks          datatypes.JSON `gorm:"column:blocks" json:"blocks"`
	PublishedAt     time.Time      `gorm:"not null;index;column:published_at" json:"published_at"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (Post) TableName() string { return "post" }

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.PublishedAt.IsZero() {
		p.PublishedAt = time.Now().UTC()
	}
	return nil
}
