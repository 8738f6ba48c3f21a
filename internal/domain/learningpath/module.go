package learningpath

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ItemArticle = "article"
	ItemSeries  = "series"
	ItemBooklet = "booklet"
)

func ValidItemType(t string) bool {
	switch t {
	case ItemArticle, ItemSeries, ItemBooklet:
		return true
	}
	return false
}

const (
	ResourceDocumentation = "documentation"
	ResourceGithub        = "github"
	ResourceVideo         = "video"
	ResourceArticle       = "article"
	ResourceOther         = "other"
)

func ValidResourceType(t string) bool {
	switch t {
	case ResourceDocumentation, ResourceGithub, ResourceVideo, ResourceArticle, ResourceOther:
		return true
	}
	return false
}

// LearningPathModule is one ordered stage of a learning path.
type LearningPathModule struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearningPathID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_path_module_order,priority:1;column:learning_path_id" json:"learning_path_id"`
	OrderIndex     int       `gorm:"not null;uniqueIndex:idx_path_module_order,priority:2;column:order_index" json:"order_index"`
	Title          string    `gorm:"not null;column:title" json:"title"`
	Description    string    `gorm:"column:description" json:"description"`
	EstimatedTime  string    `gorm:"column:estimated_time" json:"estimated_time"`
	IsPremium      bool      `gorm:"not null;default:false;column:is_premium" json:"is_premium"`
	IsUnlocked     bool      `gorm:"not null;default:false;column:is_unlocked" json:"is_unlocked"`
	StartURL       string    `gorm:"column:start_url" json:"start_url"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (LearningPathModule) TableName() string { return "learning_path_module" }

func (m *LearningPathModule) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// LearningPathItem points a module at an article, series or booklet.
type LearningPathItem struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ModuleID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_path_item_order,priority:1;column:module_id" json:"module_id"`
	OrderIndex int       `gorm:"not null;uniqueIndex:idx_path_item_order,priority:2;column:order_index" json:"order_index"`
	Title      string    `gorm:"not null;column:title" json:"title"`
	ItemType   string    `gorm:"not null;default:'article';column:item_type" json:"item_type"`
	URL        string    `gorm:"column:url" json:"url"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (LearningPathItem) TableName() string { return "learning_path_item" }

func (i *LearningPathItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

type LearningPathResource struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	LearningPathID uuid.UUID `gorm:"type:uuid;not null;index;column:learning_path_id" json:"learning_path_id"`
	Title          string    `gorm:"not null;column:title" json:"title"`
	Description    string    `gorm:"column:description" json:"description"`
	ResourceType   string    `gorm:"not null;default:'other';column:resource_type" json:"resource_type"`
	URL            string    `gorm:"column:url" json:"url"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (LearningPathResource) TableName() string { return "learning_path_resource" }

func (r *LearningPathResource) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
