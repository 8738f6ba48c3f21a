package gamification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	EarnedByLevelUp         = "level_up"
	EarnedByPointsMilestone = "points_milestone"
	EarnedByManual          = "manual"
)

// AwardRequirements is the JSON shape stored in Award.Requirements.
type AwardRequirements struct {
	MinLevel  *int `json:"min_level,omitempty"`
	MinPoints *int `json:"min_points,omitempty"`
}

type Award struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string         `gorm:"not null;uniqueIndex;column:name" json:"name"`
	Description  string         `gorm:"column:description" json:"description"`
	Icon         string         `gorm:"column:icon" json:"icon"`
	Category     string         `gorm:"not null;default:'general';index;column:category" json:"category"`
	Points       int            `gorm:"not null;default:0;column:points" json:"points"`
	Requirements datatypes.JSON `gorm:"column:requirements" json:"requirements"`
	IsActive     bool           `gorm:"not null;column:is_active" json:"is_active"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (Award) TableName() string { return "award" }

func (a *Award) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type UserAward struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_award,priority:1;column:user_id" json:"user_id"`
	AwardID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_award,priority:2;column:award_id" json:"award_id"`
	EarnedAt  time.Time      `gorm:"not null;column:earned_at" json:"earned_at"`
	Progress  float64        `gorm:"not null;default:100;column:progress" json:"progress"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (UserAward) TableName() string { return "user_award" }

func (ua *UserAward) BeforeCreate(tx *gorm.DB) error {
	if ua.ID == uuid.Nil {
		ua.ID = uuid.New()
	}
	if ua.EarnedAt.IsZero() {
		ua.EarnedAt = time.Now().UTC()
	}
	return nil
}
