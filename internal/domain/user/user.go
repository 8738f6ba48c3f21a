package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string         `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Username       string         `gorm:"uniqueIndex;not null;column:username" json:"username"`
	FullName       string         `gorm:"column:full_name" json:"full_name"`
	IsActive       bool           `gorm:"not null;column:is_active" json:"is_active"`
	IsSuperuser    bool           `gorm:"not null;column:is_superuser" json:"is_superuser"`
	Experience     int            `gorm:"not null;default:0;column:experience" json:"experience"`
	TotalPoints    int            `gorm:"not null;default:0;column:total_points" json:"total_points"`
	Level          int            `gorm:"not null;default:1;column:level" json:"level"`
	Streak         int            `gorm:"not null;default:0;column:streak" json:"streak"`
	LongestStreak  int            `gorm:"not null;default:0;column:longest_streak" json:"longest_streak"`
	LastActivityAt *time.Time     `gorm:"column:last_activity_at" json:"last_activity_at,omitempty"`
	Preferences    datatypes.JSON `gorm:"column:preferences" json:"preferences"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Level < 1 {
		u.Level = 1
	}
	return nil
}
