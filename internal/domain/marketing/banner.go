package marketing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatImpression = "impression"
	StatClick      = "click"
	StatDismissal  = "dismissal"
	StatConversion = "conversion"
)

// StatColumn maps a tracked stat to its counter column.
func StatColumn(stat string) (string, bool) {
	switch stat {
	case StatImpression:
		return "impressions", true
	case StatClick:
		return "clicks", true
	case StatDismissal:
		return "dismissals", true
	case StatConversion:
		return "conversions", true
	}
	return "", false
}

type MarketingBanner struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string         `gorm:"not null;column:title" json:"title"`
	Message         string         `gorm:"not null;column:message" json:"message"`
	CTAText         string         `gorm:"column:cta_text" json:"cta_text"`
	CTAURL          string         `gorm:"column:cta_url" json:"cta_url"`
	BannerType      string         `gorm:"not null;default:'info';column:banner_type" json:"banner_type"`
	StartDate       *time.Time     `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate         *time.Time     `gorm:"column:end_date" json:"end_date,omitempty"`
	IsActive        bool           `gorm:"not null;index;column:is_active" json:"is_active"`
	ShowToLoggedIn  bool           `gorm:"not null;column:show_to_logged_in" json:"show_to_logged_in"`
	ShowToAnonymous bool           `gorm:"not null;column:show_to_anonymous" json:"show_to_anonymous"`
	ShowOnPages     datatypes.JSON `gorm:"column:show_on_pages" json:"show_on_pages"`
	Priority        int            `gorm:"not null;default:0;column:priority" json:"priority"`
	Impressions     int64          `gorm:"not null;default:0;column:impressions" json:"impressions"`
	Clicks          int64          `gorm:"not null;default:0;column:clicks" json:"clicks"`
	Dismissals      int64          `gorm:"not null;default:0;column:dismissals" json:"dismissals"`
	Conversions     int64          `gorm:"not null;default:0;column:conversions" json:"conversions"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (MarketingBanner) TableName() string { return "marketing_banner" }

func (b *MarketingBanner) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
