package marketing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PrelaunchCampaign is a landing page that collects subscribers ahead of a
// course launch. Prices are in cents.
type PrelaunchCampaign struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title                 string     `gorm:"not null;column:title" json:"title"`
	Slug                  string     `gorm:"not null;uniqueIndex;column:slug" json:"slug"`
	Description           string     `gorm:"column:description" json:"description"`
	StartDate             *time.Time `gorm:"column:start_date" json:"start_date,omitempty"`
	EndDate               *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`
	IsActive              bool       `gorm:"not null;index;column:is_active" json:"is_active"`
	LeadMagnetTitle       string     `gorm:"column:lead_magnet_title" json:"lead_magnet_title"`
	LeadMagnetDescription string     `gorm:"column:lead_magnet_description" json:"lead_magnet_description"`
	LeadMagnetFileURL     string     `gorm:"column:lead_magnet_file_url" json:"lead_magnet_file_url"`
	HeaderImageURL        string     `gorm:"column:header_image_url" json:"header_image_url"`
	Content               string     `gorm:"column:content" json:"content"`
	CTAText               string     `gorm:"column:cta_text" json:"cta_text"`
	CTAURL                string     `gorm:"column:cta_url" json:"cta_url"`
	EarlyBirdPrice        *int       `gorm:"column:early_bird_price" json:"early_bird_price,omitempty"`
	RegularPrice          *int       `gorm:"column:regular_price" json:"regular_price,omitempty"`
	MaxEnrollments        *int       `gorm:"column:max_enrollments" json:"max_enrollments,omitempty"`
	ViewCount             int64      `gorm:"not null;default:0;column:view_count" json:"view_count"`
	SignupCount           int64      `gorm:"not null;default:0;column:signup_count" json:"signup_count"`
	// ConversionRate is signups per hundred views, truncated.
	ConversionRate int64     `gorm:"not null;default:0;column:conversion_rate" json:"conversion_rate"`
	CreatedBy      uuid.UUID `gorm:"type:uuid;column:created_by" json:"created_by"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (PrelaunchCampaign) TableName() string { return "prelaunch_campaign" }

func (c *PrelaunchCampaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type PrelaunchCampaignCourse struct {
	CampaignID uuid.UUID `gorm:"type:uuid;primaryKey;column:campaign_id" json:"campaign_id"`
	CourseID   uuid.UUID `gorm:"type:uuid;primaryKey;index;column:course_id" json:"course_id"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (PrelaunchCampaignCourse) TableName() string { return "prelaunch_campaign_course" }

type PrelaunchSubscriber struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CampaignID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_campaign_email,priority:1;column:campaign_id" json:"campaign_id"`
	Email            string         `gorm:"not null;uniqueIndex:idx_subscriber_campaign_email,priority:2;column:email" json:"email"`
	Name             string         `gorm:"column:name" json:"name"`
	UserID           *uuid.UUID     `gorm:"type:uuid;index;column:user_id" json:"user_id,omitempty"`
	IsActive         bool           `gorm:"not null;column:is_active" json:"is_active"`
	SubscribedAt     time.Time      `gorm:"not null;column:subscribed_at" json:"subscribed_at"`
	UnsubscribedAt   *time.Time     `gorm:"column:unsubscribed_at" json:"unsubscribed_at,omitempty"`
	LeadMagnetSent   bool           `gorm:"not null;default:false;column:lead_magnet_sent" json:"lead_magnet_sent"`
	LeadMagnetSentAt *time.Time     `gorm:"column:lead_magnet_sent_at" json:"lead_magnet_sent_at,omitempty"`
	Source           string         `gorm:"column:source" json:"source"`
	IPAddress        string         `gorm:"column:ip_address" json:"ip_address"`
	UserAgent        string         `gorm:"column:user_agent" json:"user_agent"`
	Referrer         string         `gorm:"column:referrer" json:"referrer"`
	CustomFields     datatypes.JSON `gorm:"column:custom_fields" json:"custom_fields"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (PrelaunchSubscriber) TableName() string { return "prelaunch_subscriber" }

func (s *PrelaunchSubscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SubscribedAt.IsZero() {
		s.SubscribedAt = time.Now().UTC()
	}
	return nil
}

type PrelaunchEmailSequence struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CampaignID  uuid.UUID `gorm:"type:uuid;not null;index;column:campaign_id" json:"campaign_id"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	IsActive    bool      `gorm:"not null;column:is_active" json:"is_active"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (PrelaunchEmailSequence) TableName() string { return "prelaunch_email_sequence" }

func (s *PrelaunchEmailSequence) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// PrelaunchEmail is sent DelayDays after a subscriber joins.
type PrelaunchEmail struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SequenceID uuid.UUID `gorm:"type:uuid;not null;index;column:sequence_id" json:"sequence_id"`
	Subject    string    `gorm:"not null;column:subject" json:"subject"`
	Body       string    `gorm:"not null;column:body" json:"body"`
	DelayDays  int       `gorm:"not null;default:0;column:delay_days" json:"delay_days"`
	IsActive   bool      `gorm:"not null;column:is_active" json:"is_active"`
	SentCount  int64     `gorm:"not null;default:0;column:sent_count" json:"sent_count"`
	OpenCount  int64     `gorm:"not null;default:0;column:open_count" json:"open_count"`
	ClickCount int64     `gorm:"not null;default:0;column:click_count" json:"click_count"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (PrelaunchEmail) TableName() string { return "prelaunch_email" }

func (e *PrelaunchEmail) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
