package services

import (
	"encoding/json"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type CampaignInput struct {
	Title                 string
	Slug                  string
	Description           string
	StartDate             *time.Time
	EndDate               *time.Time
	IsActive              bool
	LeadMagnetTitle       string
	LeadMagnetDescription string
	LeadMagnetFileURL     string
	HeaderImageURL        string
	Content               string
	CTAText               string
	CTAURL                string
	EarlyBirdPrice        *int
	RegularPrice          *int
	MaxEnrollments        *int
}

type CampaignPatch struct {
	Title                 *string
	Slug                  *string
	Description           *string
	StartDate             *time.Time
	EndDate               *time.Time
	IsActive              *bool
	LeadMagnetTitle       *string
	LeadMagnetDescription *string
	LeadMagnetFileURL     *string
	HeaderImageURL        *string
	Content               *string
	CTAText               *string
	CTAURL                *string
	EarlyBirdPrice        *int
	RegularPrice          *int
	MaxEnrollments        *int
}

type SubscribeInput struct {
	CampaignID   uuid.UUID
	Email        string
	Name         string
	Source       string
	Referrer     string
	CustomFields map[string]any
	IPAddress    string
	UserAgent    string
}

type CampaignView struct {
	Campaign        *types.PrelaunchCampaign
	Courses         []*types.Course
	Sequences       []*types.PrelaunchEmailSequence
	SubscriberCount int64
}

type PrelaunchService interface {
	CreateCampaign(dbc dbctx.Context, in CampaignInput) (*types.PrelaunchCampaign, error)
	// ListCampaigns lists every campaign, or only those running now.
	ListCampaigns(dbc dbctx.Context, activeOnly bool, offset, limit int) ([]*types.PrelaunchCampaign, error)
	// GetCampaign loads a campaign with its courses and sequences. Callers
	// other than superusers only see active campaigns, and each such read
	// counts as a view.
	GetCampaign(dbc dbctx.Context, campaignID uuid.UUID) (*CampaignView, error)
	GetCampaignBySlug(dbc dbctx.Context, slug string) (*CampaignView, error)
	UpdateCampaign(dbc dbctx.Context, campaignID uuid.UUID, patch CampaignPatch) (*types.PrelaunchCampaign, error)
	// DeleteCampaign refuses campaigns that have subscribers.
	DeleteCampaign(dbc dbctx.Context, campaignID uuid.UUID) error
	AddCourse(dbc dbctx.Context, campaignID, courseID uuid.UUID) error
	RemoveCourse(dbc dbctx.Context, campaignID, courseID uuid.UUID) error
	CampaignsForCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.PrelaunchCampaign, error)
	RecordCampaignStats(dbc dbctx.Context, campaignID uuid.UUID, views, signups int64) (*types.PrelaunchCampaign, error)

	// Subscribe is idempotent per campaign and email; an unsubscribed
	// address is reactivated.
	Subscribe(dbc dbctx.Context, in SubscribeInput) (*types.PrelaunchSubscriber, error)
	Unsubscribe(dbc dbctx.Context, campaignID uuid.UUID, email string) (*types.PrelaunchSubscriber, error)
	ListSubscribers(dbc dbctx.Context, campaignID uuid.UUID, f repos.SubscriberFilter) ([]*types.PrelaunchSubscriber, int64, error)
	MarkLeadMagnetSent(dbc dbctx.Context, subscriberID uuid.UUID) (*types.PrelaunchSubscriber, error)

	CreateSequence(dbc dbctx.Context, campaignID uuid.UUID, in SequenceInput) (*types.PrelaunchEmailSequence, error)
	ListSequences(dbc dbctx.Context, campaignID uuid.UUID) ([]*types.PrelaunchEmailSequence, error)
	GetSequence(dbc dbctx.Context, sequenceID uuid.UUID) (*SequenceView, error)
	UpdateSequence(dbc dbctx.Context, sequenceID uuid.UUID, patch SequencePatch) (*types.PrelaunchEmailSequence, error)
	// DeleteSequence refuses sequences that still hold emails.
	DeleteSequence(dbc dbctx.Context, sequenceID uuid.UUID) error
	CreateEmail(dbc dbctx.Context, sequenceID uuid.UUID, in EmailInput) (*types.PrelaunchEmail, error)
	ListEmails(dbc dbctx.Context, sequenceID uuid.UUID) ([]*types.PrelaunchEmail, error)
	GetEmail(dbc dbctx.Context, emailID uuid.UUID) (*types.PrelaunchEmail, error)
	UpdateEmail(dbc dbctx.Context, emailID uuid.UUID, patch EmailPatch) (*types.PrelaunchEmail, error)
	DeleteEmail(dbc dbctx.Context, emailID uuid.UUID) error
	RecordEmailStats(dbc dbctx.Context, emailID uuid.UUID, sent, opened, clicked int64) (*types.PrelaunchEmail, error)
}

type prelaunchService struct {
	db             *gorm.DB
	log            *logger.Logger
	campaignRepo   repos.PrelaunchCampaignRepo
	subscriberRepo repos.PrelaunchSubscriberRepo
	sequenceRepo   repos.PrelaunchSequenceRepo
	courseRepo     repos.CourseRepo
	now            func() time.Time
}

func NewPrelaunchService(
	db *gorm.DB,
	baseLog *logger.Logger,
	campaignRepo repos.PrelaunchCampaignRepo,
	subscriberRepo repos.PrelaunchSubscriberRepo,
	sequenceRepo repos.PrelaunchSequenceRepo,
	courseRepo repos.CourseRepo,
) PrelaunchService {
	return &prelaunchService{
		db:             db,
		log:            baseLog.With("service", "PrelaunchService"),
		campaignRepo:   campaignRepo,
		subscriberRepo: subscriberRepo,
		sequenceRepo:   sequenceRepo,
		courseRepo:     courseRepo,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

func checkAmounts(prices map[string]*int) error {
	for name, v := range prices {
		if v != nil && *v < 0 {
			return apierr.Invalid("%s must not be negative", name)
		}
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", apierr.Invalid("invalid email %q", raw)
	}
	return strings.ToLower(addr.Address), nil
}

func (ps *prelaunchService) CreateCampaign(dbc dbctx.Context, in CampaignInput) (*types.PrelaunchCampaign, error) {
	rd, err := requireSuperuser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Invalid("title is required")
	}
	slug, err := slugOrTitle(in.Slug, title)
	if err != nil {
		return nil, err
	}
	if err := checkWindow(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	if err := checkAmounts(map[string]*int{
		"early bird price": in.EarlyBirdPrice,
		"regular price":    in.RegularPrice,
		"max enrollments":  in.MaxEnrollments,
	}); err != nil {
		return nil, err
	}
	c := &types.PrelaunchCampaign{
		Title:                 title,
		Slug:                  slug,
		Description:           in.Description,
		StartDate:             in.StartDate,
		EndDate:               in.EndDate,
		IsActive:              in.IsActive,
		LeadMagnetTitle:       in.LeadMagnetTitle,
		LeadMagnetDescription: in.LeadMagnetDescription,
		LeadMagnetFileURL:     in.LeadMagnetFileURL,
		HeaderImageURL:        in.HeaderImageURL,
		Content:               in.Content,
		CTAText:               in.CTAText,
		CTAURL:                in.CTAURL,
		EarlyBirdPrice:        in.EarlyBirdPrice,
		RegularPrice:          in.RegularPrice,
		MaxEnrollments:        in.MaxEnrollments,
		CreatedBy:             rd.UserID,
	}
	if _, err := ps.campaignRepo.Create(dbc, c); err != nil {
		return nil, apierr.MapDB("create campaign", err)
	}
	ps.log.Info("Prelaunch campaign created", "campaign_id", c.ID, "slug", slug)
	return c, nil
}

func (ps *prelaunchService) ListCampaigns(dbc dbctx.Context, activeOnly bool, offset, limit int) ([]*types.PrelaunchCampaign, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	f := repos.CampaignFilter{Offset: offset, Limit: limit}
	if activeOnly {
		now := ps.now()
		f.ActiveAt = &now
	}
	out, err := ps.campaignRepo.List(dbc, f)
	if err != nil {
		return nil, apierr.MapDB("list campaigns", err)
	}
	return out, nil
}

func (ps *prelaunchService) GetCampaign(dbc dbctx.Context, campaignID uuid.UUID) (*CampaignView, error) {
	c, err := ps.campaignRepo.GetByID(dbc, campaignID)
	if err != nil {
		return nil, apierr.MapDB("get campaign", err)
	}
	return ps.view(dbc, c, campaignID.String())
}

func (ps *prelaunchService) GetCampaignBySlug(dbc dbctx.Context, slug string) (*CampaignView, error) {
	c, err := ps.campaignRepo.GetBySlug(dbc, strings.TrimSpace(slug))
	if err != nil {
		return nil, apierr.MapDB("get campaign", err)
	}
	return ps.view(dbc, c, slug)
}

func (ps *prelaunchService) view(dbc dbctx.Context, c *types.PrelaunchCampaign, ref string) (*CampaignView, error) {
	rd := optionalUser(dbc.Ctx)
	admin := rd != nil && rd.IsSuperuser
	if c == nil || (!admin && !c.IsActive) {
		return nil, apierr.NotFound("campaign %s", ref)
	}
	v := &CampaignView{Campaign: c}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if !admin {
			if err := ps.campaignRepo.IncrementStats(dbc, c.ID, 1, 0); err != nil {
				return err
			}
			fresh, err := ps.campaignRepo.GetByID(dbc, c.ID)
			if err != nil {
				return err
			}
			v.Campaign = fresh
		}
		ids, err := ps.campaignRepo.ListCourseIDs(dbc, c.ID)
		if err != nil {
			return err
		}
		if v.Courses, err = ps.courseRepo.GetByIDs(dbc, ids); err != nil {
			return err
		}
		if v.Sequences, err = ps.sequenceRepo.ListByCampaign(dbc, c.ID); err != nil {
			return err
		}
		v.SubscriberCount, err = ps.subscriberRepo.CountActive(dbc, c.ID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("load campaign", err)
	}
	return v, nil
}

func (ps *prelaunchService) loadCampaign(dbc dbctx.Context, campaignID uuid.UUID) (*types.PrelaunchCampaign, error) {
	c, err := ps.campaignRepo.GetByID(dbc, campaignID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apierr.NotFound("campaign %s", campaignID)
	}
	return c, nil
}

func (ps *prelaunchService) UpdateCampaign(dbc dbctx.Context, campaignID uuid.UUID, patch CampaignPatch) (*types.PrelaunchCampaign, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.PrelaunchCampaign
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		c, err := ps.loadCampaign(dbc, campaignID)
		if err != nil {
			return err
		}
		fields := map[string]any{}
		if err := patchTitle(fields, patch.Title); err != nil {
			return err
		}
		if patch.Slug != nil {
			slug := Slugify(*patch.Slug)
			if slug == "" {
				return apierr.Invalid("slug must not be empty")
			}
			fields["slug"] = slug
		}
		start, end := c.StartDate, c.EndDate
		if patch.StartDate != nil {
			start = patch.StartDate
			fields["start_date"] = *patch.StartDate
		}
		if patch.EndDate != nil {
			end = patch.EndDate
			fields["end_date"] = *patch.EndDate
		}
		if err := checkWindow(start, end); err != nil {
			return err
		}
		if err := checkAmounts(map[string]*int{
			"early bird price": patch.EarlyBirdPrice,
			"regular price":    patch.RegularPrice,
			"max enrollments":  patch.MaxEnrollments,
		}); err != nil {
			return err
		}
		for column, v := range map[string]*string{
			"description":             patch.Description,
			"lead_magnet_title":       patch.LeadMagnetTitle,
			"lead_magnet_description": patch.LeadMagnetDescription,
			"lead_magnet_file_url":    patch.LeadMagnetFileURL,
			"header_image_url":        patch.HeaderImageURL,
			"content":                 patch.Content,
			"cta_text":                patch.CTAText,
			"cta_url":                 patch.CTAURL,
		} {
			if v != nil {
				fields[column] = *v
			}
		}
		for column, v := range map[string]*int{
			"early_bird_price": patch.EarlyBirdPrice,
			"regular_price":    patch.RegularPrice,
			"max_enrollments":  patch.MaxEnrollments,
		} {
			if v != nil {
				fields[column] = *v
			}
		}
		if patch.IsActive != nil {
			fields["is_active"] = *patch.IsActive
		}
		if err := ps.campaignRepo.UpdateFields(dbc, campaignID, fields); err != nil {
			return err
		}
		out, err = ps.campaignRepo.GetByID(dbc, campaignID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update campaign", err)
	}
	return out, nil
}

func (ps *prelaunchService) DeleteCampaign(dbc dbctx.Context, campaignID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadCampaign(dbc, campaignID); err != nil {
			return err
		}
		n, err := ps.subscriberRepo.CountAll(dbc, campaignID)
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("%w: campaign %s has %d subscribers; deactivate it instead", apierr.ErrConflict, campaignID, n)
		}
		return ps.campaignRepo.Delete(dbc, campaignID)
	})
	if err != nil {
		return apierr.MapDB("delete campaign", err)
	}
	ps.log.Info("Prelaunch campaign deleted", "campaign_id", campaignID)
	return nil
}

func (ps *prelaunchService) AddCourse(dbc dbctx.Context, campaignID, courseID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadCampaign(dbc, campaignID); err != nil {
			return err
		}
		c, err := ps.courseRepo.GetByID(dbc, courseID)
		if err != nil {
			return err
		}
		if c == nil {
			return apierr.NotFound("course %s", courseID)
		}
		return ps.campaignRepo.AddCourse(dbc, campaignID, courseID)
	})
	return apierr.MapDB("add campaign course", err)
}

func (ps *prelaunchService) RemoveCourse(dbc dbctx.Context, campaignID, courseID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadCampaign(dbc, campaignID); err != nil {
			return err
		}
		removed, err := ps.campaignRepo.RemoveCourse(dbc, campaignID, courseID)
		if err != nil {
			return err
		}
		if !removed {
			return apierr.NotFound("course %s is not in campaign %s", courseID, campaignID)
		}
		return nil
	})
	return apierr.MapDB("remove campaign course", err)
}

func (ps *prelaunchService) CampaignsForCourse(dbc dbctx.Context, courseID uuid.UUID) ([]*types.PrelaunchCampaign, error) {
	now := ps.now()
	out, err := ps.campaignRepo.ListByCourse(dbc, courseID, repos.CampaignFilter{ActiveAt: &now})
	if err != nil {
		return nil, apierr.MapDB("list course campaigns", err)
	}
	return out, nil
}

func (ps *prelaunchService) RecordCampaignStats(dbc dbctx.Context, campaignID uuid.UUID, views, signups int64) (*types.PrelaunchCampaign, error) {
	if views < 0 || signups < 0 {
		return nil, apierr.Invalid("stat deltas must not be negative")
	}
	var out *types.PrelaunchCampaign
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadCampaign(dbc, campaignID); err != nil {
			return err
		}
		if err := ps.campaignRepo.IncrementStats(dbc, campaignID, views, signups); err != nil {
			return err
		}
		var err error
		out, err = ps.campaignRepo.GetByID(dbc, campaignID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("record campaign stats", err)
	}
	return out, nil
}

func (ps *prelaunchService) Subscribe(dbc dbctx.Context, in SubscribeInput) (*types.PrelaunchSubscriber, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	var custom datatypes.JSON
	if len(in.CustomFields) > 0 {
		raw, err := json.Marshal(in.CustomFields)
		if err != nil {
			return nil, fmt.Errorf("encode custom fields: %w", err)
		}
		custom = datatypes.JSON(raw)
	}
	var out *types.PrelaunchSubscriber
	err = db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		c, err := ps.campaignRepo.GetByID(dbc, in.CampaignID)
		if err != nil {
			return err
		}
		if c == nil || !c.IsActive {
			return apierr.NotFound("campaign %s not found or inactive", in.CampaignID)
		}
		existing, err := ps.subscriberRepo.GetByEmail(dbc, c.ID, email)
		if err != nil {
			return err
		}
		if existing != nil {
			if !existing.IsActive {
				if err := ps.subscriberRepo.UpdateFields(dbc, existing.ID, map[string]any{
					"is_active":       true,
					"unsubscribed_at": nil,
				}); err != nil {
					return err
				}
				existing.IsActive = true
				existing.UnsubscribedAt = nil
			}
			out = existing
			return nil
		}
		if c.MaxEnrollments != nil && *c.MaxEnrollments > 0 {
			n, err := ps.subscriberRepo.CountActive(dbc, c.ID)
			if err != nil {
				return err
			}
			if n >= int64(*c.MaxEnrollments) {
				return fmt.Errorf("%w: campaign %s is full", apierr.ErrConflict, c.ID)
			}
		}
		out = &types.PrelaunchSubscriber{
			CampaignID:   c.ID,
			Email:        email,
			Name:         strings.TrimSpace(in.Name),
			IsActive:     true,
			SubscribedAt: ps.now(),
			Source:       in.Source,
			IPAddress:    in.IPAddress,
			UserAgent:    in.UserAgent,
			Referrer:     in.Referrer,
			CustomFields: custom,
		}
		if rd := optionalUser(dbc.Ctx); rd != nil {
			uid := rd.UserID
			out.UserID = &uid
		}
		if _, err := ps.subscriberRepo.Create(dbc, out); err != nil {
			return err
		}
		return ps.campaignRepo.IncrementStats(dbc, c.ID, 0, 1)
	})
	if err != nil {
		return nil, apierr.MapDB("subscribe", err)
	}
	return out, nil
}

func (ps *prelaunchService) Unsubscribe(dbc dbctx.Context, campaignID uuid.UUID, email string) (*types.PrelaunchSubscriber, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	var out *types.PrelaunchSubscriber
	err = db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		s, err := ps.subscriberRepo.GetByEmail(dbc, campaignID, addr)
		if err != nil {
			return err
		}
		if s == nil {
			return apierr.NotFound("%s is not subscribed to campaign %s", addr, campaignID)
		}
		if s.IsActive {
			now := ps.now()
			if err := ps.subscriberRepo.UpdateFields(dbc, s.ID, map[string]any{
				"is_active":       false,
				"unsubscribed_at": now,
			}); err != nil {
				return err
			}
			s.IsActive = false
			s.UnsubscribedAt = &now
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, apierr.MapDB("unsubscribe", err)
	}
	return out, nil
}

func (ps *prelaunchService) ListSubscribers(dbc dbctx.Context, campaignID uuid.UUID, f repos.SubscriberFilter) ([]*types.PrelaunchSubscriber, int64, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, 0, err
	}
	if _, err := ps.loadCampaign(dbc, campaignID); err != nil {
		return nil, 0, apierr.MapDB("list subscribers", err)
	}
	out, total, err := ps.subscriberRepo.ListByCampaign(dbc, campaignID, f)
	if err != nil {
		return nil, 0, apierr.MapDB("list subscribers", err)
	}
	return out, total, nil
}

func (ps *prelaunchService) MarkLeadMagnetSent(dbc dbctx.Context, subscriberID uuid.UUID) (*types.PrelaunchSubscriber, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.PrelaunchSubscriber
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		s, err := ps.subscriberRepo.GetByID(dbc, subscriberID)
		if err != nil {
			return err
		}
		if s == nil {
			return apierr.NotFound("subscriber %s", subscriberID)
		}
		if err := ps.subscriberRepo.UpdateFields(dbc, s.ID, map[string]any{
			"lead_magnet_sent":    true,
			"lead_magnet_sent_at": ps.now(),
		}); err != nil {
			return err
		}
		out, err = ps.subscriberRepo.GetByID(dbc, s.ID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("mark lead magnet sent", err)
	}
	return out, nil
}
