package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/clients/redis"
	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/domain/marketing"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type BannerInput struct {
	Title           string
	Message         string
	CTAText         string
	CTAURL          string
	BannerType      string
	StartDate       *time.Time
	EndDate         *time.Time
	IsActive        bool
	ShowToLoggedIn  bool
	ShowToAnonymous bool
	ShowOnPages     []string
	Priority        int
}

type BannerPatch struct {
	Title           *string
	Message         *string
	CTAText         *string
	CTAURL          *string
	BannerType      *string
	StartDate       *time.Time
	EndDate         *time.Time
	IsActive        *bool
	ShowToLoggedIn  *bool
	ShowToAnonymous *bool
	ShowOnPages     *[]string
	Priority        *int
}

type BannerService interface {
	CreateBanner(dbc dbctx.Context, in BannerInput) (*types.MarketingBanner, error)
	GetBanner(dbc dbctx.Context, bannerID uuid.UUID) (*types.MarketingBanner, error)
	UpdateBanner(dbc dbctx.Context, bannerID uuid.UUID, patch BannerPatch) (*types.MarketingBanner, error)
	DeleteBanner(dbc dbctx.Context, bannerID uuid.UUID) error
	// ActiveBanners lists banners shown on page to the caller's audience.
	// An empty page matches every banner.
	ActiveBanners(dbc dbctx.Context, page string) ([]*types.MarketingBanner, error)
	// ListBanners returns every banner regardless of window or audience.
	ListBanners(dbc dbctx.Context) ([]*types.MarketingBanner, error)
	TrackStat(dbc dbctx.Context, bannerID uuid.UUID, stat string) error
	// FlushStats moves buffered counters into the database and returns the
	// number of banners updated.
	FlushStats(dbc dbctx.Context) (int, error)
}

type bannerService struct {
	db         *gorm.DB
	log        *logger.Logger
	bannerRepo repos.MarketingBannerRepo
	counter    redis.BannerCounter
	now        func() time.Time
}

// NewBannerService builds the banner service. counter may be nil, in which
// case stats are written straight to the database.
func NewBannerService(db *gorm.DB, baseLog *logger.Logger, bannerRepo repos.MarketingBannerRepo, counter redis.BannerCounter) BannerService {
	return &bannerService{
		db:         db,
		log:        baseLog.With("service", "BannerService"),
		bannerRepo: bannerRepo,
		counter:    counter,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var bannerTypes = map[string]bool{"info": true, "promo": true, "warning": true, "success": true}

func normalizeBannerType(t string) (string, error) {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return "info", nil
	}
	if !bannerTypes[t] {
		return "", apierr.Invalid("unknown banner type %q", t)
	}
	return t, nil
}

func checkWindow(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return apierr.Invalid("end date precedes start date")
	}
	return nil
}

func (bs *bannerService) CreateBanner(dbc dbctx.Context, in BannerInput) (*types.MarketingBanner, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	msg := strings.TrimSpace(in.Message)
	if title == "" || msg == "" {
		return nil, apierr.Invalid("title and message are required")
	}
	bt, err := normalizeBannerType(in.BannerType)
	if err != nil {
		return nil, err
	}
	if err := checkWindow(in.StartDate, in.EndDate); err != nil {
		return nil, err
	}
	pages, err := jsonList(in.ShowOnPages)
	if err != nil {
		return nil, err
	}
	b := &types.MarketingBanner{
		Title:           title,
		Message:         msg,
		CTAText:         in.CTAText,
		CTAURL:          in.CTAURL,
		BannerType:      bt,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		IsActive:        in.IsActive,
		ShowToLoggedIn:  in.ShowToLoggedIn,
		ShowToAnonymous: in.ShowToAnonymous,
		ShowOnPages:     pages,
		Priority:        in.Priority,
	}
	if _, err := bs.bannerRepo.Create(dbc, b); err != nil {
		return nil, apierr.MapDB("create banner", err)
	}
	return b, nil
}

func (bs *bannerService) GetBanner(dbc dbctx.Context, bannerID uuid.UUID) (*types.MarketingBanner, error) {
	b, err := bs.bannerRepo.GetByID(dbc, bannerID)
	if err != nil {
		return nil, apierr.MapDB("get banner", err)
	}
	if b == nil {
		return nil, apierr.NotFound("banner %s", bannerID)
	}
	return b, nil
}

func (bs *bannerService) UpdateBanner(dbc dbctx.Context, bannerID uuid.UUID, patch BannerPatch) (*types.MarketingBanner, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.MarketingBanner
	err := db.Within(dbc, bs.db, func(dbc dbctx.Context) error {
		b, err := bs.GetBanner(dbc, bannerID)
		if err != nil {
			return err
		}
		fields := map[string]any{}
		if patch.Title != nil {
			if strings.TrimSpace(*patch.Title) == "" {
				return apierr.Invalid("title must not be empty")
			}
			fields["title"] = strings.TrimSpace(*patch.Title)
		}
		if patch.Message != nil {
			if strings.TrimSpace(*patch.Message) == "" {
				return apierr.Invalid("message must not be empty")
			}
			fields["message"] = strings.TrimSpace(*patch.Message)
		}
		if patch.CTAText != nil {
			fields["cta_text"] = *patch.CTAText
		}
		if patch.CTAURL != nil {
			fields["cta_url"] = *patch.CTAURL
		}
		if patch.BannerType != nil {
			bt, err := normalizeBannerType(*patch.BannerType)
			if err != nil {
				return err
			}
			fields["banner_type"] = bt
		}
		start, end := b.StartDate, b.EndDate
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
		if patch.IsActive != nil {
			fields["is_active"] = *patch.IsActive
		}
		if patch.ShowToLoggedIn != nil {
			fields["show_to_logged_in"] = *patch.ShowToLoggedIn
		}
		if patch.ShowToAnonymous != nil {
			fields["show_to_anonymous"] = *patch.ShowToAnonymous
		}
		if err := setJSONList(fields, "show_on_pages", patch.ShowOnPages); err != nil {
			return err
		}
		if patch.Priority != nil {
			fields["priority"] = *patch.Priority
		}
		if err := bs.bannerRepo.UpdateFields(dbc, bannerID, fields); err != nil {
			return err
		}
		out, err = bs.bannerRepo.GetByID(dbc, bannerID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update banner", err)
	}
	return out, nil
}

func (bs *bannerService) DeleteBanner(dbc dbctx.Context, bannerID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, bs.db, func(dbc dbctx.Context) error {
		if _, err := bs.GetBanner(dbc, bannerID); err != nil {
			return err
		}
		return bs.bannerRepo.Delete(dbc, bannerID)
	})
	return apierr.MapDB("delete banner", err)
}

// onPage reports whether b targets page. A banner without pages shows everywhere.
func onPage(b *types.MarketingBanner, page string) bool {
	if page == "" || len(b.ShowOnPages) == 0 {
		return true
	}
	var pages []string
	if err := json.Unmarshal(b.ShowOnPages, &pages); err != nil || len(pages) == 0 {
		return true
	}
	for _, p := range pages {
		if strings.EqualFold(strings.TrimSpace(p), page) {
			return true
		}
	}
	return false
}

func (bs *bannerService) ActiveBanners(dbc dbctx.Context, page string) ([]*types.MarketingBanner, error) {
	loggedIn := optionalUser(dbc.Ctx) != nil
	all, err := bs.bannerRepo.ListActive(dbc, bs.now(), loggedIn)
	if err != nil {
		return nil, apierr.MapDB("list active banners", err)
	}
	page = strings.TrimSpace(page)
	out := make([]*types.MarketingBanner, 0, len(all))
	for _, b := range all {
		if onPage(b, page) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (bs *bannerService) ListBanners(dbc dbctx.Context) ([]*types.MarketingBanner, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	out, err := bs.bannerRepo.List(dbc)
	if err != nil {
		return nil, apierr.MapDB("list banners", err)
	}
	return out, nil
}

func (bs *bannerService) TrackStat(dbc dbctx.Context, bannerID uuid.UUID, stat string) error {
	col, ok := marketing.StatColumn(strings.ToLower(strings.TrimSpace(stat)))
	if !ok {
		return apierr.Invalid("unknown banner stat %q", stat)
	}
	if _, err := bs.GetBanner(dbc, bannerID); err != nil {
		return err
	}
	if bs.counter != nil {
		err := bs.counter.Incr(dbc.Ctx, bannerID, col)
		if err == nil {
			return nil
		}
		bs.log.Warn("Redis banner counter failed, writing through", "banner_id", bannerID, "error", err)
	}
	return apierr.MapDB("track banner stat", bs.bannerRepo.IncrementStats(dbc, bannerID, map[string]int64{col: 1}))
}

func (bs *bannerService) FlushStats(dbc dbctx.Context) (int, error) {
	if bs.counter == nil {
		return 0, nil
	}
	pending, err := bs.counter.Drain(dbc.Ctx)
	var errs []error
	if err != nil {
		errs = append(errs, err)
	}
	flushed := 0
	for id, deltas := range pending {
		ierr := bs.bannerRepo.IncrementStats(dbc, id, deltas)
		if ierr == nil {
			flushed++
			continue
		}
		errs = append(errs, fmt.Errorf("banner %s: %w", id, ierr))
		// Drain already cleared the hash; put the deltas back for the next run.
		if rerr := bs.counter.Restore(context.WithoutCancel(dbc.Ctx), id, deltas); rerr != nil {
			bs.log.Error("Banner stats lost", "banner_id", id, "deltas", deltas, "error", rerr)
			errs = append(errs, rerr)
			continue
		}
		bs.log.Warn("Banner stat flush failed, deltas re-buffered", "banner_id", id, "error", ierr)
	}
	if len(errs) > 0 {
		return flushed, fmt.Errorf("flush banner stats: %w", errors.Join(errs...))
	}
	if flushed > 0 {
		bs.log.Debug("Flushed banner stats", "banners", flushed)
	}
	return flushed, nil
}
