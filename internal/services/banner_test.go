package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/repos"
	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
)

type fakeCounter struct {
	buffered map[uuid.UUID]map[string]int64
}

func (f *fakeCounter) Incr(_ context.Context, id uuid.UUID, col string) error {
	if f.buffered == nil {
		f.buffered = map[uuid.UUID]map[string]int64{}
	}
	if f.buffered[id] == nil {
		f.buffered[id] = map[string]int64{}
	}
	f.buffered[id][col]++
	return nil
}

func (f *fakeCounter) Drain(context.Context) (map[uuid.UUID]map[string]int64, error) {
	out := f.buffered
	f.buffered = nil
	return out, nil
}

func (f *fakeCounter) Restore(_ context.Context, id uuid.UUID, deltas map[string]int64) error {
	if f.buffered == nil {
		f.buffered = map[uuid.UUID]map[string]int64{}
	}
	if f.buffered[id] == nil {
		f.buffered[id] = map[string]int64{}
	}
	for col, n := range deltas {
		f.buffered[id][col] += n
	}
	return nil
}

// failingBannerRepo rejects stat increments while fail is set.
type failingBannerRepo struct {
	repos.MarketingBannerRepo
	fail bool
}

func (r *failingBannerRepo) IncrementStats(dbc dbctx.Context, id uuid.UUID, deltas map[string]int64) error {
	if r.fail {
		return errors.New("database unavailable")
	}
	return r.MarketingBannerRepo.IncrementStats(dbc, id, deltas)
}

func TestActiveBannersFiltersPagesAndAudience(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.SeedSuperuser(t, ctx, e.db, "admin")
	past := time.Now().Add(-48 * time.Hour)
	yesterday := time.Now().Add(-24 * time.Hour)

	mk := func(in BannerInput) {
		t.Helper()
		in.Message = "m"
		if _, err := e.banners.CreateBanner(as(admin), in); err != nil {
			t.Fatalf("CreateBanner(%s): %v", in.Title, err)
		}
	}
	mk(BannerInput{Title: "everywhere", IsActive: true, ShowToLoggedIn: true, ShowToAnonymous: true, Priority: 1})
	mk(BannerInput{Title: "pricing", IsActive: true, ShowToAnonymous: true, ShowOnPages: []string{"pricing"}, Priority: 5})
	mk(BannerInput{Title: "members", IsActive: true, ShowToLoggedIn: true})
	mk(BannerInput{Title: "expired", IsActive: true, ShowToAnonymous: true, StartDate: &past, EndDate: &yesterday})
	mk(BannerInput{Title: "off", ShowToAnonymous: true})

	anon, err := e.banners.ActiveBanners(as(nil), "pricing")
	if err != nil {
		t.Fatalf("ActiveBanners: %v", err)
	}
	if len(anon) != 2 || anon[0].Title != "pricing" || anon[1].Title != "everywhere" {
		t.Fatalf("anonymous on pricing: %v", titles(anon))
	}
	home, err := e.banners.ActiveBanners(as(nil), "home")
	if err != nil || len(home) != 1 || home[0].Title != "everywhere" {
		t.Fatalf("anonymous on home: %v %v", titles(home), err)
	}
	member, err := e.banners.ActiveBanners(as(admin), "pricing")
	if err != nil || len(member) != 2 {
		t.Fatalf("logged in on pricing: %v %v", titles(member), err)
	}
}

func titles(in []*types.MarketingBanner) []string {
	out := make([]string, 0, len(in))
	for _, b := range in {
		out = append(out, b.Title)
	}
	return out
}

func TestBannerWindowValidation(t *testing.T) {
	e := newEnv(t)
	admin := testutil.SeedSuperuser(t, context.Background(), e.db, "admin")
	now := time.Now()
	earlier := now.Add(-time.Hour)
	_, err := e.banners.CreateBanner(as(admin), BannerInput{Title: "t", Message: "m", StartDate: &now, EndDate: &earlier})
	if !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("want invalid argument, got %v", err)
	}
	if _, err := e.banners.CreateBanner(as(nil), BannerInput{Title: "t", Message: "m"}); !errors.Is(err, apierr.ErrUnauthorized) {
		t.Fatalf("anonymous: want unauthorized, got %v", err)
	}
}

func TestTrackStatWritesThroughWithoutRedis(t *testing.T) {
	e := newEnv(t)
	admin := testutil.SeedSuperuser(t, context.Background(), e.db, "admin")
	b, err := e.banners.CreateBanner(as(admin), BannerInput{Title: "t", Message: "m", IsActive: true})
	if err != nil {
		t.Fatalf("CreateBanner: %v", err)
	}
	for _, stat := range []string{"impression", "impression", "click"} {
		if err := e.banners.TrackStat(as(nil), b.ID, stat); err != nil {
			t.Fatalf("TrackStat(%s): %v", stat, err)
		}
	}
	if err := e.banners.TrackStat(as(nil), b.ID, "hover"); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("unknown stat: want invalid, got %v", err)
	}
	got, err := e.banners.GetBanner(as(nil), b.ID)
	if err != nil {
		t.Fatalf("GetBanner: %v", err)
	}
	if got.Impressions != 2 || got.Clicks != 1 {
		t.Fatalf("counters: impressions=%d clicks=%d", got.Impressions, got.Clicks)
	}
}

func TestTrackStatBuffersAndFlushes(t *testing.T) {
	e := newEnv(t)
	log := testutil.Logger(t)
	counter := &fakeCounter{}
	svc := NewBannerService(e.db, log, repos.NewMarketingBannerRepo(e.db, log), counter)
	admin := testutil.SeedSuperuser(t, context.Background(), e.db, "admin")
	b, err := svc.CreateBanner(as(admin), BannerInput{Title: "t", Message: "m", IsActive: true})
	if err != nil {
		t.Fatalf("CreateBanner: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.TrackStat(as(nil), b.ID, "click"); err != nil {
			t.Fatalf("TrackStat: %v", err)
		}
	}
	if err := svc.TrackStat(as(nil), b.ID, "conversion"); err != nil {
		t.Fatalf("TrackStat: %v", err)
	}
	before, _ := svc.GetBanner(as(nil), b.ID)
	if before.Clicks != 0 {
		t.Fatalf("buffered stat reached the database early")
	}

	n, err := svc.FlushStats(dbctx.Context{Ctx: context.Background()})
	if err != nil || n != 1 {
		t.Fatalf("FlushStats: n=%d err=%v", n, err)
	}
	after, _ := svc.GetBanner(as(nil), b.ID)
	if after.Clicks != 3 || after.Conversions != 1 {
		t.Fatalf("after flush: clicks=%d conversions=%d", after.Clicks, after.Conversions)
	}
	if n, _ := svc.FlushStats(dbctx.Context{Ctx: context.Background()}); n != 0 {
		t.Fatalf("second flush: want 0 got %d", n)
	}
}

func TestFlushStatsKeepsCountersWhenDatabaseFails(t *testing.T) {
	e := newEnv(t)
	log := testutil.Logger(t)
	counter := &fakeCounter{}
	repo := &failingBannerRepo{MarketingBannerRepo: repos.NewMarketingBannerRepo(e.db, log)}
	svc := NewBannerService(e.db, log, repo, counter)
	admin := testutil.SeedSuperuser(t, context.Background(), e.db, "admin")
	b, err := svc.CreateBanner(as(admin), BannerInput{Title: "t", Message: "m", IsActive: true})
	if err != nil {
		t.Fatalf("CreateBanner: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := svc.TrackStat(as(nil), b.ID, "click"); err != nil {
			t.Fatalf("TrackStat: %v", err)
		}
	}

	repo.fail = true
	n, err := svc.FlushStats(dbctx.Context{Ctx: context.Background()})
	if err == nil || n != 0 {
		t.Fatalf("failing flush: want error and n=0, got n=%d err=%v", n, err)
	}
	if counter.buffered[b.ID]["clicks"] != 5 {
		t.Fatalf("deltas not re-buffered: %v", counter.buffered[b.ID])
	}

	repo.fail = false
	n, err = svc.FlushStats(dbctx.Context{Ctx: context.Background()})
	if err != nil || n != 1 {
		t.Fatalf("retry flush: n=%d err=%v", n, err)
	}
	got, _ := svc.GetBanner(as(nil), b.ID)
	if got.Clicks != 5 {
		t.Fatalf("clicks after retry: want 5 got %d", got.Clicks)
	}
}

func TestListBannersRequiresSuperuser(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.SeedSuperuser(t, ctx, e.db, "admin")
	learner := testutil.SeedUser(t, ctx, e.db, "learner")
	for _, in := range []BannerInput{
		{Title: "live", Message: "m", IsActive: true, Priority: 2},
		{Title: "draft", Message: "m"},
	} {
		if _, err := e.banners.CreateBanner(as(admin), in); err != nil {
			t.Fatalf("CreateBanner: %v", err)
		}
	}
	if _, err := e.banners.ListBanners(as(learner)); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("learner: want forbidden, got %v", err)
	}
	all, err := e.banners.ListBanners(as(admin))
	if err != nil || len(all) != 2 || all[0].Title != "live" {
		t.Fatalf("ListBanners: %v %v", titles(all), err)
	}
}
