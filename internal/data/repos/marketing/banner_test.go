package marketing

import (
	"context"
	"testing"
	"time"

	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
)

func TestListActiveFiltersWindowAndAudience(t *testing.T) {
	db := testutil.SQLiteDB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewMarketingBannerRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	mk := func(title string, active, members, anon bool, start, end *time.Time, prio int) *types.MarketingBanner {
		b, err := repo.Create(dbc, &types.MarketingBanner{
			Title:           title,
			Message:         title,
			IsActive:        active,
			ShowToLoggedIn:  members,
			ShowToAnonymous: anon,
			StartDate:       start,
			EndDate:         end,
			Priority:        prio,
		})
		if err != nil {
			t.Fatalf("Create %s: %v", title, err)
		}
		return b
	}
	everyone := mk("everyone", true, true, true, nil, nil, 1)
	members := mk("members", true, true, false, &past, &future, 5)
	mk("inactive", false, true, true, nil, nil, 9)
	mk("expired", true, true, true, nil, &past, 9)
	mk("upcoming", true, true, true, &future, nil, 9)

	got, err := repo.ListActive(dbc, now, true)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(got) != 2 || got[0].ID != members.ID || got[1].ID != everyone.ID {
		t.Fatalf("logged in: unexpected banners %v", got)
	}

	got, err = repo.ListActive(dbc, now, false)
	if err != nil {
		t.Fatalf("ListActive anon: %v", err)
	}
	if len(got) != 1 || got[0].ID != everyone.ID {
		t.Fatalf("anonymous: unexpected banners %v", got)
	}
}

func TestIncrementStats(t *testing.T) {
	db := testutil.SQLiteDB(t)
	dbc := dbctx.Context{Ctx: context.Background()}
	repo := NewMarketingBannerRepo(db, testutil.Logger(t))

	b, err := repo.Create(dbc, &types.MarketingBanner{Title: "t", Message: "m", IsActive: true})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.IncrementStats(dbc, b.ID, map[string]int64{"impressions": 3, "clicks": 1}); err != nil {
		t.Fatalf("IncrementStats: %v", err)
	}
	if err := repo.IncrementStats(dbc, b.ID, map[string]int64{"impressions": 2}); err != nil {
		t.Fatalf("IncrementStats: %v", err)
	}
	if err := repo.IncrementStats(dbc, b.ID, map[string]int64{"title": 1}); err == nil {
		t.Fatalf("expected error for unknown counter")
	}

	got, _ := repo.GetByID(dbc, b.ID)
	if got.Impressions != 5 || got.Clicks != 1 || got.Dismissals != 0 {
		t.Fatalf("counters: impressions=%d clicks=%d dismissals=%d", got.Impressions, got.Clicks, got.Dismissals)
	}
}
