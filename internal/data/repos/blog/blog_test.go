package blog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
)

func TestPostFiltersAndCategoryCounts(t *testing.T) {
	db := testutil.SQLiteDB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	log := testutil.Logger(t)
	posts := NewPostRepo(db, log)
	categories := NewCategoryRepo(db, log)

	alice := testutil.SeedUser(t, ctx, db, "alice")
	bob := testutil.SeedUser(t, ctx, db, "bob")
	goCat, err := categories.Create(dbc, &types.Category{Name: "Go", Slug: "go"})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}
	empty, err := categories.Create(dbc, &types.Category{Name: "Empty", Slug: "empty"})
	if err != nil {
		t.Fatalf("Create category: %v", err)
	}

	base := time.Now().UTC().Add(-time.Hour)
	mk := func(slug string, author *types.User, categorized bool, age time.Duration) {
		t.Helper()
		p := &types.Post{Title: slug, Slug: slug, AuthorID: author.ID, PublishedAt: base.Add(-age)}
		if categorized {
			p.CategoryID = &goCat.ID
		}
		if _, err := posts.Create(dbc, p); err != nil {
			t.Fatalf("Create %s: %v", slug, err)
		}
	}
	mk("newest", alice, true, 0)
	mk("middle", bob, true, time.Minute)
	mk("oldest", alice, false, 2*time.Minute)

	all, total, err := posts.List(dbc, PostFilter{})
	if err != nil || total != 3 {
		t.Fatalf("List: total=%d err=%v", total, err)
	}
	if all[0].Slug != "newest" || all[2].Slug != "oldest" {
		t.Fatalf("order: %s..%s", all[0].Slug, all[2].Slug)
	}

	inCat, total, err := posts.List(dbc, PostFilter{CategoryID: &goCat.ID, ExcludeSlug: "newest"})
	if err != nil || total != 1 || inCat[0].Slug != "middle" {
		t.Fatalf("category minus slug: total=%d err=%v", total, err)
	}
	byAlice, total, err := posts.List(dbc, PostFilter{AuthorID: &alice.ID, Limit: 1})
	if err != nil || total != 2 || len(byAlice) != 1 || byAlice[0].Slug != "newest" {
		t.Fatalf("by author: total=%d len=%d err=%v", total, len(byAlice), err)
	}

	counts, err := categories.CountPosts(dbc, []uuid.UUID{goCat.ID, empty.ID})
	if err != nil {
		t.Fatalf("CountPosts: %v", err)
	}
	if counts[goCat.ID] != 2 || counts[empty.ID] != 0 {
		t.Fatalf("counts: %v", counts)
	}

	if err := categories.Delete(dbc, goCat.ID); err != nil {
		t.Fatalf("Delete category: %v", err)
	}
	p, err := posts.GetBySlug(dbc, "middle")
	if err != nil || p == nil || p.CategoryID != nil {
		t.Fatalf("post after category delete: %+v err=%v", p, err)
	}
	if got, err := categories.GetBySlug(dbc, "go"); err != nil || got != nil {
		t.Fatalf("deleted category still found: %+v err=%v", got, err)
	}
}
