package gamification

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
)

func TestAwardRepos(t *testing.T) {
	db := testutil.SQLiteDB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	log := testutil.Logger(t)

	awards := NewAwardRepo(db, log)
	first := testutil.SeedAward(t, ctx, db, "First Steps", 10, `{"min_level": 2}`)
	if _, err := awards.Create(dbc, &types.Award{Name: "Hoarder", Category: "points", Points: 50, IsActive: true}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	active, err := awards.ListActive(dbc)
	if err != nil || len(active) != 2 || active[0].ID != first.ID {
		t.Fatalf("ListActive: err=%v len=%d", err, len(active))
	}
	byCat, err := awards.ListByCategory(dbc, "points")
	if err != nil || len(byCat) != 1 || byCat[0].Name != "Hoarder" {
		t.Fatalf("ListByCategory: err=%v got=%v", err, byCat)
	}
	if a, err := awards.GetByID(dbc, uuid.New()); err != nil || a != nil {
		t.Fatalf("GetByID missing: err=%v a=%v", err, a)
	}

	userAwards := NewUserAwardRepo(db, log)
	u := testutil.SeedUser(t, ctx, db, "earner")
	created, err := userAwards.CreateIfAbsent(dbc, &types.UserAward{UserID: u.ID, AwardID: first.ID, Progress: 100})
	if err != nil || !created {
		t.Fatalf("CreateIfAbsent first: err=%v created=%v", err, created)
	}
	created, err = userAwards.CreateIfAbsent(dbc, &types.UserAward{UserID: u.ID, AwardID: first.ID, Progress: 100})
	if err != nil || created {
		t.Fatalf("CreateIfAbsent duplicate: err=%v created=%v", err, created)
	}
	list, err := userAwards.ListByUser(dbc, u.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(list))
	}
	got, err := userAwards.GetByUserAward(dbc, u.ID, first.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByUserAward: err=%v", err)
	}
}
