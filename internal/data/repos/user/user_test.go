package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.SQLiteDB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	created, err := repo.Create(dbc, []*types.User{{Email: "a@example.com", Username: "a", IsActive: true}})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result %+v", created)
	}
	if created[0].Level != 1 {
		t.Fatalf("Create: new users start at level 1, got %d", created[0].Level)
	}

	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: err=%v user=%v", err, got)
	}
	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID missing: err=%v user=%v", err, missing)
	}

	if err := repo.UpdateGamification(dbc, got.ID, 250, 125, 3); err != nil {
		t.Fatalf("UpdateGamification: %v", err)
	}
	locked, err := repo.GetForUpdate(dbc, got.ID)
	if err != nil || locked == nil {
		t.Fatalf("GetForUpdate: err=%v", err)
	}
	if locked.Experience != 250 || locked.TotalPoints != 125 || locked.Level != 3 {
		t.Fatalf("UpdateGamification not persisted: %+v", locked)
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := repo.TouchActivity(dbc, got.ID, at); err != nil {
		t.Fatalf("TouchActivity: %v", err)
	}
	rows, err := repo.GetByIDs(dbc, []uuid.UUID{got.ID})
	if err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows[0].LastActivityAt == nil || !rows[0].LastActivityAt.Equal(at) {
		t.Fatalf("TouchActivity not persisted: %v", rows[0].LastActivityAt)
	}
}
