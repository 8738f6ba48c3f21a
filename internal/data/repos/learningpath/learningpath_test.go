package learningpath

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
)

func TestLearningPathRepo(t *testing.T) {
	db := testutil.SQLiteDB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	log := testutil.Logger(t)
	author := testutil.SeedUser(t, ctx, db, "curator")

	paths := NewLearningPathRepo(db, log)
	goPath, err := paths.Create(dbc, &types.LearningPath{
		Title:       "Go",
		Slug:        "go",
		Tags:        datatypes.JSON([]byte(`["backend","go"]`)),
		IsPublished: true,
		CreatedBy:   author.ID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := paths.Create(dbc, &types.LearningPath{
		Title:     "Draft",
		Slug:      "draft",
		Tags:      datatypes.JSON([]byte(`["frontend"]`)),
		CreatedBy: author.ID,
	}); err != nil {
		t.Fatalf("Create draft: %v", err)
	}

	published := true
	list, total, err := paths.List(dbc, PathFilter{Published: &published})
	if err != nil || total != 1 || len(list) != 1 || list[0].ID != goPath.ID {
		t.Fatalf("List published: err=%v total=%d len=%d", err, total, len(list))
	}
	list, total, err = paths.List(dbc, PathFilter{Tag: "frontend"})
	if err != nil || total != 1 || list[0].Slug != "draft" {
		t.Fatalf("List by tag: err=%v total=%d", err, total)
	}

	got, err := paths.GetBySlug(dbc, "go")
	if err != nil || got == nil || got.ID != goPath.ID {
		t.Fatalf("GetBySlug: err=%v got=%v", err, got)
	}
	if err := paths.UpdateFields(dbc, goPath.ID, map[string]any{"estimated_hours": 12}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, _ = paths.GetByID(dbc, goPath.ID)
	if got.EstimatedHours != 12 {
		t.Fatalf("estimated_hours: want=12 got=%d", got.EstimatedHours)
	}
}

func TestCourseLearningPathRepo(t *testing.T) {
	db := testutil.SQLiteDB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	log := testutil.Logger(t)
	author := testutil.SeedUser(t, ctx, db, "curator")
	c1 := testutil.SeedCourse(t, ctx, db, author.ID, "beginner", true)
	c2 := testutil.SeedCourse(t, ctx, db, author.ID, "advanced", true)

	paths := NewLearningPathRepo(db, log)
	p, err := paths.Create(dbc, &types.LearningPath{Title: "P", Slug: "p", CreatedBy: author.ID})
	if err != nil {
		t.Fatalf("Create path: %v", err)
	}

	rows := NewCourseLearningPathRepo(db, log)
	if _, err := rows.Create(dbc, &types.CourseLearningPath{LearningPathID: p.ID, CourseID: c2.ID, OrderIndex: 1}); err != nil {
		t.Fatalf("Create c2: %v", err)
	}
	first, err := rows.Create(dbc, &types.CourseLearningPath{LearningPathID: p.ID, CourseID: c1.ID, OrderIndex: 0})
	if err != nil {
		t.Fatalf("Create c1: %v", err)
	}
	_, err = rows.Create(dbc, &types.CourseLearningPath{LearningPathID: p.ID, CourseID: c1.ID, OrderIndex: 2})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate course: want ErrDuplicatedKey, got %v", err)
	}

	list, err := rows.ListByPath(dbc, p.ID)
	if err != nil || len(list) != 2 || list[0].CourseID != c1.ID {
		t.Fatalf("ListByPath: err=%v list=%v", err, list)
	}
	got, err := rows.GetByPathCourse(dbc, p.ID, c1.ID)
	if err != nil || got == nil || got.ID != first.ID {
		t.Fatalf("GetByPathCourse: err=%v", err)
	}
	if err := rows.Delete(dbc, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := rows.GetByID(dbc, first.ID); got != nil {
		t.Fatalf("row still present after delete")
	}
	if got, _ := rows.GetByPathCourse(dbc, uuid.New(), c1.ID); got != nil {
		t.Fatalf("unexpected row for unknown path")
	}
}

func TestLearningPathSoftDeleteRemovesChildren(t *testing.T) {
	db := testutil.SQLiteDB(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}
	log := testutil.Logger(t)
	author := testutil.SeedUser(t, ctx, db, "curator")

	paths := NewLearningPathRepo(db, log)
	modules := NewPathModuleRepo(db, log)
	resources := NewPathResourceRepo(db, log)

	p, err := paths.Create(dbc, &types.LearningPath{Title: "Ops", Slug: "ops", CreatedBy: author.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	m, err := modules.Create(dbc, &types.LearningPathModule{LearningPathID: p.ID, Title: "Linux"})
	if err != nil {
		t.Fatalf("Create module: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := modules.CreateItem(dbc, &types.LearningPathItem{ModuleID: m.ID, OrderIndex: i, Title: "item", ItemType: "article"}); err != nil {
			t.Fatalf("CreateItem %d: %v", i, err)
		}
	}
	if _, err := resources.Create(dbc, &types.LearningPathResource{LearningPathID: p.ID, Title: "Man pages", ResourceType: "documentation"}); err != nil {
		t.Fatalf("Create resource: %v", err)
	}

	if err := paths.SoftDelete(dbc, p.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if got, err := paths.GetByID(dbc, p.ID); err != nil || got != nil {
		t.Fatalf("GetByID after delete: got=%v err=%v", got, err)
	}
	var stored types.LearningPath
	if err := db.Unscoped().Where("id = ?", p.ID).First(&stored).Error; err != nil || !stored.DeletedAt.Valid {
		t.Fatalf("path row should stay soft-deleted: err=%v", err)
	}
	if mods, err := modules.ListByPath(dbc, p.ID); err != nil || len(mods) != 0 {
		t.Fatalf("modules left: n=%d err=%v", len(mods), err)
	}
	if items, err := modules.ListItemsByModuleIDs(dbc, []uuid.UUID{m.ID}); err != nil || len(items) != 0 {
		t.Fatalf("items left: n=%d err=%v", len(items), err)
	}
	if res, err := resources.ListByPath(dbc, p.ID); err != nil || len(res) != 0 {
		t.Fatalf("resources left: n=%d err=%v", len(res), err)
	}
}
