package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/repos"
	"github.com/yungbote/coursekit-backend/internal/data/repos/testutil"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
)

func TestLearningPathLifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.SeedSuperuser(t, ctx, e.db, "admin")
	learner := testutil.SeedUser(t, ctx, e.db, "learner")
	c1 := testutil.SeedCourse(t, ctx, e.db, admin.ID, "beginner", true)
	c2 := testutil.SeedCourse(t, ctx, e.db, admin.ID, "intermediate", true)
	c3 := testutil.SeedCourse(t, ctx, e.db, admin.ID, "advanced", true)

	if _, err := e.paths.CreatePath(as(learner), LearningPathInput{Title: "Backend"}); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("learner create: want forbidden, got %v", err)
	}
	p, err := e.paths.CreatePath(as(admin), LearningPathInput{Title: "Go Backend Track", Tags: []string{"go", "backend"}, IsPublished: true})
	if err != nil {
		t.Fatalf("CreatePath: %v", err)
	}
	if p.Slug != "go-backend-track" {
		t.Fatalf("slug: %q", p.Slug)
	}

	for i, id := range []uuid.UUID{c1.ID, c2.ID, c3.ID} {
		link, err := e.paths.AttachCourse(as(admin), p.ID, id)
		if err != nil {
			t.Fatalf("AttachCourse %d: %v", i, err)
		}
		if link.OrderIndex != i {
			t.Fatalf("attach %d: order=%d", i, link.OrderIndex)
		}
	}
	if _, err := e.paths.AttachCourse(as(admin), p.ID, c1.ID); !errors.Is(err, apierr.ErrConflict) {
		t.Fatalf("duplicate attach: want conflict, got %v", err)
	}

	if _, err := e.paths.ReorderCourse(as(admin), p.ID, c3.ID, 0); err != nil {
		t.Fatalf("ReorderCourse: %v", err)
	}
	view, err := e.paths.GetPathBySlug(as(learner), p.Slug)
	if err != nil {
		t.Fatalf("GetPathBySlug: %v", err)
	}
	want := []string{c3.ID.String(), c1.ID.String(), c2.ID.String()}
	if len(view.Courses) != 3 {
		t.Fatalf("courses: %d", len(view.Courses))
	}
	for i, pc := range view.Courses {
		if pc.Course.ID.String() != want[i] || pc.Link.OrderIndex != i {
			t.Fatalf("position %d: course=%s order=%d", i, pc.Course.ID, pc.Link.OrderIndex)
		}
	}

	if err := e.paths.DetachCourse(as(admin), p.ID, c3.ID); err != nil {
		t.Fatalf("DetachCourse: %v", err)
	}
	view, err = e.paths.GetPathBySlug(as(learner), p.Slug)
	if err != nil {
		t.Fatalf("GetPathBySlug: %v", err)
	}
	if len(view.Courses) != 2 || view.Courses[0].Link.OrderIndex != 0 || view.Courses[1].Link.OrderIndex != 1 {
		t.Fatalf("detach did not compact: %+v", view.Courses)
	}

	list, total, err := e.paths.ListPaths(as(nil), repos.PathFilter{Tag: "go"})
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("ListPaths: total=%d err=%v", total, err)
	}
}

func TestUnpublishedPathHidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.SeedSuperuser(t, ctx, e.db, "admin")
	learner := testutil.SeedUser(t, ctx, e.db, "learner")

	p, err := e.paths.CreatePath(as(admin), LearningPathInput{Title: "Draft"})
	if err != nil {
		t.Fatalf("CreatePath: %v", err)
	}
	if _, err := e.paths.GetPathBySlug(as(learner), p.Slug); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if _, err := e.paths.GetPathBySlug(as(admin), p.Slug); err != nil {
		t.Fatalf("admin read: %v", err)
	}
	list, _, err := e.paths.ListPaths(as(learner), repos.PathFilter{})
	if err != nil || len(list) != 0 {
		t.Fatalf("draft leaked: %d %v", len(list), err)
	}
}

func TestLearningPathModulesItemsResources(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.SeedSuperuser(t, ctx, e.db, "admin")
	learner := testutil.SeedUser(t, ctx, e.db, "learner")
	p, err := e.paths.CreatePath(as(admin), LearningPathInput{Title: "Data Track", IsPublished: true})
	if err != nil {
		t.Fatalf("CreatePath: %v", err)
	}

	if _, err := e.paths.AddModule(as(learner), p.ID, PathModuleInput{Title: "Intro"}); !errors.Is(err, apierr.ErrForbidden) {
		t.Fatalf("learner add module: want forbidden, got %v", err)
	}
	mods := make([]uuid.UUID, 0, 3)
	for i, title := range []string{"Intro", "SQL", "Pipelines"} {
		m, err := e.paths.AddModule(as(admin), p.ID, PathModuleInput{Title: title})
		if err != nil {
			t.Fatalf("AddModule %d: %v", i, err)
		}
		if m.OrderIndex != i {
			t.Fatalf("module %d: order=%d", i, m.OrderIndex)
		}
		mods = append(mods, m.ID)
	}
	if _, err := e.paths.ReorderModule(as(admin), mods[2], 0); err != nil {
		t.Fatalf("ReorderModule: %v", err)
	}
	if err := e.paths.DeleteModule(as(admin), mods[0]); err != nil {
		t.Fatalf("DeleteModule: %v", err)
	}

	first, err := e.paths.AddItem(as(admin), mods[1], PathItemInput{Title: "Joins", URL: "/articles/joins"})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if first.ItemType != "article" {
		t.Fatalf("default item type: %q", first.ItemType)
	}
	second, err := e.paths.AddItem(as(admin), mods[1], PathItemInput{Title: "Indexes", ItemType: "series"})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if _, err := e.paths.AddItem(as(admin), mods[1], PathItemInput{Title: "Bad", ItemType: "podcast"}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("bad item type: want invalid, got %v", err)
	}
	if _, err := e.paths.ReorderItem(as(admin), second.ID, 0); err != nil {
		t.Fatalf("ReorderItem: %v", err)
	}
	title := "Join Strategies"
	if _, err := e.paths.UpdateItem(as(admin), first.ID, PathItemPatch{Title: &title}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	res, err := e.paths.AddResource(as(admin), p.ID, PathResourceInput{Title: "Docs", ResourceType: "documentation"})
	if err != nil {
		t.Fatalf("AddResource: %v", err)
	}
	if _, err := e.paths.AddResource(as(admin), p.ID, PathResourceInput{Title: "Repo", ResourceType: "github"}); err != nil {
		t.Fatalf("AddResource: %v", err)
	}
	if err := e.paths.DeleteResource(as(admin), res.ID); err != nil {
		t.Fatalf("DeleteResource: %v", err)
	}

	view, err := e.paths.GetPathBySlug(as(learner), p.Slug)
	if err != nil {
		t.Fatalf("GetPathBySlug: %v", err)
	}
	if len(view.Modules) != 2 {
		t.Fatalf("modules: %d", len(view.Modules))
	}
	if view.Modules[0].Module.ID != mods[2] || view.Modules[1].Module.ID != mods[1] {
		t.Fatalf("module order: %s %s", view.Modules[0].Module.ID, view.Modules[1].Module.ID)
	}
	for i, mv := range view.Modules {
		if mv.Module.OrderIndex != i {
			t.Fatalf("module %d not compacted: order=%d", i, mv.Module.OrderIndex)
		}
	}
	items := view.Modules[1].Items
	if len(items) != 2 || items[0].ID != second.ID || items[1].Title != title {
		t.Fatalf("items: %+v", items)
	}
	if len(view.Resources) != 1 || view.Resources[0].ResourceType != "github" {
		t.Fatalf("resources: %+v", view.Resources)
	}

	if err := e.paths.DeleteModule(as(admin), mods[1]); err != nil {
		t.Fatalf("DeleteModule: %v", err)
	}
	if err := e.paths.DeleteItem(as(admin), first.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("item of deleted module: want not found, got %v", err)
	}
}

func TestLearningPathUpdateDeleteAndShelves(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := testutil.SeedSuperuser(t, ctx, e.db, "admin")

	base, err := e.paths.CreatePath(as(admin), LearningPathInput{Title: "Go Basics", Tags: []string{"go", "backend", "web"}, IsPublished: true})
	if err != nil {
		t.Fatalf("CreatePath: %v", err)
	}
	close1, err := e.paths.CreatePath(as(admin), LearningPathInput{Title: "Go Services", Tags: []string{"go", "backend"}, IsPublished: true, IsFeatured: true})
	if err != nil {
		t.Fatalf("CreatePath: %v", err)
	}
	close2, err := e.paths.CreatePath(as(admin), LearningPathInput{Title: "Web Frontends", Tags: []string{"web"}, IsPublished: true})
	if err != nil {
		t.Fatalf("CreatePath: %v", err)
	}
	if _, err := e.paths.CreatePath(as(admin), LearningPathInput{Title: "Drafts", Tags: []string{"go", "backend", "web"}, IsFeatured: true}); err != nil {
		t.Fatalf("CreatePath: %v", err)
	}

	related, err := e.paths.ListRelated(as(nil), base.ID, 2)
	if err != nil {
		t.Fatalf("ListRelated: %v", err)
	}
	if len(related) != 2 || related[0].ID != close1.ID || related[1].ID != close2.ID {
		t.Fatalf("related: %+v", related)
	}

	featured, err := e.paths.ListFeatured(as(nil), 0)
	if err != nil {
		t.Fatalf("ListFeatured: %v", err)
	}
	if len(featured) != 1 || featured[0].ID != close1.ID {
		t.Fatalf("featured: %+v", featured)
	}

	hours := -1
	if _, err := e.paths.UpdatePath(as(admin), base.ID, LearningPathPatch{EstimatedHours: &hours}); !errors.Is(err, apierr.ErrInvalidArgument) {
		t.Fatalf("negative hours: want invalid, got %v", err)
	}
	desc := "Start here"
	yes := true
	tags := []string{"rust"}
	updated, err := e.paths.UpdatePath(as(admin), base.ID, LearningPathPatch{Description: &desc, IsFeatured: &yes, Tags: &tags})
	if err != nil {
		t.Fatalf("UpdatePath: %v", err)
	}
	if updated.Description != desc || !updated.IsFeatured {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if list, _, err := e.paths.ListPaths(as(nil), repos.PathFilter{Tag: "rust"}); err != nil || len(list) != 1 {
		t.Fatalf("by tag after update: n=%d err=%v", len(list), err)
	}

	if _, err := e.paths.AddModule(as(admin), base.ID, PathModuleInput{Title: "Setup"}); err != nil {
		t.Fatalf("AddModule: %v", err)
	}
	if err := e.paths.DeletePath(as(admin), base.ID); err != nil {
		t.Fatalf("DeletePath: %v", err)
	}
	if _, err := e.paths.GetPathBySlug(as(admin), base.Slug); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("deleted path: want not found, got %v", err)
	}
	if err := e.paths.DeletePath(as(admin), base.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("second delete: want not found, got %v", err)
	}
}
