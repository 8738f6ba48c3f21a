package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	"github.com/yungbote/coursekit-backend/internal/data/repos"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/domain/catalog"
	"github.com/yungbote/coursekit-backend/internal/learning/ordering"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type LearningPathInput struct {
	Title            string
	Slug             string
	Description      string
	LongDescription  string
	CoverImage       string
	Difficulty       string
	EstimatedHours   int
	Tags             []string
	LearningOutcomes []string
	Prerequisites    []string
	IsPublished      bool
	IsFeatured       bool
}

// LearningPathPatch holds the fields to change; nil means unchanged.
type LearningPathPatch struct {
	Title            *string
	Slug             *string
	Description      *string
	LongDescription  *string
	CoverImage       *string
	Difficulty       *string
	EstimatedHours   *int
	Tags             *[]string
	LearningOutcomes *[]string
	Prerequisites    *[]string
	IsFeatured       *bool
}

// PathCourse is one course at its position inside a path.
type PathCourse struct {
	Link   *types.CourseLearningPath
	Course *types.Course
}

type PathModuleView struct {
	Module *types.LearningPathModule
	Items  []*types.LearningPathItem
}

type PathView struct {
	Path      *types.LearningPath
	Courses   []PathCourse
	Modules   []PathModuleView
	Resources []*types.LearningPathResource
}

const defaultPathShelf = 3

type LearningPathService interface {
	CreatePath(dbc dbctx.Context, in LearningPathInput) (*types.LearningPath, error)
	GetPathBySlug(dbc dbctx.Context, slug string) (*PathView, error)
	ListPaths(dbc dbctx.Context, f repos.PathFilter) ([]*types.LearningPath, int64, error)
	ListFeatured(dbc dbctx.Context, limit int) ([]*types.LearningPath, error)
	// ListRelated ranks other published paths by the number of tags they
	// share with pathID.
	ListRelated(dbc dbctx.Context, pathID uuid.UUID, limit int) ([]*types.LearningPath, error)
	UpdatePath(dbc dbctx.Context, pathID uuid.UUID, patch LearningPathPatch) (*types.LearningPath, error)
	DeletePath(dbc dbctx.Context, pathID uuid.UUID) error
	SetPublished(dbc dbctx.Context, pathID uuid.UUID, published bool) (*types.LearningPath, error)
	AttachCourse(dbc dbctx.Context, pathID, courseID uuid.UUID) (*types.CourseLearningPath, error)
	DetachCourse(dbc dbctx.Context, pathID, courseID uuid.UUID) error
	ReorderCourse(dbc dbctx.Context, pathID, courseID uuid.UUID, newOrder int) (*types.CourseLearningPath, error)

	AddModule(dbc dbctx.Context, pathID uuid.UUID, in PathModuleInput) (*types.LearningPathModule, error)
	UpdateModule(dbc dbctx.Context, moduleID uuid.UUID, patch PathModulePatch) (*types.LearningPathModule, error)
	DeleteModule(dbc dbctx.Context, moduleID uuid.UUID) error
	ReorderModule(dbc dbctx.Context, moduleID uuid.UUID, newOrder int) (*types.LearningPathModule, error)
	AddItem(dbc dbctx.Context, moduleID uuid.UUID, in PathItemInput) (*types.LearningPathItem, error)
	UpdateItem(dbc dbctx.Context, itemID uuid.UUID, patch PathItemPatch) (*types.LearningPathItem, error)
	DeleteItem(dbc dbctx.Context, itemID uuid.UUID) error
	ReorderItem(dbc dbctx.Context, itemID uuid.UUID, newOrder int) (*types.LearningPathItem, error)
	AddResource(dbc dbctx.Context, pathID uuid.UUID, in PathResourceInput) (*types.LearningPathResource, error)
	UpdateResource(dbc dbctx.Context, resourceID uuid.UUID, patch PathResourcePatch) (*types.LearningPathResource, error)
	DeleteResource(dbc dbctx.Context, resourceID uuid.UUID) error
}

type learningPathService struct {
	db           *gorm.DB
	log          *logger.Logger
	pathRepo     repos.LearningPathRepo
	linkRepo     repos.CourseLearningPathRepo
	moduleRepo   repos.PathModuleRepo
	resourceRepo repos.PathResourceRepo
	courseRepo   repos.CourseRepo
	orders       ordering.Maintainer
}

func NewLearningPathService(
	db *gorm.DB,
	baseLog *logger.Logger,
	pathRepo repos.LearningPathRepo,
	linkRepo repos.CourseLearningPathRepo,
	moduleRepo repos.PathModuleRepo,
	resourceRepo repos.PathResourceRepo,
	courseRepo repos.CourseRepo,
	orders ordering.Maintainer,
) LearningPathService {
	return &learningPathService{
		db:           db,
		log:          baseLog.With("service", "LearningPathService"),
		pathRepo:     pathRepo,
		linkRepo:     linkRepo,
		moduleRepo:   moduleRepo,
		resourceRepo: resourceRepo,
		courseRepo:   courseRepo,
		orders:       orders,
	}
}

func (ps *learningPathService) CreatePath(dbc dbctx.Context, in LearningPathInput) (*types.LearningPath, error) {
	rd, err := requireSuperuser(dbc.Ctx)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Invalid("title is required")
	}
	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, apierr.Invalid("slug is required")
	}
	difficulty, err := normalizeDifficulty(in.Difficulty)
	if err != nil {
		return nil, err
	}
	if in.EstimatedHours < 0 {
		return nil, apierr.Invalid("estimated hours must not be negative")
	}
	tags, err := jsonList(in.Tags)
	if err != nil {
		return nil, err
	}
	outcomes, err := jsonList(in.LearningOutcomes)
	if err != nil {
		return nil, err
	}
	prereqs, err := jsonList(in.Prerequisites)
	if err != nil {
		return nil, err
	}
	p := &types.LearningPath{
		Title:            title,
		Slug:             slug,
		Description:      in.Description,
		LongDescription:  in.LongDescription,
		CoverImage:       in.CoverImage,
		Difficulty:       difficulty,
		EstimatedHours:   in.EstimatedHours,
		Tags:             tags,
		LearningOutcomes: outcomes,
		Prerequisites:    prereqs,
		IsPublished:      in.IsPublished,
		IsFeatured:       in.IsFeatured,
		CreatedBy:        rd.UserID,
	}
	if _, err := ps.pathRepo.Create(dbc, p); err != nil {
		return nil, apierr.MapDB("create learning path", err)
	}
	ps.log.Info("Learning path created", "path_id", p.ID, "slug", slug)
	return p, nil
}

func normalizeDifficulty(d string) (string, error) {
	difficulty := strings.ToLower(strings.TrimSpace(d))
	if difficulty == "" {
		return catalog.LevelBeginner, nil
	}
	if !catalog.ValidLevel(difficulty) {
		return "", apierr.Invalid("unknown difficulty %q", d)
	}
	return difficulty, nil
}

func (ps *learningPathService) visible(dbc dbctx.Context, p *types.LearningPath) bool {
	if p.IsPublished {
		return true
	}
	rd := optionalUser(dbc.Ctx)
	return rd != nil && rd.IsSuperuser
}

func (ps *learningPathService) GetPathBySlug(dbc dbctx.Context, slug string) (*PathView, error) {
	p, err := ps.pathRepo.GetBySlug(dbc, slug)
	if err != nil {
		return nil, apierr.MapDB("get learning path", err)
	}
	if p == nil || !ps.visible(dbc, p) {
		return nil, apierr.NotFound("learning path %q", slug)
	}
	links, err := ps.linkRepo.ListByPath(dbc, p.ID)
	if err != nil {
		return nil, apierr.MapDB("list path courses", err)
	}
	ids := make([]uuid.UUID, 0, len(links))
	for _, l := range links {
		ids = append(ids, l.CourseID)
	}
	courses, err := ps.courseRepo.GetByIDs(dbc, ids)
	if err != nil {
		return nil, apierr.MapDB("list path courses", err)
	}
	byID := make(map[uuid.UUID]*types.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}
	view := &PathView{Path: p, Courses: make([]PathCourse, 0, len(links))}
	for _, l := range links {
		c, ok := byID[l.CourseID]
		if !ok || !readable(dbc, c) {
			continue
		}
		view.Courses = append(view.Courses, PathCourse{Link: l, Course: c})
	}
	if view.Modules, err = ps.moduleTree(dbc, p.ID); err != nil {
		return nil, apierr.MapDB("list path modules", err)
	}
	if view.Resources, err = ps.resourceRepo.ListByPath(dbc, p.ID); err != nil {
		return nil, apierr.MapDB("list path resources", err)
	}
	return view, nil
}

func (ps *learningPathService) moduleTree(dbc dbctx.Context, pathID uuid.UUID) ([]PathModuleView, error) {
	modules, err := ps.moduleRepo.ListByPath(dbc, pathID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ID)
	}
	items, err := ps.moduleRepo.ListItemsByModuleIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	byModule := make(map[uuid.UUID][]*types.LearningPathItem, len(modules))
	for _, it := range items {
		byModule[it.ModuleID] = append(byModule[it.ModuleID], it)
	}
	out := make([]PathModuleView, 0, len(modules))
	for _, m := range modules {
		out = append(out, PathModuleView{Module: m, Items: byModule[m.ID]})
	}
	return out, nil
}

func (ps *learningPathService) ListPaths(dbc dbctx.Context, f repos.PathFilter) ([]*types.LearningPath, int64, error) {
	if rd := optionalUser(dbc.Ctx); rd == nil || !rd.IsSuperuser {
		published := true
		f.Published = &published
	}
	out, total, err := ps.pathRepo.List(dbc, f)
	if err != nil {
		return nil, 0, apierr.MapDB("list learning paths", err)
	}
	return out, total, nil
}

func (ps *learningPathService) ListFeatured(dbc dbctx.Context, limit int) ([]*types.LearningPath, error) {
	if limit <= 0 {
		limit = defaultPathShelf
	}
	yes := true
	out, _, err := ps.pathRepo.List(dbc, repos.PathFilter{Published: &yes, Featured: &yes, Limit: limit})
	if err != nil {
		return nil, apierr.MapDB("list featured paths", err)
	}
	return out, nil
}

func (ps *learningPathService) ListRelated(dbc dbctx.Context, pathID uuid.UUID, limit int) ([]*types.LearningPath, error) {
	if limit <= 0 {
		limit = defaultPathShelf
	}
	p, err := ps.pathRepo.GetByID(dbc, pathID)
	if err != nil {
		return nil, apierr.MapDB("get learning path", err)
	}
	if p == nil || !ps.visible(dbc, p) {
		return nil, apierr.NotFound("learning path %s", pathID)
	}
	own := make(map[string]bool)
	for _, t := range decodeList(p.Tags) {
		own[t] = true
	}
	yes := true
	candidates, _, err := ps.pathRepo.List(dbc, repos.PathFilter{Published: &yes, ExcludeID: p.ID, Limit: 100})
	if err != nil {
		return nil, apierr.MapDB("list related paths", err)
	}
	shared := make(map[uuid.UUID]int, len(candidates))
	for _, c := range candidates {
		for _, t := range decodeList(c.Tags) {
			if own[t] {
				shared[c.ID]++
			}
		}
	}
	// Stable keeps the repo's newest-first order among equal overlaps.
	sort.SliceStable(candidates, func(i, j int) bool {
		return shared[candidates[i].ID] > shared[candidates[j].ID]
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

func (ps *learningPathService) UpdatePath(dbc dbctx.Context, pathID uuid.UUID, patch LearningPathPatch) (*types.LearningPath, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.LearningPath
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadPath(dbc, pathID); err != nil {
			return err
		}
		fields := map[string]any{}
		if patch.Title != nil {
			t := strings.TrimSpace(*patch.Title)
			if t == "" {
				return apierr.Invalid("title must not be empty")
			}
			fields["title"] = t
		}
		if patch.Slug != nil {
			slug := Slugify(*patch.Slug)
			if slug == "" {
				return apierr.Invalid("slug must not be empty")
			}
			fields["slug"] = slug
		}
		if patch.Description != nil {
			fields["description"] = *patch.Description
		}
		if patch.LongDescription != nil {
			fields["long_description"] = *patch.LongDescription
		}
		if patch.CoverImage != nil {
			fields["cover_image"] = *patch.CoverImage
		}
		if patch.Difficulty != nil {
			d, err := normalizeDifficulty(*patch.Difficulty)
			if err != nil {
				return err
			}
			fields["difficulty"] = d
		}
		if patch.EstimatedHours != nil {
			if *patch.EstimatedHours < 0 {
				return apierr.Invalid("estimated hours must not be negative")
			}
			fields["estimated_hours"] = *patch.EstimatedHours
		}
		if patch.IsFeatured != nil {
			fields["is_featured"] = *patch.IsFeatured
		}
		if err := setJSONList(fields, "tags", patch.Tags); err != nil {
			return err
		}
		if err := setJSONList(fields, "learning_outcomes", patch.LearningOutcomes); err != nil {
			return err
		}
		if err := setJSONList(fields, "prerequisites", patch.Prerequisites); err != nil {
			return err
		}
		if err := ps.pathRepo.UpdateFields(dbc, pathID, fields); err != nil {
			return err
		}
		var err error
		out, err = ps.pathRepo.GetByID(dbc, pathID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update learning path", err)
	}
	return out, nil
}

func (ps *learningPathService) DeletePath(dbc dbctx.Context, pathID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadPath(dbc, pathID); err != nil {
			return err
		}
		return ps.pathRepo.SoftDelete(dbc, pathID)
	})
	if err != nil {
		return apierr.MapDB("delete learning path", err)
	}
	ps.log.Info("Learning path deleted", "path_id", pathID)
	return nil
}

func (ps *learningPathService) SetPublished(dbc dbctx.Context, pathID uuid.UUID, published bool) (*types.LearningPath, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.LearningPath
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		p, err := ps.loadPath(dbc, pathID)
		if err != nil {
			return err
		}
		if err := ps.pathRepo.UpdateFields(dbc, p.ID, map[string]any{"is_published": published}); err != nil {
			return err
		}
		out, err = ps.pathRepo.GetByID(dbc, p.ID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("publish learning path", err)
	}
	return out, nil
}

func (ps *learningPathService) loadPath(dbc dbctx.Context, pathID uuid.UUID) (*types.LearningPath, error) {
	p, err := ps.pathRepo.GetByID(dbc, pathID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("learning path %s", pathID)
	}
	return p, nil
}

func (ps *learningPathService) loadLink(dbc dbctx.Context, pathID, courseID uuid.UUID) (*types.CourseLearningPath, error) {
	if _, err := ps.loadPath(dbc, pathID); err != nil {
		return nil, err
	}
	link, err := ps.linkRepo.GetByPathCourse(dbc, pathID, courseID)
	if err != nil {
		return nil, err
	}
	if link == nil {
		return nil, apierr.NotFound("course %s is not in learning path %s", courseID, pathID)
	}
	return link, nil
}

func (ps *learningPathService) AttachCourse(dbc dbctx.Context, pathID, courseID uuid.UUID) (*types.CourseLearningPath, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var link *types.CourseLearningPath
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadPath(dbc, pathID); err != nil {
			return err
		}
		c, err := ps.courseRepo.GetByID(dbc, courseID)
		if err != nil {
			return err
		}
		if c == nil {
			return apierr.NotFound("course %s", courseID)
		}
		existing, err := ps.linkRepo.GetByPathCourse(dbc, pathID, courseID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: course %s already in learning path %s", apierr.ErrConflict, courseID, pathID)
		}
		next, err := ps.orders.NextOrder(dbc, ordering.PathCourses, pathID)
		if err != nil {
			return err
		}
		link = &types.CourseLearningPath{LearningPathID: pathID, CourseID: courseID, OrderIndex: next}
		_, err = ps.linkRepo.Create(dbc, link)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("attach course", err)
	}
	return link, nil
}

func (ps *learningPathService) DetachCourse(dbc dbctx.Context, pathID, courseID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		link, err := ps.loadLink(dbc, pathID, courseID)
		if err != nil {
			return err
		}
		if err := ps.linkRepo.Delete(dbc, link.ID); err != nil {
			return err
		}
		return ps.orders.Compact(dbc, ordering.PathCourses, pathID, link.OrderIndex)
	})
	return apierr.MapDB("detach course", err)
}

func (ps *learningPathService) ReorderCourse(dbc dbctx.Context, pathID, courseID uuid.UUID, newOrder int) (*types.CourseLearningPath, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.CourseLearningPath
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		link, err := ps.loadLink(dbc, pathID, courseID)
		if err != nil {
			return err
		}
		if _, err := ps.orders.Reorder(dbc, ordering.PathCourses, link.ID, newOrder); err != nil {
			return err
		}
		out, err = ps.linkRepo.GetByID(dbc, link.ID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("reorder path course", err)
	}
	return out, nil
}
