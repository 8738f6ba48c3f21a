package services

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/domain/learningpath"
	"github.com/yungbote/coursekit-backend/internal/learning/ordering"
	"github.com/yungbote/coursekit-backend/internal/platform/apierr"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
)

type PathModuleInput struct {
	Title         string
	Description   string
	EstimatedTime string
	IsPremium     bool
	IsUnlocked    bool
	StartURL      string
}

type PathModulePatch struct {
	Title         *string
	Description   *string
	EstimatedTime *string
	IsPremium     *bool
	IsUnlocked    *bool
	StartURL      *string
}

type PathItemInput struct {
	Title    string
	ItemType string
	URL      string
}

type PathItemPatch struct {
	Title    *string
	ItemType *string
	URL      *string
}

type PathResourceInput struct {
	Title        string
	Description  string
	ResourceType string
	URL          string
}

type PathResourcePatch struct {
	Title        *string
	Description  *string
	ResourceType *string
	URL          *string
}

func requiredTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", apierr.Invalid("title is required")
	}
	return t, nil
}

func patchTitle(fields map[string]any, title *string) error {
	if title == nil {
		return nil
	}
	t := strings.TrimSpace(*title)
	if t == "" {
		return apierr.Invalid("title must not be empty")
	}
	fields["title"] = t
	return nil
}

func itemType(t string) (string, error) {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return learningpath.ItemArticle, nil
	}
	if !learningpath.ValidItemType(t) {
		return "", apierr.Invalid("unknown item type %q", t)
	}
	return t, nil
}

func resourceType(t string) (string, error) {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return learningpath.ResourceOther, nil
	}
	if !learningpath.ValidResourceType(t) {
		return "", apierr.Invalid("unknown resource type %q", t)
	}
	return t, nil
}

func (ps *learningPathService) loadModule(dbc dbctx.Context, moduleID uuid.UUID) (*types.LearningPathModule, error) {
	m, err := ps.moduleRepo.GetByID(dbc, moduleID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apierr.NotFound("path module %s", moduleID)
	}
	return m, nil
}

func (ps *learningPathService) loadItem(dbc dbctx.Context, itemID uuid.UUID) (*types.LearningPathItem, error) {
	it, err := ps.moduleRepo.GetItemByID(dbc, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, apierr.NotFound("path item %s", itemID)
	}
	return it, nil
}

func (ps *learningPathService) loadResource(dbc dbctx.Context, resourceID uuid.UUID) (*types.LearningPathResource, error) {
	res, err := ps.resourceRepo.GetByID(dbc, resourceID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apierr.NotFound("path resource %s", resourceID)
	}
	return res, nil
}

func (ps *learningPathService) AddModule(dbc dbctx.Context, pathID uuid.UUID, in PathModuleInput) (*types.LearningPathModule, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	title, err := requiredTitle(in.Title)
	if err != nil {
		return nil, err
	}
	var out *types.LearningPathModule
	err = db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadPath(dbc, pathID); err != nil {
			return err
		}
		next, err := ps.orders.NextOrder(dbc, ordering.PathModules, pathID)
		if err != nil {
			return err
		}
		out = &types.LearningPathModule{
			LearningPathID: pathID,
			OrderIndex:     next,
			Title:          title,
			Description:    in.Description,
			EstimatedTime:  in.EstimatedTime,
			IsPremium:      in.IsPremium,
			IsUnlocked:     in.IsUnlocked,
			StartURL:       in.StartURL,
		}
		_, err = ps.moduleRepo.Create(dbc, out)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("add path module", err)
	}
	return out, nil
}

func (ps *learningPathService) UpdateModule(dbc dbctx.Context, moduleID uuid.UUID, patch PathModulePatch) (*types.LearningPathModule, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.LearningPathModule
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadModule(dbc, moduleID); err != nil {
			return err
		}
		fields := map[string]any{}
		if err := patchTitle(fields, patch.Title); err != nil {
			return err
		}
		if patch.Description != nil {
			fields["description"] = *patch.Description
		}
		if patch.EstimatedTime != nil {
			fields["estimated_time"] = *patch.EstimatedTime
		}
		if patch.IsPremium != nil {
			fields["is_premium"] = *patch.IsPremium
		}
		if patch.IsUnlocked != nil {
			fields["is_unlocked"] = *patch.IsUnlocked
		}
		if patch.StartURL != nil {
			fields["start_url"] = *patch.StartURL
		}
		if err := ps.moduleRepo.UpdateFields(dbc, moduleID, fields); err != nil {
			return err
		}
		var err error
		out, err = ps.moduleRepo.GetByID(dbc, moduleID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update path module", err)
	}
	return out, nil
}

func (ps *learningPathService) DeleteModule(dbc dbctx.Context, moduleID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		m, err := ps.loadModule(dbc, moduleID)
		if err != nil {
			return err
		}
		if err := ps.moduleRepo.Delete(dbc, m.ID); err != nil {
			return err
		}
		return ps.orders.Compact(dbc, ordering.PathModules, m.LearningPathID, m.OrderIndex)
	})
	return apierr.MapDB("delete path module", err)
}

func (ps *learningPathService) ReorderModule(dbc dbctx.Context, moduleID uuid.UUID, newOrder int) (*types.LearningPathModule, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.LearningPathModule
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.orders.Reorder(dbc, ordering.PathModules, moduleID, newOrder); err != nil {
			return err
		}
		var err error
		out, err = ps.loadModule(dbc, moduleID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("reorder path module", err)
	}
	return out, nil
}

func (ps *learningPathService) AddItem(dbc dbctx.Context, moduleID uuid.UUID, in PathItemInput) (*types.LearningPathItem, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	title, err := requiredTitle(in.Title)
	if err != nil {
		return nil, err
	}
	kind, err := itemType(in.ItemType)
	if err != nil {
		return nil, err
	}
	var out *types.LearningPathItem
	err = db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadModule(dbc, moduleID); err != nil {
			return err
		}
		next, err := ps.orders.NextOrder(dbc, ordering.PathItems, moduleID)
		if err != nil {
			return err
		}
		out = &types.LearningPathItem{ModuleID: moduleID, OrderIndex: next, Title: title, ItemType: kind, URL: in.URL}
		_, err = ps.moduleRepo.CreateItem(dbc, out)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("add path item", err)
	}
	return out, nil
}

func (ps *learningPathService) UpdateItem(dbc dbctx.Context, itemID uuid.UUID, patch PathItemPatch) (*types.LearningPathItem, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.LearningPathItem
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadItem(dbc, itemID); err != nil {
			return err
		}
		fields := map[string]any{}
		if err := patchTitle(fields, patch.Title); err != nil {
			return err
		}
		if patch.ItemType != nil {
			kind, err := itemType(*patch.ItemType)
			if err != nil {
				return err
			}
			fields["item_type"] = kind
		}
		if patch.URL != nil {
			fields["url"] = *patch.URL
		}
		if err := ps.moduleRepo.UpdateItemFields(dbc, itemID, fields); err != nil {
			return err
		}
		var err error
		out, err = ps.moduleRepo.GetItemByID(dbc, itemID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update path item", err)
	}
	return out, nil
}

func (ps *learningPathService) DeleteItem(dbc dbctx.Context, itemID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		it, err := ps.loadItem(dbc, itemID)
		if err != nil {
			return err
		}
		if err := ps.moduleRepo.DeleteItem(dbc, it.ID); err != nil {
			return err
		}
		return ps.orders.Compact(dbc, ordering.PathItems, it.ModuleID, it.OrderIndex)
	})
	return apierr.MapDB("delete path item", err)
}

func (ps *learningPathService) ReorderItem(dbc dbctx.Context, itemID uuid.UUID, newOrder int) (*types.LearningPathItem, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.LearningPathItem
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.orders.Reorder(dbc, ordering.PathItems, itemID, newOrder); err != nil {
			return err
		}
		var err error
		out, err = ps.loadItem(dbc, itemID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("reorder path item", err)
	}
	return out, nil
}

func (ps *learningPathService) AddResource(dbc dbctx.Context, pathID uuid.UUID, in PathResourceInput) (*types.LearningPathResource, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	title, err := requiredTitle(in.Title)
	if err != nil {
		return nil, err
	}
	kind, err := resourceType(in.ResourceType)
	if err != nil {
		return nil, err
	}
	var out *types.LearningPathResource
	err = db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadPath(dbc, pathID); err != nil {
			return err
		}
		out = &types.LearningPathResource{
			LearningPathID: pathID,
			Title:          title,
			Description:    in.Description,
			ResourceType:   kind,
			URL:            in.URL,
		}
		_, err := ps.resourceRepo.Create(dbc, out)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("add path resource", err)
	}
	return out, nil
}

func (ps *learningPathService) UpdateResource(dbc dbctx.Context, resourceID uuid.UUID, patch PathResourcePatch) (*types.LearningPathResource, error) {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return nil, err
	}
	var out *types.LearningPathResource
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadResource(dbc, resourceID); err != nil {
			return err
		}
		fields := map[string]any{}
		if err := patchTitle(fields, patch.Title); err != nil {
			return err
		}
		if patch.Description != nil {
			fields["description"] = *patch.Description
		}
		if patch.ResourceType != nil {
			kind, err := resourceType(*patch.ResourceType)
			if err != nil {
				return err
			}
			fields["resource_type"] = kind
		}
		if patch.URL != nil {
			fields["url"] = *patch.URL
		}
		if err := ps.resourceRepo.UpdateFields(dbc, resourceID, fields); err != nil {
			return err
		}
		var err error
		out, err = ps.resourceRepo.GetByID(dbc, resourceID)
		return err
	})
	if err != nil {
		return nil, apierr.MapDB("update path resource", err)
	}
	return out, nil
}

func (ps *learningPathService) DeleteResource(dbc dbctx.Context, resourceID uuid.UUID) error {
	if _, err := requireSuperuser(dbc.Ctx); err != nil {
		return err
	}
	err := db.Within(dbc, ps.db, func(dbc dbctx.Context) error {
		if _, err := ps.loadResource(dbc, resourceID); err != nil {
			return err
		}
		return ps.resourceRepo.Delete(dbc, resourceID)
	})
	return apierr.MapDB("delete path resource", err)
}
