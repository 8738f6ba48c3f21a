package learningpath

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type PathModuleRepo interface {
	Create(dbc dbctx.Context, m *types.LearningPathModule) (*types.LearningPathModule, error)
	GetByID(dbc dbctx.Context, moduleID uuid.UUID) (*types.LearningPathModule, error)
	ListByPath(dbc dbctx.Context, pathID uuid.UUID) ([]*types.LearningPathModule, error)
	UpdateFields(dbc dbctx.Context, moduleID uuid.UUID, fields map[string]any) error
	// Delete removes the module and its items.
	Delete(dbc dbctx.Context, moduleID uuid.UUID) error

	CreateItem(dbc dbctx.Context, item *types.LearningPathItem) (*types.LearningPathItem, error)
	GetItemByID(dbc dbctx.Context, itemID uuid.UUID) (*types.LearningPathItem, error)
	ListItemsByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]*types.LearningPathItem, error)
	UpdateItemFields(dbc dbctx.Context, itemID uuid.UUID, fields map[string]any) error
	DeleteItem(dbc dbctx.Context, itemID uuid.UUID) error
}

type pathModuleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPathModuleRepo(db *gorm.DB, baseLog *logger.Logger) PathModuleRepo {
	return &pathModuleRepo{db: db, log: baseLog.With("repo", "PathModuleRepo")}
}

func (r *pathModuleRepo) Create(dbc dbctx.Context, m *types.LearningPathModule) (*types.LearningPathModule, error) {
	if err := dbc.DB(r.db).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pathModuleRepo) GetByID(dbc dbctx.Context, moduleID uuid.UUID) (*types.LearningPathModule, error) {
	var m types.LearningPathModule
	if err := dbc.DB(r.db).Where("id = ?", moduleID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *pathModuleRepo) ListByPath(dbc dbctx.Context, pathID uuid.UUID) ([]*types.LearningPathModule, error) {
	var results []*types.LearningPathModule
	if err := dbc.DB(r.db).
		Where("learning_path_id = ?", pathID).
		Order("order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *pathModuleRepo) UpdateFields(dbc dbctx.Context, moduleID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.LearningPathModule{}).Where("id = ?", moduleID).Updates(fields).Error
}

func (r *pathModuleRepo) Delete(dbc dbctx.Context, moduleID uuid.UUID) error {
	tx := dbc.DB(r.db)
	if err := tx.Where("module_id = ?", moduleID).Delete(&types.LearningPathItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", moduleID).Delete(&types.LearningPathModule{}).Error
}

func (r *pathModuleRepo) CreateItem(dbc dbctx.Context, item *types.LearningPathItem) (*types.LearningPathItem, error) {
	if err := dbc.DB(r.db).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *pathModuleRepo) GetItemByID(dbc dbctx.Context, itemID uuid.UUID) (*types.LearningPathItem, error) {
	var item types.LearningPathItem
	if err := dbc.DB(r.db).Where("id = ?", itemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *pathModuleRepo) ListItemsByModuleIDs(dbc dbctx.Context, moduleIDs []uuid.UUID) ([]*types.LearningPathItem, error) {
	var results []*types.LearningPathItem
	if len(moduleIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("module_id IN ?", moduleIDs).
		Order("module_id, order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *pathModuleRepo) UpdateItemFields(dbc dbctx.Context, itemID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.LearningPathItem{}).Where("id = ?", itemID).Updates(fields).Error
}

func (r *pathModuleRepo) DeleteItem(dbc dbctx.Context, itemID uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", itemID).Delete(&types.LearningPathItem{}).Error
}
