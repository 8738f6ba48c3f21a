package gamification

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type AwardRepo interface {
	Create(dbc dbctx.Context, a *types.Award) (*types.Award, error)
	GetByID(dbc dbctx.Context, awardID uuid.UUID) (*types.Award, error)
	ListActive(dbc dbctx.Context) ([]*types.Award, error)
	ListByCategory(dbc dbctx.Context, category string) ([]*types.Award, error)
	UpdateFields(dbc dbctx.Context, awardID uuid.UUID, fields map[string]any) error
	// Delete removes the award and every grant of it.
	Delete(dbc dbctx.Context, awardID uuid.UUID) error
}

type awardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAwardRepo(db *gorm.DB, baseLog *logger.Logger) AwardRepo {
	return &awardRepo{db: db, log: baseLog.With("repo", "AwardRepo")}
}

func (r *awardRepo) Create(dbc dbctx.Context, a *types.Award) (*types.Award, error) {
	if err := dbc.DB(r.db).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *awardRepo) GetByID(dbc dbctx.Context, awardID uuid.UUID) (*types.Award, error) {
	var a types.Award
	if err := dbc.DB(r.db).Where("id = ?", awardID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *awardRepo) ListActive(dbc dbctx.Context) ([]*types.Award, error) {
	var results []*types.Award
	if err := dbc.DB(r.db).Where("is_active = ?", true).Order("points ASC, name ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *awardRepo) ListByCategory(dbc dbctx.Context, category string) ([]*types.Award, error) {
	var results []*types.Award
	if err := dbc.DB(r.db).
		Where("is_active = ? AND category = ?", true, category).
		Order("points ASC, name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *awardRepo) UpdateFields(dbc dbctx.Context, awardID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Award{}).Where("id = ?", awardID).Updates(fields).Error
}

func (r *awardRepo) Delete(dbc dbctx.Context, awardID uuid.UUID) error {
	tx := dbc.DB(r.db)
	if err := tx.Where("award_id = ?", awardID).Delete(&types.UserAward{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", awardID).Delete(&types.Award{}).Error
}
