package marketing

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type SubscriberFilter struct {
	ActiveOnly bool
	Offset     int
	Limit      int
}

type PrelaunchSubscriberRepo interface {
	Create(dbc dbctx.Context, s *types.PrelaunchSubscriber) (*types.PrelaunchSubscriber, error)
	GetByID(dbc dbctx.Context, subscriberID uuid.UUID) (*types.PrelaunchSubscriber, error)
	GetByEmail(dbc dbctx.Context, campaignID uuid.UUID, email string) (*types.PrelaunchSubscriber, error)
	ListByCampaign(dbc dbctx.Context, campaignID uuid.UUID, f SubscriberFilter) ([]*types.PrelaunchSubscriber, int64, error)
	CountActive(dbc dbctx.Context, campaignID uuid.UUID) (int64, error)
	CountAll(dbc dbctx.Context, campaignID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, subscriberID uuid.UUID, fields map[string]any) error
}

type prelaunchSubscriberRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPrelaunchSubscriberRepo(db *gorm.DB, baseLog *logger.Logger) PrelaunchSubscriberRepo {
	return &prelaunchSubscriberRepo{db: db, log: baseLog.With("repo", "PrelaunchSubscriberRepo")}
}

func (r *prelaunchSubscriberRepo) Create(dbc dbctx.Context, s *types.PrelaunchSubscriber) (*types.PrelaunchSubscriber, error) {
	if err := dbc.DB(r.db).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *prelaunchSubscriberRepo) GetByID(dbc dbctx.Context, subscriberID uuid.UUID) (*types.PrelaunchSubscriber, error) {
	return r.first(dbc.DB(r.db).Where("id = ?", subscriberID))
}

func (r *prelaunchSubscriberRepo) GetByEmail(dbc dbctx.Context, campaignID uuid.UUID, email string) (*types.PrelaunchSubscriber, error) {
	return r.first(dbc.DB(r.db).Where("campaign_id = ? AND email = ?", campaignID, email))
}

func (r *prelaunchSubscriberRepo) first(q *gorm.DB) (*types.PrelaunchSubscriber, error) {
	var s types.PrelaunchSubscriber
	if err := q.First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *prelaunchSubscriberRepo) ListByCampaign(dbc dbctx.Context, campaignID uuid.UUID, f SubscriberFilter) ([]*types.PrelaunchSubscriber, int64, error) {
	q := dbc.DB(r.db).Model(&types.PrelaunchSubscriber{}).Where("campaign_id = ?", campaignID)
	if f.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	var results []*types.PrelaunchSubscriber
	if err := q.Session(&gorm.Session{}).
		Order("subscribed_at ASC").
		Offset(f.Offset).
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func (r *prelaunchSubscriberRepo) CountActive(dbc dbctx.Context, campaignID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.PrelaunchSubscriber{}).
		Where("campaign_id = ? AND is_active = ?", campaignID, true).
		Count(&n).Error
	return n, err
}

func (r *prelaunchSubscriberRepo) CountAll(dbc dbctx.Context, campaignID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.PrelaunchSubscriber{}).
		Where("campaign_id = ?", campaignID).
		Count(&n).Error
	return n, err
}

func (r *prelaunchSubscriberRepo) UpdateFields(dbc dbctx.Context, subscriberID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.PrelaunchSubscriber{}).Where("id = ?", subscriberID).Updates(fields).Error
}
