package marketing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type MarketingBannerRepo interface {
	Create(dbc dbctx.Context, b *types.MarketingBanner) (*types.MarketingBanner, error)
	GetByID(dbc dbctx.Context, bannerID uuid.UUID) (*types.MarketingBanner, error)
	// ListActive returns active banners whose window contains now and whose
	// audience includes the caller, highest priority first.
	ListActive(dbc dbctx.Context, now time.Time, loggedIn bool) ([]*types.MarketingBanner, error)
	List(dbc dbctx.Context) ([]*types.MarketingBanner, error)
	UpdateFields(dbc dbctx.Context, bannerID uuid.UUID, fields map[string]any) error
	Delete(dbc dbctx.Context, bannerID uuid.UUID) error
	// IncrementStats adds deltas (keyed by counter column) to a banner.
	IncrementStats(dbc dbctx.Context, bannerID uuid.UUID, deltas map[string]int64) error
}

type marketingBannerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMarketingBannerRepo(db *gorm.DB, baseLog *logger.Logger) MarketingBannerRepo {
	return &marketingBannerRepo{db: db, log: baseLog.With("repo", "MarketingBannerRepo")}
}

var counterColumns = map[string]bool{
	"impressions": true,
	"clicks":      true,
	"dismissals":  true,
	"conversions": true,
}

func (r *marketingBannerRepo) Create(dbc dbctx.Context, b *types.MarketingBanner) (*types.MarketingBanner, error) {
	if err := dbc.DB(r.db).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *marketingBannerRepo) GetByID(dbc dbctx.Context, bannerID uuid.UUID) (*types.MarketingBanner, error) {
	var b types.MarketingBanner
	if err := dbc.DB(r.db).Where("id = ?", bannerID).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *marketingBannerRepo) ListActive(dbc dbctx.Context, now time.Time, loggedIn bool) ([]*types.MarketingBanner, error) {
	q := dbc.DB(r.db).
		Where("is_active = ?", true).
		Where("(start_date IS NULL OR start_date <= ?)", now).
		Where("(end_date IS NULL OR end_date >= ?)", now)
	if loggedIn {
		q = q.Where("show_to_logged_in = ?", true)
	} else {
		q = q.Where("show_to_anonymous = ?", true)
	}
	var results []*types.MarketingBanner
	if err := q.Order("priority DESC, created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *marketingBannerRepo) List(dbc dbctx.Context) ([]*types.MarketingBanner, error) {
	var results []*types.MarketingBanner
	if err := dbc.DB(r.db).Order("priority DESC, created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *marketingBannerRepo) UpdateFields(dbc dbctx.Context, bannerID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.MarketingBanner{}).Where("id = ?", bannerID).Updates(fields).Error
}

func (r *marketingBannerRepo) Delete(dbc dbctx.Context, bannerID uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", bannerID).Delete(&types.MarketingBanner{}).Error
}

func (r *marketingBannerRepo) IncrementStats(dbc dbctx.Context, bannerID uuid.UUID, deltas map[string]int64) error {
	updates := make(map[string]any, len(deltas)+1)
	for col, n := range deltas {
		if !counterColumns[col] {
			return errors.New("unknown banner counter " + col)
		}
		if n == 0 {
			continue
		}
		updates[col] = gorm.Expr(col+" + ?", n)
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).Model(&types.MarketingBanner{}).Where("id = ?", bannerID).UpdateColumns(updates).Error
}
