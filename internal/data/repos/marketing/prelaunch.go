package marketing

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type CampaignFilter struct {
	// ActiveAt keeps active campaigns whose window contains the instant.
	ActiveAt *time.Time
	Offset   int
	Limit    int
}

type PrelaunchCampaignRepo interface {
	Create(dbc dbctx.Context, c *types.PrelaunchCampaign) (*types.PrelaunchCampaign, error)
	GetByID(dbc dbctx.Context, campaignID uuid.UUID) (*types.PrelaunchCampaign, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.PrelaunchCampaign, error)
	List(dbc dbctx.Context, f CampaignFilter) ([]*types.PrelaunchCampaign, error)
	ListByCourse(dbc dbctx.Context, courseID uuid.UUID, f CampaignFilter) ([]*types.PrelaunchCampaign, error)
	UpdateFields(dbc dbctx.Context, campaignID uuid.UUID, fields map[string]any) error
	// Delete removes the campaign with its course links, sequences and emails.
	Delete(dbc dbctx.Context, campaignID uuid.UUID) error
	// IncrementStats adds views and signups and recomputes the conversion
	// rate in the same statement.
	IncrementStats(dbc dbctx.Context, campaignID uuid.UUID, views, signups int64) error

	AddCourse(dbc dbctx.Context, campaignID, courseID uuid.UUID) error
	RemoveCourse(dbc dbctx.Context, campaignID, courseID uuid.UUID) (bool, error)
	ListCourseIDs(dbc dbctx.Context, campaignID uuid.UUID) ([]uuid.UUID, error)
}

type prelaunchCampaignRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPrelaunchCampaignRepo(db *gorm.DB, baseLog *logger.Logger) PrelaunchCampaignRepo {
	return &prelaunchCampaignRepo{db: db, log: baseLog.With("repo", "PrelaunchCampaignRepo")}
}

func (r *prelaunchCampaignRepo) Create(dbc dbctx.Context, c *types.PrelaunchCampaign) (*types.PrelaunchCampaign, error) {
	if err := dbc.DB(r.db).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (r *prelaunchCampaignRepo) GetByID(dbc dbctx.Context, campaignID uuid.UUID) (*types.PrelaunchCampaign, error) {
	return r.first(dbc, "id = ?", campaignID)
}

func (r *prelaunchCampaignRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.PrelaunchCampaign, error) {
	return r.first(dbc, "slug = ?", slug)
}

func (r *prelaunchCampaignRepo) first(dbc dbctx.Context, where string, arg any) (*types.PrelaunchCampaign, error) {
	var c types.PrelaunchCampaign
	if err := dbc.DB(r.db).Where(where, arg).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *prelaunchCampaignRepo) scoped(q *gorm.DB, f CampaignFilter) *gorm.DB {
	if f.ActiveAt != nil {
		q = q.Where("prelaunch_campaign.is_active = ?", true).
			Where("(prelaunch_campaign.start_date IS NULL OR prelaunch_campaign.start_date <= ?)", *f.ActiveAt).
			Where("(prelaunch_campaign.end_date IS NULL OR prelaunch_campaign.end_date >= ?)", *f.ActiveAt)
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return q.Order("prelaunch_campaign.created_at DESC").Offset(f.Offset).Limit(limit)
}

func (r *prelaunchCampaignRepo) List(dbc dbctx.Context, f CampaignFilter) ([]*types.PrelaunchCampaign, error) {
	var results []*types.PrelaunchCampaign
	if err := r.scoped(dbc.DB(r.db), f).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *prelaunchCampaignRepo) ListByCourse(dbc dbctx.Context, courseID uuid.UUID, f CampaignFilter) ([]*types.PrelaunchCampaign, error) {
	q := dbc.DB(r.db).
		Joins("JOIN prelaunch_campaign_course pcc ON pcc.campaign_id = prelaunch_campaign.id").
		Where("pcc.course_id = ?", courseID)
	var results []*types.PrelaunchCampaign
	if err := r.scoped(q, f).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *prelaunchCampaignRepo) UpdateFields(dbc dbctx.Context, campaignID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.PrelaunchCampaign{}).Where("id = ?", campaignID).Updates(fields).Error
}

func (r *prelaunchCampaignRepo) Delete(dbc dbctx.Context, campaignID uuid.UUID) error {
	tx := dbc.DB(r.db)
	sequences := tx.Model(&types.PrelaunchEmailSequence{}).Select("id").Where("campaign_id = ?", campaignID)
	if err := tx.Where("sequence_id IN (?)", sequences).Delete(&types.PrelaunchEmail{}).Error; err != nil {
		return err
	}
	for _, child := range []any{&types.PrelaunchEmailSequence{}, &types.PrelaunchCampaignCourse{}, &types.PrelaunchSubscriber{}} {
		if err := tx.Where("campaign_id = ?", campaignID).Delete(child).Error; err != nil {
			return err
		}
	}
	return tx.Where("id = ?", campaignID).Delete(&types.PrelaunchCampaign{}).Error
}

func (r *prelaunchCampaignRepo) IncrementStats(dbc dbctx.Context, campaignID uuid.UUID, views, signups int64) error {
	if views == 0 && signups == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.PrelaunchCampaign{}).
		Where("id = ?", campaignID).
		Updates(map[string]any{
			"view_count":   gorm.Expr("view_count + ?", views),
			"signup_count": gorm.Expr("signup_count + ?", signups),
			"conversion_rate": gorm.Expr(
				"CASE WHEN view_count + ? > 0 THEN ((signup_count + ?) * 100) / (view_count + ?) ELSE 0 END",
				views, signups, views,
			),
		}).Error
}

func (r *prelaunchCampaignRepo) AddCourse(dbc dbctx.Context, campaignID, courseID uuid.UUID) error {
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&types.PrelaunchCampaignCourse{CampaignID: campaignID, CourseID: courseID}).Error
}

func (r *prelaunchCampaignRepo) RemoveCourse(dbc dbctx.Context, campaignID, courseID uuid.UUID) (bool, error) {
	res := dbc.DB(r.db).
		Where("campaign_id = ? AND course_id = ?", campaignID, courseID).
		Delete(&types.PrelaunchCampaignCourse{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *prelaunchCampaignRepo) ListCourseIDs(dbc dbctx.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := dbc.DB(r.db).Model(&types.PrelaunchCampaignCourse{}).
		Where("campaign_id = ?", campaignID).
		Order("created_at ASC").
		Pluck("course_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
