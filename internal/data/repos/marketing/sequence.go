package marketing

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type PrelaunchSequenceRepo interface {
	Create(dbc dbctx.Context, s *types.PrelaunchEmailSequence) (*types.PrelaunchEmailSequence, error)
	GetByID(dbc dbctx.Context, sequenceID uuid.UUID) (*types.PrelaunchEmailSequence, error)
	ListByCampaign(dbc dbctx.Context, campaignID uuid.UUID) ([]*types.PrelaunchEmailSequence, error)
	UpdateFields(dbc dbctx.Context, sequenceID uuid.UUID, fields map[string]any) error
	Delete(dbc dbctx.Context, sequenceID uuid.UUID) error

	CreateEmail(dbc dbctx.Context, e *types.PrelaunchEmail) (*types.PrelaunchEmail, error)
	GetEmailByID(dbc dbctx.Context, emailID uuid.UUID) (*types.PrelaunchEmail, error)
	// ListEmails returns a sequence's emails in send order.
	ListEmails(dbc dbctx.Context, sequenceID uuid.UUID) ([]*types.PrelaunchEmail, error)
	CountEmails(dbc dbctx.Context, sequenceID uuid.UUID) (int64, error)
	UpdateEmailFields(dbc dbctx.Context, emailID uuid.UUID, fields map[string]any) error
	DeleteEmail(dbc dbctx.Context, emailID uuid.UUID) error
	IncrementEmailStats(dbc dbctx.Context, emailID uuid.UUID, sent, opened, clicked int64) error
}

type prelaunchSequenceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPrelaunchSequenceRepo(db *gorm.DB, baseLog *logger.Logger) PrelaunchSequenceRepo {
	return &prelaunchSequenceRepo{db: db, log: baseLog.With("repo", "PrelaunchSequenceRepo")}
}

func (r *prelaunchSequenceRepo) Create(dbc dbctx.Context, s *types.PrelaunchEmailSequence) (*types.PrelaunchEmailSequence, error) {
	if err := dbc.DB(r.db).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *prelaunchSequenceRepo) GetByID(dbc dbctx.Context, sequenceID uuid.UUID) (*types.PrelaunchEmailSequence, error) {
	var s types.PrelaunchEmailSequence
	if err := dbc.DB(r.db).Where("id = ?", sequenceID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *prelaunchSequenceRepo) ListByCampaign(dbc dbctx.Context, campaignID uuid.UUID) ([]*types.PrelaunchEmailSequence, error) {
	var results []*types.PrelaunchEmailSequence
	if err := dbc.DB(r.db).
		Where("campaign_id = ?", campaignID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *prelaunchSequenceRepo) UpdateFields(dbc dbctx.Context, sequenceID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.PrelaunchEmailSequence{}).Where("id = ?", sequenceID).Updates(fields).Error
}

func (r *prelaunchSequenceRepo) Delete(dbc dbctx.Context, sequenceID uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", sequenceID).Delete(&types.PrelaunchEmailSequence{}).Error
}

func (r *prelaunchSequenceRepo) CreateEmail(dbc dbctx.Context, e *types.PrelaunchEmail) (*types.PrelaunchEmail, error) {
	if err := dbc.DB(r.db).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

func (r *prelaunchSequenceRepo) GetEmailByID(dbc dbctx.Context, emailID uuid.UUID) (*types.PrelaunchEmail, error) {
	var e types.PrelaunchEmail
	if err := dbc.DB(r.db).Where("id = ?", emailID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *prelaunchSequenceRepo) ListEmails(dbc dbctx.Context, sequenceID uuid.UUID) ([]*types.PrelaunchEmail, error) {
	var results []*types.PrelaunchEmail
	if err := dbc.DB(r.db).
		Where("sequence_id = ?", sequenceID).
		Order("delay_days ASC, created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *prelaunchSequenceRepo) CountEmails(dbc dbctx.Context, sequenceID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.PrelaunchEmail{}).Where("sequence_id = ?", sequenceID).Count(&n).Error
	return n, err
}

func (r *prelaunchSequenceRepo) UpdateEmailFields(dbc dbctx.Context, emailID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.PrelaunchEmail{}).Where("id = ?", emailID).Updates(fields).Error
}

func (r *prelaunchSequenceRepo) DeleteEmail(dbc dbctx.Context, emailID uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", emailID).Delete(&types.PrelaunchEmail{}).Error
}

func (r *prelaunchSequenceRepo) IncrementEmailStats(dbc dbctx.Context, emailID uuid.UUID, sent, opened, clicked int64) error {
	if sent == 0 && opened == 0 && clicked == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.PrelaunchEmail{}).
		Where("id = ?", emailID).
		Updates(map[string]any{
			"sent_count":  gorm.Expr("sent_count + ?", sent),
			"open_count":  gorm.Expr("open_count + ?", opened),
			"click_count": gorm.Expr("click_count + ?", clicked),
		}).Error
}
