package gamification

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type UserAwardRepo interface {
	// CreateIfAbsent inserts row unless the (user, award) pair exists.
	// It reports whether a new row was written.
	CreateIfAbsent(dbc dbctx.Context, row *types.UserAward) (bool, error)
	GetByUserAward(dbc dbctx.Context, userID, awardID uuid.UUID) (*types.UserAward, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAward, error)
}

type userAwardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAwardRepo(db *gorm.DB, baseLog *logger.Logger) UserAwardRepo {
	return &userAwardRepo{db: db, log: baseLog.With("repo", "UserAwardRepo")}
}

func (r *userAwardRepo) CreateIfAbsent(dbc dbctx.Context, row *types.UserAward) (bool, error) {
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "award_id"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userAwardRepo) GetByUserAward(dbc dbctx.Context, userID, awardID uuid.UUID) (*types.UserAward, error) {
	var row types.UserAward
	if err := dbc.DB(r.db).Where("user_id = ? AND award_id = ?", userID, awardID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *userAwardRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAward, error) {
	var results []*types.UserAward
	if err := dbc.DB(r.db).Where("user_id = ?", userID).Order("earned_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
