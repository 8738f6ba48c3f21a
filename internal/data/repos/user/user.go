package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/coursekit-backend/internal/data/db"
	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	// GetForUpdate row-locks the user on postgres for the rest of the transaction.
	GetForUpdate(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	UpdateGamification(dbc dbctx.Context, userID uuid.UUID, experience, totalPoints, level int) error
	TouchActivity(dbc dbctx.Context, userID uuid.UUID, at time.Time) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(gdb *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: gdb, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := dbc.DB(r.db).Create(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", userIDs).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userRepo) GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	return r.first(dbc.DB(r.db), userID)
}

func (r *userRepo) GetForUpdate(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	q := dbc.DB(r.db)
	if db.IsPostgres(q) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.first(q, userID)
}

func (r *userRepo) first(q *gorm.DB, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var u types.User
	if err := q.Where("id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) UpdateGamification(dbc dbctx.Context, userID uuid.UUID, experience, totalPoints, level int) error {
	return dbc.DB(r.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"experience":   experience,
			"total_points": totalPoints,
			"level":        level,
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (r *userRepo) TouchActivity(dbc dbctx.Context, userID uuid.UUID, at time.Time) error {
	return dbc.DB(r.db).
		Model(&types.User{}).
		Where("id = ?", userID).
		UpdateColumn("last_activity_at", at).Error
}
