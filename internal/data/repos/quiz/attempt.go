package quiz

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type UserQuizAttemptRepo interface {
	Create(dbc dbctx.Context, a *types.UserQuizAttempt) (*types.UserQuizAttempt, error)
	ListByUserQuiz(dbc dbctx.Context, userID, quizID uuid.UUID) ([]*types.UserQuizAttempt, error)
	Latest(dbc dbctx.Context, userID, quizID uuid.UUID) (*types.UserQuizAttempt, error)
	Best(dbc dbctx.Context, userID, quizID uuid.UUID) (*types.UserQuizAttempt, error)
	UpdateXPAwarded(dbc dbctx.Context, attemptID uuid.UUID, xp int) error
}

type userQuizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) UserQuizAttemptRepo {
	return &userQuizAttemptRepo{db: db, log: baseLog.With("repo", "UserQuizAttemptRepo")}
}

func (r *userQuizAttemptRepo) Create(dbc dbctx.Context, a *types.UserQuizAttempt) (*types.UserQuizAttempt, error) {
	if err := dbc.DB(r.db).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *userQuizAttemptRepo) ListByUserQuiz(dbc dbctx.Context, userID, quizID uuid.UUID) ([]*types.UserQuizAttempt, error) {
	var results []*types.UserQuizAttempt
	if err := dbc.DB(r.db).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("started_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userQuizAttemptRepo) Latest(dbc dbctx.Context, userID, quizID uuid.UUID) (*types.UserQuizAttempt, error) {
	return r.first(dbc.DB(r.db).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("started_at DESC").
		Order("created_at DESC"))
}

func (r *userQuizAttemptRepo) Best(dbc dbctx.Context, userID, quizID uuid.UUID) (*types.UserQuizAttempt, error) {
	return r.first(dbc.DB(r.db).
		Where("user_id = ? AND quiz_id = ?", userID, quizID).
		Order("score DESC").
		Order("started_at ASC"))
}

func (r *userQuizAttemptRepo) first(q *gorm.DB) (*types.UserQuizAttempt, error) {
	var a types.UserQuizAttempt
	if err := q.Limit(1).Find(&a).Error; err != nil {
		return nil, err
	}
	if a.ID == uuid.Nil {
		return nil, nil
	}
	return &a, nil
}

func (r *userQuizAttemptRepo) UpdateXPAwarded(dbc dbctx.Context, attemptID uuid.UUID, xp int) error {
	res := dbc.DB(r.db).Model(&types.UserQuizAttempt{}).Where("id = ?", attemptID).UpdateColumn("xp_awarded", xp)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.New("attempt not found")
	}
	return nil
}
