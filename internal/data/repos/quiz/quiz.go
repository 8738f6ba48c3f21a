package quiz

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type QuizRepo interface {
	Create(dbc dbctx.Context, q *types.Quiz) (*types.Quiz, error)
	GetByID(dbc dbctx.Context, quizID uuid.UUID) (*types.Quiz, error)
	ListByContent(dbc dbctx.Context, contentType string, contentID uuid.UUID) ([]*types.Quiz, error)
	UpdateFields(dbc dbctx.Context, quizID uuid.UUID, fields map[string]any) error
	SoftDeleteByIDs(dbc dbctx.Context, quizIDs []uuid.UUID) error
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{db: db, log: baseLog.With("repo", "QuizRepo")}
}

func (r *quizRepo) Create(dbc dbctx.Context, q *types.Quiz) (*types.Quiz, error) {
	if err := dbc.DB(r.db).Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}

func (r *quizRepo) GetByID(dbc dbctx.Context, quizID uuid.UUID) (*types.Quiz, error) {
	var q types.Quiz
	if err := dbc.DB(r.db).Where("id = ?", quizID).First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *quizRepo) ListByContent(dbc dbctx.Context, contentType string, contentID uuid.UUID) ([]*types.Quiz, error) {
	var results []*types.Quiz
	if err := dbc.DB(r.db).
		Where("content_type = ? AND content_id = ?", contentType, contentID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizRepo) UpdateFields(dbc dbctx.Context, quizID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Quiz{}).Where("id = ?", quizID).Updates(fields).Error
}

func (r *quizRepo) SoftDeleteByIDs(dbc dbctx.Context, quizIDs []uuid.UUID) error {
	if len(quizIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", quizIDs).Delete(&types.Quiz{}).Error
}
