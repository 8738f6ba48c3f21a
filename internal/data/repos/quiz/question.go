package quiz

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/coursekit-backend/internal/domain"
	"github.com/yungbote/coursekit-backend/internal/platform/dbctx"
	"github.com/yungbote/coursekit-backend/internal/platform/logger"
)

type QuizQuestionRepo interface {
	Create(dbc dbctx.Context, questions []*types.QuizQuestion) ([]*types.QuizQuestion, error)
	ListByQuizID(dbc dbctx.Context, quizID uuid.UUID) ([]*types.QuizQuestion, error)
	CreateAnswers(dbc dbctx.Context, answers []*types.QuizAnswer) ([]*types.QuizAnswer, error)
	ListAnswersByQuestionIDs(dbc dbctx.Context, questionIDs []uuid.UUID) ([]*types.QuizAnswer, error)
	GetByID(dbc dbctx.Context, questionID uuid.UUID) (*types.QuizQuestion, error)
	UpdateFields(dbc dbctx.Context, questionID uuid.UUID, fields map[string]any) error
	// DeleteByIDs removes questions together with their answers.
	DeleteByIDs(dbc dbctx.Context, questionIDs []uuid.UUID) error
	GetAnswerByID(dbc dbctx.Context, answerID uuid.UUID) (*types.QuizAnswer, error)
	UpdateAnswerFields(dbc dbctx.Context, answerID uuid.UUID, fields map[string]any) error
	DeleteAnswer(dbc dbctx.Context, answerID uuid.UUID) error
}

type quizQuestionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuizQuestionRepo {
	return &quizQuestionRepo{db: db, log: baseLog.With("repo", "QuizQuestionRepo")}
}

func (r *quizQuestionRepo) Create(dbc dbctx.Context, questions []*types.QuizQuestion) ([]*types.QuizQuestion, error) {
	if len(questions) == 0 {
		return []*types.QuizQuestion{}, nil
	}
	if err := dbc.DB(r.db).Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *quizQuestionRepo) ListByQuizID(dbc dbctx.Context, quizID uuid.UUID) ([]*types.QuizQuestion, error) {
	var results []*types.QuizQuestion
	if err := dbc.DB(r.db).
		Where("quiz_id = ?", quizID).
		Order("order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizQuestionRepo) CreateAnswers(dbc dbctx.Context, answers []*types.QuizAnswer) ([]*types.QuizAnswer, error) {
	if len(answers) == 0 {
		return []*types.QuizAnswer{}, nil
	}
	if err := dbc.DB(r.db).Create(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *quizQuestionRepo) ListAnswersByQuestionIDs(dbc dbctx.Context, questionIDs []uuid.UUID) ([]*types.QuizAnswer, error) {
	var results []*types.QuizAnswer
	if len(questionIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(r.db).
		Where("question_id IN ?", questionIDs).
		Order("question_id, order_index ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *quizQuestionRepo) GetByID(dbc dbctx.Context, questionID uuid.UUID) (*types.QuizQuestion, error) {
	var q types.QuizQuestion
	if err := dbc.DB(r.db).Where("id = ?", questionID).First(&q).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &q, nil
}

func (r *quizQuestionRepo) UpdateFields(dbc dbctx.Context, questionID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.QuizQuestion{}).Where("id = ?", questionID).Updates(fields).Error
}

func (r *quizQuestionRepo) DeleteByIDs(dbc dbctx.Context, questionIDs []uuid.UUID) error {
	if len(questionIDs) == 0 {
		return nil
	}
	tx := dbc.DB(r.db)
	if err := tx.Where("question_id IN ?", questionIDs).Delete(&types.QuizAnswer{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", questionIDs).Delete(&types.QuizQuestion{}).Error
}

func (r *quizQuestionRepo) GetAnswerByID(dbc dbctx.Context, answerID uuid.UUID) (*types.QuizAnswer, error) {
	var a types.QuizAnswer
	if err := dbc.DB(r.db).Where("id = ?", answerID).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *quizQuestionRepo) UpdateAnswerFields(dbc dbctx.Context, answerID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.QuizAnswer{}).Where("id = ?", answerID).Updates(fields).Error
}

func (r *quizQuestionRepo) DeleteAnswer(dbc dbctx.Context, answerID uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", answerID).Delete(&types.QuizAnswer{}).Error
}
