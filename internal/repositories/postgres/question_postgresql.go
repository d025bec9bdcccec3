package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/cache"
	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionRepository {
	return &QuestionPostgreSQL{db: db, cacheManager: cacheManager}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

// CreateBatch inserts all questions of one ingestion payload in one statement.
func (q *QuestionPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	if err := q.getDB(tx).WithContext(ctx).Create(&questions).Error; err != nil {
		return fmt.Errorf("failed to create questions: %w", err)
	}
	return nil
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.getDB(tx).WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &question, nil
}

// GetByAssessment retrieves the assessment's question set with caching.
// Transactional reads bypass the cache.
func (q *QuestionPostgreSQL) GetByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]models.Question, error) {
	if tx != nil {
		return q.fetchByAssessment(ctx, tx, assessmentID)
	}

	cacheKey := fmt.Sprintf("assessment:%d", assessmentID)
	var questions []models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &questions, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		return q.fetchByAssessment(ctx, q.db, assessmentID)
	})
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) fetchByAssessment(ctx context.Context, db *gorm.DB, assessmentID uint) ([]models.Question, error) {
	var questions []models.Question
	err := db.WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Order("id ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment questions: %w", err)
	}
	return questions, nil
}

func (q *QuestionPostgreSQL) UpdateUserChoice(ctx context.Context, tx *gorm.DB, id uint, choice string) error {
	var current models.Question
	if err := q.getDB(tx).WithContext(ctx).Select("id, assessment_id").First(&current, id).Error; err != nil {
		return fmt.Errorf("failed to get question before answer update: %w", err)
	}

	err := q.getDB(tx).WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", id).
		Update("user_choice", choice).Error
	if err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}

	cache.SafeDelete(ctx, q.cacheManager.Question, fmt.Sprintf("assessment:%d", current.AssessmentID))
	return nil
}

func (q *QuestionPostgreSQL) DeleteByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) error {
	err := q.getDB(tx).WithContext(ctx).
		Where("assessment_id = ?", assessmentID).
		Delete(&models.Question{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete assessment questions: %w", err)
	}

	cache.SafeDelete(ctx, q.cacheManager.Question, fmt.Sprintf("assessment:%d", assessmentID))
	return nil
}
