package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/cache"
	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/repositories"
)

type AssessmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAssessmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{db: db, cacheManager: cacheManager}
}

// getDB returns the transaction DB if provided, otherwise the default DB.
func (a *AssessmentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AssessmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error {
	if err := a.getDB(tx).WithContext(ctx).Create(assessment).Error; err != nil {
		return fmt.Errorf("failed to create assessment: %w", err)
	}
	cache.InvalidateUserAnalytics(ctx, a.cacheManager, assessment.UserID)
	return nil
}

// GetByID retrieves an assessment by ID with caching. Transactional reads
// bypass the cache so they see uncommitted writes.
func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) {
	if tx != nil {
		return a.fetchByID(ctx, tx, id)
	}

	cacheKey := fmt.Sprintf("id:%d", id)
	var assessment models.Assessment

	err := a.cacheManager.Assessment.CacheOrExecute(ctx, cacheKey, &assessment, cache.AssessmentCacheConfig.TTL, func() (interface{}, error) {
		return a.fetchByID(ctx, a.db, id)
	})
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) fetchByID(ctx context.Context, db *gorm.DB, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := db.WithContext(ctx).First(&assessment, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get assessment: %w", err)
	}
	return &assessment, nil
}

// GetByIDWithQuestions retrieves an assessment with its question set.
func (a *AssessmentPostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error) {
	if tx != nil {
		return a.fetchWithQuestions(ctx, tx, id)
	}

	cacheKey := fmt.Sprintf("details:%d", id)
	var assessment models.Assessment

	err := a.cacheManager.Assessment.CacheOrExecute(ctx, cacheKey, &assessment, cache.AssessmentCacheConfig.TTL, func() (interface{}, error) {
		return a.fetchWithQuestions(ctx, a.db, id)
	})
	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) fetchWithQuestions(ctx context.Context, db *gorm.DB, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	err := db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.id ASC")
		}).
		First(&assessment, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get assessment details: %w", err)
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, activeOnly bool) ([]models.Assessment, error) {
	query := a.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if activeOnly {
		query = query.Where("status = ?", models.StatusPending)
	}

	var assessments []models.Assessment
	if err := query.Find(&assessments).Error; err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	return assessments, nil
}

func (a *AssessmentPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.AssessmentStatus) error {
	var current models.Assessment
	if err := a.getDB(tx).WithContext(ctx).Select("id, user_id").First(&current, id).Error; err != nil {
		return fmt.Errorf("failed to get assessment before status update: %w", err)
	}

	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Assessment{}).
		Where("id = ?", id).
		Update("status", status).Error
	if err != nil {
		return fmt.Errorf("failed to update assessment status: %w", err)
	}

	cache.InvalidateAssessmentCache(ctx, a.cacheManager, id, current.UserID)
	return nil
}

// MarkExpired performs the conditional pending-to-expired transition. The
// WHERE clause on status makes the sweep idempotent and safe against a
// concurrent submission winning the race.
func (a *AssessmentPostgreSQL) MarkExpired(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	result := a.getDB(tx).WithContext(ctx).
		Model(&models.Assessment{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Update("status", models.StatusExpired)
	if result.Error != nil {
		return false, fmt.Errorf("failed to mark assessment expired: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		var current models.Assessment
		if err := a.getDB(tx).WithContext(ctx).Select("id, user_id").First(&current, id).Error; err == nil {
			cache.InvalidateAssessmentCache(ctx, a.cacheManager, id, current.UserID)
		}
		return true, nil
	}
	return false, nil
}

func (a *AssessmentPostgreSQL) FindOverdueIDs(ctx context.Context, tx *gorm.DB, userID uint, now time.Time) ([]uint, error) {
	var ids []uint
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Assessment{}).
		Where("user_id = ? AND status = ? AND due_date <= ?", userID, models.StatusPending, now).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find overdue assessments: %w", err)
	}
	return ids, nil
}

func (a *AssessmentPostgreSQL) SetResult(ctx context.Context, tx *gorm.DB, id uint, score int, status models.AssessmentStatus) error {
	var current models.Assessment
	if err := a.getDB(tx).WithContext(ctx).Select("id, user_id").First(&current, id).Error; err != nil {
		return fmt.Errorf("failed to get assessment before result update: %w", err)
	}

	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Assessment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"score":  score,
			"status": status,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to set assessment result: %w", err)
	}

	cache.InvalidateAssessmentCache(ctx, a.cacheManager, id, current.UserID)
	return nil
}
