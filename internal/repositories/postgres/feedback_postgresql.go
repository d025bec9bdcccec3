package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/repositories"
)

type FeedbackPostgreSQL struct {
	db *gorm.DB
}

func NewFeedbackPostgreSQL(db *gorm.DB) repositories.FeedbackRepository {
	return &FeedbackPostgreSQL{db: db}
}

func (f *FeedbackPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return f.db
}

func (f *FeedbackPostgreSQL) Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error {
	if err := f.getDB(tx).WithContext(ctx).Create(feedback).Error; err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

func (f *FeedbackPostgreSQL) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]models.Feedback, error) {
	var feedback []models.Feedback
	err := f.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&feedback).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return feedback, nil
}
