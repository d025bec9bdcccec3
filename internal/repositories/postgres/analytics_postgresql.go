package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/repositories"
)

type AnalyticsPostgreSQL struct {
	db *gorm.DB
}

func NewAnalyticsPostgreSQL(db *gorm.DB) repositories.AnalyticsRepository {
	return &AnalyticsPostgreSQL{db: db}
}

func (a *AnalyticsPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

func (a *AnalyticsPostgreSQL) CountByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Assessment{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments: %w", err)
	}
	return count, nil
}

func (a *AnalyticsPostgreSQL) CountInWindow(ctx context.Context, tx *gorm.DB, userID uint, from, to time.Time) (int64, error) {
	var count int64
	err := a.getDB(tx).WithContext(ctx).
		Model(&models.Assessment{}).
		Where("user_id = ? AND created_at BETWEEN ? AND ?", userID, from, to).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count assessments in window: %w", err)
	}
	return count, nil
}

func (a *AnalyticsPostgreSQL) FetchWindow(ctx context.Context, tx *gorm.DB, userID uint, from, to time.Time) ([]models.Assessment, error) {
	var assessments []models.Assessment
	err := a.getDB(tx).WithContext(ctx).
		Where("user_id = ? AND created_at BETWEEN ? AND ?", userID, from, to).
		Order("created_at DESC").
		Find(&assessments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assessments in window: %w", err)
	}
	return assessments, nil
}
