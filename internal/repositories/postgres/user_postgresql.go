package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/repositories"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := u.getDB(tx).WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := u.getDB(tx).WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (u *UserPostgreSQL) Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	var count int64
	err := u.getDB(tx).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}
	return count > 0, nil
}

// Delete removes the user row; assessments, questions and feedback go with
// it through the foreign key cascades.
func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	result := u.getDB(tx).WithContext(ctx).Delete(&models.User{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to delete user: %w", gorm.ErrRecordNotFound)
	}
	return nil
}
