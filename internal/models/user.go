package models

import (
	"time"
)

type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Username string `json:"username" gorm:"uniqueIndex;not null;size:255" validate:"required,max=255"`
	Email    string `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`

	// Opaque credential hash. Written by the external auth collaborator;
	// this service never verifies or issues sessions.
	PasswordHash string `json:"-" gorm:"not null;size:128"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations — deleting a user removes everything they own
	Assessments []Assessment `json:"assessments,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Feedback    []Feedback   `json:"feedback,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}
