package models

import (
	"time"
)

// Feedback is an append-only note a user leaves about the product.
// Username and email are denormalized from the owning user at write time.
type Feedback struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	UserID   uint   `json:"user_id" gorm:"not null;index"`
	Username string `json:"username" gorm:"not null;size:255"`
	Email    string `json:"email" gorm:"not null;size:255"`
	Message  string `json:"message" gorm:"type:text;not null" validate:"required"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

func (Feedback) TableName() string {
	return "feedback"
}
