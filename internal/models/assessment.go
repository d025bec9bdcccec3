package models

import (
	"time"
)

type AssessmentStatus string

const (
	StatusPending   AssessmentStatus = "pending"
	StatusCompleted AssessmentStatus = "completed"
	StatusExpired   AssessmentStatus = "expired"
	// StatusExit is a reserved administrative close; only the status
	// override endpoint produces it.
	StatusExit AssessmentStatus = "exit"
)

// Valid reports whether s is one of the defined status values.
func (s AssessmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusExpired, StatusExit:
		return true
	}
	return false
}

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "easy"
	DifficultyMedium DifficultyLevel = "medium"
	DifficultyHard   DifficultyLevel = "hard"
	DifficultyExpert DifficultyLevel = "expert"
)

func (d DifficultyLevel) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyExpert:
		return true
	}
	return false
}

// Assessment is one generated quiz instance for a user. Its score stays
// nil until a submission grades it.
type Assessment struct {
	ID         uint             `json:"id" gorm:"primaryKey"`
	UserID     uint             `json:"user_id" gorm:"not null;index"`
	Subject    string           `json:"subject" gorm:"not null;size:100" validate:"required,max=100"`
	Topic      string           `json:"topic" gorm:"not null;size:100" validate:"required,max=100"`
	Difficulty DifficultyLevel  `json:"difficulty" gorm:"not null;default:medium;index"`
	Status     AssessmentStatus `json:"status" gorm:"not null;default:pending;index"`
	Score      *int             `json:"score"`

	CreatedAt time.Time `json:"created_at"`
	DueDate   time.Time `json:"due_date" gorm:"not null;index"`

	// Relations
	User      User       `json:"-" gorm:"foreignKey:UserID"`
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:AssessmentID;constraint:OnDelete:CASCADE"`
}

func (Assessment) TableName() string {
	return "assessments"
}

// ScoreValue returns the graded score, treating an ungraded assessment as 0.
func (a *Assessment) ScoreValue() int {
	if a.Score == nil {
		return 0
	}
	return *a.Score
}
