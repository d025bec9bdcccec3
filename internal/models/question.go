package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Choice is one selectable option of a multiple-choice question. The ID is
// the stable identifier the answer key and user submissions refer to.
type Choice struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// Question is one multiple-choice item owned by exactly one assessment.
// Choices and the answer key live in a JSONB column rather than a
// normalized table; they are validated once at ingestion and read-only
// afterwards.
type Question struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	AssessmentID uint   `json:"assessment_id" gorm:"not null;index"`
	Text         string `json:"text" gorm:"type:text;not null" validate:"required"`

	// []Choice stored as JSONB
	Choices datatypes.JSON `json:"choices" gorm:"type:jsonb;not null"`

	// CorrectChoice must match one of the choice IDs in the same row.
	CorrectChoice string `json:"correct_choice" gorm:"not null;size:100"`

	// UserChoice is nil until the owner submits an answer for this question.
	UserChoice *string `json:"user_choice" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Assessment Assessment `json:"-" gorm:"foreignKey:AssessmentID"`
}

func (Question) TableName() string {
	return "questions"
}

// ChoiceList decodes the JSONB choices column.
func (q *Question) ChoiceList() ([]Choice, error) {
	var choices []Choice
	if err := json.Unmarshal(q.Choices, &choices); err != nil {
		return nil, fmt.Errorf("failed to decode choices for question %d: %w", q.ID, err)
	}
	return choices, nil
}

// SetChoices encodes choices into the JSONB column.
func (q *Question) SetChoices(choices []Choice) error {
	data, err := json.Marshal(choices)
	if err != nil {
		return fmt.Errorf("failed to encode choices: %w", err)
	}
	q.Choices = data
	return nil
}

// IsCorrect reports whether the recorded user choice matches the answer key.
// An unanswered question is never correct.
func (q *Question) IsCorrect() bool {
	return q.UserChoice != nil && *q.UserChoice == q.CorrectChoice
}
