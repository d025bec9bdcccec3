package validator

import (
	"time"

	"github.com/accessgenius/assessment-service/internal/models"
)

// ChoicePayload is one option of an externally generated question.
type ChoicePayload struct {
	ID   string `json:"id" validate:"required,max=100"`
	Text string `json:"text" validate:"required"`
}

// QuestionPayload is one externally generated multiple-choice item.
type QuestionPayload struct {
	QuestionText string          `json:"question_text" validate:"required"`
	Topic        string          `json:"topic" validate:"omitempty,max=100"`
	Choices      []ChoicePayload `json:"choices" validate:"required,min=2,dive"`
	IsCorrect    string          `json:"is_correct" validate:"required,max=100"`
}

// AssessmentGenerateRequest materializes one assessment plus its questions.
type AssessmentGenerateRequest struct {
	Subject    string                 `json:"subject" validate:"required,max=100"`
	Topic      string                 `json:"topic" validate:"required,max=100"`
	Difficulty models.DifficultyLevel `json:"difficulty" validate:"required,difficulty_level"`
	DueDate    *time.Time             `json:"due_date"`
	Questions  []QuestionPayload      `json:"questions" validate:"required,min=1,dive"`
}

// SubmitAssessmentRequest records a user's choices. Keys are question IDs
// (JSON object keys, so strings); values are choice IDs.
type SubmitAssessmentRequest struct {
	AssessmentID uint              `json:"assessment_id" validate:"required"`
	Answers      map[string]string `json:"answers" validate:"required"`
}

// StatusUpdateRequest is the administrative status override.
type StatusUpdateRequest struct {
	Status models.AssessmentStatus `json:"status" validate:"required,assessment_status"`
}

// UserCreateRequest registers a user record in the entity store.
type UserCreateRequest struct {
	Username     string `json:"username" validate:"required,max=255"`
	Email        string `json:"email" validate:"required,email,max=255"`
	PasswordHash string `json:"password_hash" validate:"required,max=128"`
}

// FeedbackCreateRequest appends one feedback note for a user.
type FeedbackCreateRequest struct {
	Message string `json:"feedback_text" validate:"required"`
}
