package services

import (
	"context"
	"time"

	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/validator"
)

// ===== REQUEST DTOs (business validator types) =====

type GenerateAssessmentRequest = validator.AssessmentGenerateRequest
type SubmitAssessmentRequest = validator.SubmitAssessmentRequest
type StatusUpdateRequest = validator.StatusUpdateRequest
type CreateUserRequest = validator.UserCreateRequest
type CreateFeedbackRequest = validator.FeedbackCreateRequest

// ===== RESPONSE DTOs =====

// AssessmentSummary is the list-view shape.
type AssessmentSummary struct {
	ID        uint                    `json:"id"`
	Subject   string                  `json:"subject"`
	Topic     string                  `json:"topic"`
	Status    models.AssessmentStatus `json:"status"`
	CreatedAt time.Time               `json:"created_at"`
	DueDate   time.Time               `json:"due_date"`
	Score     *int                    `json:"score"`
}

// OptionView is one selectable choice in a take or review view.
type OptionView struct {
	ID     string `json:"id"`
	Option string `json:"option"`
}

// QuestionView is one question in a take or review view. CorrectOption is
// populated only in review contexts, never while the assessment is being
// taken.
type QuestionView struct {
	ID            uint         `json:"id"`
	Text          string       `json:"text"`
	Options       []OptionView `json:"options"`
	CorrectOption *string      `json:"correct_option,omitempty"`
	UserChoice    *string      `json:"user_choice,omitempty"`
}

// AssessmentView is the take/review shape.
type AssessmentView struct {
	ID         uint                    `json:"id"`
	Subject    string                  `json:"subject"`
	Topic      string                  `json:"topic"`
	Difficulty models.DifficultyLevel  `json:"difficulty"`
	Status     models.AssessmentStatus `json:"status"`
	DueDate    time.Time               `json:"due_date"`
	Questions  []QuestionView          `json:"questions"`
}

// SubmitResult carries the recomputed total score.
type SubmitResult struct {
	Score int `json:"score"`
}

// RecentActivityItem is one entry of the 7-day activity feed.
type RecentActivityItem struct {
	AssessmentID uint                    `json:"assessment_id"`
	Subject      string                  `json:"subject"`
	Topic        string                  `json:"topic"`
	Status       models.AssessmentStatus `json:"status"`
	When         string                  `json:"when"`
	Description  string                  `json:"description"`
}

// MonthTotals is one month's slice of the totals rollup.
type MonthTotals struct {
	Count        int64   `json:"count"`
	AverageScore float64 `json:"average_score"`
}

// TotalAssessmentResult compares the current month against the previous one.
type TotalAssessmentResult struct {
	Current         MonthTotals `json:"current"`
	Previous        MonthTotals `json:"previous"`
	PercentageDelta float64     `json:"percentage_delta"`
	AverageDelta    float64     `json:"average_delta"`
}

// TopicAnalysisRow is one unaggregated assessment record of a month.
type TopicAnalysisRow struct {
	Topic      string                 `json:"topic"`
	Date       string                 `json:"date"`
	Score      int                    `json:"score"`
	Difficulty models.DifficultyLevel `json:"difficulty"`
}

// SubjectAnalysisRow is one subject's monthly average.
type SubjectAnalysisRow struct {
	Month        string  `json:"month"`
	Subject      string  `json:"subject"`
	AverageScore float64 `json:"average_score"`
}

// MonthlyPerformanceRow is one month's rollup of a yearly report.
type MonthlyPerformanceRow struct {
	Month            string  `json:"month"`
	AverageScore     float64 `json:"average_score"`
	TotalAssessments int64   `json:"total_assessments"`
}

// FeedbackResponse is one stored feedback record.
type FeedbackResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ===== SERVICE INTERFACES =====

// LifecycleService governs assessment state transitions and list views.
type LifecycleService interface {
	// List returns the user's assessments, sweeping overdue ones first.
	// With activeOnly only still-pending assessments are returned.
	List(ctx context.Context, userID uint, activeOnly bool) ([]AssessmentSummary, error)

	// SweepExpired expires every overdue pending assessment of the user
	// and reports how many were transitioned by this call.
	SweepExpired(ctx context.Context, userID uint) (int, error)

	// Start returns the take view (no answer key). Only pending
	// assessments can be started.
	Start(ctx context.Context, userID, assessmentID uint) (*AssessmentView, error)

	// Preview returns the review view including answer keys and the
	// user's recorded choices.
	Preview(ctx context.Context, userID, assessmentID uint) (*AssessmentView, error)

	// SetStatus is the administrative override. Any defined status is
	// accepted, exit included.
	SetStatus(ctx context.Context, assessmentID uint, status models.AssessmentStatus) error
}

// IngestionService materializes externally generated question payloads.
type IngestionService interface {
	Generate(ctx context.Context, userID uint, req *GenerateAssessmentRequest) (uint, error)
}

// ScoringService records submissions and computes results.
type ScoringService interface {
	Submit(ctx context.Context, userID uint, req *SubmitAssessmentRequest) (*SubmitResult, error)
}

// AnalyticsService computes read-only time-windowed rollups.
type AnalyticsService interface {
	RecentActivity(ctx context.Context, userID uint) ([]RecentActivityItem, error)
	TotalAssessment(ctx context.Context, userID uint) (*TotalAssessmentResult, error)
	Analysis(ctx context.Context, userID uint, year int, month time.Month) ([]TopicAnalysisRow, error)
	SubjectAnalysis(ctx context.Context, userID uint, year int, month time.Month) ([]SubjectAnalysisRow, error)
	PerformanceAnalysis(ctx context.Context, userID uint, year int) ([]MonthlyPerformanceRow, error)
}

// FeedbackService records and lists user feedback.
type FeedbackService interface {
	Create(ctx context.Context, userID uint, req *CreateFeedbackRequest) (*FeedbackResponse, error)
	ListByUser(ctx context.Context, userID uint) ([]FeedbackResponse, error)
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Lifecycle() LifecycleService
	Ingestion() IngestionService
	Scoring() ScoringService
	Analytics() AnalyticsService
	Feedback() FeedbackService

	HealthCheck(ctx context.Context) error
}
