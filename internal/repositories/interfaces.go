package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/models"
)

// The tx parameter on every method follows the shared convention: pass the
// transaction handle inside WithTransaction, nil otherwise.

// UserRepository manages user records in the entity store.
type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	Exists(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

// AssessmentRepository manages assessment lifecycle rows.
type AssessmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, assessment *models.Assessment) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error)
	GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.Assessment, error)

	// ListByUser returns the user's assessments newest first. With
	// activeOnly it returns pending rows only.
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint, activeOnly bool) ([]models.Assessment, error)

	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.AssessmentStatus) error

	// MarkExpired flips a row from pending to expired. The update is
	// conditional on the current status so concurrent sweeps and
	// submissions cannot clobber a terminal state; it reports whether
	// this call performed the transition.
	MarkExpired(ctx context.Context, tx *gorm.DB, id uint) (bool, error)

	// FindOverdueIDs returns ids of the user's pending assessments whose
	// due date has passed.
	FindOverdueIDs(ctx context.Context, tx *gorm.DB, userID uint, now time.Time) ([]uint, error)

	// SetResult stores the score and final status in one update.
	SetResult(ctx context.Context, tx *gorm.DB, id uint, score int, status models.AssessmentStatus) error
}

// QuestionRepository manages the question rows attached to assessments.
type QuestionRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) ([]models.Question, error)
	UpdateUserChoice(ctx context.Context, tx *gorm.DB, id uint, choice string) error

	// DeleteByAssessment removes the whole question set, used when an
	// assessment expires.
	DeleteByAssessment(ctx context.Context, tx *gorm.DB, assessmentID uint) error
}

// FeedbackRepository manages append-only feedback records.
type FeedbackRepository interface {
	Create(ctx context.Context, tx *gorm.DB, feedback *models.Feedback) error
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]models.Feedback, error)
}

// AnalyticsRepository exposes the window queries the analytics rollups are
// computed from. Aggregation happens in the service layer.
type AnalyticsRepository interface {
	CountByUser(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
	CountInWindow(ctx context.Context, tx *gorm.DB, userID uint, from, to time.Time) (int64, error)

	// FetchWindow returns the user's assessments created in [from, to],
	// newest first.
	FetchWindow(ctx context.Context, tx *gorm.DB, userID uint, from, to time.Time) ([]models.Assessment, error)
}
