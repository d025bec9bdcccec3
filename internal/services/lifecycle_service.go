package services

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/events"
	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/repositories"
	"github.com/accessgenius/assessment-service/internal/validator"
)

type lifecycleService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	loc       *time.Location
	now       func() time.Time
}

func NewLifecycleService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, loc *time.Location) LifecycleService {
	return &lifecycleService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
	}
}

// ComputeDueDate returns the explicit due date when one was supplied,
// otherwise creation time plus the configured availability window.
func ComputeDueDate(createdAt time.Time, explicit *time.Time, dueIn time.Duration) time.Time {
	if explicit != nil {
		return *explicit
	}
	return createdAt.Add(dueIn)
}

func (s *lifecycleService) List(ctx context.Context, userID uint, activeOnly bool) ([]AssessmentSummary, error) {
	// Reads are the expiration trigger: there is no background scheduler.
	if _, err := s.SweepExpired(ctx, userID); err != nil {
		return nil, err
	}

	assessments, err := s.repo.Assessment().ListByUser(ctx, nil, userID, activeOnly)
	if err != nil {
		return nil, err
	}

	summaries := make([]AssessmentSummary, len(assessments))
	for i, a := range assessments {
		summaries[i] = AssessmentSummary{
			ID:        a.ID,
			Subject:   a.Subject,
			Topic:     a.Topic,
			Status:    a.Status,
			CreatedAt: a.CreatedAt,
			DueDate:   a.DueDate,
			Score:     a.Score,
		}
	}
	return summaries, nil
}

func (s *lifecycleService) SweepExpired(ctx context.Context, userID uint) (int, error) {
	now := s.now().In(s.loc)

	ids, err := s.repo.Assessment().FindOverdueIDs(ctx, nil, userID, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, id := range ids {
		transitioned, err := s.expireOne(ctx, id)
		if err != nil {
			return expired, err
		}
		if !transitioned {
			// Lost the race to a concurrent sweep or submission
			continue
		}
		expired++

		if err := s.publisher.Publish(ctx, events.TopicAssessmentExpired, events.AssessmentExpiredEvent{
			AssessmentID: id,
			UserID:       userID,
			ExpiredAt:    now,
		}); err != nil {
			s.logger.Error("Failed to publish expiration event", "assessment_id", id, "error", err)
		}
	}

	if expired > 0 {
		s.logger.Info("Expired overdue assessments", "user_id", userID, "count", expired)
	}
	return expired, nil
}

// expireOne flips one assessment to expired and removes its question set in
// a single transaction. The status flip is conditional, so a duplicate sweep
// degenerates to a no-op.
func (s *lifecycleService) expireOne(ctx context.Context, assessmentID uint) (bool, error) {
	transitioned := false
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		transitioned, err = txRepo.Assessment().MarkExpired(ctx, nil, assessmentID)
		if err != nil {
			return err
		}
		if !transitioned {
			return nil
		}
		return txRepo.Question().DeleteByAssessment(ctx, nil, assessmentID)
	})
	return transitioned, err
}

func (s *lifecycleService) Start(ctx context.Context, userID, assessmentID uint) (*AssessmentView, error) {
	assessment, err := s.getOwned(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}

	switch assessment.Status {
	case models.StatusPending:
		// fall through to the due-date check
	case models.StatusExpired:
		return nil, ErrAssessmentExpired
	default:
		return nil, ErrAssessmentNotActive
	}

	// Lazy expiration check on the single assessment being opened.
	if assessment.DueDate.Before(s.now().In(s.loc)) {
		if _, err := s.expireOne(ctx, assessmentID); err != nil {
			return nil, err
		}
		return nil, ErrAssessmentExpired
	}

	questions, err := s.repo.Question().GetByAssessment(ctx, nil, assessmentID)
	if err != nil {
		return nil, err
	}
	return buildAssessmentView(assessment, questions, false)
}

func (s *lifecycleService) Preview(ctx context.Context, userID, assessmentID uint) (*AssessmentView, error) {
	assessment, err := s.getOwned(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().GetByAssessment(ctx, nil, assessmentID)
	if err != nil {
		return nil, err
	}
	return buildAssessmentView(assessment, questions, true)
}

func (s *lifecycleService) SetStatus(ctx context.Context, assessmentID uint, status models.AssessmentStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	s.logger.Info("Overriding assessment status", "assessment_id", assessmentID, "status", status)

	if err := s.repo.Assessment().UpdateStatus(ctx, nil, assessmentID, status); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrAssessmentNotFound
		}
		return err
	}
	return nil
}

func (s *lifecycleService) getOwned(ctx context.Context, userID, assessmentID uint) (*models.Assessment, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, nil, assessmentID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, err
	}
	if assessment.UserID != userID {
		return nil, ErrAssessmentAccessDenied
	}
	return assessment, nil
}

// buildAssessmentView maps storage rows to the take or review shape. The
// answer key is attached only for review contexts.
func buildAssessmentView(assessment *models.Assessment, questions []models.Question, includeKey bool) (*AssessmentView, error) {
	view := &AssessmentView{
		ID:         assessment.ID,
		Subject:    assessment.Subject,
		Topic:      assessment.Topic,
		Difficulty: assessment.Difficulty,
		Status:     assessment.Status,
		DueDate:    assessment.DueDate,
		Questions:  make([]QuestionView, 0, len(questions)),
	}

	for _, q := range questions {
		choices, err := q.ChoiceList()
		if err != nil {
			return nil, err
		}

		options := make([]OptionView, len(choices))
		for i, c := range choices {
			options[i] = OptionView{ID: c.ID, Option: c.Text}
		}

		qv := QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: options,
		}
		if includeKey {
			correct := q.CorrectChoice
			qv.CorrectOption = &correct
			qv.UserChoice = q.UserChoice
		}
		view.Questions = append(view.Questions, qv)
	}
	return view, nil
}
