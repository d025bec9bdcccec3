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

type ingestionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	loc       *time.Location
	dueIn     time.Duration
	now       func() time.Time
}

func NewIngestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher, loc *time.Location, dueIn time.Duration) IngestionService {
	return &ingestionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		publisher: publisher,
		loc:       loc,
		dueIn:     dueIn,
		now:       time.Now,
	}
}

// Generate materializes one assessment plus its question set atomically.
// A malformed item anywhere in the payload fails the whole batch and leaves
// no rows behind.
func (s *ingestionService) Generate(ctx context.Context, userID uint, req *GenerateAssessmentRequest) (uint, error) {
	if errs := s.validator.ValidateGenerateRequest(req); errs != nil {
		return 0, errs
	}

	exists, err := s.repo.User().Exists(ctx, nil, userID)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrUserNotFound
	}

	now := s.now().In(s.loc)
	assessment := &models.Assessment{
		UserID:     userID,
		Subject:    req.Subject,
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
		Status:     models.StatusPending,
		CreatedAt:  now,
		DueDate:    ComputeDueDate(now, req.DueDate, s.dueIn),
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.Assessment().Create(ctx, nil, assessment); err != nil {
			return err
		}

		questions := make([]*models.Question, len(req.Questions))
		for i, payload := range req.Questions {
			question := &models.Question{
				AssessmentID:  assessment.ID,
				Text:          payload.QuestionText,
				CorrectChoice: payload.IsCorrect,
				CreatedAt:     now,
			}

			choices := make([]models.Choice, len(payload.Choices))
			for j, c := range payload.Choices {
				choices[j] = models.Choice{ID: c.ID, Text: c.Text}
			}
			if err := question.SetChoices(choices); err != nil {
				return err
			}
			questions[i] = question
		}

		return txRepo.Question().CreateBatch(ctx, nil, questions)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Assessment ingested",
		"assessment_id", assessment.ID,
		"user_id", userID,
		"subject", req.Subject,
		"questions", len(req.Questions))

	if err := s.publisher.Publish(ctx, events.TopicAssessmentCreated, events.AssessmentCreatedEvent{
		AssessmentID: assessment.ID,
		UserID:       userID,
		Subject:      req.Subject,
		Topic:        req.Topic,
		QuestionsNum: len(req.Questions),
		DueDate:      assessment.DueDate,
		CreatedAt:    now,
	}); err != nil {
		s.logger.Error("Failed to publish creation event", "assessment_id", assessment.ID, "error", err)
	}

	return assessment.ID, nil
}
