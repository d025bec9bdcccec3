package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/events"
	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/repositories"
	"github.com/accessgenius/assessment-service/internal/validator"
)

type scoringService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	now       func() time.Time
}

func NewScoringService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, publisher events.EventPublisher) ScoringService {
	return &scoringService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		publisher: publisher,
		now:       time.Now,
	}
}

// Submit records the supplied choices and recomputes the total score in one
// transaction. The total is always recomputed from every question's current
// recorded choice, so resubmitting with identical input is idempotent.
func (s *scoringService) Submit(ctx context.Context, userID uint, req *SubmitAssessmentRequest) (*SubmitResult, error) {
	if errs := s.validator.Validate(req); errs != nil {
		return nil, errs
	}

	s.logger.Info("Submitting assessment", "assessment_id", req.AssessmentID, "user_id", userID, "answers", len(req.Answers))

	var score int
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		assessment, err := txRepo.Assessment().GetByID(ctx, nil, req.AssessmentID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrAssessmentNotFound
			}
			return err
		}
		if assessment.UserID != userID {
			return ErrAssessmentAccessDenied
		}

		questions, err := txRepo.Question().GetByAssessment(ctx, nil, req.AssessmentID)
		if err != nil {
			return err
		}

		// Record only the answers that target a known question; unknown
		// ids are ignored because a partial submission is valid.
		matched := matchAnswers(questions, req.Answers)
		for i := range questions {
			choice, ok := matched[questions[i].ID]
			if !ok {
				continue
			}
			if err := txRepo.Question().UpdateUserChoice(ctx, nil, questions[i].ID, choice); err != nil {
				return err
			}
			questions[i].UserChoice = &choice
		}

		score = countCorrect(questions)
		return txRepo.Assessment().SetResult(ctx, nil, req.AssessmentID, score, models.StatusCompleted)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Assessment submitted", "assessment_id", req.AssessmentID, "score", score)

	if err := s.publisher.Publish(ctx, events.TopicAssessmentSubmitted, events.AssessmentSubmittedEvent{
		AssessmentID: req.AssessmentID,
		UserID:       userID,
		Score:        score,
		SubmittedAt:  s.now(),
	}); err != nil {
		s.logger.Error("Failed to publish submission event", "assessment_id", req.AssessmentID, "error", err)
	}

	return &SubmitResult{Score: score}, nil
}

// matchAnswers resolves the submitted answers map (question id as string,
// since JSON object keys are strings) against the assessment's question set.
// Entries whose key does not parse or does not match a question are dropped.
func matchAnswers(questions []models.Question, answers map[string]string) map[uint]string {
	known := make(map[uint]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	matched := make(map[uint]string, len(answers))
	for key, choice := range answers {
		id, err := strconv.ParseUint(key, 10, 64)
		if err != nil {
			continue
		}
		if known[uint(id)] {
			matched[uint(id)] = choice
		}
	}
	return matched
}

// countCorrect counts exact matches between recorded choice and answer key.
// Unanswered questions never count.
func countCorrect(questions []models.Question) int {
	count := 0
	for i := range questions {
		if questions[i].IsCorrect() {
			count++
		}
	}
	return count
}
