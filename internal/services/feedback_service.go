package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/models"
	"github.com/accessgenius/assessment-service/internal/repositories"
	"github.com/accessgenius/assessment-service/internal/validator"
)

type feedbackService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewFeedbackService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator) FeedbackService {
	return &feedbackService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
	}
}

func (s *feedbackService) Create(ctx context.Context, userID uint, req *CreateFeedbackRequest) (*FeedbackResponse, error) {
	if errs := s.validator.Validate(req); errs != nil {
		return nil, errs
	}

	user, err := s.repo.User().GetByID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	feedback := &models.Feedback{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Message:  req.Message,
	}
	if err := s.repo.Feedback().Create(ctx, nil, feedback); err != nil {
		return nil, err
	}

	s.logger.Info("Feedback recorded", "user_id", userID, "feedback_id", feedback.ID)
	return toFeedbackResponse(feedback), nil
}

func (s *feedbackService) ListByUser(ctx context.Context, userID uint) ([]FeedbackResponse, error) {
	records, err := s.repo.Feedback().ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]FeedbackResponse, len(records))
	for i := range records {
		responses[i] = *toFeedbackResponse(&records[i])
	}
	return responses, nil
}

func toFeedbackResponse(f *models.Feedback) *FeedbackResponse {
	return &FeedbackResponse{
		ID:        f.ID,
		Username:  f.Username,
		Email:     f.Email,
		Message:   f.Message,
		CreatedAt: f.CreatedAt,
	}
}
