package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accessgenius/assessment-service/internal/services"
	"github.com/accessgenius/assessment-service/internal/utils"
)

type FeedbackHandler struct {
	BaseHandler
	feedback services.FeedbackService
}

func NewFeedbackHandler(feedback services.FeedbackService, logger utils.Logger) *FeedbackHandler {
	return &FeedbackHandler{
		BaseHandler: NewBaseHandler(logger),
		feedback:    feedback,
	}
}

// CreateFeedback appends one feedback note for the caller.
// @Router /feedback [post]
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	record, err := h.feedback.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Feedback recorded successfully",
		Data:    record,
	})
}

// ListFeedback returns the caller's feedback history.
// @Router /feedback [get]
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	records, err := h.feedback.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": records})
}

func (h *FeedbackHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
		})
	default:
		h.LogError(c, err, "Feedback operation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
