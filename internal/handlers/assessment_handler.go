package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accessgenius/assessment-service/internal/services"
	"github.com/accessgenius/assessment-service/internal/utils"
	"github.com/accessgenius/assessment-service/internal/validator"
)

type AssessmentHandler struct {
	BaseHandler
	lifecycle services.LifecycleService
	ingestion services.IngestionService
	scoring   services.ScoringService
	validator *validator.Validator
}

func NewAssessmentHandler(
	lifecycle services.LifecycleService,
	ingestion services.IngestionService,
	scoring services.ScoringService,
	v *validator.Validator,
	logger utils.Logger,
) *AssessmentHandler {
	return &AssessmentHandler{
		BaseHandler: NewBaseHandler(logger),
		lifecycle:   lifecycle,
		ingestion:   ingestion,
		scoring:     scoring,
		validator:   v,
	}
}

// GenerateAssessment materializes one assessment plus its questions from an
// externally generated payload.
// @Router /assessments [post]
func (h *AssessmentHandler) GenerateAssessment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.GenerateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Generating assessment", "user_id", userID, "subject", req.Subject)

	id, err := h.ingestion.Generate(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, SuccessResponse{
		Message: "Assessment created successfully",
		Data:    gin.H{"id": id},
	})
}

// ListAssessments returns the caller's assessments, sweeping overdue ones
// first. By default only active assessments are returned; ?all=true returns
// the full history.
// @Router /assessments [get]
func (h *AssessmentHandler) ListAssessments(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	activeOnly := c.Query("all") != "true"

	summaries, err := h.lifecycle.List(c.Request.Context(), userID, activeOnly)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assessments": summaries,
		"total":       len(summaries),
	})
}

// StartAssessment returns the take view, without the answer key.
// @Router /assessments/{id}/start [get]
func (h *AssessmentHandler) StartAssessment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.lifecycle.Start(c.Request.Context(), userID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// PreviewAssessment returns the review view, including the answer key and
// the recorded user choices.
// @Router /assessments/{id}/preview [get]
func (h *AssessmentHandler) PreviewAssessment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := h.lifecycle.Preview(c.Request.Context(), userID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// UpdateAssessmentStatus is the administrative status override.
// @Router /assessments/{id}/status [put]
func (h *AssessmentHandler) UpdateAssessmentStatus(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	id, ok := h.parseIDParam(c, "id")
	if !ok {
		return
	}

	var req services.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}
	if errs := h.validator.Validate(&req); errs != nil {
		h.handleServiceError(c, errs)
		return
	}

	if err := h.lifecycle.SetStatus(c.Request.Context(), id, req.Status); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Assessment status updated successfully",
	})
}

// SubmitAssessment records the caller's choices and returns the recomputed
// score.
// @Router /assessments/submit [post]
func (h *AssessmentHandler) SubmitAssessment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.SubmitAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Submitting assessment", "user_id", userID, "assessment_id", req.AssessmentID)

	result, err := h.scoring.Submit(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *AssessmentHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrAssessmentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Assessment not found",
		})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
		})
	case errors.Is(err, services.ErrAssessmentAccessDenied):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied to assessment",
		})
	case errors.Is(err, services.ErrAssessmentExpired):
		c.JSON(http.StatusGone, ErrorResponse{
			Message: "Assessment has expired",
		})
	case errors.Is(err, services.ErrAssessmentNotActive):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Assessment cannot be taken in its current status",
		})
	case errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid assessment status",
		})
	default:
		h.LogError(c, err, "Assessment operation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
