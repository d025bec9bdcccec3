package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/accessgenius/assessment-service/internal/services"
	"github.com/accessgenius/assessment-service/internal/utils"
)

type AnalyticsHandler struct {
	BaseHandler
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(analytics services.AnalyticsService, logger utils.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler: NewBaseHandler(logger),
		analytics:   analytics,
	}
}

// GetRecentActivity returns the 7-day activity feed.
// @Router /analytics/recent [get]
func (h *AnalyticsHandler) GetRecentActivity(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, err := h.analytics.RecentActivity(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"activities": items})
}

// GetTotalAssessment compares the current month against the previous one.
// @Router /analytics/total [get]
func (h *AnalyticsHandler) GetTotalAssessment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	result, err := h.analytics.TotalAssessment(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetAnalysis returns the unaggregated per-topic rows of one month.
// @Router /analytics/analysis [get]
func (h *AnalyticsHandler) GetAnalysis(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	year, month, ok := h.parseYearMonth(c)
	if !ok {
		return
	}

	rows, err := h.analytics.Analysis(c.Request.Context(), userID, year, month)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": rows})
}

// GetSubjectAnalysis returns per-subject monthly averages.
// @Router /analytics/subjects [get]
func (h *AnalyticsHandler) GetSubjectAnalysis(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	year, month, ok := h.parseYearMonth(c)
	if !ok {
		return
	}

	rows, err := h.analytics.SubjectAnalysis(c.Request.Context(), userID, year, month)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subjects": rows})
}

// GetPerformanceAnalysis returns the twelve-month rollup of one year.
// @Router /analytics/performance [get]
func (h *AnalyticsHandler) GetPerformanceAnalysis(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	year, ok := h.parseYear(c)
	if !ok {
		return
	}

	rows, err := h.analytics.PerformanceAnalysis(c.Request.Context(), userID, year)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"performance": rows})
}

func (h *AnalyticsHandler) parseYear(c *gin.Context) (int, bool) {
	raw := c.Query("year")
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1970 || year > 9999 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid year parameter",
			Details: raw,
		})
		return 0, false
	}
	return year, true
}

func (h *AnalyticsHandler) parseYearMonth(c *gin.Context) (int, time.Month, bool) {
	year, ok := h.parseYear(c)
	if !ok {
		return 0, 0, false
	}

	raw := c.Query("month")
	month, err := strconv.Atoi(raw)
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid month parameter",
			Details: raw,
		})
		return 0, 0, false
	}
	return year, time.Month(month), true
}

func (h *AnalyticsHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNoAssessmentData):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "No assessment data for the requested window",
		})
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
		})
	default:
		h.LogError(c, err, "Analytics query failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
