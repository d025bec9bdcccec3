package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accessgenius/assessment-service/internal/repositories"
	"github.com/accessgenius/assessment-service/internal/services"
	"github.com/accessgenius/assessment-service/internal/utils"
	"github.com/accessgenius/assessment-service/internal/validator"
)

type HandlerManager struct {
	assessmentHandler *AssessmentHandler
	analyticsHandler  *AnalyticsHandler
	userHandler       *UserHandler
	feedbackHandler   *FeedbackHandler

	repo repositories.Repository
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	v *validator.Validator,
	logger utils.Logger,
	repo repositories.Repository,
) *HandlerManager {
	return &HandlerManager{
		assessmentHandler: NewAssessmentHandler(
			serviceManager.Lifecycle(),
			serviceManager.Ingestion(),
			serviceManager.Scoring(),
			v,
			logger,
		),
		analyticsHandler: NewAnalyticsHandler(serviceManager.Analytics(), logger),
		userHandler:      NewUserHandler(repo.User(), v, logger),
		feedbackHandler:  NewFeedbackHandler(serviceManager.Feedback(), logger),
		repo:             repo,
	}
}

// SetupRoutes sets up all API routes.
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		// User store routes; registration happens before an identity
		// exists, so these skip the identity middleware.
		users := v1.Group("/users")
		{
			users.POST("", hm.userHandler.CreateUser)
			users.GET("/:id", hm.userHandler.GetUser)
			users.DELETE("/:id", hm.userHandler.DeleteUser)
		}

		authed := v1.Group("")
		authed.Use(IdentityMiddleware())
		{
			assessments := authed.Group("/assessments")
			{
				assessments.POST("", hm.assessmentHandler.GenerateAssessment)
				assessments.GET("", hm.assessmentHandler.ListAssessments)
				assessments.POST("/submit", hm.assessmentHandler.SubmitAssessment)
				assessments.GET("/:id/start", hm.assessmentHandler.StartAssessment)
				assessments.GET("/:id/preview", hm.assessmentHandler.PreviewAssessment)
				assessments.PUT("/:id/status", hm.assessmentHandler.UpdateAssessmentStatus)
			}

			analytics := authed.Group("/analytics")
			{
				analytics.GET("/recent", hm.analyticsHandler.GetRecentActivity)
				analytics.GET("/total", hm.analyticsHandler.GetTotalAssessment)
				analytics.GET("/analysis", hm.analyticsHandler.GetAnalysis)
				analytics.GET("/subjects", hm.analyticsHandler.GetSubjectAnalysis)
				analytics.GET("/performance", hm.analyticsHandler.GetPerformanceAnalysis)
			}

			feedback := authed.Group("/feedback")
			{
				feedback.POST("", hm.feedbackHandler.CreateFeedback)
				feedback.GET("", hm.feedbackHandler.ListFeedback)
			}
		}
	}

	router.GET("/health", func(c *gin.Context) {
		if err := hm.repo.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "assessment-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "assessment-service",
		})
	})
}
