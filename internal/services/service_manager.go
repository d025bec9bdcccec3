package services

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/cache"
	"github.com/accessgenius/assessment-service/internal/events"
	"github.com/accessgenius/assessment-service/internal/repositories"
	"github.com/accessgenius/assessment-service/internal/validator"
)

// ServiceManagerConfig carries the cross-cutting collaborators every
// service shares.
type ServiceManagerConfig struct {
	Publisher    events.EventPublisher
	CacheManager *cache.CacheManager
	Location     *time.Location
	DueIn        time.Duration
}

type serviceManager struct {
	repo repositories.Repository

	lifecycle LifecycleService
	ingestion IngestionService
	scoring   ScoringService
	analytics AnalyticsService
	feedback  FeedbackService
}

// NewDefaultServiceManager wires every service against the shared
// repository, validator and event publisher.
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, v *validator.Validator, cfg ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		repo:      repo,
		lifecycle: NewLifecycleService(repo, db, logger, v, cfg.Publisher, cfg.Location),
		ingestion: NewIngestionService(repo, db, logger, v, cfg.Publisher, cfg.Location, cfg.DueIn),
		scoring:   NewScoringService(repo, db, logger, v, cfg.Publisher),
		analytics: NewAnalyticsService(repo, db, logger, cfg.CacheManager, cfg.Location),
		feedback:  NewFeedbackService(repo, db, logger, v),
	}
}

func (m *serviceManager) Lifecycle() LifecycleService { return m.lifecycle }
func (m *serviceManager) Ingestion() IngestionService { return m.ingestion }
func (m *serviceManager) Scoring() ScoringService     { return m.scoring }
func (m *serviceManager) Analytics() AnalyticsService { return m.analytics }
func (m *serviceManager) Feedback() FeedbackService   { return m.feedback }

func (m *serviceManager) HealthCheck(ctx context.Context) error {
	return m.repo.Ping(ctx)
}
