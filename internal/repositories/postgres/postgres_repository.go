package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/accessgenius/assessment-service/internal/cache"
	"github.com/accessgenius/assessment-service/internal/repositories"
)

// PostgreSQLRepository implements the root Repository interface.
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	user       repositories.UserRepository
	assessment repositories.AssessmentRepository
	question   repositories.QuestionRepository
	feedback   repositories.FeedbackRepository
	analytics  repositories.AnalyticsRepository
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates the repository root with all sub-repositories.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	repo := &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
	}

	repo.user = NewUserPostgreSQL(config.DB)
	repo.assessment = NewAssessmentPostgreSQL(config.DB, cacheManager)
	repo.question = NewQuestionPostgreSQL(config.DB, cacheManager)
	repo.feedback = NewFeedbackPostgreSQL(config.DB)
	repo.analytics = NewAnalyticsPostgreSQL(config.DB)

	return repo
}

func (r *PostgreSQLRepository) User() repositories.UserRepository             { return r.user }
func (r *PostgreSQLRepository) Assessment() repositories.AssessmentRepository { return r.assessment }
func (r *PostgreSQLRepository) Question() repositories.QuestionRepository     { return r.question }
func (r *PostgreSQLRepository) Feedback() repositories.FeedbackRepository     { return r.feedback }
func (r *PostgreSQLRepository) Analytics() repositories.AnalyticsRepository   { return r.analytics }

// WithTransaction executes fn within one database transaction. The repository
// passed to fn routes every query through the transaction handle.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
		}

		txRepo.user = NewUserPostgreSQL(tx)
		txRepo.assessment = NewAssessmentPostgreSQL(tx, r.cacheManager)
		txRepo.question = NewQuestionPostgreSQL(tx, r.cacheManager)
		txRepo.feedback = NewFeedbackPostgreSQL(tx)
		txRepo.analytics = NewAnalyticsPostgreSQL(tx)

		return fn(txRepo)
	})
}

// Ping checks database and cache connectivity.
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections.
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the repositories.RepositoryManager interface.
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	return &RepositoryManager{config: config}
}

// Initialize validates connectivity and builds the repository root.
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	if rm.config.RedisClient != nil {
		if _, err := rm.config.RedisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	}

	rm.repo = NewPostgreSQLRepository(rm.config)
	return nil
}

func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}
	return rm.repo.Ping(ctx)
}

func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}
	return rm.repo.Close()
}
