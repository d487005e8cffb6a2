package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ai-olympiad/qcm-service/internal/repositories"
)

// repositoryManager wires the PostgreSQL implementations of all entity
// repositories behind the Repository interface.
type repositoryManager struct {
	db          *gorm.DB
	redisClient *redis.Client

	question        repositories.QuestionRepository
	category        repositories.CategoryRepository
	session         repositories.SessionRepository
	attempt         repositories.AttemptRepository
	attemptQuestion repositories.AttemptQuestionRepository
	answer          repositories.AnswerRepository
	dashboard       repositories.DashboardRepository
	user            repositories.UserRepository
}

// NewRepositoryManager creates the PostgreSQL repository manager. A nil
// redisClient disables caching; repositories degrade to direct queries.
func NewRepositoryManager(db *gorm.DB, redisClient *redis.Client) repositories.RepositoryManager {
	return &repositoryManager{
		db:          db,
		redisClient: redisClient,

		question:        NewQuestionPostgreSQL(db, redisClient),
		category:        NewCategoryPostgreSQL(db, redisClient),
		session:         NewSessionPostgreSQL(db, redisClient),
		attempt:         NewAttemptPostgreSQL(db, redisClient),
		attemptQuestion: NewAttemptQuestionPostgreSQL(db),
		answer:          NewAnswerPostgreSQL(db, redisClient),
		dashboard:       NewDashboardPostgreSQL(db, redisClient),
		user:            NewUserPostgreSQL(db),
	}
}

func (rm *repositoryManager) Question() repositories.QuestionRepository { return rm.question }
func (rm *repositoryManager) Category() repositories.CategoryRepository { return rm.category }
func (rm *repositoryManager) Session() repositories.SessionRepository   { return rm.session }
func (rm *repositoryManager) Attempt() repositories.AttemptRepository   { return rm.attempt }
func (rm *repositoryManager) AttemptQuestion() repositories.AttemptQuestionRepository {
	return rm.attemptQuestion
}
func (rm *repositoryManager) Answer() repositories.AnswerRepository       { return rm.answer }
func (rm *repositoryManager) Dashboard() repositories.DashboardRepository { return rm.dashboard }
func (rm *repositoryManager) User() repositories.UserRepository           { return rm.user }

func (rm *repositoryManager) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return rm.db.WithContext(ctx).Transaction(fn)
}

func (rm *repositoryManager) HealthCheck(ctx context.Context) error {
	sqlDB, err := rm.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if rm.redisClient != nil {
		if _, err := rm.redisClient.Ping(ctx).Result(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}

	return nil
}

func (rm *repositoryManager) Shutdown(ctx context.Context) error {
	if rm.redisClient != nil {
		if err := rm.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}

	sqlDB, err := rm.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
