package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Repository aggregates all entity repositories. Services receive this
// interface and route transactional work through WithTransaction so tests
// can substitute in-memory implementations.
type Repository interface {
	Question() QuestionRepository
	Category() CategoryRepository
	Session() SessionRepository
	Attempt() AttemptRepository
	AttemptQuestion() AttemptQuestionRepository
	Answer() AnswerRepository
	Dashboard() DashboardRepository
	User() UserRepository

	// WithTransaction runs fn inside a database transaction. The tx handle
	// is passed to repository calls made within fn; a nil tx falls back to
	// the base connection.
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RepositoryManager extends Repository with lifecycle operations used by the
// service manager.
type RepositoryManager interface {
	Repository

	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err means the requested row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
