package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/ai-olympiad/qcm-service/internal/events"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
	"github.com/ai-olympiad/qcm-service/internal/validator"
)

// serviceManager implements ServiceManager.
type serviceManager struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	questionService  QuestionService
	categoryService  CategoryService
	sessionService   SessionService
	attemptService   AttemptService
	candidateService CandidateService
	dashboardService DashboardService
	exportService    ExportService

	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a service manager with all dependencies.
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ServiceManager {
	return &serviceManager{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

// Initialize sets up all services and their dependencies.
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	sm.questionService = NewQuestionService(sm.repo, sm.logger, sm.validator)
	sm.categoryService = NewCategoryService(sm.repo, sm.logger, sm.validator)
	sm.sessionService = NewSessionService(sm.repo, sm.logger, sm.validator, sm.publisher)
	sm.attemptService = NewAttemptService(sm.repo, sm.logger, sm.validator, sm.publisher, rng)
	sm.candidateService = NewCandidateService(sm.repo, sm.logger)
	sm.dashboardService = NewDashboardService(sm.repo, sm.logger)
	sm.exportService = NewExportService(sm.repo, sm.logger)

	sm.initialized = true
	sm.logger.Info("Service manager initialized")

	return nil
}

func (sm *serviceManager) getter(name string, ready bool) {
	if !sm.initialized {
		panic("service manager not initialized")
	}
	if !ready {
		panic(name + " service not initialized")
	}
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.getter("question", sm.questionService != nil)
	return sm.questionService
}

func (sm *serviceManager) Category() CategoryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.getter("category", sm.categoryService != nil)
	return sm.categoryService
}

func (sm *serviceManager) Session() SessionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.getter("session", sm.sessionService != nil)
	return sm.sessionService
}

func (sm *serviceManager) Attempt() AttemptService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.getter("attempt", sm.attemptService != nil)
	return sm.attemptService
}

func (sm *serviceManager) Candidate() CandidateService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.getter("candidate", sm.candidateService != nil)
	return sm.candidateService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.getter("dashboard", sm.dashboardService != nil)
	return sm.dashboardService
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	sm.getter("export", sm.exportService != nil)
	return sm.exportService
}

func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if manager, ok := sm.repo.(repositories.RepositoryManager); ok {
		if err := manager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("repository health check failed: %w", err)
		}
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	if manager, ok := sm.repo.(repositories.RepositoryManager); ok {
		if err := manager.Shutdown(ctx); err != nil {
			sm.logger.Error("Failed to shutdown repository manager", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
