package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ai-olympiad/qcm-service/internal/models"
)

// ===== FILTERS =====

// QuestionFilters narrows admin question listings.
type QuestionFilters struct {
	CategoryID *string
	Difficulty *models.Difficulty
	IsActive   *bool
	Search     *string

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// DrawFilters selects the bank slice eligible for a draw. Empty slices mean
// no filter on that axis.
type DrawFilters struct {
	Categories   []string
	Difficulties []models.Difficulty
}

// SessionFilters narrows admin session listings.
type SessionFilters struct {
	IsActive *bool
	Search   *string

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// AttemptFilters narrows attempt listings.
type AttemptFilters struct {
	SessionID   *string
	CandidateID *string
	Status      *models.AttemptStatus
	DateFrom    *time.Time
	DateTo      *time.Time

	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// AttemptCompletion carries the grading result written by the conditional
// completion update.
type AttemptCompletion struct {
	CompletedAt    time.Time
	Score          int
	CorrectAnswers int
	Passed         bool
	TimeSpent      int
	TabSwitches    int
}

// ===== ENTITY REPOSITORIES =====

type QuestionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
	Deactivate(ctx context.Context, tx *gorm.DB, id string) error

	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)

	// GetActiveForDraw loads the active bank slice matching the filters,
	// including the answer keys. Draw input only; never exposed raw.
	GetActiveForDraw(ctx context.Context, tx *gorm.DB, filters DrawFilters) ([]*models.Question, error)

	// CountActiveByDifficulty counts active questions per difficulty under
	// the category filter, used for supply checks.
	CountActiveByDifficulty(ctx context.Context, tx *gorm.DB, categories []string) (map[models.Difficulty]int64, error)
	CountActive(ctx context.Context, tx *gorm.DB, filters DrawFilters) (int64, error)

	// IsReferenced reports whether any attempt froze this question.
	IsReferenced(ctx context.Context, tx *gorm.DB, id string) (bool, error)
}

type CategoryRepository interface {
	Create(ctx context.Context, tx *gorm.DB, category *models.Category) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Category, error)
	Update(ctx context.Context, tx *gorm.DB, category *models.Category) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	// List returns categories ordered by display order, with question
	// counts populated.
	List(ctx context.Context, tx *gorm.DB, includeInactive bool) ([]*models.Category, error)
	HasQuestions(ctx context.Context, tx *gorm.DB, id string) (bool, error)
}

type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ExamSession, error)
	Update(ctx context.Context, tx *gorm.DB, session *models.ExamSession) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error

	List(ctx context.Context, tx *gorm.DB, filters SessionFilters) ([]*models.ExamSession, int64, error)

	// ListVisible returns active sessions a candidate may see: window open
	// now or opening in the future, plus past sessions the candidate
	// completed (resolved by the service).
	ListVisible(ctx context.Context, tx *gorm.DB) ([]*models.ExamSession, error)

	CountAttempts(ctx context.Context, tx *gorm.DB, sessionID string) (int64, error)
}

type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Attempt, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id string) (*models.Attempt, error)
	Update(ctx context.Context, tx *gorm.DB, attempt *models.Attempt) error

	// GetActive returns the candidate's in-progress attempt for a session.
	GetActive(ctx context.Context, tx *gorm.DB, candidateID, sessionID string) (*models.Attempt, error)
	// GetCompleted returns the candidate's completed attempt for a session.
	GetCompleted(ctx context.Context, tx *gorm.DB, candidateID, sessionID string) (*models.Attempt, error)
	GetCompletedBySessions(ctx context.Context, tx *gorm.DB, candidateID string, sessionIDs []string) (map[string]*models.Attempt, error)

	List(ctx context.Context, tx *gorm.DB, filters AttemptFilters) ([]*models.Attempt, int64, error)

	// Complete writes the grading result guarded by completed_at IS NULL
	// and returns the number of rows updated. Zero means another request
	// completed the attempt first.
	Complete(ctx context.Context, tx *gorm.DB, id string, result AttemptCompletion) (int64, error)
}

type AttemptQuestionRepository interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.AttemptQuestion) error
	// GetByAttempt returns the frozen draw ordered by order_index with the
	// bank questions preloaded.
	GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID string) ([]*models.AttemptQuestion, error)
	Exists(ctx context.Context, tx *gorm.DB, attemptID, questionID string) (bool, error)
}

type AnswerRepository interface {
	// Upsert inserts or replaces the candidate's selection for one
	// (attempt, question) pair.
	Upsert(ctx context.Context, tx *gorm.DB, answer *models.Answer) error
	GetByAttempt(ctx context.Context, tx *gorm.DB, attemptID string) ([]*models.Answer, error)
	GetByAttemptAndQuestion(ctx context.Context, tx *gorm.DB, attemptID, questionID string) (*models.Answer, error)
	// MarkGraded persists per-answer correctness after grading.
	MarkGraded(ctx context.Context, tx *gorm.DB, attemptID string, correctness map[string]bool) error
}

type UserRepository interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []string) ([]*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Upsert(ctx context.Context, tx *gorm.DB, user *models.User) error
}

// ===== DASHBOARD =====

type AdminStats struct {
	TotalQuestions        int64                       `json:"total_questions"`
	ActiveQuestions       int64                       `json:"active_questions"`
	TotalSessions         int64                       `json:"total_sessions"`
	ActiveSessions        int64                       `json:"active_sessions"`
	TotalAttempts         int64                       `json:"total_attempts"`
	CompletedAttempts     int64                       `json:"completed_attempts"`
	AverageScore          float64                     `json:"average_score"`
	PassRate              float64                     `json:"pass_rate"`
	QuestionsByDifficulty map[models.Difficulty]int64 `json:"questions_by_difficulty"`
	QuestionsByCategory   map[string]int64            `json:"questions_by_category"`
	AttemptsBySession     []SessionAttemptCount       `json:"attempts_by_session"`
	TopPerformers         []PerformerRow              `json:"top_performers"`
	RecentAttempts        []RecentAttemptRow          `json:"recent_attempts"`
}

type SessionAttemptCount struct {
	SessionID    string  `json:"session_id"`
	SessionTitle string  `json:"session_title"`
	Attempts     int64   `json:"attempts"`
	AverageScore float64 `json:"average_score"`
	PassRate     float64 `json:"pass_rate"`
}

type PerformerRow struct {
	CandidateID   string  `json:"candidate_id"`
	CandidateName string  `json:"candidate_name"`
	BestScore     int     `json:"best_score"`
	AverageScore  float64 `json:"average_score"`
	Attempts      int64   `json:"attempts"`
}

type RecentAttemptRow struct {
	AttemptID     string    `json:"attempt_id"`
	CandidateName string    `json:"candidate_name"`
	SessionTitle  string    `json:"session_title"`
	Score         int       `json:"score"`
	Passed        bool      `json:"passed"`
	CompletedAt   time.Time `json:"completed_at"`
}

type CandidateStats struct {
	TotalAttempts  int64   `json:"total_attempts"`
	PassedAttempts int64   `json:"passed_attempts"`
	AverageScore   float64 `json:"average_score"`
	BestScore      int64   `json:"best_score"`
	TotalTimeSpent int64   `json:"total_time_spent"`
}

// ExportRow is one line of the admin results export.
type ExportRow struct {
	CandidateName  string
	CandidateEmail string
	SessionTitle   string
	Score          int
	CorrectAnswers int
	TotalQuestions int
	Passed         bool
	TimeSpent      int
	TabSwitches    int
	CompletedAt    time.Time
}

type DashboardRepository interface {
	GetAdminStats(ctx context.Context, tx *gorm.DB) (*AdminStats, error)
	GetCandidateStats(ctx context.Context, tx *gorm.DB, candidateID string) (*CandidateStats, error)
	GetExportRows(ctx context.Context, tx *gorm.DB, sessionID *string) ([]ExportRow, error)
}
