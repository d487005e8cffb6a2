package services

import (
	"context"
	"time"

	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
	"github.com/ai-olympiad/qcm-service/internal/validator"
)

// ===== REQUEST / RESPONSE TYPES =====

// SubmitAnswerRequest records or replaces the candidate's selection for one
// question of a running attempt. An empty slice clears the selection.
type SubmitAnswerRequest struct {
	QuestionID  string `json:"question_id" validate:"required,uuid4"`
	AnswerGiven []int  `json:"answer_given" validate:"required"`
}

// CompleteAttemptRequest closes an attempt. TabSwitches is client-reported
// and informational only.
type CompleteAttemptRequest struct {
	TabSwitches int `json:"tab_switches" validate:"min=0"`
}

// AttemptResponse is the candidate's view of a running attempt.
type AttemptResponse struct {
	ID             string                         `json:"id"`
	SessionID      string                         `json:"session_id"`
	SessionTitle   string                         `json:"session_title"`
	Status         models.AttemptStatus           `json:"status"`
	StartedAt      time.Time                      `json:"started_at"`
	TimeLimit      int                            `json:"time_limit"` // minutes
	TotalQuestions int                            `json:"total_questions"`
	PassingScore   int                            `json:"passing_score"`
	Questions      []models.CandidateQuestionView `json:"questions"`
}

// AttemptDetailResponse is the post-completion review: the result summary
// plus every question with the key revealed.
type AttemptDetailResponse struct {
	Result    models.AttemptResultView  `json:"result"`
	Questions []models.AnswerReviewView `json:"questions"`
}

// SessionResponse is the admin view of a session.
type SessionResponse struct {
	*models.ExamSession
	AttemptCount int64 `json:"attempt_count"`
}

// BulkRowError reports one rejected row of a bulk import.
type BulkRowError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BulkCreateResult summarizes a bulk question import.
type BulkCreateResult struct {
	Created int            `json:"created"`
	Errors  []BulkRowError `json:"errors"`
}

// ===== SERVICE INTERFACES =====

type QuestionService interface {
	Create(ctx context.Context, req *validator.QuestionCreateRequest, createdBy string) (*models.Question, error)
	BulkCreate(ctx context.Context, req *validator.BulkQuestionCreateRequest, createdBy string) (*BulkCreateResult, error)
	Update(ctx context.Context, id string, req *validator.QuestionUpdateRequest) (*models.Question, error)
	// Delete removes a question from the bank. Questions referenced by any
	// attempt are deactivated instead of removed.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Question, error)
	List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error)
}

type CategoryService interface {
	Create(ctx context.Context, req *validator.CategoryCreateRequest) (*models.Category, error)
	Update(ctx context.Context, id string, req *validator.CategoryUpdateRequest) (*models.Category, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, includeInactive bool) ([]*models.Category, error)
}

type SessionService interface {
	// Create validates the definition, checks the bank can satisfy the
	// draw for every bucket, and publishes a session.created event.
	Create(ctx context.Context, req *validator.SessionCreateRequest, createdBy string) (*SessionResponse, error)
	Update(ctx context.Context, id string, req *validator.SessionUpdateRequest) (*SessionResponse, error)
	// Delete refuses when the session has attempts.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*SessionResponse, error)
	List(ctx context.Context, filters repositories.SessionFilters) ([]*SessionResponse, int64, error)
}

type AttemptService interface {
	// Start begins an attempt for the candidate, drawing and freezing the
	// question set. An existing in-progress attempt is resumed instead.
	Start(ctx context.Context, sessionID, candidateID string) (*AttemptResponse, error)
	// GetQuestions returns the frozen questions of a running attempt with
	// the candidate's current selections.
	GetQuestions(ctx context.Context, attemptID, candidateID string) (*AttemptResponse, error)
	SubmitAnswer(ctx context.Context, attemptID, candidateID string, req *SubmitAnswerRequest) error
	// Complete grades the attempt and closes it. Exactly one concurrent
	// completion succeeds; the others get ErrAttemptAlreadyCompleted.
	Complete(ctx context.Context, attemptID, candidateID string, req *CompleteAttemptRequest) (*models.AttemptResultView, error)
	// GetDetails returns the post-completion review with keys revealed.
	GetDetails(ctx context.Context, attemptID, candidateID string) (*AttemptDetailResponse, error)
}

type CandidateService interface {
	// ListSessions returns visible sessions with per-candidate status.
	ListSessions(ctx context.Context, candidateID string) ([]models.CandidateSessionView, error)
	ListResults(ctx context.Context, candidateID string) ([]models.AttemptResultView, error)
	GetStats(ctx context.Context, candidateID string) (*models.CandidateStatsView, error)
}

type DashboardService interface {
	GetAdminStats(ctx context.Context) (*repositories.AdminStats, error)
}

type ExportService interface {
	// ExportResults renders completed attempts to an xlsx workbook and
	// returns the file content with a suggested filename.
	ExportResults(ctx context.Context, sessionID *string) ([]byte, string, error)
}

// ServiceManager wires and owns all services.
type ServiceManager interface {
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error

	Question() QuestionService
	Category() CategoryService
	Session() SessionService
	Attempt() AttemptService
	Candidate() CandidateService
	Dashboard() DashboardService
	Export() ExportService
}
