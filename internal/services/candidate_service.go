package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
)

type candidateService struct {
	repo   repositories.Repository
	logger *slog.Logger

	now func() time.Time
}

func NewCandidateService(repo repositories.Repository, logger *slog.Logger) CandidateService {
	return &candidateService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *candidateService) ListSessions(ctx context.Context, candidateID string) ([]models.CandidateSessionView, error) {
	sessions, err := s.repo.Session().ListVisible(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessionIDs := make([]string, len(sessions))
	for i, session := range sessions {
		sessionIDs[i] = session.ID
	}

	completed, err := s.repo.Attempt().GetCompletedBySessions(ctx, nil, candidateID, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed attempts: %w", err)
	}

	now := s.now()
	views := make([]models.CandidateSessionView, 0, len(sessions))
	for _, session := range sessions {
		view := models.CandidateSessionView{
			ID:             session.ID,
			Title:          session.Title,
			Description:    session.Description,
			StartDate:      session.StartDate,
			EndDate:        session.EndDate,
			TotalQuestions: session.TotalQuestions,
			TimeLimit:      session.TimeLimitMinutes(),
			PassingScore:   session.PassingScore,
		}

		switch {
		case completed[session.ID] != nil:
			attempt := completed[session.ID]
			view.Status = models.SessionStatusCompleted
			view.Score = attempt.Score
			view.Passed = attempt.Passed
			view.CompletedAt = attempt.CompletedAt
		case session.WindowOpen(now):
			view.Status = models.SessionStatusAvailable
		default:
			view.Status = models.SessionStatusLocked
		}

		views = append(views, view)
	}

	return views, nil
}

func (s *candidateService) ListResults(ctx context.Context, candidateID string) ([]models.AttemptResultView, error) {
	status := models.AttemptCompleted
	attempts, _, err := s.repo.Attempt().List(ctx, nil, repositories.AttemptFilters{
		CandidateID: &candidateID,
		Status:      &status,
		SortBy:      "completed_at",
		SortOrder:   "desc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	results := make([]models.AttemptResultView, 0, len(attempts))
	for _, attempt := range attempts {
		result := models.AttemptResultView{
			AttemptID:      attempt.ID,
			SessionID:      attempt.SessionID,
			TotalQuestions: attempt.TotalQuestions,
			TabSwitches:    attempt.TabSwitches,
			StartedAt:      attempt.StartedAt,
			CompletedAt:    attempt.CompletedAt,
		}
		if attempt.Session != nil {
			result.SessionTitle = attempt.Session.Title
			result.PassingScore = attempt.Session.PassingScore
		}
		if attempt.Score != nil {
			result.Score = *attempt.Score
		}
		if attempt.CorrectAnswers != nil {
			result.CorrectAnswers = *attempt.CorrectAnswers
		}
		if attempt.Passed != nil {
			result.Passed = *attempt.Passed
		}
		if attempt.TimeSpent != nil {
			result.TimeSpent = *attempt.TimeSpent
		}
		results = append(results, result)
	}

	return results, nil
}

func (s *candidateService) GetStats(ctx context.Context, candidateID string) (*models.CandidateStatsView, error) {
	stats, err := s.repo.Dashboard().GetCandidateStats(ctx, nil, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get candidate stats: %w", err)
	}

	return &models.CandidateStatsView{
		TotalAttempts:  int(stats.TotalAttempts),
		PassedAttempts: int(stats.PassedAttempts),
		AverageScore:   stats.AverageScore,
		BestScore:      int(stats.BestScore),
		TotalTimeSpent: int(stats.TotalTimeSpent),
	}, nil
}
