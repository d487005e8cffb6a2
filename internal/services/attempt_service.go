package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ai-olympiad/qcm-service/internal/events"
	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
	"github.com/ai-olympiad/qcm-service/internal/validator"
)

type attemptService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher

	// rng drives the question draw; injectable so tests can seed it.
	// Guarded by rngMu since *rand.Rand is not safe for concurrent use.
	rng   *rand.Rand
	rngMu sync.Mutex

	now func() time.Time
}

func NewAttemptService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, rng *rand.Rand) AttemptService {
	return &attemptService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
		rng:       rng,
		now:       time.Now,
	}
}

// ===== CORE ATTEMPT OPERATIONS =====

func (s *attemptService) Start(ctx context.Context, sessionID, candidateID string) (*AttemptResponse, error) {
	s.logger.Info("Starting attempt",
		"session_id", sessionID,
		"candidate_id", candidateID)

	session, err := s.repo.Session().GetByID(ctx, nil, sessionID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	now := s.now()
	if !session.IsActive {
		return nil, ErrSessionInactive
	}
	if now.Before(session.StartDate) {
		return nil, ErrSessionNotOpen
	}
	if now.After(session.EndDate) {
		return nil, ErrSessionClosed
	}

	// One completed attempt per candidate and session.
	if _, err := s.repo.Attempt().GetCompleted(ctx, nil, candidateID, sessionID); err == nil {
		return nil, ErrSessionAlreadyCompleted
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check completed attempt: %w", err)
	}

	// An in-progress attempt is resumed with its original draw.
	if active, err := s.repo.Attempt().GetActive(ctx, nil, candidateID, sessionID); err == nil {
		s.logger.Info("Resuming existing attempt", "attempt_id", active.ID)
		return s.buildAttemptResponse(ctx, active.ID, session)
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check active attempt: %w", err)
	}

	// Draw against the current active-bank snapshot. A failed draw leaves
	// no attempt behind.
	bank, err := s.repo.Question().GetActiveForDraw(ctx, nil, repositories.DrawFilters{
		Categories:   session.Categories,
		Difficulties: session.Difficulties,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}

	drawn, err := s.draw(bank, DrawConfig{
		TotalQuestions: session.TotalQuestions,
		Categories:     session.Categories,
		Difficulties:   session.Difficulties,
		Distribution:   session.DistributionByDifficulty,
	})
	if err != nil {
		return nil, err
	}

	attempt := &models.Attempt{
		SessionID:      sessionID,
		CandidateID:    candidateID,
		Status:         models.AttemptInProgress,
		StartedAt:      now,
		TotalQuestions: session.TotalQuestions,
		TimeLimit:      session.TimeLimitMinutes(),
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Attempt().Create(ctx, tx, attempt); err != nil {
			return fmt.Errorf("failed to create attempt: %w", err)
		}

		frozen := make([]*models.AttemptQuestion, len(drawn))
		for i, question := range drawn {
			frozen[i] = &models.AttemptQuestion{
				AttemptID:  attempt.ID,
				QuestionID: question.ID,
				OrderIndex: i,
			}
		}
		if err := s.repo.AttemptQuestion().CreateBatch(ctx, tx, frozen); err != nil {
			return fmt.Errorf("failed to freeze draw: %w", err)
		}

		return nil
	})
	if err != nil {
		// A concurrent Start for the same pair won the one-in-progress
		// unique index between our resume check and the insert. Resume the
		// attempt it created instead of failing.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			active, activeErr := s.repo.Attempt().GetActive(ctx, nil, candidateID, sessionID)
			if activeErr == nil {
				s.logger.Info("Resuming concurrently started attempt", "attempt_id", active.ID)
				return s.buildAttemptResponse(ctx, active.ID, session)
			}
			if repositories.IsNotFoundError(activeErr) {
				return nil, ErrSessionAlreadyCompleted
			}
			return nil, fmt.Errorf("failed to resume concurrent attempt: %w", activeErr)
		}
		return nil, fmt.Errorf("failed to start attempt transaction: %w", err)
	}

	s.logger.Info("Attempt started",
		"attempt_id", attempt.ID,
		"session_id", sessionID,
		"candidate_id", candidateID,
		"questions", len(drawn))

	return s.buildAttemptResponse(ctx, attempt.ID, session)
}

func (s *attemptService) GetQuestions(ctx context.Context, attemptID, candidateID string) (*AttemptResponse, error) {
	attempt, err := s.getOwnedAttempt(ctx, attemptID, candidateID)
	if err != nil {
		return nil, err
	}

	if attempt.IsCompleted() {
		return nil, ErrAttemptAlreadyCompleted
	}

	session, err := s.repo.Session().GetByID(ctx, nil, attempt.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return s.buildAttemptResponse(ctx, attemptID, session)
}

func (s *attemptService) SubmitAnswer(ctx context.Context, attemptID, candidateID string, req *SubmitAnswerRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	attempt, err := s.getOwnedAttempt(ctx, attemptID, candidateID)
	if err != nil {
		return err
	}

	if attempt.IsCompleted() {
		return ErrAttemptAlreadyCompleted
	}
	if attempt.Status != models.AttemptInProgress {
		return ErrAttemptNotInProgress
	}

	inAttempt, err := s.repo.AttemptQuestion().Exists(ctx, nil, attemptID, req.QuestionID)
	if err != nil {
		return fmt.Errorf("failed to check attempt question: %w", err)
	}
	if !inAttempt {
		return ErrQuestionNotInAttempt
	}

	// Selected indices must reference the frozen question's options; nothing
	// is persisted otherwise.
	question, err := s.repo.Question().GetByID(ctx, nil, req.QuestionID)
	if err != nil {
		return fmt.Errorf("failed to load question: %w", err)
	}
	if errs := s.validator.ValidateAnswerSelection(req.AnswerGiven, len(question.Options)); len(errs) > 0 {
		return errs
	}

	answer := &models.Answer{
		AttemptID:   attemptID,
		QuestionID:  req.QuestionID,
		AnswerGiven: req.AnswerGiven,
		AnsweredAt:  s.now(),
	}
	if err := s.repo.Answer().Upsert(ctx, nil, answer); err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}

	s.logger.Debug("Answer saved",
		"attempt_id", attemptID,
		"question_id", req.QuestionID,
		"selected", len(req.AnswerGiven))

	return nil
}

func (s *attemptService) Complete(ctx context.Context, attemptID, candidateID string, req *CompleteAttemptRequest) (*models.AttemptResultView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	attempt, err := s.getOwnedAttempt(ctx, attemptID, candidateID)
	if err != nil {
		return nil, err
	}

	if attempt.IsCompleted() {
		return nil, ErrAttemptAlreadyCompleted
	}

	session, err := s.repo.Session().GetByID(ctx, nil, attempt.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	frozen, err := s.repo.AttemptQuestion().GetByAttempt(ctx, nil, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt questions: %w", err)
	}
	answers, err := s.repo.Answer().GetByAttempt(ctx, nil, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	keys := make(map[string][]int, len(frozen))
	for _, aq := range frozen {
		if aq.Question != nil {
			keys[aq.QuestionID] = aq.Question.CorrectAnswers
		}
	}
	given := make(map[string][]int, len(answers))
	for _, answer := range answers {
		given[answer.QuestionID] = answer.AnswerGiven
	}

	now := s.now()
	grade := GradeAttempt(given, keys, attempt.TotalQuestions, session.PassingScore)
	completion := repositories.AttemptCompletion{
		CompletedAt:    now,
		Score:          grade.Score,
		CorrectAnswers: grade.CorrectAnswers,
		Passed:         grade.Passed,
		TimeSpent:      int(now.Sub(attempt.StartedAt).Seconds()),
		TabSwitches:    req.TabSwitches,
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		rows, err := s.repo.Attempt().Complete(ctx, tx, attemptID, completion)
		if err != nil {
			return err
		}
		// Zero rows means a concurrent request completed this attempt
		// between our read and the guarded update.
		if rows == 0 {
			return ErrAttemptAlreadyCompleted
		}

		return s.repo.Answer().MarkGraded(ctx, tx, attemptID, grade.Correctness)
	})
	if err != nil {
		if errors.Is(err, ErrAttemptAlreadyCompleted) {
			return nil, ErrAttemptAlreadyCompleted
		}
		return nil, fmt.Errorf("failed to complete attempt transaction: %w", err)
	}

	s.logger.Info("Attempt completed",
		"attempt_id", attemptID,
		"candidate_id", candidateID,
		"score", grade.Score,
		"passed", grade.Passed)

	s.publishCompleted(ctx, attempt, completion)

	return &models.AttemptResultView{
		AttemptID:      attemptID,
		SessionID:      attempt.SessionID,
		SessionTitle:   session.Title,
		Score:          grade.Score,
		CorrectAnswers: grade.CorrectAnswers,
		TotalQuestions: attempt.TotalQuestions,
		Passed:         grade.Passed,
		PassingScore:   session.PassingScore,
		TimeSpent:      completion.TimeSpent,
		TabSwitches:    completion.TabSwitches,
		StartedAt:      attempt.StartedAt,
		CompletedAt:    &completion.CompletedAt,
	}, nil
}

func (s *attemptService) GetDetails(ctx context.Context, attemptID, candidateID string) (*AttemptDetailResponse, error) {
	attempt, err := s.repo.Attempt().GetByIDWithDetails(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	// Ownership failures surface as not-found so attempt ids cannot be
	// probed across candidates.
	if attempt.CandidateID != candidateID {
		return nil, ErrAttemptNotFound
	}
	if !attempt.IsCompleted() {
		return nil, ErrAttemptReviewUnavailable
	}

	return s.buildDetailResponse(attempt), nil
}
