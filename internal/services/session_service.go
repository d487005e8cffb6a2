package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ai-olympiad/qcm-service/internal/events"
	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
	"github.com/ai-olympiad/qcm-service/internal/validator"
)

type sessionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewSessionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) SessionService {
	return &sessionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *sessionService) Create(ctx context.Context, req *validator.SessionCreateRequest, createdBy string) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if errs := s.validator.ValidateSessionDefinition(req); len(errs) > 0 {
		return nil, errs
	}

	// The bank must be able to satisfy the draw at definition time, per
	// bucket for stratified sessions.
	if err := s.checkBankSufficiency(ctx, req); err != nil {
		return nil, err
	}

	session := &models.ExamSession{
		Title:                    req.Title,
		Description:              req.Description,
		StartDate:                req.StartDate,
		EndDate:                  req.EndDate,
		TotalQuestions:           req.TotalQuestions,
		TimePerQuestion:          req.TimePerQuestion,
		Categories:               req.Categories,
		Difficulties:             req.Difficulties,
		DistributionByDifficulty: req.DistributionByDifficulty,
		PassingScore:             req.PassingScore,
		IsActive:                 true,
	}
	if createdBy != "" {
		session.CreatedBy = &createdBy
	}

	if err := s.repo.Session().Create(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.logger.Info("Session created",
		"session_id", session.ID,
		"title", session.Title,
		"total_questions", session.TotalQuestions,
		"created_by", createdBy)

	s.publishCreated(ctx, session)

	return &SessionResponse{ExamSession: session}, nil
}

func (s *sessionService) Update(ctx context.Context, id string, req *validator.SessionUpdateRequest) (*SessionResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	session, err := s.repo.Session().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if req.Title != nil {
		session.Title = *req.Title
	}
	if req.Description != nil {
		session.Description = req.Description
	}
	if req.StartDate != nil {
		session.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		session.EndDate = *req.EndDate
	}
	if req.TimePerQuestion != nil {
		session.TimePerQuestion = *req.TimePerQuestion
	}
	if req.PassingScore != nil {
		session.PassingScore = *req.PassingScore
	}
	if req.IsActive != nil {
		session.IsActive = *req.IsActive
	}

	if !session.EndDate.After(session.StartDate) {
		return nil, validator.ValidationErrors{{
			Field:   "end_date",
			Message: "must be after start_date",
			Value:   session.EndDate,
			Rule:    "window",
		}}
	}

	if err := s.repo.Session().Update(ctx, nil, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	s.logger.Info("Session updated", "session_id", id)

	count, err := s.repo.Session().CountAttempts(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	return &SessionResponse{ExamSession: session, AttemptCount: count}, nil
}

func (s *sessionService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Session().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to get session: %w", err)
	}

	count, err := s.repo.Session().CountAttempts(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count attempts: %w", err)
	}
	if count > 0 {
		return ErrSessionHasAttempts
	}

	if err := s.repo.Session().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	s.logger.Info("Session deleted", "session_id", id)
	return nil
}

func (s *sessionService) GetByID(ctx context.Context, id string) (*SessionResponse, error) {
	session, err := s.repo.Session().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	count, err := s.repo.Session().CountAttempts(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	return &SessionResponse{ExamSession: session, AttemptCount: count}, nil
}

func (s *sessionService) List(ctx context.Context, filters repositories.SessionFilters) ([]*SessionResponse, int64, error) {
	sessions, total, err := s.repo.Session().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	responses := make([]*SessionResponse, len(sessions))
	for i, session := range sessions {
		count, err := s.repo.Session().CountAttempts(ctx, nil, session.ID)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count attempts: %w", err)
		}
		responses[i] = &SessionResponse{ExamSession: session, AttemptCount: count}
	}

	return responses, total, nil
}

// checkBankSufficiency verifies the active bank can satisfy the session's
// draw under its filters, per difficulty bucket when a distribution is set.
func (s *sessionService) checkBankSufficiency(ctx context.Context, req *validator.SessionCreateRequest) error {
	if len(req.DistributionByDifficulty) > 0 {
		counts, err := s.repo.Question().CountActiveByDifficulty(ctx, nil, req.Categories)
		if err != nil {
			return fmt.Errorf("failed to count bank supply: %w", err)
		}

		for _, difficulty := range models.Difficulties {
			need := req.DistributionByDifficulty[difficulty]
			if need <= 0 {
				continue
			}
			if available := counts[difficulty]; int64(need) > available {
				return &InsufficientQuestionsError{
					Difficulty: difficulty,
					Requested:  need,
					Available:  int(available),
				}
			}
		}
		return nil
	}

	available, err := s.repo.Question().CountActive(ctx, nil, repositories.DrawFilters{
		Categories:   req.Categories,
		Difficulties: req.Difficulties,
	})
	if err != nil {
		return fmt.Errorf("failed to count bank supply: %w", err)
	}
	if int64(req.TotalQuestions) > available {
		return &InsufficientQuestionsError{
			Requested: req.TotalQuestions,
			Available: int(available),
		}
	}
	return nil
}

func (s *sessionService) publishCreated(ctx context.Context, session *models.ExamSession) {
	event := events.SessionCreatedEvent{
		SessionID:      session.ID,
		Title:          session.Title,
		StartDate:      session.StartDate,
		EndDate:        session.EndDate,
		TotalQuestions: session.TotalQuestions,
		CreatedAt:      time.Now(),
	}

	if err := s.publisher.Publish(ctx, events.TopicSessionCreated, event); err != nil {
		s.logger.Error("Failed to publish session created event",
			"session_id", session.ID,
			"error", err)
	}
}
