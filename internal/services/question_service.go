package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
	"github.com/ai-olympiad/qcm-service/internal/validator"
)

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *questionService) Create(ctx context.Context, req *validator.QuestionCreateRequest, createdBy string) (*models.Question, error) {
	if err := s.validateCreate(req); err != nil {
		return nil, err
	}

	question := s.buildQuestion(req)

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created",
		"question_id", question.ID,
		"difficulty", question.Difficulty,
		"created_by", createdBy)

	return question, nil
}

func (s *questionService) BulkCreate(ctx context.Context, req *validator.BulkQuestionCreateRequest, createdBy string) (*BulkCreateResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	result := &BulkCreateResult{}
	valid := make([]*models.Question, 0, len(req.Questions))

	// Rows are validated individually so one bad row does not reject the
	// whole import; rejected rows come back with their index.
	for i := range req.Questions {
		row := &req.Questions[i]
		if err := s.validateCreate(row); err != nil {
			result.Errors = append(result.Errors, BulkRowError{
				Index:   i,
				Message: err.Error(),
			})
			continue
		}
		valid = append(valid, s.buildQuestion(row))
	}

	if len(valid) > 0 {
		err := s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
			return s.repo.Question().CreateBatch(ctx, tx, valid)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to import questions: %w", err)
		}
	}
	result.Created = len(valid)

	s.logger.Info("Questions imported",
		"created", result.Created,
		"rejected", len(result.Errors),
		"created_by", createdBy)

	return result, nil
}

func (s *questionService) Update(ctx context.Context, id string, req *validator.QuestionUpdateRequest) (*models.Question, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if req.Text != nil {
		question.Text = *req.Text
	}
	if req.Options != nil {
		question.Options = req.Options
	}
	if req.CorrectAnswers != nil {
		question.CorrectAnswers = req.CorrectAnswers
	}
	if req.IsMultipleAnswer != nil {
		question.IsMultipleAnswer = *req.IsMultipleAnswer
	}
	if req.Difficulty != nil {
		question.Difficulty = *req.Difficulty
	}
	if req.CategoryID != nil {
		question.CategoryID = req.CategoryID
	}
	if req.Explanation != nil {
		question.Explanation = req.Explanation
	}
	if req.Points != nil {
		question.Points = *req.Points
	}
	if req.IsActive != nil {
		question.IsActive = *req.IsActive
	}

	// Re-check cross-field consistency on the merged state.
	if errs := s.validator.ValidateQuestionContent(question.Options, question.CorrectAnswers, question.IsMultipleAnswer); len(errs) > 0 {
		return nil, errs
	}

	question.CategoryRef = nil
	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.logger.Info("Question updated", "question_id", id)
	return question, nil
}

func (s *questionService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Question().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to get question: %w", err)
	}

	referenced, err := s.repo.Question().IsReferenced(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to check question references: %w", err)
	}

	// Frozen attempts keep pointing at the row, so referenced questions
	// are only deactivated.
	if referenced {
		if err := s.repo.Question().Deactivate(ctx, nil, id); err != nil {
			return fmt.Errorf("failed to deactivate question: %w", err)
		}
		s.logger.Info("Question deactivated (referenced by attempts)", "question_id", id)
		return nil
	}

	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.logger.Info("Question deleted", "question_id", id)
	return nil
}

func (s *questionService) GetByID(ctx context.Context, id string) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}
	return questions, total, nil
}

func (s *questionService) validateCreate(req *validator.QuestionCreateRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if errs := s.validator.ValidateQuestionContent(req.Options, req.CorrectAnswers, req.IsMultipleAnswer); len(errs) > 0 {
		return errs
	}
	return nil
}

func (s *questionService) buildQuestion(req *validator.QuestionCreateRequest) *models.Question {
	points := req.Points
	if points == 0 {
		points = 1
	}

	return &models.Question{
		Text:             req.Text,
		Options:          req.Options,
		CorrectAnswers:   req.CorrectAnswers,
		IsMultipleAnswer: req.IsMultipleAnswer,
		Difficulty:       req.Difficulty,
		CategoryID:       req.CategoryID,
		Category:         req.Category,
		Explanation:      req.Explanation,
		Points:           points,
		IsActive:         true,
	}
}
