package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
	"github.com/ai-olympiad/qcm-service/internal/validator"
)

type categoryService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewCategoryService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) CategoryService {
	return &categoryService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

func (s *categoryService) Create(ctx context.Context, req *validator.CategoryCreateRequest) (*models.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.Category().GetBySlug(ctx, nil, req.Slug); err == nil {
		return nil, ErrCategorySlugTaken
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check category slug: %w", err)
	}

	category := &models.Category{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Color:        req.Color,
		Icon:         req.Icon,
		DisplayOrder: req.DisplayOrder,
		IsActive:     true,
	}

	if err := s.repo.Category().Create(ctx, nil, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info("Category created", "category_id", category.ID, "slug", category.Slug)
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id string, req *validator.CategoryUpdateRequest) (*models.Category, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	category, err := s.repo.Category().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Description != nil {
		category.Description = req.Description
	}
	if req.Color != nil {
		category.Color = req.Color
	}
	if req.Icon != nil {
		category.Icon = req.Icon
	}
	if req.DisplayOrder != nil {
		category.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}

	if err := s.repo.Category().Update(ctx, nil, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info("Category updated", "category_id", id)
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Category().GetByID(ctx, nil, id); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to get category: %w", err)
	}

	hasQuestions, err := s.repo.Category().HasQuestions(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to check category questions: %w", err)
	}
	if hasQuestions {
		return ErrCategoryHasQuestions
	}

	if err := s.repo.Category().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info("Category deleted", "category_id", id)
	return nil
}

func (s *categoryService) List(ctx context.Context, includeInactive bool) ([]*models.Category, error) {
	categories, err := s.repo.Category().List(ctx, nil, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}
