package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/validator"
)

func newCategoryService(repo *mockRepository) CategoryService {
	return NewCategoryService(repo, testLogger(), validator.New())
}

func TestCategoryServiceCreate(t *testing.T) {
	repo := newMockRepository()
	service := newCategoryService(repo)

	category, err := service.Create(context.Background(), &validator.CategoryCreateRequest{
		Name: "Algebra",
		Slug: "algebra",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category.ID == "" {
		t.Error("category ID not assigned")
	}
	if !category.IsActive {
		t.Error("new category should be active")
	}
}

func TestCategoryServiceCreateSlugTaken(t *testing.T) {
	repo := newMockRepository()
	service := newCategoryService(repo)

	if _, err := service.Create(context.Background(), &validator.CategoryCreateRequest{
		Name: "Algebra",
		Slug: "algebra",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := service.Create(context.Background(), &validator.CategoryCreateRequest{
		Name: "Algebra II",
		Slug: "algebra",
	})
	if !errors.Is(err, ErrCategorySlugTaken) {
		t.Errorf("error = %v, want ErrCategorySlugTaken", err)
	}
}

func TestCategoryServiceDeleteGuardedByQuestions(t *testing.T) {
	repo := newMockRepository()
	service := newCategoryService(repo)

	category, err := service.Create(context.Background(), &validator.CategoryCreateRequest{
		Name: "Algebra",
		Slug: "algebra",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.store.questions["q1"] = &models.Question{
		ID:         "q1",
		CategoryID: &category.ID,
		IsActive:   true,
	}

	if err := service.Delete(context.Background(), category.ID); !errors.Is(err, ErrCategoryHasQuestions) {
		t.Errorf("error = %v, want ErrCategoryHasQuestions", err)
	}

	delete(repo.store.questions, "q1")
	if err := service.Delete(context.Background(), category.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.store.categories[category.ID]; ok {
		t.Error("category not removed")
	}
}

func TestCategoryServiceDeleteNotFound(t *testing.T) {
	repo := newMockRepository()
	service := newCategoryService(repo)

	if err := service.Delete(context.Background(), "missing"); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("error = %v, want ErrCategoryNotFound", err)
	}
}
