package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/validator"
)

func newQuestionService(repo *mockRepository) QuestionService {
	return NewQuestionService(repo, testLogger(), validator.New())
}

func validCreateRequest() *validator.QuestionCreateRequest {
	return &validator.QuestionCreateRequest{
		Text: "Which activation function saturates for large inputs?",
		Options: []models.QuestionOption{
			{Index: 0, Text: "Sigmoid"},
			{Index: 1, Text: "ReLU"},
		},
		CorrectAnswers: []int{0},
		Difficulty:     models.DifficultyMedium,
	}
}

func TestQuestionServiceCreate(t *testing.T) {
	repo := newMockRepository()
	service := newQuestionService(repo)

	question, err := service.Create(context.Background(), validCreateRequest(), "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if question.ID == "" {
		t.Error("question ID not assigned")
	}
	if !question.IsActive {
		t.Error("new question should be active")
	}
	if question.Points != 1 {
		t.Errorf("Points = %d, want default 1", question.Points)
	}
}

func TestQuestionServiceCreateRejectsBadKey(t *testing.T) {
	repo := newMockRepository()
	service := newQuestionService(repo)

	req := validCreateRequest()
	req.CorrectAnswers = []int{5}

	_, err := service.Create(context.Background(), req, "admin-1")
	if !validator.IsValidationError(err) {
		t.Errorf("error = %v, want validation error for out-of-range key", err)
	}
	if len(repo.store.questions) != 0 {
		t.Error("invalid question persisted")
	}
}

func TestQuestionServiceBulkCreatePartial(t *testing.T) {
	repo := newMockRepository()
	service := newQuestionService(repo)

	bad := validCreateRequest()
	bad.CorrectAnswers = []int{0, 1} // single-answer with two keys

	result, err := service.BulkCreate(context.Background(), &validator.BulkQuestionCreateRequest{
		Questions: []validator.QuestionCreateRequest{*validCreateRequest(), *bad, *validCreateRequest()},
	}, "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Created != 2 {
		t.Errorf("Created = %d, want 2", result.Created)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("%d row errors, want 1", len(result.Errors))
	}
	if result.Errors[0].Index != 1 {
		t.Errorf("error index = %d, want 1", result.Errors[0].Index)
	}
	if len(repo.store.questions) != 2 {
		t.Errorf("%d questions persisted, want 2", len(repo.store.questions))
	}
}

func TestQuestionServiceDeleteReferencedDeactivates(t *testing.T) {
	repo := newMockRepository()
	service := newQuestionService(repo)

	question, err := service.Create(context.Background(), validCreateRequest(), "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A frozen attempt references the question.
	repo.store.attemptQuestions = append(repo.store.attemptQuestions, &models.AttemptQuestion{
		AttemptID:  "attempt-1",
		QuestionID: question.ID,
	})

	if err := service.Delete(context.Background(), question.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	kept, ok := repo.store.questions[question.ID]
	if !ok {
		t.Fatal("referenced question was hard-deleted")
	}
	if kept.IsActive {
		t.Error("referenced question still active after delete")
	}
}

func TestQuestionServiceDeleteUnreferenced(t *testing.T) {
	repo := newMockRepository()
	service := newQuestionService(repo)

	question, err := service.Create(context.Background(), validCreateRequest(), "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := service.Delete(context.Background(), question.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := repo.store.questions[question.ID]; ok {
		t.Error("unreferenced question not removed")
	}
}

func TestQuestionServiceUpdateMergedValidation(t *testing.T) {
	repo := newMockRepository()
	service := newQuestionService(repo)

	question, err := service.Create(context.Background(), validCreateRequest(), "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Shrinking the options without touching the key must fail: the merged
	// state would have the key referencing a removed option.
	_, err = service.Update(context.Background(), question.ID, &validator.QuestionUpdateRequest{
		Options: []models.QuestionOption{
			{Index: 0, Text: "A"},
			{Index: 1, Text: "B"},
		},
		CorrectAnswers: []int{3},
	})
	if !validator.IsValidationError(err) {
		t.Errorf("error = %v, want validation error on merged state", err)
	}
}

func TestQuestionServiceUpdateNotFound(t *testing.T) {
	repo := newMockRepository()
	service := newQuestionService(repo)

	_, err := service.Update(context.Background(), "missing", &validator.QuestionUpdateRequest{})
	if !errors.Is(err, ErrQuestionNotFound) {
		t.Errorf("error = %v, want ErrQuestionNotFound", err)
	}
}
