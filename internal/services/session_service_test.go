package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ai-olympiad/qcm-service/internal/events"
	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/validator"
)

func newSessionFixture() (*mockRepository, *events.MockEventPublisher, SessionService) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher()
	service := NewSessionService(repo, testLogger(), validator.New(), publisher)
	return repo, publisher, service
}

func seedBank(repo *mockRepository, counts map[models.Difficulty]int) {
	for difficulty, n := range counts {
		for i := 0; i < n; i++ {
			id := uuid.NewString()
			repo.store.questions[id] = &models.Question{
				ID:             id,
				Text:           "bank question",
				CorrectAnswers: []int{0},
				Difficulty:     difficulty,
				IsActive:       true,
			}
		}
	}
}

func validSessionCreateRequest() *validator.SessionCreateRequest {
	return &validator.SessionCreateRequest{
		Title:           "Selection Round 1",
		StartDate:       time.Now().Add(time.Hour),
		EndDate:         time.Now().Add(3 * time.Hour),
		TotalQuestions:  10,
		TimePerQuestion: 2,
		PassingScore:    50,
	}
}

func TestSessionServiceCreate(t *testing.T) {
	repo, publisher, service := newSessionFixture()
	seedBank(repo, map[models.Difficulty]int{models.DifficultyEasy: 15})

	resp, err := service.Create(context.Background(), validSessionCreateRequest(), "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.ID == "" {
		t.Error("session ID not assigned")
	}
	if !resp.IsActive {
		t.Error("new session should be active")
	}
	if resp.CreatedBy == nil || *resp.CreatedBy != "admin-1" {
		t.Errorf("CreatedBy = %v, want admin-1", resp.CreatedBy)
	}

	if published := publisher.EventsOn(events.TopicSessionCreated); len(published) != 1 {
		t.Errorf("%d session created events, want 1", len(published))
	}
}

func TestSessionServiceCreateInsufficientBank(t *testing.T) {
	repo, publisher, service := newSessionFixture()
	seedBank(repo, map[models.Difficulty]int{models.DifficultyEasy: 4})

	_, err := service.Create(context.Background(), validSessionCreateRequest(), "admin-1")

	var insufficientErr *InsufficientQuestionsError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("error = %v, want InsufficientQuestionsError", err)
	}
	if insufficientErr.Requested != 10 || insufficientErr.Available != 4 {
		t.Errorf("Requested/Available = %d/%d, want 10/4", insufficientErr.Requested, insufficientErr.Available)
	}
	if len(repo.store.sessions) != 0 {
		t.Error("session persisted despite insufficient bank")
	}
	if published := publisher.EventsOn(events.TopicSessionCreated); len(published) != 0 {
		t.Error("event published despite rejected create")
	}
}

func TestSessionServiceCreateInsufficientBucket(t *testing.T) {
	repo, _, service := newSessionFixture()
	seedBank(repo, map[models.Difficulty]int{
		models.DifficultyEasy:   10,
		models.DifficultyMedium: 10,
		models.DifficultyHard:   1,
	})

	req := validSessionCreateRequest()
	req.DistributionByDifficulty = models.DifficultyDistribution{
		models.DifficultyEasy:   4,
		models.DifficultyMedium: 4,
		models.DifficultyHard:   2,
	}

	_, err := service.Create(context.Background(), req, "admin-1")

	var insufficientErr *InsufficientQuestionsError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("error = %v, want InsufficientQuestionsError", err)
	}
	if insufficientErr.Difficulty != models.DifficultyHard {
		t.Errorf("Difficulty = %s, want hard", insufficientErr.Difficulty)
	}
}

func TestSessionServiceCreateDistributionMismatch(t *testing.T) {
	repo, _, service := newSessionFixture()
	seedBank(repo, map[models.Difficulty]int{models.DifficultyEasy: 50})

	req := validSessionCreateRequest()
	req.DistributionByDifficulty = models.DifficultyDistribution{
		models.DifficultyEasy: 3, // sums to 3, total is 10
	}

	_, err := service.Create(context.Background(), req, "admin-1")
	if !validator.IsValidationError(err) {
		t.Errorf("error = %v, want validation error for distribution sum", err)
	}
}

func TestSessionServiceCreateInvalidWindow(t *testing.T) {
	repo, _, service := newSessionFixture()
	seedBank(repo, map[models.Difficulty]int{models.DifficultyEasy: 15})

	req := validSessionCreateRequest()
	req.EndDate = req.StartDate.Add(-time.Hour)

	_, err := service.Create(context.Background(), req, "admin-1")
	if !validator.IsValidationError(err) {
		t.Errorf("error = %v, want validation error for inverted window", err)
	}
}

func TestSessionServiceDeleteGuardedByAttempts(t *testing.T) {
	repo, _, service := newSessionFixture()
	seedBank(repo, map[models.Difficulty]int{models.DifficultyEasy: 15})

	resp, err := service.Create(context.Background(), validSessionCreateRequest(), "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.store.attempts["a1"] = &models.Attempt{
		ID:        "a1",
		SessionID: resp.ID,
		Status:    models.AttemptInProgress,
	}

	if err := service.Delete(context.Background(), resp.ID); !errors.Is(err, ErrSessionHasAttempts) {
		t.Errorf("error = %v, want ErrSessionHasAttempts", err)
	}
	if _, ok := repo.store.sessions[resp.ID]; !ok {
		t.Error("session removed despite existing attempts")
	}

	// Without attempts the delete goes through.
	delete(repo.store.attempts, "a1")
	if err := service.Delete(context.Background(), resp.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.store.sessions[resp.ID]; ok {
		t.Error("session not removed")
	}
}

func TestSessionServiceUpdateWindowCheck(t *testing.T) {
	repo, _, service := newSessionFixture()
	seedBank(repo, map[models.Difficulty]int{models.DifficultyEasy: 15})

	resp, err := service.Create(context.Background(), validSessionCreateRequest(), "admin-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	badEnd := resp.StartDate.Add(-time.Hour)
	_, err = service.Update(context.Background(), resp.ID, &validator.SessionUpdateRequest{EndDate: &badEnd})
	if !validator.IsValidationError(err) {
		t.Errorf("error = %v, want validation error for inverted window", err)
	}
}

func TestSessionServiceGetByIDNotFound(t *testing.T) {
	_, _, service := newSessionFixture()

	_, err := service.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("error = %v, want ErrSessionNotFound", err)
	}
}
