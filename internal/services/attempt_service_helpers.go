package services

import (
	"context"
	"fmt"

	"github.com/ai-olympiad/qcm-service/internal/events"
	"github.com/ai-olympiad/qcm-service/internal/models"
	"github.com/ai-olympiad/qcm-service/internal/repositories"
)

// draw samples the bank under the rng lock.
func (s *attemptService) draw(bank []*models.Question, cfg DrawConfig) ([]*models.Question, error) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return DrawQuestions(bank, cfg, s.rng)
}

// getOwnedAttempt loads an attempt and enforces candidate ownership.
// Ownership failures surface as not-found.
func (s *attemptService) getOwnedAttempt(ctx context.Context, attemptID, candidateID string) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	if attempt.CandidateID != candidateID {
		return nil, ErrAttemptNotFound
	}
	return attempt, nil
}

// buildAttemptResponse loads the frozen draw and current selections and
// renders the candidate view.
func (s *attemptService) buildAttemptResponse(ctx context.Context, attemptID string, session *models.ExamSession) (*AttemptResponse, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, nil, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}

	frozen, err := s.repo.AttemptQuestion().GetByAttempt(ctx, nil, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempt questions: %w", err)
	}
	answers, err := s.repo.Answer().GetByAttempt(ctx, nil, attemptID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	given := make(map[string][]int, len(answers))
	for _, answer := range answers {
		given[answer.QuestionID] = answer.AnswerGiven
	}

	views := make([]models.CandidateQuestionView, 0, len(frozen))
	for _, aq := range frozen {
		if aq.Question == nil {
			continue
		}
		views = append(views, models.CandidateQuestionView{
			ID:               aq.QuestionID,
			OrderIndex:       aq.OrderIndex,
			Text:             aq.Question.Text,
			Options:          aq.Question.Options,
			IsMultipleAnswer: aq.Question.IsMultipleAnswer,
			Difficulty:       aq.Question.Difficulty,
			Points:           aq.Question.Points,
			AnswerGiven:      given[aq.QuestionID],
		})
	}

	return &AttemptResponse{
		ID:             attempt.ID,
		SessionID:      attempt.SessionID,
		SessionTitle:   session.Title,
		Status:         attempt.Status,
		StartedAt:      attempt.StartedAt,
		TimeLimit:      attempt.TimeLimit,
		TotalQuestions: attempt.TotalQuestions,
		PassingScore:   session.PassingScore,
		Questions:      views,
	}, nil
}

// buildDetailResponse renders the completed-attempt review from a fully
// preloaded attempt.
func (s *attemptService) buildDetailResponse(attempt *models.Attempt) *AttemptDetailResponse {
	given := make(map[string]*models.Answer, len(attempt.Answers))
	for i := range attempt.Answers {
		given[attempt.Answers[i].QuestionID] = &attempt.Answers[i]
	}

	questions := make([]models.AnswerReviewView, 0, len(attempt.Questions))
	for _, aq := range attempt.Questions {
		if aq.Question == nil {
			continue
		}

		view := models.AnswerReviewView{
			QuestionID:       aq.QuestionID,
			OrderIndex:       aq.OrderIndex,
			Text:             aq.Question.Text,
			Options:          aq.Question.Options,
			IsMultipleAnswer: aq.Question.IsMultipleAnswer,
			CorrectAnswers:   aq.Question.CorrectAnswers,
			Explanation:      aq.Question.Explanation,
		}
		if answer, ok := given[aq.QuestionID]; ok {
			view.AnswerGiven = answer.AnswerGiven
			if answer.IsCorrect != nil {
				view.IsCorrect = *answer.IsCorrect
			}
		}
		questions = append(questions, view)
	}

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

	return &AttemptDetailResponse{
		Result:    result,
		Questions: questions,
	}
}

// publishCompleted emits the attempt.completed event. Best-effort: failures
// are logged, never surfaced to the candidate.
func (s *attemptService) publishCompleted(ctx context.Context, attempt *models.Attempt, completion repositories.AttemptCompletion) {
	event := events.AttemptCompletedEvent{
		AttemptID:      attempt.ID,
		SessionID:      attempt.SessionID,
		CandidateID:    attempt.CandidateID,
		Score:          completion.Score,
		CorrectAnswers: completion.CorrectAnswers,
		TotalQuestions: attempt.TotalQuestions,
		Passed:         completion.Passed,
		TimeSpent:      completion.TimeSpent,
		TabSwitches:    completion.TabSwitches,
		CompletedAt:    completion.CompletedAt,
	}

	if err := s.publisher.Publish(ctx, events.TopicAttemptCompleted, event); err != nil {
		s.logger.Error("Failed to publish attempt completed event",
			"attempt_id", attempt.ID,
			"error", err)
	}
}
