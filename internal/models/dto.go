package models

import "time"

// Candidate-facing view types. These strip everything a candidate must not
// see during an exam (correct answers, explanations) and add per-candidate
// state computed by the services.

// CandidateSessionStatus is the per-candidate availability of a session.
type CandidateSessionStatus string

const (
	SessionStatusLocked    CandidateSessionStatus = "locked"
	SessionStatusAvailable CandidateSessionStatus = "available"
	SessionStatusCompleted CandidateSessionStatus = "completed"
)

// CandidateSessionView is one row of the candidate session listing.
type CandidateSessionView struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	Description    *string                `json:"description"`
	StartDate      time.Time              `json:"start_date"`
	EndDate        time.Time              `json:"end_date"`
	TotalQuestions int                    `json:"total_questions"`
	TimeLimit      int                    `json:"time_limit"` // minutes
	PassingScore   int                    `json:"passing_score"`
	Status         CandidateSessionStatus `json:"status"`

	// Set only when Status is completed.
	Score       *int       `json:"score,omitempty"`
	Passed      *bool      `json:"passed,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CandidateQuestionView is a drawn question as shown during an attempt:
// no correct answers, no explanation.
type CandidateQuestionView struct {
	ID               string           `json:"id"`
	OrderIndex       int              `json:"order_index"`
	Text             string           `json:"question"`
	Options          []QuestionOption `json:"options"`
	IsMultipleAnswer bool             `json:"is_multiple_answer"`
	Difficulty       Difficulty       `json:"difficulty"`
	Points           int              `json:"points"`

	// Current selection, empty when unanswered. Lets a resumed attempt
	// restore client state.
	AnswerGiven []int `json:"answer_given"`
}

// AttemptResultView summarizes one completed attempt.
type AttemptResultView struct {
	AttemptID      string     `json:"attempt_id"`
	SessionID      string     `json:"session_id"`
	SessionTitle   string     `json:"session_title"`
	Score          int        `json:"score"`
	CorrectAnswers int        `json:"correct_answers"`
	TotalQuestions int        `json:"total_questions"`
	Passed         bool       `json:"passed"`
	PassingScore   int        `json:"passing_score"`
	TimeSpent      int        `json:"time_spent"`
	TabSwitches    int        `json:"tab_switches"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
}

// AnswerReviewView is one question of a completed attempt with the key
// revealed, used by the post-exam review screen.
type AnswerReviewView struct {
	QuestionID       string           `json:"question_id"`
	OrderIndex       int              `json:"order_index"`
	Text             string           `json:"question"`
	Options          []QuestionOption `json:"options"`
	IsMultipleAnswer bool             `json:"is_multiple_answer"`
	CorrectAnswers   []int            `json:"correct_answers"`
	AnswerGiven      []int            `json:"answer_given"`
	IsCorrect        bool             `json:"is_correct"`
	Explanation      *string          `json:"explanation,omitempty"`
}

// CandidateStatsView aggregates a candidate's QCM history.
type CandidateStatsView struct {
	TotalAttempts  int     `json:"total_attempts"`
	PassedAttempts int     `json:"passed_attempts"`
	AverageScore   float64 `json:"average_score"`
	BestScore      int     `json:"best_score"`
	TotalTimeSpent int     `json:"total_time_spent"` // seconds
}
