package events

import "time"

// Topics published by the QCM service.
const (
	TopicAttemptCompleted = "qcm.attempt.completed"
	TopicSessionCreated   = "qcm.session.created"
)

// AttemptCompletedEvent notifies downstream consumers (reporting, admissions
// pipeline) that a candidate finished an exam.
type AttemptCompletedEvent struct {
	AttemptID      string    `json:"attempt_id"`
	SessionID      string    `json:"session_id"`
	CandidateID    string    `json:"candidate_id"`
	Score          int       `json:"score"`
	CorrectAnswers int       `json:"correct_answers"`
	TotalQuestions int       `json:"total_questions"`
	Passed         bool      `json:"passed"`
	TimeSpent      int       `json:"time_spent"`
	TabSwitches    int       `json:"tab_switches"`
	CompletedAt    time.Time `json:"completed_at"`
}

// SessionCreatedEvent notifies consumers that a new exam session opened for
// scheduling (e.g. candidate notification mails).
type SessionCreatedEvent struct {
	SessionID      string    `json:"session_id"`
	Title          string    `json:"title"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TotalQuestions int       `json:"total_questions"`
	CreatedAt      time.Time `json:"created_at"`
}
