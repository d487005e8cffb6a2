package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

// Attempt is one candidate run through an exam session. Session parameters
// relevant to grading and timing are frozen onto the row at start so later
// session edits cannot change a running or finished attempt.
type Attempt struct {
	ID          string `json:"id" gorm:"primaryKey;size:36"`
	SessionID   string `json:"session_id" gorm:"size:36;not null;index:idx_qcm_attempts_candidate_session"`
	CandidateID string `json:"candidate_id" gorm:"size:36;not null;index:idx_qcm_attempts_candidate_session"`

	Status      AttemptStatus `json:"status" gorm:"size:20;not null;default:'in_progress';index"`
	StartedAt   time.Time     `json:"started_at" gorm:"not null"`
	CompletedAt *time.Time    `json:"completed_at"`

	// Frozen from the session at start.
	TotalQuestions int `json:"total_questions" gorm:"not null"`
	TimeLimit      int `json:"time_limit" gorm:"not null"` // minutes

	// Grading results, nil until completion.
	Score          *int  `json:"score"`
	CorrectAnswers *int  `json:"correct_answers"`
	Passed         *bool `json:"passed"`
	TimeSpent      *int  `json:"time_spent"` // seconds

	TabSwitches int `json:"tab_switches" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Session   *ExamSession      `json:"session,omitempty" gorm:"foreignKey:SessionID"`
	Candidate *User             `json:"candidate,omitempty" gorm:"foreignKey:CandidateID"`
	Questions []AttemptQuestion `json:"questions,omitempty" gorm:"foreignKey:AttemptID"`
	Answers   []Answer          `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}

func (Attempt) TableName() string {
	return "qcm_attempts"
}

func (a *Attempt) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a *Attempt) IsCompleted() bool {
	return a.Status == AttemptCompleted || a.CompletedAt != nil
}

// AttemptQuestion freezes one drawn question into an attempt. OrderIndex is
// the presentation order (0-based) fixed at draw time.
type AttemptQuestion struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	AttemptID  string `json:"attempt_id" gorm:"size:36;not null;uniqueIndex:idx_qcm_attempt_question"`
	QuestionID string `json:"question_id" gorm:"size:36;not null;uniqueIndex:idx_qcm_attempt_question"`
	OrderIndex int    `json:"order_index" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (AttemptQuestion) TableName() string {
	return "qcm_attempt_questions"
}

func (aq *AttemptQuestion) BeforeCreate(tx *gorm.DB) error {
	if aq.ID == "" {
		aq.ID = uuid.NewString()
	}
	return nil
}

// Answer records the candidate's current selection for one attempt question.
// At most one row exists per (attempt, question); re-submissions update it.
// IsCorrect stays nil until the attempt is graded.
type Answer struct {
	ID         string `json:"id" gorm:"primaryKey;size:36"`
	AttemptID  string `json:"attempt_id" gorm:"size:36;not null;uniqueIndex:idx_qcm_attempt_answer"`
	QuestionID string `json:"question_id" gorm:"size:36;not null;uniqueIndex:idx_qcm_attempt_answer"`

	AnswerGiven datatypes.JSONSlice[int] `json:"answer_given" gorm:"not null"`
	IsCorrect   *bool                    `json:"is_correct"`

	AnsweredAt time.Time `json:"answered_at" gorm:"not null"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Answer) TableName() string {
	return "qcm_answers"
}

func (a *Answer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
