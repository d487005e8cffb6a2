package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties lists all valid difficulty levels in draw order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// QuestionOption is one answer choice. Index is stable and referenced by
// Question.CorrectAnswers and Answer.AnswerGiven.
type QuestionOption struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Question is a bank entry. Once drawn into an attempt the frozen
// AttemptQuestion row keeps pointing at it, so referenced questions are
// soft-deactivated instead of deleted.
type Question struct {
	ID   string `json:"id" gorm:"primaryKey;size:36"`
	Text string `json:"question" gorm:"type:text;not null"`

	Options          datatypes.JSONSlice[QuestionOption] `json:"options" gorm:"not null"`
	CorrectAnswers   datatypes.JSONSlice[int]            `json:"correct_answers" gorm:"not null"`
	IsMultipleAnswer bool                                `json:"is_multiple_answer" gorm:"not null;default:false"`

	Difficulty Difficulty `json:"difficulty" gorm:"size:10;not null;index"`
	CategoryID *string    `json:"category_id" gorm:"size:36;index"`
	// Legacy free-text category kept for questions imported before the
	// Category table existed.
	Category    *string `json:"category" gorm:"size:100"`
	Explanation *string `json:"explanation" gorm:"type:text"`
	Points      int     `json:"points" gorm:"not null;default:1"`

	IsActive bool `json:"is_active" gorm:"not null;default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	CategoryRef *Category `json:"category_ref,omitempty" gorm:"foreignKey:CategoryID"`
}

func (Question) TableName() string {
	return "qcm_questions"
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// CategoryName resolves the effective category label, preferring the
// referenced Category entity over the legacy free-text field.
func (q *Question) CategoryName() string {
	if q.CategoryRef != nil {
		return q.CategoryRef.Name
	}
	if q.Category != nil {
		return *q.Category
	}
	return ""
}

// CorrectSet returns the answer key as a set of option indices.
func (q *Question) CorrectSet() map[int]bool {
	set := make(map[int]bool, len(q.CorrectAnswers))
	for _, idx := range q.CorrectAnswers {
		set[idx] = true
	}
	return set
}
