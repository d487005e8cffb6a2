package validator

import (
	"time"

	"github.com/ai-olympiad/qcm-service/internal/models"
)

// QuestionCreateRequest is the admin payload for adding one bank question.
type QuestionCreateRequest struct {
	Text             string                  `json:"question" validate:"required,min=1,max=2000"`
	Options          []models.QuestionOption `json:"options" validate:"required,min=2,max=6"`
	CorrectAnswers   []int                   `json:"correct_answers" validate:"required,min=1"`
	IsMultipleAnswer bool                    `json:"is_multiple_answer"`
	Difficulty       models.Difficulty       `json:"difficulty" validate:"required,difficulty_level"`
	CategoryID       *string                 `json:"category_id" validate:"omitempty,uuid4"`
	Category         *string                 `json:"category" validate:"omitempty,max=100"`
	Explanation      *string                 `json:"explanation" validate:"omitempty,max=2000"`
	Points           int                     `json:"points" validate:"omitempty,min=1,max=100"`
}

// QuestionUpdateRequest is the admin payload for editing a bank question.
type QuestionUpdateRequest struct {
	Text             *string                 `json:"question" validate:"omitempty,min=1,max=2000"`
	Options          []models.QuestionOption `json:"options" validate:"omitempty,min=2,max=6"`
	CorrectAnswers   []int                   `json:"correct_answers" validate:"omitempty,min=1"`
	IsMultipleAnswer *bool                   `json:"is_multiple_answer"`
	Difficulty       *models.Difficulty      `json:"difficulty" validate:"omitempty,difficulty_level"`
	CategoryID       *string                 `json:"category_id" validate:"omitempty,uuid4"`
	Explanation      *string                 `json:"explanation" validate:"omitempty,max=2000"`
	Points           *int                    `json:"points" validate:"omitempty,min=1,max=100"`
	IsActive         *bool                   `json:"is_active"`
}

// BulkQuestionCreateRequest imports many questions at once.
type BulkQuestionCreateRequest struct {
	Questions []QuestionCreateRequest `json:"questions" validate:"required,min=1,max=500,dive"`
}

// CategoryCreateRequest adds a question category.
type CategoryCreateRequest struct {
	Name         string  `json:"name" validate:"required,min=1,max=100"`
	Slug         string  `json:"slug" validate:"required,category_slug"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	Color        *string `json:"color" validate:"omitempty,hexcolor"`
	Icon         *string `json:"icon" validate:"omitempty,max=50"`
	DisplayOrder int     `json:"display_order" validate:"omitempty,min=0"`
}

// CategoryUpdateRequest edits a question category.
type CategoryUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description  *string `json:"description" validate:"omitempty,max=1000"`
	Color        *string `json:"color" validate:"omitempty,hexcolor"`
	Icon         *string `json:"icon" validate:"omitempty,max=50"`
	DisplayOrder *int    `json:"display_order" validate:"omitempty,min=0"`
	IsActive     *bool   `json:"is_active"`
}

// SessionCreateRequest is the admin payload for defining an exam session.
type SessionCreateRequest struct {
	Title                    string                        `json:"title" validate:"required,session_title"`
	Description              *string                       `json:"description" validate:"omitempty,max=2000"`
	StartDate                time.Time                     `json:"start_date" validate:"required"`
	EndDate                  time.Time                     `json:"end_date" validate:"required"`
	TotalQuestions           int                           `json:"total_questions" validate:"required,min=1,max=200"`
	TimePerQuestion          int                           `json:"time_per_question" validate:"required,time_per_question"`
	Categories               []string                      `json:"categories" validate:"omitempty,dive,uuid4"`
	Difficulties             []models.Difficulty           `json:"difficulties" validate:"omitempty,dive,difficulty_level"`
	DistributionByDifficulty models.DifficultyDistribution `json:"distribution_by_difficulty"`
	PassingScore             int                           `json:"passing_score" validate:"passing_score"`
}

// SessionUpdateRequest edits an exam session.
type SessionUpdateRequest struct {
	Title           *string    `json:"title" validate:"omitempty,session_title"`
	Description     *string    `json:"description" validate:"omitempty,max=2000"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	TimePerQuestion *int       `json:"time_per_question" validate:"omitempty,time_per_question"`
	PassingScore    *int       `json:"passing_score" validate:"omitempty,passing_score"`
	IsActive        *bool      `json:"is_active"`
}
