package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DifficultyDistribution maps a difficulty level to the number of questions
// to draw from it. Stored as JSONB.
type DifficultyDistribution map[Difficulty]int

func (d DifficultyDistribution) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

func (d *DifficultyDistribution) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for difficulty distribution: %T", value)
	}

	return json.Unmarshal(data, d)
}

func (DifficultyDistribution) GormDataType() string {
	return "jsonb"
}

// Total sums the per-difficulty draw counts.
func (d DifficultyDistribution) Total() int {
	total := 0
	for _, count := range d {
		total += count
	}
	return total
}

// ExamSession defines one QCM exam: the availability window, how many
// questions are drawn per attempt and under which constraints, and the
// passing threshold.
type ExamSession struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Title       string  `json:"title" gorm:"size:200;not null"`
	Description *string `json:"description" gorm:"type:text"`

	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null"`

	TotalQuestions  int `json:"total_questions" gorm:"not null"`
	TimePerQuestion int `json:"time_per_question" gorm:"not null"` // minutes

	// Draw constraints. Empty slices mean no filter.
	Categories               datatypes.JSONSlice[string]     `json:"categories"`
	Difficulties             datatypes.JSONSlice[Difficulty] `json:"difficulties"`
	DistributionByDifficulty DifficultyDistribution          `json:"distribution_by_difficulty"`

	PassingScore int  `json:"passing_score" gorm:"not null;default:50"`
	IsActive     bool `json:"is_active" gorm:"not null;default:true;index"`

	CreatedBy *string   `json:"created_by" gorm:"size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Attempts []Attempt `json:"attempts,omitempty" gorm:"foreignKey:SessionID"`
}

func (ExamSession) TableName() string {
	return "qcm_sessions"
}

func (s *ExamSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// TimeLimitMinutes is the total attempt time budget.
func (s *ExamSession) TimeLimitMinutes() int {
	return s.TotalQuestions * s.TimePerQuestion
}

// Duration returns the attempt time budget as a duration.
func (s *ExamSession) Duration() time.Duration {
	return time.Duration(s.TimeLimitMinutes()) * time.Minute
}

// WindowOpen reports whether the session accepts new attempts at the given
// instant.
func (s *ExamSession) WindowOpen(at time.Time) bool {
	return !at.Before(s.StartDate) && !at.After(s.EndDate)
}

// HasDistribution reports whether the session uses stratified drawing.
func (s *ExamSession) HasDistribution() bool {
	return len(s.DistributionByDifficulty) > 0
}
