package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups bank questions (e.g. "Mathematics", "Logic", "AI").
type Category struct {
	ID          string  `json:"id" gorm:"primaryKey;size:36"`
	Name        string  `json:"name" gorm:"uniqueIndex;not null;size:100"`
	Slug        string  `json:"slug" gorm:"uniqueIndex;not null;size:100"`
	Description *string `json:"description" gorm:"type:text"`

	Color *string `json:"color" gorm:"size:7"`
	Icon  *string `json:"icon" gorm:"size:50"`

	DisplayOrder int  `json:"display_order" gorm:"default:0"`
	IsActive     bool `json:"is_active" gorm:"not null;default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed
	QuestionCount int `json:"question_count" gorm:"-"`
}

func (Category) TableName() string {
	return "qcm_categories"
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
