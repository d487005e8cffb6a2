package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ai-olympiad/qcm-service/internal/models"
)

// Validator wraps go-playground/validator with the QCM custom rules.
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with all custom rules registered.
func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerRules()

	return v
}

// Validate validates struct tags and returns ValidationErrors on failure.
func (v *Validator) Validate(s interface{}) error {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

func (v *Validator) registerRules() {
	// difficulty level: easy|medium|hard
	v.validate.RegisterValidation("difficulty_level", func(fl validator.FieldLevel) bool {
		return models.Difficulty(fl.Field().String()).Valid()
	})

	// passing score 0-100
	v.validate.RegisterValidation("passing_score", func(fl validator.FieldLevel) bool {
		score := fl.Field().Int()
		return score >= 0 && score <= 100
	})

	// session title 1-200 characters after trimming
	v.validate.RegisterValidation("session_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})

	// per-question time budget 1-30 minutes
	v.validate.RegisterValidation("time_per_question", func(fl validator.FieldLevel) bool {
		minutes := fl.Field().Int()
		return minutes >= 1 && minutes <= 30
	})

	// category slug: lowercase letters, digits and dashes
	v.validate.RegisterValidation("category_slug", func(fl validator.FieldLevel) bool {
		slug := fl.Field().String()
		if len(slug) == 0 || len(slug) > 100 {
			return false
		}
		for _, r := range slug {
			if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
				return false
			}
		}
		return true
	})
}

// fieldMessage maps a validator tag to a readable message.
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "difficulty_level":
		return "must be one of easy, medium, hard"
	case "passing_score":
		return "must be between 0 and 100"
	case "session_title":
		return "must be between 1 and 200 characters"
	case "time_per_question":
		return "must be between 1 and 30 minutes"
	case "category_slug":
		return "must contain only lowercase letters, digits and dashes"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
