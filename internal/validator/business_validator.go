package validator

import (
	"fmt"

	"github.com/ai-olympiad/qcm-service/internal/models"
)

// ValidateQuestionContent checks the cross-field rules struct tags cannot
// express: option index continuity, answer key ranges and the single/multiple
// answer consistency.
func (v *Validator) ValidateQuestionContent(options []models.QuestionOption, correctAnswers []int, isMultipleAnswer bool) ValidationErrors {
	var errs ValidationErrors

	// Option indices must be exactly 0..n-1.
	seen := make(map[int]bool, len(options))
	for _, opt := range options {
		if opt.Index < 0 || opt.Index >= len(options) {
			errs = append(errs, ValidationError{
				Field:   "options",
				Message: fmt.Sprintf("option index %d out of range", opt.Index),
				Value:   opt.Index,
				Rule:    "option_index",
			})
			continue
		}
		if seen[opt.Index] {
			errs = append(errs, ValidationError{
				Field:   "options",
				Message: fmt.Sprintf("duplicate option index %d", opt.Index),
				Value:   opt.Index,
				Rule:    "option_index",
			})
		}
		seen[opt.Index] = true
	}

	// Answer key must reference existing options, without duplicates.
	keySeen := make(map[int]bool, len(correctAnswers))
	for _, idx := range correctAnswers {
		if idx < 0 || idx >= len(options) {
			errs = append(errs, ValidationError{
				Field:   "correct_answers",
				Message: fmt.Sprintf("answer index %d out of range", idx),
				Value:   idx,
				Rule:    "answer_index",
			})
		}
		if keySeen[idx] {
			errs = append(errs, ValidationError{
				Field:   "correct_answers",
				Message: fmt.Sprintf("duplicate answer index %d", idx),
				Value:   idx,
				Rule:    "answer_index",
			})
		}
		keySeen[idx] = true
	}

	if !isMultipleAnswer && len(correctAnswers) > 1 {
		errs = append(errs, ValidationError{
			Field:   "correct_answers",
			Message: "single-answer question cannot have multiple correct answers",
			Value:   len(correctAnswers),
			Rule:    "answer_cardinality",
		})
	}

	return errs
}

// ValidateAnswerSelection checks a candidate's selected indices against the
// question's option count: every index must reference an existing option and
// appear at most once.
func (v *Validator) ValidateAnswerSelection(selection []int, optionCount int) ValidationErrors {
	var errs ValidationErrors

	seen := make(map[int]bool, len(selection))
	for _, idx := range selection {
		if idx < 0 || idx >= optionCount {
			errs = append(errs, ValidationError{
				Field:   "answer_given",
				Message: fmt.Sprintf("answer index %d out of range", idx),
				Value:   idx,
				Rule:    "answer_index",
			})
		}
		if seen[idx] {
			errs = append(errs, ValidationError{
				Field:   "answer_given",
				Message: fmt.Sprintf("duplicate answer index %d", idx),
				Value:   idx,
				Rule:    "answer_index",
			})
		}
		seen[idx] = true
	}

	return errs
}

// ValidateSessionDefinition checks the cross-field session rules: window
// ordering and distribution consistency.
func (v *Validator) ValidateSessionDefinition(req *SessionCreateRequest) ValidationErrors {
	var errs ValidationErrors

	if !req.EndDate.After(req.StartDate) {
		errs = append(errs, ValidationError{
			Field:   "end_date",
			Message: "must be after start_date",
			Value:   req.EndDate,
			Rule:    "window",
		})
	}

	errs = append(errs, v.ValidateDistribution(req.DistributionByDifficulty, req.TotalQuestions)...)

	return errs
}

// ValidateDistribution checks that a difficulty distribution uses valid
// levels, positive counts and sums to the requested total.
func (v *Validator) ValidateDistribution(distribution models.DifficultyDistribution, totalQuestions int) ValidationErrors {
	if len(distribution) == 0 {
		return nil
	}

	var errs ValidationErrors

	for difficulty, count := range distribution {
		if !difficulty.Valid() {
			errs = append(errs, ValidationError{
				Field:   "distribution_by_difficulty",
				Message: fmt.Sprintf("unknown difficulty %q", difficulty),
				Value:   difficulty,
				Rule:    "difficulty_level",
			})
		}
		if count < 0 {
			errs = append(errs, ValidationError{
				Field:   "distribution_by_difficulty",
				Message: fmt.Sprintf("count for %s cannot be negative", difficulty),
				Value:   count,
				Rule:    "distribution_count",
			})
		}
	}

	if total := distribution.Total(); total != totalQuestions {
		errs = append(errs, ValidationError{
			Field:   "distribution_by_difficulty",
			Message: fmt.Sprintf("counts sum to %d, expected total_questions %d", total, totalQuestions),
			Value:   total,
			Rule:    "distribution_sum",
		})
	}

	return errs
}
