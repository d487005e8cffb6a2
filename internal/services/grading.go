package services

import "math"

// RoundHalfUp rounds to the nearest integer with exact halves rounding up.
// Used for the attempt score so 14/20 questions is exactly 70.
func RoundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// GradeResult is the outcome of grading one attempt.
type GradeResult struct {
	CorrectAnswers int
	Score          int // percentage 0-100
	Passed         bool
	// Correctness maps question id to whether the candidate's selection
	// matched the key exactly. Unanswered questions are absent.
	Correctness map[string]bool
}

// GradeAttempt grades by exact set match: a question counts as correct only
// when the selected option set equals the answer key set. Unanswered
// questions count as wrong. Pure function of its inputs.
func GradeAttempt(answers map[string][]int, keys map[string][]int, totalQuestions, passingScore int) GradeResult {
	result := GradeResult{
		Correctness: make(map[string]bool, len(answers)),
	}

	for questionID, key := range keys {
		given, answered := answers[questionID]
		if !answered {
			continue
		}

		correct := sameIndexSet(given, key)
		result.Correctness[questionID] = correct
		if correct {
			result.CorrectAnswers++
		}
	}

	if totalQuestions > 0 {
		result.Score = RoundHalfUp(float64(result.CorrectAnswers) / float64(totalQuestions) * 100)
	}
	result.Passed = result.Score >= passingScore

	return result
}

// sameIndexSet compares two index slices as sets: order and duplicates are
// irrelevant.
func sameIndexSet(a, b []int) bool {
	setA := make(map[int]bool, len(a))
	for _, idx := range a {
		setA[idx] = true
	}

	setB := make(map[int]bool, len(b))
	for _, idx := range b {
		setB[idx] = true
	}

	if len(setA) != len(setB) {
		return false
	}
	for idx := range setA {
		if !setB[idx] {
			return false
		}
	}
	return true
}
