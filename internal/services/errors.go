package services

import (
	"errors"
	"fmt"

	"github.com/ai-olympiad/qcm-service/internal/models"
)

// Sentinel errors mapped to HTTP statuses by the handlers.
var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrSessionNotFound  = errors.New("session not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrUserNotFound     = errors.New("user not found")

	// State conflicts.
	ErrSessionNotOpen           = errors.New("session is not open for attempts")
	ErrSessionClosed            = errors.New("session window has closed")
	ErrSessionInactive          = errors.New("session is not active")
	ErrSessionAlreadyCompleted  = errors.New("session already completed by candidate")
	ErrAttemptAlreadyCompleted  = errors.New("attempt already completed")
	ErrAttemptNotInProgress     = errors.New("attempt is not in progress")
	ErrQuestionNotInAttempt     = errors.New("question is not part of this attempt")
	ErrSessionHasAttempts       = errors.New("session has attempts and cannot be deleted")
	ErrQuestionReferenced       = errors.New("question is referenced by attempts")
	ErrCategoryHasQuestions     = errors.New("category still has questions")
	ErrCategorySlugTaken        = errors.New("category slug already in use")
	ErrAttemptReviewUnavailable = errors.New("attempt review available only after completion")
)

// InsufficientQuestionsError reports a draw that cannot be satisfied by the
// active bank. Difficulty is empty for flat (non-stratified) draws.
type InsufficientQuestionsError struct {
	Difficulty models.Difficulty
	Requested  int
	Available  int
}

func (e *InsufficientQuestionsError) Error() string {
	if e.Difficulty != "" {
		return fmt.Sprintf("insufficient questions for difficulty %s: requested %d, available %d",
			e.Difficulty, e.Requested, e.Available)
	}
	return fmt.Sprintf("insufficient questions: requested %d, available %d", e.Requested, e.Available)
}

// IsInsufficientQuestions reports whether err is a bank supply failure.
func IsInsufficientQuestions(err error) bool {
	var target *InsufficientQuestionsError
	return errors.As(err, &target)
}

// PermissionError reports an operation on a resource the caller does not
// own or lacks the role for.
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %s (%s)",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a permission failure.
func IsPermissionError(err error) bool {
	var target *PermissionError
	return errors.As(err, &target)
}
