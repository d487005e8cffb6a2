package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateSessionCache invalidates all session-related caches
func InvalidateSessionCache(ctx context.Context, cm *CacheManager, sessionID string) {
	SafeDelete(ctx, cm.Session, fmt.Sprintf("id:%s", sessionID))
	SafeInvalidatePattern(ctx, cm.Session, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}

// InvalidateQuestionCache invalidates all question-related caches
func InvalidateQuestionCache(ctx context.Context, cm *CacheManager, questionID string) {
	SafeDelete(ctx, cm.Question, fmt.Sprintf("id:%s", questionID))
	SafeInvalidatePattern(ctx, cm.Question, "list:*")
	SafeInvalidatePattern(ctx, cm.Question, "supply:*")
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}
