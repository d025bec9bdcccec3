package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern, logging instead of failing:
// a stale cache entry is preferable to a failed write path.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys, logging instead of failing.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateAssessmentCache drops every cached view of one assessment and
// the owning user's analytics rollups. Called after any mutation.
func InvalidateAssessmentCache(ctx context.Context, cm *CacheManager, assessmentID, userID uint) {
	SafeDelete(ctx, cm.Assessment,
		fmt.Sprintf("id:%d", assessmentID),
		fmt.Sprintf("details:%d", assessmentID))
	SafeInvalidatePattern(ctx, cm.Question, fmt.Sprintf("assessment:%d*", assessmentID))
	InvalidateUserAnalytics(ctx, cm, userID)
}

// InvalidateUserAnalytics drops the cached rollups for one user.
func InvalidateUserAnalytics(ctx context.Context, cm *CacheManager, userID uint) {
	SafeInvalidatePattern(ctx, cm.Analytics, fmt.Sprintf("user:%d:*", userID))
}
