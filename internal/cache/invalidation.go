package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeDelete deletes cache keys, logging instead of propagating failures.
// Cache invalidation errors must never fail the write they follow.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// SafeInvalidatePattern invalidates a pattern with logging.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// InvalidateSheet drops the cached sheet and any list results that may
// contain it after a grade write.
func InvalidateSheet(ctx context.Context, cm *CacheManager, sheetID string) {
	SafeDelete(ctx, cm.Sheet, fmt.Sprintf("id:%s", sheetID))
	SafeInvalidatePattern(ctx, cm.Sheet, "list:*")
}

// InvalidateExam drops the cached exam.
func InvalidateExam(ctx context.Context, cm *CacheManager, examID string) {
	SafeDelete(ctx, cm.Exam, fmt.Sprintf("id:%s", examID))
}
