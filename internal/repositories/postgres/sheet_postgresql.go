package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gradewise/evaluation-service/internal/cache"
	"github.com/gradewise/evaluation-service/internal/models"
	"github.com/gradewise/evaluation-service/internal/repositories"
)

type SheetPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSheetPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SheetRepository {
	return &SheetPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// GetByID retrieves an answer sheet. Sheets are cached with a short TTL
// since grade saves rewrite them frequently.
func (r *SheetPostgreSQL) GetByID(ctx context.Context, id string) (*models.AnswerSheet, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var sheet models.AnswerSheet

	err := r.cacheManager.Sheet.CacheOrExecute(ctx, cacheKey, &sheet, cache.SheetCacheConfig.TTL, func() (interface{}, error) {
		var dbSheet models.AnswerSheet
		if err := r.db.WithContext(ctx).First(&dbSheet, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &dbSheet, nil
	})
	if err != nil {
		return nil, err
	}
	return &sheet, nil
}

// List returns sheets matching the filters, newest first. Results are
// cached under a filter-derived key; grade writes invalidate the whole
// list:* keyspace since any list may contain the written sheet.
func (r *SheetPostgreSQL) List(ctx context.Context, filters repositories.SheetFilters) ([]models.AnswerSheet, error) {
	var sheets []models.AnswerSheet

	err := r.cacheManager.Sheet.CacheOrExecute(ctx, listCacheKey(filters), &sheets, cache.SheetCacheConfig.TTL, func() (interface{}, error) {
		query := r.db.WithContext(ctx).Model(&models.AnswerSheet{})

		if filters.TeacherID != nil {
			query = query.Where("assigned_teacher_id = ?", *filters.TeacherID)
		}
		if filters.StudentID != nil {
			query = query.Where("student_id = ?", *filters.StudentID)
		}
		if filters.Status != nil {
			query = query.Where("status = ?", *filters.Status)
		}
		if filters.Limit > 0 {
			query = query.Limit(filters.Limit)
		}
		if filters.Offset > 0 {
			query = query.Offset(filters.Offset)
		}

		var dbSheets []models.AnswerSheet
		if err := query.Order("created_at DESC").Find(&dbSheets).Error; err != nil {
			return nil, fmt.Errorf("failed to list answer sheets: %w", err)
		}
		return dbSheets, nil
	})
	if err != nil {
		return nil, err
	}
	return sheets, nil
}

// listCacheKey derives a stable cache key from the list filters so that
// distinct filter combinations never share an entry.
func listCacheKey(filters repositories.SheetFilters) string {
	teacher, student, status := "", "", ""
	if filters.TeacherID != nil {
		teacher = *filters.TeacherID
	}
	if filters.StudentID != nil {
		student = *filters.StudentID
	}
	if filters.Status != nil {
		status = string(*filters.Status)
	}
	return fmt.Sprintf("list:t=%s:s=%s:st=%s:l=%d:o=%d", teacher, student, status, filters.Limit, filters.Offset)
}

// Update persists the full sheet row and invalidates its cache entries.
func (r *SheetPostgreSQL) Update(ctx context.Context, sheet *models.AnswerSheet) error {
	if err := r.db.WithContext(ctx).Save(sheet).Error; err != nil {
		return fmt.Errorf("failed to update answer sheet: %w", err)
	}
	cache.InvalidateSheet(ctx, r.cacheManager, sheet.ID)
	return nil
}
