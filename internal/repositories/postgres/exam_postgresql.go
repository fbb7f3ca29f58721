package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gradewise/evaluation-service/internal/cache"
	"github.com/gradewise/evaluation-service/internal/models"
	"github.com/gradewise/evaluation-service/internal/repositories"
)

type ExamPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewExamPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ExamRepository {
	return &ExamPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// GetByID retrieves an exam with its embedded question layout. Exams are
// immutable during grading, so the cache TTL is generous.
func (r *ExamPostgreSQL) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var exam models.Exam

	err := r.cacheManager.Exam.CacheOrExecute(ctx, cacheKey, &exam, cache.ExamCacheConfig.TTL, func() (interface{}, error) {
		var dbExam models.Exam
		if err := r.db.WithContext(ctx).First(&dbExam, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &dbExam, nil
	})
	if err != nil {
		return nil, err
	}
	return &exam, nil
}
