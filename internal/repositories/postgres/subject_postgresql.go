package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/gradewise/evaluation-service/internal/cache"
	"github.com/gradewise/evaluation-service/internal/models"
	"github.com/gradewise/evaluation-service/internal/repositories"
)

type SubjectPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSubjectPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.SubjectRepository {
	return &SubjectPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (r *SubjectPostgreSQL) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	var subject models.Subject

	err := r.cacheManager.Subject.CacheOrExecute(ctx, cacheKey, &subject, cache.SubjectCacheConfig.TTL, func() (interface{}, error) {
		var dbSubject models.Subject
		if err := r.db.WithContext(ctx).First(&dbSubject, "id = ?", id).Error; err != nil {
			return nil, err
		}
		return &dbSubject, nil
	})
	if err != nil {
		return nil, err
	}
	return &subject, nil
}
