package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/gradewise/evaluation-service/internal/cache"
	"github.com/gradewise/evaluation-service/internal/repositories"
)

// PostgreSQLRepository implements the Repository interface over gorm with a
// Redis read-through cache for exams and subjects.
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	sheet   repositories.SheetRepository
	exam    repositories.ExamRepository
	subject repositories.SubjectRepository
}

// RepositoryConfig holds dependencies for repository initialization.
// RedisClient may be nil; repositories then skip caching.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)

	return &PostgreSQLRepository{
		db:           config.DB,
		redisClient:  config.RedisClient,
		cacheManager: cacheManager,
		sheet:        NewSheetPostgreSQL(config.DB, cacheManager),
		exam:         NewExamPostgreSQL(config.DB, cacheManager),
		subject:      NewSubjectPostgreSQL(config.DB, cacheManager),
	}
}

func (r *PostgreSQLRepository) Sheet() repositories.SheetRepository     { return r.sheet }
func (r *PostgreSQLRepository) Exam() repositories.ExamRepository       { return r.exam }
func (r *PostgreSQLRepository) Subject() repositories.SubjectRepository { return r.subject }

// WithTransaction executes fn within a database transaction; the passed
// Repository routes all queries through the transaction handle.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &PostgreSQLRepository{
			db:           tx,
			redisClient:  r.redisClient,
			cacheManager: r.cacheManager,
			sheet:        NewSheetPostgreSQL(tx, r.cacheManager),
			exam:         NewExamPostgreSQL(tx, r.cacheManager),
			subject:      NewSubjectPostgreSQL(tx, r.cacheManager),
		}
		return fn(txRepo)
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// RepositoryManagerImpl manages repository lifecycle.
type RepositoryManagerImpl struct {
	config RepositoryConfig
	repo   repositories.Repository
}

func NewRepositoryManager(config RepositoryConfig) *RepositoryManagerImpl {
	return &RepositoryManagerImpl{config: config}
}

func (m *RepositoryManagerImpl) Initialize() error {
	if m.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}
	m.repo = NewPostgreSQLRepository(m.config)
	return nil
}

func (m *RepositoryManagerImpl) GetRepository() repositories.Repository {
	return m.repo
}

func (m *RepositoryManagerImpl) HealthCheck(ctx context.Context) error {
	if m.repo == nil {
		return fmt.Errorf("repositories not initialized")
	}
	return m.repo.Ping(ctx)
}

func (m *RepositoryManagerImpl) Shutdown(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	return m.repo.Close()
}
