package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gradewise/evaluation-service/internal/models"
)

// ===== FILTERS =====

// SheetFilters narrows answer-sheet list queries. Nil pointer fields are
// not applied.
type SheetFilters struct {
	TeacherID *string             `json:"teacher_id"`
	StudentID *string             `json:"student_id"`
	Status    *models.SheetStatus `json:"status"`
	Limit     int                 `json:"limit"`
	Offset    int                 `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type SheetRepository interface {
	GetByID(ctx context.Context, id string) (*models.AnswerSheet, error)
	List(ctx context.Context, filters SheetFilters) ([]models.AnswerSheet, error)
	Update(ctx context.Context, sheet *models.AnswerSheet) error
}

type ExamRepository interface {
	GetByID(ctx context.Context, id string) (*models.Exam, error)
}

type SubjectRepository interface {
	GetByID(ctx context.Context, id string) (*models.Subject, error)
}

// Repository aggregates the per-entity repositories.
type Repository interface {
	Sheet() SheetRepository
	Exam() ExamRepository
	Subject() SubjectRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager manages repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// IsNotFoundError reports whether err means the row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
