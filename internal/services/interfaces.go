package services

import (
	"context"

	"github.com/gradewise/evaluation-service/internal/models"
	"github.com/gradewise/evaluation-service/internal/repositories"
)

// ===== SERVICE INTERFACES =====

// SheetService exposes answer-sheet reads and the grade-update operation.
type SheetService interface {
	GetByID(ctx context.Context, id string) (*models.AnswerSheet, error)
	List(ctx context.Context, filters repositories.SheetFilters) ([]models.AnswerSheet, error)

	// UpdateGrade overwrites the sheet's grading state with the submitted
	// payload, recomputes the total, marks the sheet checked and publishes
	// a grading event.
	UpdateGrade(ctx context.Context, sheetID string, sub *models.GradeSubmission) (*models.AnswerSheet, error)
}

type ExamService interface {
	GetByID(ctx context.Context, id string) (*models.Exam, error)
}

type SubjectService interface {
	GetByID(ctx context.Context, id string) (*models.Subject, error)
}

// ServiceManager wires and owns all service instances.
type ServiceManager interface {
	Sheet() SheetService
	Exam() ExamService
	Subject() SubjectService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
