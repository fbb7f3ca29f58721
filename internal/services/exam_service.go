package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/gradewise/evaluation-service/internal/models"
	"github.com/gradewise/evaluation-service/internal/repositories"
)

type examService struct {
	db     *gorm.DB
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExamService(db *gorm.DB, repo repositories.Repository, logger *slog.Logger) ExamService {
	return &examService{
		db:     db,
		repo:   repo,
		logger: logger,
	}
}

func (s *examService) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.Exam().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}
	return exam, nil
}
