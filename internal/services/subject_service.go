package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/gradewise/evaluation-service/internal/models"
	"github.com/gradewise/evaluation-service/internal/repositories"
)

type subjectService struct {
	db     *gorm.DB
	repo   repositories.Repository
	logger *slog.Logger
}

func NewSubjectService(db *gorm.DB, repo repositories.Repository, logger *slog.Logger) SubjectService {
	return &subjectService{
		db:     db,
		repo:   repo,
		logger: logger,
	}
}

func (s *subjectService) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, err := s.repo.Subject().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubjectNotFound
		}
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}
	return subject, nil
}
