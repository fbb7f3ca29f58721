package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/gradewise/evaluation-service/internal/evaluation"
	"github.com/gradewise/evaluation-service/internal/events"
	"github.com/gradewise/evaluation-service/internal/models"
	"github.com/gradewise/evaluation-service/internal/repositories"
	"github.com/gradewise/evaluation-service/internal/validator"
)

type sheetService struct {
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
}

func NewSheetService(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) SheetService {
	return &sheetService{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		publisher: publisher,
	}
}

func (s *sheetService) GetByID(ctx context.Context, id string) (*models.AnswerSheet, error) {
	sheet, err := s.repo.Sheet().GetByID(ctx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to get answer sheet: %w", err)
	}
	return sheet, nil
}

func (s *sheetService) List(ctx context.Context, filters repositories.SheetFilters) ([]models.AnswerSheet, error) {
	sheets, err := s.repo.Sheet().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list answer sheets: %w", err)
	}
	return sheets, nil
}

// UpdateGrade overwrites the sheet's grading state. Marks are clamped into
// [0, max_marks] per question before validation, so a client that raced past
// its own clamping cannot persist an out-of-range value. The stored total is
// always recomputed server-side from the submitted per-question marks.
func (s *sheetService) UpdateGrade(ctx context.Context, sheetID string, sub *models.GradeSubmission) (*models.AnswerSheet, error) {
	s.logger.Info("updating grade",
		"sheet_id", sheetID,
		"question_marks", len(sub.QuestionMarks),
		"annotations", len(sub.Annotations))

	sheet, err := s.repo.Sheet().GetByID(ctx, sheetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSheetNotFound
		}
		return nil, fmt.Errorf("failed to get answer sheet: %w", err)
	}

	exam, err := s.repo.Exam().GetByID(ctx, sheet.ExamID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrExamNotFound
		}
		return nil, fmt.Errorf("failed to get exam: %w", err)
	}

	s.clampMarks(sub, exam, sheetID)

	if errs := s.validator.ValidateGradeSubmission(sub, exam); len(errs) > 0 {
		return nil, toServiceValidationErrors(errs)
	}

	marks := make(map[int]float64, len(sub.QuestionMarks))
	for _, qm := range sub.QuestionMarks {
		marks[qm.QuestionNumber] = qm.MarksObtained
	}
	total := evaluation.Total(marks, exam.Questions, exam.TotalMarks)

	regrade := sheet.Status == models.SheetChecked
	now := time.Now().UTC()
	sheet.QuestionMarks = datatypes.NewJSONSlice(sub.QuestionMarks)
	sheet.Annotations = datatypes.NewJSONSlice(sub.Annotations)
	sheet.Remarks = &sub.Remarks
	sheet.MarksObtained = &total.Obtained
	sheet.Status = models.SheetChecked
	sheet.CheckedAt = &now

	if err := s.repo.Sheet().Update(ctx, sheet); err != nil {
		return nil, fmt.Errorf("failed to save grade: %w", err)
	}

	s.publishGraded(ctx, sheet, total, regrade)

	return sheet, nil
}

// clampMarks forces every submitted mark into range for its question.
// Unknown question numbers are left for validation to reject.
func (s *sheetService) clampMarks(sub *models.GradeSubmission, exam *models.Exam, sheetID string) {
	for i, qm := range sub.QuestionMarks {
		q := exam.QuestionByNumber(qm.QuestionNumber)
		if q == nil {
			continue
		}
		clamped, wasClamped := evaluation.SetNumeric(qm.MarksObtained, float64(q.MaxMarks))
		if wasClamped {
			s.logger.Warn("clamped out-of-range mark",
				"sheet_id", sheetID,
				"question_number", qm.QuestionNumber,
				"submitted", qm.MarksObtained,
				"clamped", clamped)
			sub.QuestionMarks[i].MarksObtained = clamped
		}
		sub.QuestionMarks[i].MaxMarks = q.MaxMarks
	}
}

// publishGraded emits the grading event. Saves of an already-checked sheet
// emit sheet.updated instead of sheet.graded so consumers can tell a
// re-grade from the first grading. Event delivery is best-effort; a broker
// failure must not fail the save.
func (s *sheetService) publishGraded(ctx context.Context, sheet *models.AnswerSheet, total models.ScoreSummary, regrade bool) {
	if s.publisher == nil {
		return
	}
	eventType := events.EventSheetGraded
	if regrade {
		eventType = events.EventSheetUpdated
	}
	err := s.publisher.Publish(ctx, eventType, events.SheetGradedEvent{
		SheetID:       sheet.ID,
		ExamID:        sheet.ExamID,
		StudentID:     sheet.StudentID,
		MarksObtained: total.Obtained,
		MaxMarks:      total.Max,
		Percentage:    total.Percentage,
		Status:        string(sheet.Status),
		GradedAt:      sheet.CheckedAt,
	})
	if err != nil {
		s.logger.Error("failed to publish grading event",
			"sheet_id", sheet.ID,
			"error", err)
	}
}

func toServiceValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for i, e := range errs {
		out[i] = ValidationError{Field: e.Field, Message: e.Message, Value: e.Value}
	}
	return out
}
