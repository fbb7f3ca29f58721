package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"gorm.io/gorm"

	"github.com/gradewise/evaluation-service/internal/events"
	"github.com/gradewise/evaluation-service/internal/models"
	"github.com/gradewise/evaluation-service/internal/repositories"
	"github.com/gradewise/evaluation-service/internal/validator"
)

// ===== MOCK REPOSITORY =====

type mockSheetRepo struct {
	sheets  map[string]*models.AnswerSheet
	updated *models.AnswerSheet
}

func (m *mockSheetRepo) GetByID(ctx context.Context, id string) (*models.AnswerSheet, error) {
	sheet, ok := m.sheets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *sheet
	return &copied, nil
}

func (m *mockSheetRepo) List(ctx context.Context, filters repositories.SheetFilters) ([]models.AnswerSheet, error) {
	var out []models.AnswerSheet
	for _, s := range m.sheets {
		if filters.TeacherID != nil {
			if s.AssignedTeacherID == nil || *s.AssignedTeacherID != *filters.TeacherID {
				continue
			}
		}
		if filters.StudentID != nil && s.StudentID != *filters.StudentID {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockSheetRepo) Update(ctx context.Context, sheet *models.AnswerSheet) error {
	copied := *sheet
	m.updated = &copied
	m.sheets[sheet.ID] = &copied
	return nil
}

type mockExamRepo struct {
	exams map[string]*models.Exam
}

func (m *mockExamRepo) GetByID(ctx context.Context, id string) (*models.Exam, error) {
	exam, ok := m.exams[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return exam, nil
}

type mockSubjectRepo struct {
	subjects map[string]*models.Subject
}

func (m *mockSubjectRepo) GetByID(ctx context.Context, id string) (*models.Subject, error) {
	subject, ok := m.subjects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return subject, nil
}

type mockRepository struct {
	sheet   *mockSheetRepo
	exam    *mockExamRepo
	subject *mockSubjectRepo
}

func (m *mockRepository) Sheet() repositories.SheetRepository     { return m.sheet }
func (m *mockRepository) Exam() repositories.ExamRepository       { return m.exam }
func (m *mockRepository) Subject() repositories.SubjectRepository { return m.subject }
func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== FIXTURES =====

func newTestRepo() *mockRepository {
	return &mockRepository{
		sheet: &mockSheetRepo{
			sheets: map[string]*models.AnswerSheet{
				"sheet-1": {
					ID:        "sheet-1",
					ExamID:    "exam-1",
					StudentID: "student-1",
					Status:    models.SheetPending,
				},
			},
		},
		exam: &mockExamRepo{
			exams: map[string]*models.Exam{
				"exam-1": {
					ID:         "exam-1",
					SubjectID:  "subj-1",
					TotalMarks: 20,
					Questions: []models.Question{
						{QuestionNumber: 1, MaxMarks: 10},
						{QuestionNumber: 2, MaxMarks: 5},
						{QuestionNumber: 3, MaxMarks: 5},
					},
				},
			},
		},
		subject: &mockSubjectRepo{
			subjects: map[string]*models.Subject{
				"subj-1": {ID: "subj-1", Name: "Mathematics"},
			},
		},
	}
}

func newTestSheetService(repo *mockRepository, publisher events.EventPublisher) SheetService {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewSheetService(nil, repo, logger, validator.New(), publisher)
}

// ===== TESTS =====

func TestUpdateGradeMarksSheetChecked(t *testing.T) {
	repo := newTestRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	publisher := events.NewMockEventPublisher(logger)
	svc := newTestSheetService(repo, publisher)

	sub := &models.GradeSubmission{
		QuestionMarks: []models.QuestionMark{
			{QuestionNumber: 1, MarksObtained: 8, MaxMarks: 10},
			{QuestionNumber: 2, MarksObtained: 5, MaxMarks: 5},
		},
		Annotations: []models.Annotation{
			{ID: "ann_1", Type: models.AnnotationCorrect, QuestionNumber: 1, Page: 1},
		},
		Remarks: "Total: 13/20 (65.00%)",
	}

	sheet, err := svc.UpdateGrade(context.Background(), "sheet-1", sub)
	if err != nil {
		t.Fatalf("UpdateGrade failed: %v", err)
	}

	if sheet.Status != models.SheetChecked {
		t.Errorf("status = %s, want checked", sheet.Status)
	}
	if sheet.CheckedAt == nil {
		t.Error("CheckedAt not set")
	}
	if sheet.MarksObtained == nil || *sheet.MarksObtained != 13 {
		t.Errorf("MarksObtained = %v, want 13 (recomputed server-side)", sheet.MarksObtained)
	}
	if sheet.Remarks == nil || *sheet.Remarks != sub.Remarks {
		t.Error("remarks not persisted")
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 {
		t.Fatalf("published %d events, want 1", len(published))
	}
	if published[0].Type != events.EventSheetGraded {
		t.Errorf("event type = %s, want %s", published[0].Type, events.EventSheetGraded)
	}
	if published[0].Source != "evaluation-service" {
		t.Errorf("event source = %s", published[0].Source)
	}
	payload, ok := published[0].Data.(events.SheetGradedEvent)
	if !ok {
		t.Fatalf("event payload has wrong type %T", published[0].Data)
	}
	if payload.MarksObtained != 13 || payload.Percentage != 65 || payload.SheetID != "sheet-1" {
		t.Errorf("payload = %+v", payload)
	}
	if payload.GradedAt == nil {
		t.Error("payload missing graded_at")
	}
}

func TestUpdateGradeClampsOutOfRangeMarks(t *testing.T) {
	repo := newTestRepo()
	svc := newTestSheetService(repo, nil)

	sub := &models.GradeSubmission{
		QuestionMarks: []models.QuestionMark{
			{QuestionNumber: 1, MarksObtained: 99, MaxMarks: 10},
		},
	}

	sheet, err := svc.UpdateGrade(context.Background(), "sheet-1", sub)
	if err != nil {
		t.Fatalf("UpdateGrade failed: %v", err)
	}
	if sheet.MarksObtained == nil || *sheet.MarksObtained != 10 {
		t.Errorf("MarksObtained = %v, want clamped 10", sheet.MarksObtained)
	}
	if sheet.QuestionMarks[0].MarksObtained != 10 {
		t.Errorf("stored mark = %v, want 10", sheet.QuestionMarks[0].MarksObtained)
	}
}

func TestUpdateGradeRejectsUnknownQuestion(t *testing.T) {
	repo := newTestRepo()
	svc := newTestSheetService(repo, nil)

	sub := &models.GradeSubmission{
		QuestionMarks: []models.QuestionMark{
			{QuestionNumber: 42, MarksObtained: 3, MaxMarks: 5},
		},
	}

	_, err := svc.UpdateGrade(context.Background(), "sheet-1", sub)
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want ValidationErrors", err)
	}
	if repo.sheet.updated != nil {
		t.Error("sheet persisted despite validation failure")
	}
}

func TestUpdateGradeSheetNotFound(t *testing.T) {
	repo := newTestRepo()
	svc := newTestSheetService(repo, nil)

	_, err := svc.UpdateGrade(context.Background(), "missing", &models.GradeSubmission{})
	if !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("err = %v, want ErrSheetNotFound", err)
	}
}

func TestUpdateGradeIsIdempotent(t *testing.T) {
	repo := newTestRepo()
	svc := newTestSheetService(repo, nil)

	sub := &models.GradeSubmission{
		QuestionMarks: []models.QuestionMark{
			{QuestionNumber: 1, MarksObtained: 6, MaxMarks: 10},
		},
		Remarks: "Total: 6/20 (30.00%)",
	}

	first, err := svc.UpdateGrade(context.Background(), "sheet-1", sub)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.UpdateGrade(context.Background(), "sheet-1", sub)
	if err != nil {
		t.Fatal(err)
	}

	if *first.MarksObtained != *second.MarksObtained {
		t.Errorf("repeat save changed total: %v vs %v", *first.MarksObtained, *second.MarksObtained)
	}
	if len(second.QuestionMarks) != len(first.QuestionMarks) {
		t.Error("repeat save changed question marks")
	}
}

func TestUpdateGradeRegradePublishesUpdatedEvent(t *testing.T) {
	repo := newTestRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	publisher := events.NewMockEventPublisher(logger)
	svc := newTestSheetService(repo, publisher)

	sub := &models.GradeSubmission{
		QuestionMarks: []models.QuestionMark{
			{QuestionNumber: 1, MarksObtained: 6, MaxMarks: 10},
		},
	}

	if _, err := svc.UpdateGrade(context.Background(), "sheet-1", sub); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.UpdateGrade(context.Background(), "sheet-1", sub); err != nil {
		t.Fatal(err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("%d events published, want 2", len(published))
	}
	if published[0].Type != events.EventSheetGraded {
		t.Errorf("first save event = %s, want %s", published[0].Type, events.EventSheetGraded)
	}
	if published[1].Type != events.EventSheetUpdated {
		t.Errorf("re-grade event = %s, want %s", published[1].Type, events.EventSheetUpdated)
	}
}

func TestSheetServiceGetByID(t *testing.T) {
	repo := newTestRepo()
	svc := newTestSheetService(repo, nil)

	sheet, err := svc.GetByID(context.Background(), "sheet-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if sheet.ID != "sheet-1" {
		t.Errorf("got sheet %s", sheet.ID)
	}

	if _, err := svc.GetByID(context.Background(), "nope"); !errors.Is(err, ErrSheetNotFound) {
		t.Errorf("err = %v, want ErrSheetNotFound", err)
	}
}

func TestSheetServiceListFilters(t *testing.T) {
	repo := newTestRepo()
	teacher := "teacher-7"
	repo.sheet.sheets["sheet-2"] = &models.AnswerSheet{
		ID:                "sheet-2",
		ExamID:            "exam-1",
		StudentID:         "student-2",
		AssignedTeacherID: &teacher,
		Status:            models.SheetPending,
	}
	svc := newTestSheetService(repo, nil)

	sheets, err := svc.List(context.Background(), repositories.SheetFilters{TeacherID: &teacher})
	if err != nil {
		t.Fatal(err)
	}
	if len(sheets) != 1 || sheets[0].ID != "sheet-2" {
		t.Errorf("filtered list = %+v", sheets)
	}
}
