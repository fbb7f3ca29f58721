// Package evaluation implements the in-memory grading session for one
// answer sheet: typed positioned annotations, per-question marks derived
// from them, undo/redo over the action log, and periodic persistence to the
// grading API.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gradewise/evaluation-service/internal/geometry"
	"github.com/gradewise/evaluation-service/internal/models"
)

const defaultAutosaveInterval = 30 * time.Second

// Gateway is the remote grading API the session loads from and persists to.
type Gateway interface {
	GetAnswerSheet(ctx context.Context, sheetID string) (*models.AnswerSheet, error)
	GetExam(ctx context.Context, examID string) (*models.Exam, error)
	GetSubject(ctx context.Context, subjectID string) (*models.Subject, error)
	UpdateGrade(ctx context.Context, sheetID string, sub *models.GradeSubmission) (*models.AnswerSheet, error)
}

// Options configures a session. Ambient flags such as "has the user seen the
// onboarding tour" are injected here rather than read from global storage.
type Options struct {
	AutosaveInterval time.Duration // 0 means the 30s default
	AutosaveDisabled bool
	Notifier         Notifier
	Logger           *slog.Logger
	Clock            func() time.Time
	TourSeen         bool
}

// DragState tracks an annotation placement or move in progress. Transient:
// never persisted.
type DragState struct {
	Type         models.AnnotationType
	Value        string
	AnnotationID string // set when moving an existing annotation
}

// transientState groups the interaction-only fields. Kept apart from the
// persisted session state so serialization can never pick them up.
type transientState struct {
	selectedQuestion int // 0 = none
	drag             *DragState
	visitedPages     map[int]bool
}

// Session is the evaluation aggregate for one sheet+exam pair. It is the
// sole mutator of its annotation store, marks map and history.
type Session struct {
	mu sync.Mutex

	gateway  Gateway
	notifier Notifier
	logger   *slog.Logger
	clock    func() time.Time

	sheetID string
	examID  string

	sheet   *models.AnswerSheet
	exam    *models.Exam
	subject *models.Subject

	store   *AnnotationStore
	marks   map[int]float64
	history *History

	ui transientState

	autosaveEnabled  bool
	autosaveInterval time.Duration
	lastSavedAt      time.Time
	tourSeen         bool

	loaded bool
	closed bool
	stop   chan struct{}
}

// NewSession creates a session for the given sheet+exam pair. Load must be
// called before any mutation.
func NewSession(gw Gateway, sheetID, examID string, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = NewLogNotifier(opts.Logger)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.AutosaveInterval <= 0 {
		opts.AutosaveInterval = defaultAutosaveInterval
	}

	return &Session{
		gateway:          gw,
		notifier:         opts.Notifier,
		logger:           opts.Logger,
		clock:            opts.Clock,
		sheetID:          sheetID,
		examID:           examID,
		store:            NewAnnotationStore(nil),
		marks:            make(map[int]float64),
		history:          NewHistory(),
		ui:               transientState{visitedPages: make(map[int]bool)},
		autosaveEnabled:  !opts.AutosaveDisabled,
		autosaveInterval: opts.AutosaveInterval,
		tourSeen:         opts.TourSeen,
		stop:             make(chan struct{}),
	}
}

// ===== LOADING =====

// Load fetches the sheet and exam concurrently, then the subject
// (best-effort) once the exam's subject reference is known. Sheet or exam
// failure is fatal to the session; subject failure only loses the display
// name. On success the annotation store and marks map are seeded from the
// sheet's persisted state and the autosave timer starts.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.mu.Unlock()

	var (
		wg       sync.WaitGroup
		sheet    *models.AnswerSheet
		exam     *models.Exam
		sheetErr error
		examErr  error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		sheet, sheetErr = s.gateway.GetAnswerSheet(ctx, s.sheetID)
	}()
	go func() {
		defer wg.Done()
		exam, examErr = s.gateway.GetExam(ctx, s.examID)
	}()
	wg.Wait()

	if sheetErr != nil {
		s.notifier.Error("Failed to load answer sheet")
		return fmt.Errorf("load answer sheet %s: %w", s.sheetID, sheetErr)
	}
	if examErr != nil {
		s.notifier.Error("Failed to load answer sheet")
		return fmt.Errorf("load exam %s: %w", s.examID, examErr)
	}

	var subject *models.Subject
	if exam.SubjectID != "" {
		var err error
		subject, err = s.gateway.GetSubject(ctx, exam.SubjectID)
		if err != nil {
			s.logger.Warn("failed to load subject, proceeding without it",
				"subject_id", exam.SubjectID,
				"error", err)
			subject = nil
		}
	}

	s.mu.Lock()
	s.sheet = sheet
	s.exam = exam
	s.subject = subject
	s.store = NewAnnotationStore(sheet.Annotations)
	s.marks = make(map[int]float64, len(sheet.QuestionMarks))
	for _, qm := range sheet.QuestionMarks {
		s.marks[qm.QuestionNumber] = qm.MarksObtained
	}
	s.loaded = true
	s.mu.Unlock()

	go s.autosaveLoop()

	s.logger.Info("evaluation session loaded",
		"sheet_id", s.sheetID,
		"exam_id", s.examID,
		"annotations", len(sheet.Annotations),
		"marked_questions", len(sheet.QuestionMarks))

	return nil
}

// Close stops the autosave timer and rejects further mutations. It does not
// save; callers wanting a final flush call Save first.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.stop)
}

// ===== QUESTION SELECTION =====

// SelectQuestion sets the active question context for subsequent annotation
// placements.
func (s *Session) SelectQuestion(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureActive(); err != nil {
		return err
	}
	if s.exam.QuestionByNumber(n) == nil {
		return ErrUnknownQuestion
	}
	s.ui.selectedQuestion = n
	return nil
}

// SelectedQuestion returns the active question number, 0 when none.
func (s *Session) SelectedQuestion() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui.selectedQuestion
}

// ===== ANNOTATIONS =====

// PlaceAnnotation validates the active question, stores the annotation,
// applies the mark delta for mark-affecting types and records history.
func (s *Session) PlaceAnnotation(annType models.AnnotationType, at geometry.PagePoint, value string) (models.Annotation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureActive(); err != nil {
		return models.Annotation{}, err
	}
	if s.ui.selectedQuestion == 0 {
		s.notifier.Error("Please select a question first")
		return models.Annotation{}, ErrNoQuestionSelected
	}

	q := s.ui.selectedQuestion
	ann := models.Annotation{
		Type:           annType,
		QuestionNumber: q,
		Page:           at.Page,
		X:              at.X,
		Y:              at.Y,
		Value:          value,
		CreatedAt:      s.clock(),
	}
	ann.ID = s.store.Add(ann)

	entry := AddAnnotation{Annotation: ann}
	if annType.AffectsMarks() {
		if question := s.exam.QuestionByNumber(q); question != nil {
			old := s.marks[q]
			next := ApplyAnnotationDelta(old, annType, float64(question.MaxMarks))
			s.marks[q] = next
			entry.OldMark, entry.NewMark, entry.MarkChanged = old, next, true
		}
	}
	s.history.Record(entry)

	return ann, nil
}

// MoveAnnotation updates an annotation's position and records a move entry.
// Marks are unaffected by moves.
func (s *Session) MoveAnnotation(id string, to geometry.PagePoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureActive(); err != nil {
		return err
	}
	if !s.store.UpdatePosition(id, to.Page, to.X, to.Y) {
		return nil
	}
	s.history.Record(MoveAnnotation{AnnotationID: id})
	return nil
}

// DeleteAnnotation removes an annotation, reversing its mark contribution
// when it was a half or quarter mark, and records history with enough
// information to undo.
func (s *Session) DeleteAnnotation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureActive(); err != nil {
		return err
	}

	ann, ok := s.store.Get(id)
	if !ok {
		return nil
	}
	s.store.Remove(id)

	entry := DeleteAnnotation{Annotation: ann}
	switch ann.Type {
	case models.AnnotationHalfMark, models.AnnotationQuarterMark:
		if question := s.exam.QuestionByNumber(ann.QuestionNumber); question != nil {
			old := s.marks[ann.QuestionNumber]
			next := RemoveAnnotationDelta(old, ann.Type, float64(question.MaxMarks))
			s.marks[ann.QuestionNumber] = next
			entry.OldMark, entry.NewMark, entry.MarkChanged = old, next, true
		}
	}
	s.history.Record(entry)

	return nil
}

// Annotations returns a copy of all annotations in insertion order.
func (s *Session) Annotations() []models.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.All()
}

// AnnotationsForPage returns the annotations on one page, insertion order.
func (s *Session) AnnotationsForPage(page int) []models.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.ListForPage(page)
}

// ===== MARKS =====

// SetNumericMark parses raw mark input for a question, clamps it into
// [0, max_marks] (warning the user if clamping occurred) and records the
// old/new pair in history. Unparsable input counts as zero.
func (s *Session) SetNumericMark(questionNumber int, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureActive(); err != nil {
		return err
	}
	question := s.exam.QuestionByNumber(questionNumber)
	if question == nil {
		return ErrUnknownQuestion
	}

	requested := ParseMark(raw)
	clamped, wasClamped := SetNumeric(requested, float64(question.MaxMarks))
	if wasClamped {
		s.notifier.Error(fmt.Sprintf("Marks must be between 0 and %d", question.MaxMarks))
	}

	old := s.marks[questionNumber]
	s.marks[questionNumber] = clamped
	s.history.Record(UpdateMark{QuestionNumber: questionNumber, OldValue: old, NewValue: clamped})

	return nil
}

// DeleteQuestion sweeps every annotation for the question, resets its mark
// to zero and records one composite history entry covering both.
func (s *Session) DeleteQuestion(questionNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureActive(); err != nil {
		return err
	}

	removed := s.store.RemoveAllForQuestion(questionNumber)
	old := s.marks[questionNumber]
	s.marks[questionNumber] = 0
	s.history.Record(DeleteQuestionSweep{
		QuestionNumber: questionNumber,
		Removed:        removed,
		OldMark:        old,
	})

	s.notifier.Success(fmt.Sprintf("All marks and annotations for question %d have been removed", questionNumber))
	return nil
}

// Marks returns a copy of the per-question marks map.
func (s *Session) Marks() map[int]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]float64, len(s.marks))
	for k, v := range s.marks {
		out[k] = v
	}
	return out
}

// ComputeTotal derives the aggregate score from current state. Side-effect
// free and callable at any time.
func (s *Session) ComputeTotal() models.ScoreSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exam == nil {
		return models.ScoreSummary{}
	}
	return Total(s.marks, s.exam.Questions, s.exam.TotalMarks)
}

// ===== UNDO / REDO =====

// Undo reverses the most recent mutating action. An empty log is a no-op
// with an informational notice, not an error.
func (s *Session) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.history.Undo()
	if !ok {
		s.notifier.Info("Nothing to undo")
		return
	}
	s.applyInverse(entry)
}

// Redo reapplies the most recently undone action; a no-op when the redo log
// is empty.
func (s *Session) Redo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.history.Redo()
	if !ok {
		return
	}
	s.applyForward(entry)
}

// applyInverse interprets an entry backwards. The type switch is exhaustive
// over the Entry variants.
func (s *Session) applyInverse(entry Entry) {
	switch e := entry.(type) {
	case AddAnnotation:
		s.store.Remove(e.Annotation.ID)
		if e.MarkChanged {
			s.marks[e.Annotation.QuestionNumber] = e.OldMark
		}
	case DeleteAnnotation:
		s.store.Restore(e.Annotation)
		if e.MarkChanged {
			s.marks[e.Annotation.QuestionNumber] = e.OldMark
		}
	case MoveAnnotation:
		// Moves are not position-reversible: only the id was recorded.
	case UpdateMark:
		s.marks[e.QuestionNumber] = e.OldValue
	case DeleteQuestionSweep:
		for _, ann := range e.Removed {
			s.store.Restore(ann)
		}
		s.marks[e.QuestionNumber] = e.OldMark
	}
}

// applyForward reapplies an entry after a redo.
func (s *Session) applyForward(entry Entry) {
	switch e := entry.(type) {
	case AddAnnotation:
		s.store.Restore(e.Annotation)
		if e.MarkChanged {
			s.marks[e.Annotation.QuestionNumber] = e.NewMark
		}
	case DeleteAnnotation:
		s.store.Remove(e.Annotation.ID)
		if e.MarkChanged {
			s.marks[e.Annotation.QuestionNumber] = e.NewMark
		}
	case MoveAnnotation:
		// Forward effect already lives in the store; nothing to reapply.
	case UpdateMark:
		s.marks[e.QuestionNumber] = e.NewValue
	case DeleteQuestionSweep:
		s.store.RemoveAllForQuestion(e.QuestionNumber)
		s.marks[e.QuestionNumber] = 0
	}
}

// CanUndo reports whether the undo log is non-empty.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether the redo log is non-empty.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// ===== PERSISTENCE =====

// Save serializes the full grading state and sends it to the grade-update
// endpoint. Saves are idempotent full-state overwrites, so an earlier save
// completing after a later one is a benign lost update.
//
// Explicit saves surface success and failure to the user, preferring the
// server-supplied detail message. Implicit (autosave) saves are silent
// either way; failures are logged and the next tick retries naturally.
func (s *Session) Save(ctx context.Context, explicit bool) error {
	s.mu.Lock()
	if !s.loaded {
		s.mu.Unlock()
		return ErrSessionNotLoaded
	}
	sub := s.buildSubmission()
	s.mu.Unlock()

	_, err := s.gateway.UpdateGrade(ctx, s.sheetID, sub)
	if err != nil {
		if explicit {
			s.notifier.Error(saveErrorMessage(err))
		} else {
			s.logger.Error("autosave failed", "sheet_id", s.sheetID, "error", err)
		}
		return fmt.Errorf("save evaluation for sheet %s: %w", s.sheetID, err)
	}

	s.mu.Lock()
	s.lastSavedAt = s.clock()
	s.mu.Unlock()

	if explicit {
		s.notifier.Success("Evaluation saved successfully")
	}
	return nil
}

// buildSubmission snapshots persisted state only; transient UI fields are
// not serializable from here. Caller holds the lock.
func (s *Session) buildSubmission() *models.GradeSubmission {
	total := Total(s.marks, s.exam.Questions, s.exam.TotalMarks)

	qms := make([]models.QuestionMark, 0, len(s.exam.Questions))
	for _, q := range s.exam.Questions {
		qms = append(qms, models.QuestionMark{
			QuestionNumber: q.QuestionNumber,
			MarksObtained:  s.marks[q.QuestionNumber],
			MaxMarks:       q.MaxMarks,
		})
	}

	return &models.GradeSubmission{
		QuestionMarks: qms,
		Annotations:   s.store.All(),
		Remarks: fmt.Sprintf("Total: %s/%s (%.2f%%)",
			formatMark(total.Obtained), formatMark(total.Max), total.Percentage),
	}
}

func saveErrorMessage(err error) string {
	var d detailer
	if errors.As(err, &d) && d.ErrorDetail() != "" {
		return d.ErrorDetail()
	}
	return "Failed to save evaluation"
}

func formatMark(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ===== AUTOSAVE =====

func (s *Session) autosaveLoop() {
	ticker := time.NewTicker(s.autosaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.autosaveTick()
		}
	}
}

// autosaveTick fires one implicit save. Skipped entirely while autosave is
// off or there is nothing to save.
func (s *Session) autosaveTick() {
	s.mu.Lock()
	skip := !s.autosaveEnabled || !s.loaded || s.closed ||
		(s.store.Len() == 0 && len(s.marks) == 0)
	s.mu.Unlock()
	if skip {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = s.Save(ctx, false)
}

// SetAutosaveEnabled toggles the periodic save without stopping the timer.
func (s *Session) SetAutosaveEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autosaveEnabled = enabled
}

// LastSavedAt returns the time of the last successful save, zero when none.
func (s *Session) LastSavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSavedAt
}

// ===== DISPLAY HELPERS =====

// SubjectName returns the subject display name, or "Unknown" when the
// best-effort subject fetch failed.
func (s *Session) SubjectName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.subject == nil {
		return "Unknown"
	}
	return s.subject.Name
}

// Exam returns the loaded exam, nil before Load.
func (s *Session) Exam() *models.Exam {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exam
}

// Sheet returns the loaded sheet, nil before Load.
func (s *Session) Sheet() *models.AnswerSheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet
}

// TourSeen reports the injected onboarding flag.
func (s *Session) TourSeen() bool {
	return s.tourSeen
}

func (s *Session) ensureActive() error {
	if s.closed {
		return ErrSessionClosed
	}
	if !s.loaded {
		return ErrSessionNotLoaded
	}
	return nil
}
