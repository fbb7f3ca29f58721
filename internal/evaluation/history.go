package evaluation

import "github.com/gradewise/evaluation-service/internal/models"

// ===== HISTORY =====
//
// Entry is the tagged union of reversible user actions. Mark-affecting
// variants record the exact old and new mark values at the time of the
// action so that undo and redo replay recorded pairs instead of recomputing
// deltas, which clamping would make inexact.

type Entry interface {
	entry()
}

// AddAnnotation records an annotation placement.
type AddAnnotation struct {
	Annotation  models.Annotation
	OldMark     float64
	NewMark     float64
	MarkChanged bool
}

// DeleteAnnotation records an explicit single-annotation delete.
type DeleteAnnotation struct {
	Annotation  models.Annotation
	OldMark     float64
	NewMark     float64
	MarkChanged bool
}

// MoveAnnotation records a drag-to-move. Only the id is kept: the inverse of
// a move intentionally leaves the position in place.
type MoveAnnotation struct {
	AnnotationID string
}

// UpdateMark records a numeric mark entry for a question.
type UpdateMark struct {
	QuestionNumber int
	OldValue       float64
	NewValue       float64
}

// DeleteQuestionSweep records the composite "delete everything for question
// N" action: all removed annotations plus the mark the question held, so a
// single undo restores the lot.
type DeleteQuestionSweep struct {
	QuestionNumber int
	Removed        []models.Annotation
	OldMark        float64
}

func (AddAnnotation) entry()       {}
func (DeleteAnnotation) entry()    {}
func (MoveAnnotation) entry()      {}
func (UpdateMark) entry()          {}
func (DeleteQuestionSweep) entry() {}

// History holds the undo/redo stack pair. Both stacks start empty at session
// creation; a fresh user action clears the redo stack (linear history, no
// redo after a new edit).
type History struct {
	undo []Entry
	redo []Entry
}

func NewHistory() *History {
	return &History{}
}

// Record pushes an entry after a mutating user action and invalidates any
// pending redos.
func (h *History) Record(e Entry) {
	h.undo = append(h.undo, e)
	h.redo = h.redo[:0]
}

// Undo pops the most recent entry onto the redo stack. Returns false when
// there is nothing to undo.
func (h *History) Undo() (Entry, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	e := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, e)
	return e, true
}

// Redo pops the most recently undone entry back onto the undo stack.
// Returns false when there is nothing to redo.
func (h *History) Redo() (Entry, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	return e, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
