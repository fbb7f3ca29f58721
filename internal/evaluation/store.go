package evaluation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/gradewise/evaluation-service/internal/models"
)

// AnnotationStore is the in-memory ordered collection of annotations for one
// evaluation session. It performs no validation of question references; that
// is the session controller's responsibility before calling in.
type AnnotationStore struct {
	annotations []models.Annotation
}

// NewAnnotationStore seeds a store from annotations persisted on the sheet,
// if any.
func NewAnnotationStore(initial []models.Annotation) *AnnotationStore {
	s := &AnnotationStore{}
	if len(initial) > 0 {
		s.annotations = append(s.annotations, initial...)
	}
	return s
}

// Add assigns a fresh unique id to the annotation, appends it and returns
// the id. It always succeeds.
func (s *AnnotationStore) Add(a models.Annotation) string {
	a.ID = fmt.Sprintf("ann_%s", uuid.NewString())
	s.annotations = append(s.annotations, a)
	return a.ID
}

// Restore re-inserts an annotation keeping its existing id. Used by the
// undo/redo interpreter, which must not mint new ids.
func (s *AnnotationStore) Restore(a models.Annotation) {
	s.annotations = append(s.annotations, a)
}

// Remove deletes the annotation with the given id; absent ids are a no-op.
func (s *AnnotationStore) Remove(id string) bool {
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			s.annotations = append(s.annotations[:i], s.annotations[i+1:]...)
			return true
		}
	}
	return false
}

// UpdatePosition replaces the position fields of the matching annotation;
// absent ids are a no-op.
func (s *AnnotationStore) UpdatePosition(id string, page int, x, y float64) bool {
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			s.annotations[i].Page = page
			s.annotations[i].X = x
			s.annotations[i].Y = y
			return true
		}
	}
	return false
}

// Get returns the annotation with the given id.
func (s *AnnotationStore) Get(id string) (models.Annotation, bool) {
	for i := range s.annotations {
		if s.annotations[i].ID == id {
			return s.annotations[i], true
		}
	}
	return models.Annotation{}, false
}

// ListForPage returns all annotations on a page in insertion order.
func (s *AnnotationStore) ListForPage(page int) []models.Annotation {
	var out []models.Annotation
	for _, a := range s.annotations {
		if a.Page == page {
			out = append(out, a)
		}
	}
	return out
}

// RemoveAllForQuestion removes and returns every annotation referencing the
// question, preserving insertion order of the returned slice.
func (s *AnnotationStore) RemoveAllForQuestion(questionNumber int) []models.Annotation {
	var removed []models.Annotation
	kept := s.annotations[:0]
	for _, a := range s.annotations {
		if a.QuestionNumber == questionNumber {
			removed = append(removed, a)
		} else {
			kept = append(kept, a)
		}
	}
	s.annotations = kept
	return removed
}

// All returns a copy of every annotation in insertion order.
func (s *AnnotationStore) All() []models.Annotation {
	out := make([]models.Annotation, len(s.annotations))
	copy(out, s.annotations)
	return out
}

// Len reports the number of stored annotations.
func (s *AnnotationStore) Len() int {
	return len(s.annotations)
}
