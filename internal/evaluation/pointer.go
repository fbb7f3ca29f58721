package evaluation

import (
	"github.com/gradewise/evaluation-service/internal/geometry"
	"github.com/gradewise/evaluation-service/internal/models"
)

// BeginPlacement arms the session to drop a new annotation of the given
// type at the next page click. Value carries the text for comment and
// numeric annotations.
func (s *Session) BeginPlacement(annType models.AnnotationType, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.drag = &DragState{Type: annType, Value: value}
}

// BeginMove arms the session to reposition an existing annotation at the
// next page click.
func (s *Session) BeginMove(annotationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.drag = &DragState{AnnotationID: annotationID}
}

// CancelDrag drops any placement or move in progress.
func (s *Session) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.drag = nil
}

// Dragging reports whether a placement or move is armed.
func (s *Session) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ui.drag != nil
}

// HandlePageClick completes an armed placement or move at the clicked
// viewport position, mapping it to page-relative fractional coordinates.
// A click with nothing armed is ignored.
func (s *Session) HandlePageClick(ev geometry.PointerEvent, pageRect geometry.Rect, page int) error {
	s.mu.Lock()
	drag := s.ui.drag
	s.ui.drag = nil
	s.ui.visitedPages[page] = true
	s.mu.Unlock()

	if drag == nil {
		return nil
	}

	at := geometry.MapToPage(ev, pageRect, page)
	if drag.AnnotationID != "" {
		return s.MoveAnnotation(drag.AnnotationID, at)
	}
	_, err := s.PlaceAnnotation(drag.Type, at, drag.Value)
	return err
}

// VisitPage marks a page as seen. Purely transient navigation state.
func (s *Session) VisitPage(page int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ui.visitedPages[page] = true
}

// VisitedPages returns the set of pages seen this session.
func (s *Session) VisitedPages() map[int]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[int]bool, len(s.ui.visitedPages))
	for p, v := range s.ui.visitedPages {
		out[p] = v
	}
	return out
}
