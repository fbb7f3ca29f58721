package models

import "time"

type AnnotationType string

const (
	AnnotationCorrect      AnnotationType = "correct"
	AnnotationIncorrect    AnnotationType = "incorrect"
	AnnotationHalfMark     AnnotationType = "half-mark"
	AnnotationQuarterMark  AnnotationType = "quarter-mark"
	AnnotationNotAttempted AnnotationType = "not-attempted"
	AnnotationComment      AnnotationType = "comment"
	AnnotationCircle       AnnotationType = "circle"
	AnnotationPen          AnnotationType = "pen"
	AnnotationNumeric      AnnotationType = "numeric"
)

// AffectsMarks reports whether placing or deleting an annotation of this
// type changes the question's marks.
func (t AnnotationType) AffectsMarks() bool {
	switch t {
	case AnnotationHalfMark, AnnotationQuarterMark, AnnotationNotAttempted:
		return true
	default:
		return false
	}
}

// Annotation is a typed marker placed on a rendered answer-sheet page.
// Coordinates are fractions of the page's rendered bounding box in [0,1];
// they may fall slightly outside that range at rect edges and are stored
// as-is.
type Annotation struct {
	ID             string         `json:"id"`
	Type           AnnotationType `json:"type"`
	QuestionNumber int            `json:"question_number"`
	Page           int            `json:"page"`
	X              float64        `json:"x"`
	Y              float64        `json:"y"`
	Value          string         `json:"value,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
