package models

import "time"

// ===== REQUEST BODIES =====

// GradeSubmission is the body of PUT /answer-sheets/:id/grade. Saves are
// idempotent full-state overwrites; the last payload to arrive wins.
type GradeSubmission struct {
	QuestionMarks []QuestionMark `json:"question_marks" validate:"dive"`
	Annotations   []Annotation   `json:"annotations" validate:"dive"`
	Remarks       string         `json:"remarks" validate:"max=2000"`
}

// ===== RESPONSES =====

// ScoreSummary is the aggregate total over a sheet's question marks.
type ScoreSummary struct {
	Obtained   float64 `json:"obtained"`
	Max        float64 `json:"max"`
	Percentage float64 `json:"percentage"`
}

type ErrorResponse struct {
	// Detail carries the human-readable message; the field name matches
	// what grading clients expect from the API contract.
	Detail string      `json:"detail"`
	Errors interface{} `json:"errors,omitempty"`
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
