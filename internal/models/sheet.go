package models

import (
	"time"

	"gorm.io/datatypes"
)

type SheetStatus string

const (
	SheetPending SheetStatus = "pending"
	SheetChecked SheetStatus = "checked"
)

// QuestionMark is one entry of the per-question marks list persisted on a
// sheet. Invariant: 0 <= MarksObtained <= MaxMarks.
type QuestionMark struct {
	QuestionNumber int     `json:"question_number"`
	MarksObtained  float64 `json:"marks_obtained"`
	MaxMarks       int     `json:"max_marks"`
}

// AnswerSheet is a scanned answer-sheet PDF under evaluation. Question marks
// and annotations are stored denormalized as JSONB since they are only ever
// read and written as a whole by the grading flow.
type AnswerSheet struct {
	ID                string                            `json:"id" gorm:"primaryKey;size:36"`
	ExamID            string                            `json:"exam_id" gorm:"size:36;not null;index"`
	StudentID         string                            `json:"student_id" gorm:"size:36;not null;index"`
	PDFFilename       string                            `json:"pdf_filename" gorm:"size:512"`
	AssignedTeacherID *string                           `json:"assigned_teacher_id" gorm:"size:36;index"`
	Status            SheetStatus                       `json:"status" gorm:"size:20;default:pending;index"`
	MarksObtained     *float64                          `json:"marks_obtained"`
	Remarks           *string                           `json:"remarks" gorm:"type:text"`
	QuestionMarks     datatypes.JSONSlice[QuestionMark] `json:"question_marks" gorm:"type:jsonb"`
	Annotations       datatypes.JSONSlice[Annotation]   `json:"annotations" gorm:"type:jsonb"`
	CheckedAt         *time.Time                        `json:"checked_at"`
	CreatedAt         time.Time                         `json:"created_at"`
	UpdatedAt         time.Time                         `json:"updated_at"`
}
