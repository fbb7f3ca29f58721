package models

import (
	"time"

	"gorm.io/datatypes"
)

// Question belongs to an exam; max marks are admin-configurable in the
// 0-10 range for this domain.
type Question struct {
	QuestionNumber int    `json:"question_number"`
	QuestionText   string `json:"question_text"`
	MaxMarks       int    `json:"max_marks"`
}

type Exam struct {
	ID         string                          `json:"id" gorm:"primaryKey;size:36"`
	Name       string                          `json:"name" gorm:"size:255;not null"`
	SubjectID  string                          `json:"subject_id" gorm:"size:36;index"`
	ExamType   string                          `json:"exam_type" gorm:"size:100"` // Class Test, Mid-Sem
	Date       string                          `json:"date" gorm:"size:32"`
	TotalMarks int                             `json:"total_marks"`
	ClassName  string                          `json:"class_name" gorm:"size:100"`
	Questions  datatypes.JSONSlice[Question]   `json:"questions" gorm:"type:jsonb"`
	CreatedAt  time.Time                       `json:"created_at"`
	UpdatedAt  time.Time                       `json:"updated_at"`
}

// QuestionByNumber returns the exam question with the given number, or nil.
func (e *Exam) QuestionByNumber(n int) *Question {
	for i := range e.Questions {
		if e.Questions[i].QuestionNumber == n {
			return &e.Questions[i]
		}
	}
	return nil
}
