package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gradewise/evaluation-service/internal/models"
)

// Validator wraps go-playground struct validation plus the grading business
// rules that tags alone cannot express.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	return &Validator{validate: validator.New()}
}

// ValidationError is one failed field check.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates all failed checks for one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate runs tag-based validation on any struct.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

// ValidateGradeSubmission checks a grade payload against tag rules and the
// mark-range invariant: every mark must lie in [0, max_marks] for its
// question on the exam.
func (v *Validator) ValidateGradeSubmission(sub *models.GradeSubmission, exam *models.Exam) ValidationErrors {
	errs := v.Validate(sub)

	for i, qm := range sub.QuestionMarks {
		q := exam.QuestionByNumber(qm.QuestionNumber)
		if q == nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("question_marks[%d].question_number", i),
				Message: "question is not on this exam",
				Value:   qm.QuestionNumber,
			})
			continue
		}
		if qm.MarksObtained < 0 || qm.MarksObtained > float64(q.MaxMarks) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("question_marks[%d].marks_obtained", i),
				Message: fmt.Sprintf("marks must be between 0 and %d", q.MaxMarks),
				Value:   qm.MarksObtained,
			})
		}
	}

	for i, ann := range sub.Annotations {
		if ann.Type != "" && !knownAnnotationType(ann.Type) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("annotations[%d].type", i),
				Message: "unknown annotation type",
				Value:   string(ann.Type),
			})
		}
	}

	return errs
}

func knownAnnotationType(t models.AnnotationType) bool {
	switch t {
	case models.AnnotationCorrect, models.AnnotationIncorrect,
		models.AnnotationHalfMark, models.AnnotationQuarterMark,
		models.AnnotationNotAttempted, models.AnnotationComment,
		models.AnnotationCircle, models.AnnotationPen, models.AnnotationNumeric:
		return true
	}
	return false
}

func toValidationErrors(err error) ValidationErrors {
	var out ValidationErrors

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "request", Message: err.Error()}}
	}

	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageForTag(fe),
			Value:   fe.Value(),
		})
	}
	return out
}

func messageForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
