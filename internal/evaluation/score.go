package evaluation

import (
	"math"
	"strconv"
	"strings"

	"github.com/gradewise/evaluation-service/internal/models"
)

// ===== SCORE ENGINE =====
//
// Pure functions deriving mark changes from annotation events and computing
// aggregate totals. Same inputs always produce the same outputs; undo/redo
// relies on this to replay recorded old/new value pairs exactly.

// ApplyAnnotationDelta returns the marks for a question after an annotation
// of the given type lands on it. Half and quarter marks add the matching
// fraction of maxMarks, "not attempted" forces zero, every other type leaves
// the marks untouched. The result is clamped to [0, maxMarks].
func ApplyAnnotationDelta(current float64, annType models.AnnotationType, maxMarks float64) float64 {
	switch annType {
	case models.AnnotationHalfMark:
		return clampMark(current+maxMarks/2, maxMarks)
	case models.AnnotationQuarterMark:
		return clampMark(current+maxMarks/4, maxMarks)
	case models.AnnotationNotAttempted:
		return 0
	default:
		return current
	}
}

// RemoveAnnotationDelta reverses the mark contribution of a deleted half or
// quarter mark annotation. Other types contribute nothing, so deleting them
// changes nothing.
func RemoveAnnotationDelta(current float64, annType models.AnnotationType, maxMarks float64) float64 {
	switch annType {
	case models.AnnotationHalfMark:
		return clampMark(current-maxMarks/2, maxMarks)
	case models.AnnotationQuarterMark:
		return clampMark(current-maxMarks/4, maxMarks)
	default:
		return current
	}
}

// SetNumeric clamps a requested mark into [0, maxMarks] and reports whether
// clamping occurred so the caller can surface a warning. Values are clamped,
// never rejected.
func SetNumeric(requested, maxMarks float64) (float64, bool) {
	clamped := clampMark(requested, maxMarks)
	return clamped, clamped != requested
}

// ParseMark parses raw numeric mark input; unparsable input counts as zero.
func ParseMark(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Total computes the aggregate score over every question. Questions without
// a marks entry count as zero. When the exam carries no question list the
// declared exam total is used as the maximum. Percentage is rounded to two
// decimal places and is zero when the maximum is zero.
func Total(marks map[int]float64, questions []models.Question, declaredTotal int) models.ScoreSummary {
	var obtained float64
	for _, m := range marks {
		obtained += m
	}

	var max float64
	if len(questions) == 0 {
		max = float64(declaredTotal)
	} else {
		for _, q := range questions {
			max += float64(q.MaxMarks)
		}
	}

	var percentage float64
	if max > 0 {
		percentage = math.Round(obtained/max*10000) / 100
	}

	return models.ScoreSummary{Obtained: obtained, Max: max, Percentage: percentage}
}

func clampMark(v, maxMarks float64) float64 {
	if v < 0 {
		return 0
	}
	if v > maxMarks {
		return maxMarks
	}
	return v
}
