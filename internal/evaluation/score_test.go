package evaluation

import (
	"testing"

	"github.com/gradewise/evaluation-service/internal/models"
)

func TestApplyAnnotationDelta(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		annType  models.AnnotationType
		maxMarks float64
		want     float64
	}{
		{"half mark adds half of max", 0, models.AnnotationHalfMark, 10, 5},
		{"quarter mark adds quarter of max", 0, models.AnnotationQuarterMark, 10, 2.5},
		{"not attempted zeroes the mark", 7, models.AnnotationNotAttempted, 10, 0},
		{"half mark clamps at max", 8, models.AnnotationHalfMark, 10, 10},
		{"repeated halves saturate", 10, models.AnnotationHalfMark, 10, 10},
		{"correct leaves mark unchanged", 4, models.AnnotationCorrect, 10, 4},
		{"comment leaves mark unchanged", 4, models.AnnotationComment, 10, 4},
		{"odd max halves cleanly", 0, models.AnnotationHalfMark, 5, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyAnnotationDelta(tt.current, tt.annType, tt.maxMarks)
			if got != tt.want {
				t.Errorf("ApplyAnnotationDelta(%v, %s, %v) = %v, want %v",
					tt.current, tt.annType, tt.maxMarks, got, tt.want)
			}
		})
	}
}

func TestRemoveAnnotationDelta(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		annType  models.AnnotationType
		maxMarks float64
		want     float64
	}{
		{"removing half subtracts half of max", 5, models.AnnotationHalfMark, 10, 0},
		{"removing quarter subtracts quarter of max", 2.5, models.AnnotationQuarterMark, 10, 0},
		{"removal clamps at zero", 1, models.AnnotationHalfMark, 10, 0},
		{"removing not-attempted changes nothing", 0, models.AnnotationNotAttempted, 10, 0},
		{"removing correct changes nothing", 4, models.AnnotationCorrect, 10, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemoveAnnotationDelta(tt.current, tt.annType, tt.maxMarks)
			if got != tt.want {
				t.Errorf("RemoveAnnotationDelta(%v, %s, %v) = %v, want %v",
					tt.current, tt.annType, tt.maxMarks, got, tt.want)
			}
		})
	}
}

func TestHalfMarkRoundTrip(t *testing.T) {
	// Place then delete must return to the starting mark exactly.
	start := 0.0
	after := ApplyAnnotationDelta(start, models.AnnotationHalfMark, 10)
	if after != 5 {
		t.Fatalf("after place = %v, want 5", after)
	}
	back := RemoveAnnotationDelta(after, models.AnnotationHalfMark, 10)
	if back != start {
		t.Errorf("after delete = %v, want %v", back, start)
	}

	after = ApplyAnnotationDelta(start, models.AnnotationQuarterMark, 10)
	if after != 2.5 {
		t.Fatalf("after place = %v, want 2.5", after)
	}
	back = RemoveAnnotationDelta(after, models.AnnotationQuarterMark, 10)
	if back != start {
		t.Errorf("after delete = %v, want %v", back, start)
	}
}

func TestSetNumeric(t *testing.T) {
	tests := []struct {
		name        string
		requested   float64
		maxMarks    float64
		want        float64
		wantClamped bool
	}{
		{"within range", 7, 10, 7, false},
		{"above max clamps", 15, 10, 10, true},
		{"below zero clamps", -3, 10, 0, true},
		{"exactly max", 10, 10, 10, false},
		{"exactly zero", 0, 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped := SetNumeric(tt.requested, tt.maxMarks)
			if got != tt.want || clamped != tt.wantClamped {
				t.Errorf("SetNumeric(%v, %v) = (%v, %v), want (%v, %v)",
					tt.requested, tt.maxMarks, got, clamped, tt.want, tt.wantClamped)
			}
		})
	}
}

func TestParseMark(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"7", 7},
		{"7.5", 7.5},
		{"abc", 0},
		{"", 0},
		{"NaN", 0},
		{"Inf", 0},
		{"-2", -2},
	}

	for _, tt := range tests {
		if got := ParseMark(tt.raw); got != tt.want {
			t.Errorf("ParseMark(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestTotal(t *testing.T) {
	questions := []models.Question{
		{QuestionNumber: 1, MaxMarks: 10},
		{QuestionNumber: 2, MaxMarks: 5},
		{QuestionNumber: 3, MaxMarks: 5},
	}

	t.Run("sums marks and computes percentage", func(t *testing.T) {
		marks := map[int]float64{1: 8, 2: 5}
		got := Total(marks, questions, 20)
		if got.Obtained != 13 {
			t.Errorf("Obtained = %v, want 13", got.Obtained)
		}
		if got.Max != 20 {
			t.Errorf("Max = %v, want 20", got.Max)
		}
		if got.Percentage != 65 {
			t.Errorf("Percentage = %v, want 65", got.Percentage)
		}
	})

	t.Run("unmarked questions count as zero", func(t *testing.T) {
		got := Total(map[int]float64{}, questions, 20)
		if got.Obtained != 0 || got.Percentage != 0 {
			t.Errorf("empty marks gave %+v", got)
		}
	})

	t.Run("declared total used when questions missing", func(t *testing.T) {
		got := Total(map[int]float64{1: 10}, nil, 40)
		if got.Max != 40 {
			t.Errorf("Max = %v, want declared 40", got.Max)
		}
		if got.Percentage != 25 {
			t.Errorf("Percentage = %v, want 25", got.Percentage)
		}
	})

	t.Run("zero max means zero percentage", func(t *testing.T) {
		got := Total(map[int]float64{1: 5}, nil, 0)
		if got.Percentage != 0 {
			t.Errorf("Percentage = %v, want 0", got.Percentage)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		marks := map[int]float64{1: 8, 2: 2.5}
		first := Total(marks, questions, 20)
		second := Total(marks, questions, 20)
		if first != second {
			t.Errorf("Total not idempotent: %+v vs %+v", first, second)
		}
	})

	t.Run("percentage rounds to two decimals", func(t *testing.T) {
		got := Total(map[int]float64{1: 1}, nil, 3)
		if got.Percentage != 33.33 {
			t.Errorf("Percentage = %v, want 33.33", got.Percentage)
		}
	})
}
