package importer

import (
	"testing"
	"time"

	"github.com/mkarvone/repsmith/internal/catalog"
	"github.com/mkarvone/repsmith/internal/estimation"
	"github.com/mkarvone/repsmith/internal/ptr"
)

func analyzerSnapshot() *catalog.Snapshot {
	return catalog.NewSnapshot([]catalog.Entry{
		{ID: 1, Slug: "barbell_bench_press", Name: "Bench Press", BaseName: "Bench Press",
			Equipment: catalog.EquipmentBarbell, Pattern: "horizontal_push",
			MuscleGroups: []string{"chest", "triceps"}, Type: catalog.TypeCompound},
		{ID: 8, Slug: "barbell_row", Name: "Barbell Row", BaseName: "Row",
			Equipment: catalog.EquipmentBarbell, Pattern: "horizontal_pull",
			MuscleGroups: []string{"back", "biceps"}, Type: catalog.TypeCompound},
		{ID: 14, Slug: "barbell_back_squat", Name: "Back Squat", BaseName: "Squat",
			Equipment: catalog.EquipmentBarbell, Pattern: "squat",
			MuscleGroups: []string{"quads", "glutes"}, Type: catalog.TypeCompound},
	})
}

// threeWeekHistory builds a repeating bench/row/squat rotation, one muscle
// territory per session, dated relative to now.
func threeWeekHistory(now time.Time) ([]TrainingSession, []MatchResult) {
	var sessions []TrainingSession
	day := func(daysAgo int) time.Time { return now.AddDate(0, 0, -daysAgo) }

	for week := range 3 {
		base := 21 - week*7
		sessions = append(sessions,
			TrainingSession{Date: day(base), Label: "Push", Exercises: []ExercisePerformance{
				{RawName: "Bench Press", Sets: []estimation.Set{{Weight: 100, Reps: 5}, {Weight: 100, Reps: 5}, {Weight: 95, Reps: 8}}},
			}},
			TrainingSession{Date: day(base - 2), Label: "Pull", Exercises: []ExercisePerformance{
				{RawName: "Barbell Row", Sets: []estimation.Set{{Weight: 80, Reps: 8}, {Weight: 80, Reps: 8}}},
			}},
			TrainingSession{Date: day(base - 4), Label: "Legs", Exercises: []ExercisePerformance{
				{RawName: "Back Squat", Sets: []estimation.Set{{Weight: 140, Reps: 5}, {Weight: 140, Reps: 5}}},
			}},
		)
	}

	matches := []MatchResult{
		{RawName: "Bench Press", ExerciseID: 1, Confidence: 1.0, Method: MatchExact},
		{RawName: "Barbell Row", ExerciseID: 8, Confidence: 1.0, Method: MatchExact},
		{RawName: "Back Squat", ExerciseID: 14, Confidence: 1.0, Method: MatchExact},
	}
	return sessions, matches
}

func TestAnalyzeRotation(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	sessions, matches := threeWeekHistory(now)

	analyzer := NewAnalyzer(AnalyzerConfig{})
	report := analyzer.Analyze(sessions, matches, analyzerSnapshot(), ptr.Ref(85.0), now)

	if report.Split == nil || *report.Split != SplitPushPullLegs {
		t.Errorf("split = %v, want push_pull_legs", report.Split)
	}
	if report.Style != StyleStrength && report.Style != StyleBalanced {
		t.Errorf("style = %q, want strength or balanced for 5-8 rep work", report.Style)
	}
	if report.Experience == ExperienceExpert {
		t.Errorf("experience = %q, three weeks of history should not look expert", report.Experience)
	}
	if report.Confidence <= 0 || report.Confidence > 1 {
		t.Errorf("confidence = %v, want within (0,1]", report.Confidence)
	}
	if report.EstimatedSessionMinutes <= 0 {
		t.Errorf("estimated session minutes = %d, want positive", report.EstimatedSessionMinutes)
	}
	if len(report.TopMuscleGroups) == 0 {
		t.Error("top muscle groups empty")
	}

	for name, score := range map[string]float64{
		"strength": report.Indicators.Strength,
		"history":  report.Indicators.History,
		"volume":   report.Indicators.Volume,
		"variety":  report.Indicators.Variety,
	} {
		if score < 0 || score > 1 {
			t.Errorf("%s indicator = %v, want within [0,1]", name, score)
		}
	}
}

func TestAnalyzeWithoutBodyweight(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	sessions, matches := threeWeekHistory(now)
	analyzer := NewAnalyzer(AnalyzerConfig{})

	withBW := analyzer.Analyze(sessions, matches, analyzerSnapshot(), ptr.Ref(85.0), now)
	withoutBW := analyzer.Analyze(sessions, matches, analyzerSnapshot(), nil, now)

	// Without bodyweight the strength indicator falls back to its neutral
	// midpoint; everything else stays data driven.
	if withoutBW.Indicators.Strength != 0.5 {
		t.Errorf("strength indicator = %v, want neutral 0.5 without bodyweight", withoutBW.Indicators.Strength)
	}
	if withBW.Indicators.History != withoutBW.Indicators.History {
		t.Error("history indicator should not depend on bodyweight")
	}
}

func TestAnalyzeEmptyHistory(t *testing.T) {
	analyzer := NewAnalyzer(AnalyzerConfig{})
	report := analyzer.Analyze(nil, nil, analyzerSnapshot(), nil, time.Now())

	if report.Experience != ExperienceBeginner {
		t.Errorf("experience = %q, want beginner for empty history", report.Experience)
	}
	if report.Split != nil {
		t.Errorf("split = %v, want nil for empty history", *report.Split)
	}
	if report.Confidence != 0 {
		t.Errorf("confidence = %v, want 0 for empty history", report.Confidence)
	}
}

func TestAnalyzeStyleFromRepRanges(t *testing.T) {
	now := time.Now()
	matches := []MatchResult{{RawName: "Bench Press", ExerciseID: 1, Confidence: 1.0, Method: MatchExact}}
	session := func(reps int) []TrainingSession {
		return []TrainingSession{{Date: now, Exercises: []ExercisePerformance{
			{RawName: "Bench Press", Sets: []estimation.Set{{Weight: 100, Reps: reps}, {Weight: 100, Reps: reps}}},
		}}}
	}

	analyzer := NewAnalyzer(AnalyzerConfig{})
	tests := []struct {
		reps int
		want TrainingStyle
	}{
		{reps: 3, want: StyleStrength},
		{reps: 8, want: StyleBalanced},
		{reps: 12, want: StyleHypertrophy},
	}
	for _, tt := range tests {
		report := analyzer.Analyze(session(tt.reps), matches, analyzerSnapshot(), nil, now)
		if report.Style != tt.want {
			t.Errorf("style for %d reps = %q, want %q", tt.reps, report.Style, tt.want)
		}
	}
}
