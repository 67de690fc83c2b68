package selection_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mkarvone/repsmith/internal/catalog"
	"github.com/mkarvone/repsmith/internal/errors"
	"github.com/mkarvone/repsmith/internal/selection"
)

// pushDaySnapshot is a small synthetic catalog with two horizontal-push
// compounds, one vertical-push compound, and a few isolation exercises.
func pushDaySnapshot() *catalog.Snapshot {
	return catalog.NewSnapshot([]catalog.Entry{
		{ID: 1, Slug: "barbell_bench_press", Name: "Bench Press", BaseName: "Bench Press",
			Equipment: catalog.EquipmentBarbell, Level: catalog.LevelBeginner,
			Pattern: "horizontal_push", MuscleGroups: []string{"chest", "triceps"}, Type: catalog.TypeCompound},
		{ID: 2, Slug: "dumbbell_bench_press", Name: "Dumbbell Bench Press", BaseName: "Bench Press",
			Equipment: catalog.EquipmentDumbbell, Level: catalog.LevelBeginner,
			Pattern: "horizontal_push", MuscleGroups: []string{"chest", "triceps"}, Type: catalog.TypeCompound},
		{ID: 3, Slug: "overhead_press", Name: "Overhead Press", BaseName: "Overhead Press",
			Equipment: catalog.EquipmentBarbell, Level: catalog.LevelIntermediate,
			Pattern: "vertical_push", MuscleGroups: []string{"shoulders", "triceps"}, Type: catalog.TypeCompound},
		{ID: 4, Slug: "push_up", Name: "Push-Up", BaseName: "Push-Up",
			Equipment: catalog.EquipmentBodyweight, Level: catalog.LevelBeginner,
			Pattern: "horizontal_push", MuscleGroups: []string{"chest", "triceps"}, Type: catalog.TypeCompound},
		{ID: 5, Slug: "lateral_raise", Name: "Lateral Raise", BaseName: "Lateral Raise",
			Equipment: catalog.EquipmentDumbbell, Level: catalog.LevelBeginner,
			Pattern: "lateral_raise", MuscleGroups: []string{"shoulders"}, Type: catalog.TypeIsolation},
		{ID: 6, Slug: "triceps_pushdown", Name: "Triceps Pushdown", BaseName: "Triceps Pushdown",
			Equipment: catalog.EquipmentCable, Level: catalog.LevelBeginner,
			Pattern: "elbow_extension", MuscleGroups: []string{"triceps"}, Type: catalog.TypeIsolation},
		{ID: 7, Slug: "barbell_curl", Name: "Barbell Curl", BaseName: "Curl",
			Equipment: catalog.EquipmentBarbell, Level: catalog.LevelBeginner,
			Pattern: "elbow_flexion", MuscleGroups: []string{"biceps"}, Type: catalog.TypeIsolation},
	})
}

func allEquipment() []catalog.Equipment {
	return []catalog.Equipment{
		catalog.EquipmentBarbell, catalog.EquipmentDumbbell, catalog.EquipmentCable,
		catalog.EquipmentMachine, catalog.EquipmentKettlebell, catalog.EquipmentBodyweight,
	}
}

func TestSelectPushDay(t *testing.T) {
	result, err := selection.Select(pushDaySnapshot(), selection.Request{
		SplitDay:       selection.SplitDayPush,
		CompoundCount:  2,
		IsolationCount: 1,
		Equipment:      allEquipment(),
		Experience:     catalog.LevelAdvanced,
		LibraryIDs:     []int{1, 3},
	})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}

	if len(result.ExerciseIDs) != 3 {
		t.Fatalf("selected %v, want 3 exercises", result.ExerciseIDs)
	}
	assertNoDuplicates(t, result.ExerciseIDs)

	// Library scoring puts bench press and overhead press ahead of the other
	// compounds, and the diversity rule keeps their patterns distinct.
	wantIDs := []int{1, 3}
	if diff := cmp.Diff(wantIDs, result.ExerciseIDs[:2]); diff != "" {
		t.Errorf("compound selection mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{1, 3}, result.FromLibrary); diff != "" {
		t.Errorf("library partition mismatch (-want +got):\n%s", diff)
	}
	if len(result.Introduced) != 1 {
		t.Errorf("introduced = %v, want exactly the isolation pick", result.Introduced)
	}
	if result.UsedFallback {
		t.Error("fallback flagged although the pool was sufficient")
	}
}

func TestSelectPatternDiversity(t *testing.T) {
	// Both bench variants outscore the overhead press via library boosts,
	// but only one horizontal push may be chosen.
	result, err := selection.Select(pushDaySnapshot(), selection.Request{
		SplitDay:      selection.SplitDayPush,
		CompoundCount: 2,
		Equipment:     allEquipment(),
		Experience:    catalog.LevelAdvanced,
		LibraryIDs:    []int{1, 2},
	})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}

	patterns := map[catalog.MovementPattern]int{}
	snapshot := pushDaySnapshot()
	for _, id := range result.ExerciseIDs {
		entry, _ := snapshot.Get(id)
		patterns[entry.Pattern]++
	}
	for pattern, n := range patterns {
		if n > 1 {
			t.Errorf("pattern %s selected %d times", pattern, n)
		}
	}
}

func TestSelectBalanceBoost(t *testing.T) {
	// With only the bench press selected as a compound, shoulders are left
	// uncovered; the lateral raise must beat the triceps pushdown even
	// though both start at the same base score.
	result, err := selection.Select(pushDaySnapshot(), selection.Request{
		SplitDay:       selection.SplitDayPush,
		CompoundCount:  1,
		IsolationCount: 1,
		Equipment:      allEquipment(),
		Experience:     catalog.LevelAdvanced,
		LibraryIDs:     []int{1},
	})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if len(result.ExerciseIDs) != 2 {
		t.Fatalf("selected %v, want 2 exercises", result.ExerciseIDs)
	}
	if result.ExerciseIDs[1] != 5 {
		t.Errorf("isolation pick = %d, want the lateral raise (5) via the coverage boost", result.ExerciseIDs[1])
	}
}

func TestSelectBodyweightPreference(t *testing.T) {
	result, err := selection.Select(pushDaySnapshot(), selection.Request{
		SplitDay:         selection.SplitDayPush,
		CompoundCount:    1,
		Equipment:        allEquipment(),
		Experience:       catalog.LevelAdvanced,
		PreferBodyweight: true,
	})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if result.ExerciseIDs[0] != 4 {
		t.Errorf("compound pick = %d, want the push-up (4) under bodyweight preference", result.ExerciseIDs[0])
	}
}

func TestSelectWidensExperienceFilter(t *testing.T) {
	// A beginner requesting three compounds can't fill the pool from
	// beginner-rated exercises alone, so the experience filter is dropped.
	result, err := selection.Select(pushDaySnapshot(), selection.Request{
		SplitDay:      selection.SplitDayPush,
		CompoundCount: 3,
		Equipment:     allEquipment(),
		Experience:    catalog.LevelBeginner,
	})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if !result.UsedFallback {
		t.Error("fallback not flagged although the experience filter was widened")
	}
	assertNoDuplicates(t, result.ExerciseIDs)
}

func TestSelectShortPoolReturnsFewer(t *testing.T) {
	// Only cable equipment: one isolation candidate exists for a request of
	// three. Short result plus the fallback flag, never an error.
	result, err := selection.Select(pushDaySnapshot(), selection.Request{
		SplitDay:       selection.SplitDayPush,
		IsolationCount: 3,
		Equipment:      []catalog.Equipment{catalog.EquipmentCable},
		Experience:     catalog.LevelBeginner,
	})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	if len(result.ExerciseIDs) != 1 {
		t.Errorf("selected %v, want just the cable isolation", result.ExerciseIDs)
	}
	if !result.UsedFallback {
		t.Error("fallback not flagged for a short selection")
	}
}

func TestSelectEmptyPool(t *testing.T) {
	_, err := selection.Select(pushDaySnapshot(), selection.Request{
		SplitDay:      selection.SplitDayPush,
		CompoundCount: 2,
		Equipment:     []catalog.Equipment{catalog.EquipmentKettlebell},
		Experience:    catalog.LevelAdvanced,
	})
	if !errors.Is(err, selection.ErrEmptyPool) {
		t.Errorf("Select() error = %v, want ErrEmptyPool", err)
	}
}

func TestSelectExclusions(t *testing.T) {
	result, err := selection.Select(pushDaySnapshot(), selection.Request{
		SplitDay:      selection.SplitDayPush,
		CompoundCount: 2,
		Equipment:     allEquipment(),
		Experience:    catalog.LevelAdvanced,
		ExcludedIDs:   []int{1, 2},
	})
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	for _, id := range result.ExerciseIDs {
		if id == 1 || id == 2 {
			t.Errorf("excluded exercise %d was selected", id)
		}
	}
}

func assertNoDuplicates(t *testing.T, ids []int) {
	t.Helper()
	seen := map[int]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate exercise id %d in %v", id, ids)
		}
		seen[id] = true
	}
}
