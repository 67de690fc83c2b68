package importer

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/mkarvone/repsmith/internal/errors"
	"github.com/mkarvone/repsmith/internal/estimation"
)

func TestParseTabular(t *testing.T) {
	document := `Date,Workout,Exercise,Weight,Reps
2026-01-05,Push day,Bench Press,100,5
,,Bench Press,100,5
,,Overhead Press,60,8
2026-01-07,Pull day,Barbell Row,80,8
`

	sessions, err := Parse(document)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	want := []TrainingSession{
		{
			Index: 0,
			Date:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			Label: "Push day",
			Exercises: []ExercisePerformance{
				{RawName: "Bench Press", Sets: []estimation.Set{{Weight: 100, Reps: 5}, {Weight: 100, Reps: 5}}},
				{RawName: "Overhead Press", Sets: []estimation.Set{{Weight: 60, Reps: 8}}},
			},
		},
		{
			Index: 1,
			Date:  time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC),
			Label: "Pull day",
			Exercises: []ExercisePerformance{
				{RawName: "Barbell Row", Sets: []estimation.Set{{Weight: 80, Reps: 8}}},
			},
		},
	}
	if diff := cmp.Diff(want, sessions); diff != "" {
		t.Errorf("sessions mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTabularSetsColumn(t *testing.T) {
	document := "Date\tExercise\tSets\tReps\tWeight\n2026-02-01\tBack Squat\t3\t5\t140\n"

	sessions, err := Parse(document)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	sets := sessions[0].Exercises[0].Sets
	if len(sets) != 3 {
		t.Fatalf("got %d sets, want 3 from the sets column", len(sets))
	}
	for _, set := range sets {
		if set.Weight != 140 || set.Reps != 5 {
			t.Errorf("set = %+v, want weight 140 reps 5", set)
		}
	}
}

func TestParseHTMLTable(t *testing.T) {
	document := `<html><body>
<table>
  <tr><th>Date</th><th>Exercise</th><th>Weight</th><th>Reps</th></tr>
  <tr><td>2026-03-01</td><td>Deadlift</td><td>180</td><td>3</td></tr>
  <tr><td></td><td>Deadlift</td><td>180</td><td>3</td></tr>
</table>
</body></html>`

	sessions, err := Parse(document)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	exercise := sessions[0].Exercises[0]
	if exercise.RawName != "Deadlift" || len(exercise.Sets) != 2 {
		t.Errorf("exercise = %+v, want Deadlift with 2 sets", exercise)
	}
}

func TestParseFreeText(t *testing.T) {
	document := `2026-01-05 - Push
Bench Press: 100x5, 100x5, 102.5x3
Overhead Press 3x8 @ 60

2026-01-07 Pull
- Barbell Row: 80x8
`

	sessions, err := Parse(document)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}

	push := sessions[0]
	if push.Label != "Push" {
		t.Errorf("label = %q, want Push", push.Label)
	}
	if len(push.Exercises) != 2 {
		t.Fatalf("got %d exercises, want 2", len(push.Exercises))
	}
	wantBench := []estimation.Set{{Weight: 100, Reps: 5}, {Weight: 100, Reps: 5}, {Weight: 102.5, Reps: 3}}
	if diff := cmp.Diff(wantBench, push.Exercises[0].Sets); diff != "" {
		t.Errorf("bench sets mismatch (-want +got):\n%s", diff)
	}
	// "3x8 @ 60" expands to three identical sets at 60.
	wantPress := []estimation.Set{{Weight: 60, Reps: 8}, {Weight: 60, Reps: 8}, {Weight: 60, Reps: 8}}
	if diff := cmp.Diff(wantPress, push.Exercises[1].Sets); diff != "" {
		t.Errorf("press sets mismatch (-want +got):\n%s", diff)
	}

	if got := sessions[1].Exercises[0].RawName; got != "Barbell Row" {
		t.Errorf("raw name = %q, want Barbell Row", got)
	}
}

func TestParseNoRows(t *testing.T) {
	tests := []struct {
		name     string
		document string
	}{
		{name: "empty document", document: ""},
		{name: "prose only", document: "I went to the gym on Monday and it was great.\nSee you there!"},
		{name: "header only table", document: "Date,Exercise,Weight,Reps\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.document)
			if !errors.Is(err, ErrNoRows) {
				t.Errorf("Parse() error = %v, want ErrNoRows", err)
			}
		})
	}
}

func TestParseMalformedDocument(t *testing.T) {
	document := "Date,Workout,Exercise,Weight,Reps\n" +
		"2026-01-05,Push,\"Bench Press,100,5\n"

	_, err := Parse(document)
	if !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("Parse() error = %v, want ErrMalformedDocument", err)
	}
}
