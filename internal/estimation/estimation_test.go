package estimation_test

import (
	"math"
	"testing"
	"time"

	"github.com/mkarvone/repsmith/internal/errors"
	"github.com/mkarvone/repsmith/internal/estimation"
)

func TestOneRepMax(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		reps   int
		want   float64
	}{
		{"185x5 rounds to 216", 185, 5, 215.83},
		{"100x10", 100, 10, 133.33},
		{"single rep is the weight itself", 142.5, 1, 142.5},
		{"zero reps", 100, 0, 0},
		{"negative weight", -80, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimation.OneRepMax(tt.weight, tt.reps)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("OneRepMax(%v, %v) = %v, want %v", tt.weight, tt.reps, got, tt.want)
			}
		})
	}

	// The documented headline case: 185x5 estimates to 216 after rounding.
	if got := math.Round(estimation.OneRepMax(185, 5)); got != 216 {
		t.Errorf("round(OneRepMax(185, 5)) = %v, want 216", got)
	}
}

func TestWeightForRepsRoundTrip(t *testing.T) {
	// Estimating a max from a set and asking for the weight at the same rep
	// count must return the original weight.
	for reps := 1; reps <= 12; reps++ {
		for _, weight := range []float64{60, 102.5, 185, 240} {
			oneRM := estimation.OneRepMax(weight, reps)
			got := estimation.WeightForReps(oneRM, reps)
			if math.Abs(got-weight) > 0.001 {
				t.Errorf("round trip at %vx%d = %v, want %v", weight, reps, got, weight)
			}
		}
	}
}

func TestBestEstimate(t *testing.T) {
	tests := []struct {
		name    string
		sets    []estimation.Set
		want    float64
		wantErr error
	}{
		{
			name:    "empty input",
			sets:    nil,
			want:    0,
			wantErr: estimation.ErrNoData,
		},
		{
			name: "single working set",
			sets: []estimation.Set{{Weight: 100, Reps: 5}},
			want: 100 * (1 + 5.0/30.0),
		},
		{
			name: "fresh moderate set outranks fatigued heavier estimate",
			sets: []estimation.Set{
				{Weight: 100, Reps: 8},  // raw 126.67, factor 1.0
				{Weight: 100, Reps: 8},  // raw 126.67, factor 1.0
				{Weight: 100, Reps: 8},  // raw 126.67, factor 0.95
				{Weight: 100, Reps: 8},  // raw 126.67, factor 0.95
				{Weight: 102, Reps: 8},  // raw 129.2, factor 0.90 -> 116.28
				{Weight: 100, Reps: 15}, // raw 150, factors 0.90 * 0.90 -> 121.5
			},
			want: 100 * (1 + 8.0/30.0),
		},
		{
			name: "low rep set takes the doubles discount",
			sets: []estimation.Set{{Weight: 180, Reps: 2}},
			want: 180 * (1 + 2.0/30.0) * 0.95,
		},
		{
			name: "all zero sets behave as no data",
			sets: []estimation.Set{{Weight: 0, Reps: 0}},
			want: 0, wantErr: estimation.ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := estimation.BestEstimate(tt.sets)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("BestEstimate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("BestEstimate() unexpected error: %v", err)
			}
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("BestEstimate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecencyWeightedAverage(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	daysAgo := func(days int) time.Time { return now.AddDate(0, 0, -days) }

	t.Run("empty input reports ErrNoData", func(t *testing.T) {
		_, err := estimation.RecencyWeightedAverage(nil, 14, now)
		if !errors.Is(err, estimation.ErrNoData) {
			t.Fatalf("error = %v, want ErrNoData", err)
		}
	})

	t.Run("single point returns its value exactly", func(t *testing.T) {
		got, err := estimation.RecencyWeightedAverage(
			[]estimation.Point{{Date: daysAgo(40), Value: 212.5}}, 14, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != 212.5 {
			t.Errorf("got %v, want exactly 212.5", got)
		}
	})

	t.Run("equal values at any two dates stay that value", func(t *testing.T) {
		got, err := estimation.RecencyWeightedAverage([]estimation.Point{
			{Date: daysAgo(2), Value: 180},
			{Date: daysAgo(300), Value: 180},
		}, 14, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(got-180) > 1e-9 {
			t.Errorf("got %v, want 180", got)
		}
	})

	t.Run("recent sessions dominate", func(t *testing.T) {
		got, err := estimation.RecencyWeightedAverage([]estimation.Point{
			{Date: daysAgo(3), Value: 225},
			{Date: daysAgo(10), Value: 220},
			{Date: daysAgo(21), Value: 230},
		}, 14, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// The 21-day-old 230 must not pull the aggregate above the recent 225.
		if math.Abs(got-223) > 2 {
			t.Errorf("got %v, want about 223", got)
		}
		if got >= 225 {
			t.Errorf("got %v, want below the most recent 225", got)
		}
	})

	t.Run("older points never weigh more than newer ones", func(t *testing.T) {
		// Aggregate of a high old point and a low new point must land closer
		// to the new point.
		got, err := estimation.RecencyWeightedAverage([]estimation.Point{
			{Date: daysAgo(1), Value: 100},
			{Date: daysAgo(60), Value: 200},
		}, 14, now)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got >= 150 {
			t.Errorf("got %v, want below the midpoint 150", got)
		}
	})
}

func TestTargetWeight(t *testing.T) {
	tests := []struct {
		name            string
		oneRM           float64
		kind            estimation.ExerciseKind
		baseIntensity   float64
		intensityOffset float64
		rpe             float64
		want            float64
	}{
		{
			name:  "compound at 75 percent rounds to 5",
			oneRM: 200, kind: estimation.KindCompound,
			baseIntensity: 0.75, intensityOffset: 0, rpe: 8,
			want: 150,
		},
		{
			name:  "compound with positive offset",
			oneRM: 200, kind: estimation.KindCompound,
			baseIntensity: 0.75, intensityOffset: 0.1, rpe: 8,
			want: 165,
		},
		{
			name:  "isolation rpe 6 lands at 40 percent",
			oneRM: 100, kind: estimation.KindIsolation,
			baseIntensity: 0.75, intensityOffset: 0, rpe: 6,
			want: 40,
		},
		{
			name:  "isolation rpe 10 lands at 70 percent",
			oneRM: 100, kind: estimation.KindIsolation,
			baseIntensity: 0.75, intensityOffset: 0, rpe: 10,
			want: 70,
		},
		{
			name:  "isolation rpe 8 midpoint rounds to 2.5",
			oneRM: 100, kind: estimation.KindIsolation,
			baseIntensity: 0.75, intensityOffset: 0, rpe: 8,
			want: 55,
		},
		{
			name:  "isolation rpe clamped below the band",
			oneRM: 100, kind: estimation.KindIsolation,
			baseIntensity: 0.75, intensityOffset: 0, rpe: 2,
			want: 40,
		},
		{
			name:  "zero max prescribes nothing",
			oneRM: 0, kind: estimation.KindCompound,
			baseIntensity: 0.75, intensityOffset: 0, rpe: 8,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimation.TargetWeight(tt.oneRM, tt.kind, tt.baseIntensity, tt.intensityOffset, tt.rpe)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("TargetWeight() = %v, want %v", got, tt.want)
			}
		})
	}
}
