// Package estimation contains the pure strength-estimation math: one-rep-max
// estimates from logged sets, recency-weighted aggregation of estimates over
// time, and working-weight prescription.
package estimation

import (
	"math"
	"time"

	"github.com/mkarvone/repsmith/internal/errors"
)

// ErrNoData is reported when an aggregate is requested over an empty input.
var ErrNoData = errors.NewSentinel("no data points")

// ExerciseKind mirrors the catalog's compound/isolation classification
// without depending on the catalog package.
type ExerciseKind string

const (
	KindCompound  ExerciseKind = "compound"
	KindIsolation ExerciseKind = "isolation"
)

// Set is one performed set of an exercise.
type Set struct {
	Weight float64
	Reps   int
}

// Point is a dated one-rep-max estimate.
type Point struct {
	Date  time.Time
	Value float64
}

const (
	// epleyDivisor is the linear rep coefficient of the Epley formula.
	epleyDivisor = 30.0

	// Accuracy of the Epley formula falls outside the moderate rep range.
	maxAccurateReps = 12
	minAccurateReps = 3

	// Quality discounts applied when picking the best set of a workout.
	lateSetFactor     = 0.95 // sets 3-4, mild fatigue
	verySetLateFactor = 0.90 // sets 5+, heavy fatigue
	highRepFactor     = 0.90
	lowRepFactor      = 0.95

	// Set positions where the fatigue discounts kick in.
	lateSetPosition     = 3
	veryLateSetPosition = 5

	// Prescription rounding increments.
	compoundIncrement  = 5.0
	isolationIncrement = 2.5

	// Isolation work is prescribed by RPE mapped linearly onto a
	// 40-70% band of the one-rep max.
	isolationMinRPE       = 6.0
	isolationMaxRPE       = 10.0
	isolationMinIntensity = 0.40
	isolationMaxIntensity = 0.70
)

// OneRepMax estimates a one-repetition maximum from a sub-maximal set using
// the Epley formula: weight * (1 + reps/30). Accuracy degrades above 12 reps
// but the formula still applies; callers discount such estimates instead of
// rejecting them.
func OneRepMax(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	return weight * (1 + float64(reps)/epleyDivisor)
}

// WeightForReps inverts [OneRepMax]: the weight that would put the given rep
// count at the supplied one-rep max. Used for prescription, not estimation.
func WeightForReps(oneRM float64, reps int) float64 {
	if oneRM <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return oneRM
	}
	return oneRM / (1 + float64(reps)/epleyDivisor)
}

// BestEstimate returns the best quality-adjusted one-rep-max estimate over
// the ordered sets of a single workout.
//
// Later sets are discounted for fatigue and extreme rep counts for formula
// inaccuracy, so a fresh moderate-rep set outranks a fatigued or extreme-rep
// set with a nominally higher raw estimate.
func BestEstimate(sets []Set) (float64, error) {
	best := 0.0
	for i, set := range sets {
		raw := OneRepMax(set.Weight, set.Reps)
		if raw <= 0 {
			continue
		}

		adjusted := raw * setPositionFactor(i+1) * repRangeFactor(set.Reps)
		if adjusted > best {
			best = adjusted
		}
	}
	if best == 0 {
		return 0, ErrNoData
	}
	return best, nil
}

func setPositionFactor(position int) float64 {
	switch {
	case position >= veryLateSetPosition:
		return verySetLateFactor
	case position >= lateSetPosition:
		return lateSetFactor
	default:
		return 1.0
	}
}

func repRangeFactor(reps int) float64 {
	switch {
	case reps > maxAccurateReps:
		return highRepFactor
	case reps < minAccurateReps:
		return lowRepFactor
	default:
		return 1.0
	}
}

// RecencyWeightedAverage aggregates dated estimates with exponential decay so
// recent performance dominates: weight(t) = exp(-daysAgo * ln2 / halfLifeDays).
//
// An empty input reports [ErrNoData]; a single point returns its value
// unweighted. Points dated after now count as age zero.
func RecencyWeightedAverage(points []Point, halfLifeDays float64, now time.Time) (float64, error) {
	if len(points) == 0 {
		return 0, ErrNoData
	}
	if len(points) == 1 {
		return points[0].Value, nil
	}
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultHalfLifeDays
	}

	var weightedSum, weightSum float64
	for _, point := range points {
		daysAgo := now.Sub(point.Date).Hours() / 24
		if daysAgo < 0 {
			daysAgo = 0
		}
		weight := math.Exp(-daysAgo * math.Ln2 / halfLifeDays)
		weightedSum += point.Value * weight
		weightSum += weight
	}

	return weightedSum / weightSum, nil
}

// DefaultHalfLifeDays is the decay half-life applied when the caller does not
// supply one. Two weeks keeps a recent meet performance dominant without
// letting one outlier session swing the record.
const DefaultHalfLifeDays = 14.0

// TargetWeight prescribes a working weight from a one-rep max.
//
// Compound lifts are prescribed by direct percentage: oneRM * baseIntensity *
// (1 + intensityOffset), rounded to the nearest 5 units. Isolation work maps
// RPE linearly onto a 40-70% band (rpe 6 -> 40%, rpe 10 -> 70%), rounded to
// the nearest 2.5 units. The asymmetry is intentional: isolation lifts are
// safer dosed by felt effort than by percentage.
func TargetWeight(oneRM float64, kind ExerciseKind, baseIntensity, intensityOffset, rpe float64) float64 {
	if oneRM <= 0 {
		return 0
	}

	if kind == KindIsolation {
		clamped := math.Min(math.Max(rpe, isolationMinRPE), isolationMaxRPE)
		intensity := isolationMinIntensity +
			(clamped-isolationMinRPE)/(isolationMaxRPE-isolationMinRPE)*(isolationMaxIntensity-isolationMinIntensity)
		return roundToIncrement(oneRM*intensity, isolationIncrement)
	}

	return roundToIncrement(oneRM*baseIntensity*(1+intensityOffset), compoundIncrement)
}

// roundToIncrement rounds to the nearest plate-loadable increment.
func roundToIncrement(weight, increment float64) float64 {
	if increment <= 0 {
		return weight
	}
	return math.Round(weight/increment) * increment
}
