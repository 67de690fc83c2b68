package importer

import (
	"math"
	"sort"
	"time"

	"github.com/mkarvone/repsmith/internal/catalog"
	"github.com/mkarvone/repsmith/internal/estimation"
)

// AnalyzerConfig tunes the experience inference thresholds. The zero value
// gets defaults applied.
type AnalyzerConfig struct {
	// ExperienceThresholds are the combined-score cut points between
	// beginner/intermediate, intermediate/advanced, and advanced/expert.
	ExperienceThresholds [3]float64
	// StrengthWeightWithoutBodyweight scales the strength sub-score's
	// contribution when no bodyweight is available to ratio against.
	StrengthWeightWithoutBodyweight float64
	// SplitMinConfidence is the smallest share of sessions that must fit a
	// split pattern before it is reported.
	SplitMinConfidence float64
	// StrengthRepCeiling and HypertrophyRepFloor bound the balanced style.
	StrengthRepCeiling  float64
	HypertrophyRepFloor float64
}

func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		ExperienceThresholds:            [3]float64{0.3, 0.55, 0.75},
		StrengthWeightWithoutBodyweight: 0.5,
		SplitMinConfidence:              0.5,
		StrengthRepCeiling:              7,
		HypertrophyRepFloor:             10,
	}
}

// expertStrengthRatios are one-rep-max to bodyweight ratios considered
// expert level for the signature lifts, keyed by catalog slug.
var expertStrengthRatios = map[string]float64{
	"barbell_back_squat":    2.0,
	"conventional_deadlift": 2.5,
	"barbell_bench_press":   1.5,
	"overhead_press":        1.0,
	"barbell_row":           1.5,
	"pull_up":               1.3,
}

const (
	minutesPerSet        = 3
	sessionWarmupMinutes = 10
)

// Analyzer derives import intelligence from matched training history. It is a
// pure fold over the sessions: it never errors and degrades to low-confidence
// output when data is sparse.
type Analyzer struct {
	cfg AnalyzerConfig
}

func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	defaults := DefaultAnalyzerConfig()
	if cfg.ExperienceThresholds == [3]float64{} {
		cfg.ExperienceThresholds = defaults.ExperienceThresholds
	}
	if cfg.StrengthWeightWithoutBodyweight <= 0 {
		cfg.StrengthWeightWithoutBodyweight = defaults.StrengthWeightWithoutBodyweight
	}
	if cfg.SplitMinConfidence <= 0 {
		cfg.SplitMinConfidence = defaults.SplitMinConfidence
	}
	if cfg.StrengthRepCeiling <= 0 {
		cfg.StrengthRepCeiling = defaults.StrengthRepCeiling
	}
	if cfg.HypertrophyRepFloor <= 0 {
		cfg.HypertrophyRepFloor = defaults.HypertrophyRepFloor
	}
	return &Analyzer{cfg: cfg}
}

// Analyze builds a Report from parsed sessions and their match results.
// Bodyweight may be nil, which reduces the weight of the strength sub-score
// rather than failing.
func (a *Analyzer) Analyze(sessions []TrainingSession, matches []MatchResult, snapshot *catalog.Snapshot, bodyweight *float64, now time.Time) Report {
	matchedID := map[string]int{}
	for _, m := range matches {
		if m.Matched() {
			matchedID[catalog.Normalize(m.RawName)] = m.ExerciseID
		}
	}

	indicators := Indicators{
		Strength: a.strengthScore(sessions, matchedID, snapshot, bodyweight),
		History:  a.historyScore(sessions, now),
		Volume:   a.volumeScore(sessions),
		Variety:  a.varietyScore(sessions, matchedID, snapshot),
	}

	strengthWeight := 1.0
	if bodyweight == nil || *bodyweight <= 0 {
		strengthWeight = a.cfg.StrengthWeightWithoutBodyweight
	}
	totalWeight := strengthWeight + 3
	combined := (indicators.Strength*strengthWeight + indicators.History + indicators.Volume + indicators.Variety) / totalWeight

	split, splitConfidence := a.inferSplit(sessions, matchedID, snapshot)

	return Report{
		Experience:              a.experienceLevel(combined),
		Style:                   a.trainingStyle(sessions),
		TopMuscleGroups:         topMuscleGroups(sessions, matchedID, snapshot, 3),
		Split:                   split,
		EstimatedSessionMinutes: estimatedSessionMinutes(sessions),
		Confidence:              a.overallConfidence(sessions, matches, splitConfidence),
		Indicators:              indicators,
	}
}

func (a *Analyzer) experienceLevel(combined float64) ExperienceLevel {
	switch {
	case combined < a.cfg.ExperienceThresholds[0]:
		return ExperienceBeginner
	case combined < a.cfg.ExperienceThresholds[1]:
		return ExperienceIntermediate
	case combined < a.cfg.ExperienceThresholds[2]:
		return ExperienceAdvanced
	default:
		return ExperienceExpert
	}
}

// strengthScore rates best one-rep-max estimates on the signature lifts
// against bodyweight-relative expert standards. Without bodyweight a neutral
// midpoint is returned; the caller already discounts its weight.
func (a *Analyzer) strengthScore(sessions []TrainingSession, matchedID map[string]int, snapshot *catalog.Snapshot, bodyweight *float64) float64 {
	if bodyweight == nil || *bodyweight <= 0 {
		return 0.5
	}

	bestBySlug := map[string]float64{}
	for _, session := range sessions {
		for _, exercise := range session.Exercises {
			id, ok := matchedID[catalog.Normalize(exercise.RawName)]
			if !ok {
				continue
			}
			entry, ok := snapshot.Get(id)
			if !ok {
				continue
			}
			if _, signature := expertStrengthRatios[entry.Slug]; !signature {
				continue
			}
			estimate, err := estimation.BestEstimate(exercise.Sets)
			if err != nil {
				continue
			}
			if estimate > bestBySlug[entry.Slug] {
				bestBySlug[entry.Slug] = estimate
			}
		}
	}
	if len(bestBySlug) == 0 {
		return 0
	}

	var sum float64
	for slug, best := range bestBySlug {
		ratio := best / *bodyweight
		sum += clamp01(ratio / expertStrengthRatios[slug])
	}
	return sum / float64(len(bestBySlug))
}

// historyScore rewards training frequency and span, penalizing long gaps.
func (a *Analyzer) historyScore(sessions []TrainingSession, now time.Time) float64 {
	dates := sessionDates(sessions)
	if len(dates) == 0 {
		return 0
	}
	if len(dates) == 1 {
		return 0.1
	}

	spanDays := dates[len(dates)-1].Sub(dates[0]).Hours() / 24
	spanWeeks := math.Max(spanDays/7, 1)
	perWeek := float64(len(dates)) / spanWeeks

	consistency := clamp01(perWeek / 4)
	span := clamp01(spanWeeks / 26)

	var gapPenalty float64
	for i := 1; i < len(dates); i++ {
		if dates[i].Sub(dates[i-1]).Hours()/24 > 21 {
			gapPenalty += 0.1
		}
	}
	gapPenalty = math.Min(gapPenalty, 0.3)

	// A history that ended months ago says less about current training.
	var stalePenalty float64
	if now.Sub(dates[len(dates)-1]).Hours()/24 > 60 {
		stalePenalty = 0.2
	}

	return clamp01(0.6*consistency + 0.4*span - gapPenalty - stalePenalty)
}

// volumeScore rates average per-session workload.
func (a *Analyzer) volumeScore(sessions []TrainingSession) float64 {
	if len(sessions) == 0 {
		return 0
	}
	var totalSets, totalExercises int
	for _, session := range sessions {
		totalExercises += len(session.Exercises)
		for _, exercise := range session.Exercises {
			totalSets += len(exercise.Sets)
		}
	}
	avgSets := float64(totalSets) / float64(len(sessions))
	avgExercises := float64(totalExercises) / float64(len(sessions))
	return 0.6*clamp01(avgSets/20) + 0.4*clamp01(avgExercises/6)
}

// varietyScore rates exercise, movement pattern, and equipment diversity.
func (a *Analyzer) varietyScore(sessions []TrainingSession, matchedID map[string]int, snapshot *catalog.Snapshot) float64 {
	names := map[string]bool{}
	patterns := map[catalog.MovementPattern]bool{}
	equipment := map[catalog.Equipment]bool{}
	for _, session := range sessions {
		for _, exercise := range session.Exercises {
			normalized := catalog.Normalize(exercise.RawName)
			names[normalized] = true
			if id, ok := matchedID[normalized]; ok {
				if entry, ok := snapshot.Get(id); ok {
					patterns[entry.Pattern] = true
					equipment[entry.Equipment] = true
				}
			}
		}
	}
	return 0.5*clamp01(float64(len(names))/15) +
		0.3*clamp01(float64(len(patterns))/6) +
		0.2*clamp01(float64(len(equipment))/4)
}

func (a *Analyzer) trainingStyle(sessions []TrainingSession) TrainingStyle {
	var totalReps, totalSets int
	for _, session := range sessions {
		for _, exercise := range session.Exercises {
			for _, set := range exercise.Sets {
				totalReps += set.Reps
				totalSets++
			}
		}
	}
	if totalSets == 0 {
		return StyleBalanced
	}
	meanReps := float64(totalReps) / float64(totalSets)
	switch {
	case meanReps <= a.cfg.StrengthRepCeiling:
		return StyleStrength
	case meanReps >= a.cfg.HypertrophyRepFloor:
		return StyleHypertrophy
	default:
		return StyleBalanced
	}
}

const (
	sessionUpper = "upper"
	sessionLower = "lower"
	sessionPush  = "push"
	sessionPull  = "pull"
	sessionFull  = "full"
	sessionOther = "other"
)

var (
	pushMuscles  = map[string]bool{"chest": true, "shoulders": true, "triceps": true}
	pullMuscles  = map[string]bool{"back": true, "lats": true, "traps": true, "biceps": true, "rear delts": true}
	lowerMuscles = map[string]bool{"quads": true, "hamstrings": true, "glutes": true, "calves": true, "adductors": true}
)

// inferSplit classifies each session by the muscle territory its matched
// exercises cover and reports a named split only when enough sessions agree.
func (a *Analyzer) inferSplit(sessions []TrainingSession, matchedID map[string]int, snapshot *catalog.Snapshot) (*SplitPattern, float64) {
	if len(sessions) < 3 {
		return nil, 0
	}

	counts := map[string]int{}
	for _, session := range sessions {
		counts[classifySession(session, matchedID, snapshot)]++
	}
	total := float64(len(sessions))

	candidates := []struct {
		pattern SplitPattern
		share   float64
		present bool
	}{
		{
			pattern: SplitPushPullLegs,
			share:   float64(counts[sessionPush]+counts[sessionPull]+counts[sessionLower]) / total,
			present: counts[sessionPush] > 0 && counts[sessionPull] > 0 && counts[sessionLower] > 0,
		},
		{
			pattern: SplitUpperLower,
			share:   float64(counts[sessionUpper]+counts[sessionPush]+counts[sessionPull]+counts[sessionLower]) / total,
			present: counts[sessionUpper]+counts[sessionPush]+counts[sessionPull] > 0 && counts[sessionLower] > 0 && counts[sessionFull] == 0,
		},
		{
			pattern: SplitFullBody,
			share:   float64(counts[sessionFull]) / total,
			present: counts[sessionFull] > 0,
		},
	}
	for _, c := range candidates {
		if c.present && c.share >= a.cfg.SplitMinConfidence {
			pattern := c.pattern
			return &pattern, c.share
		}
	}
	return nil, 0
}

func classifySession(session TrainingSession, matchedID map[string]int, snapshot *catalog.Snapshot) string {
	var push, pull, lower int
	for _, exercise := range session.Exercises {
		id, ok := matchedID[catalog.Normalize(exercise.RawName)]
		if !ok {
			continue
		}
		entry, ok := snapshot.Get(id)
		if !ok {
			continue
		}
		primary := entry.PrimaryMuscle()
		switch {
		case lowerMuscles[primary]:
			lower++
		case pushMuscles[primary]:
			push++
		case pullMuscles[primary]:
			pull++
		}
	}

	upper := push + pull
	switch {
	case upper == 0 && lower == 0:
		return sessionOther
	case upper > 0 && lower > 0:
		return sessionFull
	case lower > 0:
		return sessionLower
	case push > 0 && pull == 0:
		return sessionPush
	case pull > 0 && push == 0:
		return sessionPull
	default:
		return sessionUpper
	}
}

func topMuscleGroups(sessions []TrainingSession, matchedID map[string]int, snapshot *catalog.Snapshot, n int) []string {
	setsByMuscle := map[string]int{}
	for _, session := range sessions {
		for _, exercise := range session.Exercises {
			id, ok := matchedID[catalog.Normalize(exercise.RawName)]
			if !ok {
				continue
			}
			entry, ok := snapshot.Get(id)
			if !ok || entry.PrimaryMuscle() == "" {
				continue
			}
			setsByMuscle[entry.PrimaryMuscle()] += len(exercise.Sets)
		}
	}

	muscles := make([]string, 0, len(setsByMuscle))
	for muscle := range setsByMuscle {
		muscles = append(muscles, muscle)
	}
	sort.Slice(muscles, func(i, j int) bool {
		if setsByMuscle[muscles[i]] != setsByMuscle[muscles[j]] {
			return setsByMuscle[muscles[i]] > setsByMuscle[muscles[j]]
		}
		return muscles[i] < muscles[j]
	})
	if len(muscles) > n {
		muscles = muscles[:n]
	}
	return muscles
}

func estimatedSessionMinutes(sessions []TrainingSession) int {
	if len(sessions) == 0 {
		return 0
	}
	var totalSets int
	for _, session := range sessions {
		for _, exercise := range session.Exercises {
			totalSets += len(exercise.Sets)
		}
	}
	avgSets := float64(totalSets) / float64(len(sessions))
	minutes := avgSets*minutesPerSet + sessionWarmupMinutes
	return int(math.Round(minutes/5) * 5)
}

// overallConfidence blends data quantity with match quality so downstream
// consumers can tell a rich history from three scribbled lines.
func (a *Analyzer) overallConfidence(sessions []TrainingSession, matches []MatchResult, splitConfidence float64) float64 {
	if len(sessions) == 0 || len(matches) == 0 {
		return 0
	}
	var matched int
	for _, m := range matches {
		if m.Matched() {
			matched++
		}
	}
	matchRate := float64(matched) / float64(len(matches))
	quantity := clamp01(float64(len(sessions)) / 12)
	return clamp01(0.5*matchRate + 0.4*quantity + 0.1*splitConfidence)
}

func sessionDates(sessions []TrainingSession) []time.Time {
	var dates []time.Time
	for _, session := range sessions {
		if !session.Date.IsZero() {
			dates = append(dates, session.Date)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
