// Package importer turns externally extracted training history documents into
// matched, analyzed, and persisted per-user training records.
package importer

import (
	"time"

	"github.com/mkarvone/repsmith/internal/estimation"
)

// ExercisePerformance is one exercise within a historical session, identified
// by the raw name exactly as it appeared in the source document. The raw name
// is kept even after matching so unmatched names can be reported back.
type ExercisePerformance struct {
	RawName string
	Sets    []estimation.Set
}

// TrainingSession is one historical workout parsed from an import document.
type TrainingSession struct {
	Index     int
	Date      time.Time
	Label     string
	Exercises []ExercisePerformance
}

// MatchMethod names the strategy tier that resolved a raw exercise name.
type MatchMethod string

const (
	MatchExact     MatchMethod = "exact"
	MatchAlias     MatchMethod = "alias"
	MatchVariant   MatchMethod = "variant"
	MatchFuzzy     MatchMethod = "fuzzy"
	MatchUnmatched MatchMethod = "unmatched"
)

// MatchResult resolves one distinct raw exercise name against the catalog.
// ExerciseID is zero when Method is MatchUnmatched.
type MatchResult struct {
	RawName    string
	ExerciseID int
	Confidence float64
	Method     MatchMethod
}

// Matched reports whether the result references a catalog entry.
func (m MatchResult) Matched() bool {
	return m.Method != MatchUnmatched && m.ExerciseID != 0
}

// ExperienceLevel is the inferred training experience tier.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceExpert       ExperienceLevel = "expert"
)

// TrainingStyle is the inferred rep-range leaning of the history.
type TrainingStyle string

const (
	StyleStrength    TrainingStyle = "strength"
	StyleBalanced    TrainingStyle = "balanced"
	StyleHypertrophy TrainingStyle = "hypertrophy"
)

// SplitPattern is a recognized named training split.
type SplitPattern string

const (
	SplitFullBody     SplitPattern = "full_body"
	SplitUpperLower   SplitPattern = "upper_lower"
	SplitPushPullLegs SplitPattern = "push_pull_legs"
)

// Indicators are the four sub-scores behind the experience inference, each
// normalized to [0,1].
type Indicators struct {
	Strength float64
	History  float64
	Volume   float64
	Variety  float64
}

// Report is the import intelligence derived from one import run. It is never
// persisted as its own entity; it informs persisted fields and is returned to
// the caller.
type Report struct {
	Experience              ExperienceLevel
	Style                   TrainingStyle
	TopMuscleGroups         []string
	Split                   *SplitPattern
	EstimatedSessionMinutes int
	Confidence              float64
	Indicators              Indicators
}

// Request is one import invocation. Document is the pre-extracted text of
// whatever medium the user uploaded; extraction from images or URLs happens
// upstream.
type Request struct {
	Document                 string
	CreateHistoricalSessions bool
	Bodyweight               *float64
}

// Result summarizes one import run for the caller.
type Result struct {
	RunID              string
	SessionsImported   int
	ExercisesMatched   int
	ExercisesUnmatched []string
	TargetsCreated     int
	SessionsCreated    int
	Intelligence       Report
}

// Target is a per-user strength record for one exercise. CurrentMax is a
// cached projection of History under the recency-weighted merge rule.
type Target struct {
	ExerciseID int
	CurrentMax float64
	History    []TargetHistoryEntry
}

// TargetHistoryEntry is one dated one-rep-max estimate with its provenance.
type TargetHistoryEntry struct {
	Date   time.Time
	Value  float64
	Source string
}
