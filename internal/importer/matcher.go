package importer

import (
	"strings"

	"github.com/mkarvone/repsmith/internal/catalog"
)

const (
	confidenceExact   = 1.0
	confidenceAlias   = 0.95
	confidenceVariant = 0.9
	confidenceFuzzy   = 0.7

	defaultFuzzyMaxDistance = 3
)

// MatcherConfig tunes the fuzzy tier. The zero value gets defaults applied.
type MatcherConfig struct {
	// FuzzyMaxDistance is the largest edit distance still accepted as a
	// fuzzy match.
	FuzzyMaxDistance int
}

// Matcher resolves raw exercise names from import documents against a catalog
// snapshot. Matching is deterministic: equal candidates resolve to the lowest
// exercise id.
type Matcher struct {
	snapshot *catalog.Snapshot
	cfg      MatcherConfig
}

func NewMatcher(snapshot *catalog.Snapshot, cfg MatcherConfig) *Matcher {
	if cfg.FuzzyMaxDistance <= 0 {
		cfg.FuzzyMaxDistance = defaultFuzzyMaxDistance
	}
	return &Matcher{snapshot: snapshot, cfg: cfg}
}

// MatchAll resolves every distinct raw name across the sessions, in first
// appearance order. Names differing only in case or punctuation collapse to
// one result.
func (m *Matcher) MatchAll(sessions []TrainingSession) []MatchResult {
	seen := map[string]bool{}
	var results []MatchResult
	for _, session := range sessions {
		for _, exercise := range session.Exercises {
			normalized := catalog.Normalize(exercise.RawName)
			if normalized == "" || seen[normalized] {
				continue
			}
			seen[normalized] = true
			results = append(results, m.Match(exercise.RawName))
		}
	}
	return results
}

// Match resolves one raw name through the tiered strategies, strongest first.
func (m *Matcher) Match(rawName string) MatchResult {
	result := MatchResult{RawName: rawName, Method: MatchUnmatched}
	normalized := catalog.Normalize(rawName)
	if normalized == "" {
		return result
	}

	if id, ok := m.snapshot.IDByName(normalized); ok {
		result.ExerciseID = id
		result.Confidence = confidenceExact
		result.Method = MatchExact
		return result
	}
	if id, ok := m.snapshot.IDByAlias(normalized); ok {
		result.ExerciseID = id
		result.Confidence = confidenceAlias
		result.Method = MatchAlias
		return result
	}
	if id, ok := m.matchVariant(normalized); ok {
		result.ExerciseID = id
		result.Confidence = confidenceVariant
		result.Method = MatchVariant
		return result
	}
	if id, ok := m.matchFuzzy(normalized); ok {
		result.ExerciseID = id
		result.Confidence = confidenceFuzzy
		result.Method = MatchFuzzy
		return result
	}
	return result
}

// equipmentPrefixes maps leading tokens of exercise names, including common
// gym shorthand, to the equipment they imply.
var equipmentPrefixes = []struct {
	prefix    string
	equipment catalog.Equipment
}{
	{"dumbbell", catalog.EquipmentDumbbell},
	{"db", catalog.EquipmentDumbbell},
	{"barbell", catalog.EquipmentBarbell},
	{"bb", catalog.EquipmentBarbell},
	{"cable", catalog.EquipmentCable},
	{"machine", catalog.EquipmentMachine},
	{"kettlebell", catalog.EquipmentKettlebell},
	{"kb", catalog.EquipmentKettlebell},
	{"bodyweight", catalog.EquipmentBodyweight},
	{"bw", catalog.EquipmentBodyweight},
}

// matchVariant peels a recognized equipment prefix off the name and looks for
// a catalog entry on that equipment whose base exercise name covers the
// remainder. "DB Row" resolves to the dumbbell entry whose base name is
// "Row".
func (m *Matcher) matchVariant(normalized string) (int, bool) {
	for _, p := range equipmentPrefixes {
		remainder, found := strings.CutPrefix(normalized, p.prefix+" ")
		if !found {
			continue
		}
		remainder = strings.TrimSpace(remainder)
		if remainder == "" {
			continue
		}
		for _, entry := range m.snapshot.Entries() {
			if entry.Equipment != p.equipment {
				continue
			}
			base := catalog.Normalize(entry.BaseName)
			if base != "" && (strings.Contains(base, remainder) || strings.Contains(remainder, base)) {
				return entry.ID, true
			}
		}
	}
	return 0, false
}

func (m *Matcher) matchFuzzy(normalized string) (int, bool) {
	bestID := 0
	bestDistance := m.cfg.FuzzyMaxDistance + 1
	for _, entry := range m.snapshot.Entries() {
		d := levenshteinDistance(normalized, catalog.Normalize(entry.Name))
		if d < bestDistance {
			bestDistance = d
			bestID = entry.ID
		}
	}
	return bestID, bestID != 0
}

// levenshteinDistance is the classic two-row edit distance over runes.
func levenshteinDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
