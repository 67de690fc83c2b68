// Package selection picks a balanced, personalized exercise set from the
// catalog under equipment, experience, and diversity constraints. It is a
// single-pass filter/score/select pipeline with no state between requests;
// the catalog arrives as an immutable snapshot and the engine performs no
// I/O of its own.
package selection

import (
	"sort"

	"github.com/mkarvone/repsmith/internal/catalog"
	"github.com/mkarvone/repsmith/internal/errors"
)

// ErrEmptyPool means no exercise survived filtering even after relaxing the
// experience constraint. A short selection is normal and flagged instead;
// an empty one must be explicit.
var ErrEmptyPool = errors.NewSentinel("no exercises satisfy the selection constraints")

// SplitDay labels which muscle territory a workout targets.
type SplitDay string

const (
	SplitDayPush  SplitDay = "push"
	SplitDayPull  SplitDay = "pull"
	SplitDayLegs  SplitDay = "legs"
	SplitDayUpper SplitDay = "upper"
	SplitDayLower SplitDay = "lower"
	SplitDayFull  SplitDay = "full"
)

// Request is one selection invocation. LibraryIDs are the user's known
// exercises; they boost familiar candidates but never exclude new ones.
type Request struct {
	SplitDay          SplitDay
	TargetMuscles     []string
	EmphasizedMuscles []string
	CompoundCount     int
	IsolationCount    int
	Equipment         []catalog.Equipment
	ExcludedIDs       []int
	Experience        catalog.Level
	LibraryIDs        []int
	PreferBodyweight  bool
}

// Result is the selected exercise ids in prescription order, partitioned by
// whether the user already knows each exercise.
type Result struct {
	ExerciseIDs  []int
	FromLibrary  []int
	Introduced   []int
	UsedFallback bool
}

const (
	libraryBoost    = 1.2
	emphasisBoost   = 1.5
	bodyweightBoost = 1.4
	overlapBoost    = 0.1
	balanceBoost    = 1.3

	// poolWidenFactor is how many candidates per requested exercise the
	// experience-filtered pool must hold before it is considered sufficient.
	poolWidenFactor = 2
)

type candidate struct {
	entry catalog.Entry
	score float64
}

// Select runs the filter/score/select pipeline against the snapshot.
// Too few candidates yields a short result with UsedFallback set, never an
// error; only an empty widened pool fails.
func Select(snapshot *catalog.Snapshot, req Request) (Result, error) {
	pool, widened := filterPool(snapshot, req)
	if len(pool) == 0 {
		return Result{}, errors.Wrap(ErrEmptyPool, "select exercises")
	}

	candidates := scorePool(pool, req)

	var compounds, isolations []candidate
	for _, c := range candidates {
		if c.entry.Type == catalog.TypeCompound {
			compounds = append(compounds, c)
		} else {
			isolations = append(isolations, c)
		}
	}

	selectedCompounds, patternFallback := selectCompounds(compounds, req.CompoundCount)
	selectedIsolations := selectIsolations(isolations, selectedCompounds, req.IsolationCount)

	result := Result{UsedFallback: widened || patternFallback}
	library := intSet(req.LibraryIDs)
	for _, c := range append(selectedCompounds, selectedIsolations...) {
		result.ExerciseIDs = append(result.ExerciseIDs, c.entry.ID)
		if library[c.entry.ID] {
			result.FromLibrary = append(result.FromLibrary, c.entry.ID)
		} else {
			result.Introduced = append(result.Introduced, c.entry.ID)
		}
	}
	if len(result.ExerciseIDs) < req.CompoundCount+req.IsolationCount {
		result.UsedFallback = true
	}
	return result, nil
}

// filterPool applies equipment, split-day, and exclusion filters, then the
// experience filter. When the experience-filtered pool is smaller than twice
// the requested count, the experience filter is dropped and the widening is
// reported so the caller can message the user.
func filterPool(snapshot *catalog.Snapshot, req Request) ([]catalog.Entry, bool) {
	excluded := intSet(req.ExcludedIDs)
	equipment := map[catalog.Equipment]bool{}
	for _, e := range req.Equipment {
		equipment[e] = true
	}

	var base []catalog.Entry
	for _, entry := range snapshot.Entries() {
		if excluded[entry.ID] {
			continue
		}
		if len(equipment) > 0 && !equipment[entry.Equipment] {
			continue
		}
		if !appliesToSplitDay(entry, req.SplitDay) {
			continue
		}
		base = append(base, entry)
	}

	var leveled []catalog.Entry
	for _, entry := range base {
		if levelRank(entry.Level) <= levelRank(req.Experience) {
			leveled = append(leveled, entry)
		}
	}

	requested := req.CompoundCount + req.IsolationCount
	if len(leveled) >= poolWidenFactor*requested {
		return leveled, false
	}
	return base, true
}

func levelRank(level catalog.Level) int {
	switch level {
	case catalog.LevelBeginner:
		return 0
	case catalog.LevelIntermediate:
		return 1
	case catalog.LevelAdvanced:
		return 2
	default:
		// Unknown experience (including expert users) gets everything.
		return 3
	}
}

var splitDayMuscles = map[SplitDay][]string{
	SplitDayPush:  {"chest", "shoulders", "triceps"},
	SplitDayPull:  {"back", "lats", "traps", "biceps", "rear delts"},
	SplitDayLegs:  {"quads", "hamstrings", "glutes", "calves", "adductors"},
	SplitDayLower: {"quads", "hamstrings", "glutes", "calves", "adductors"},
	SplitDayUpper: {"chest", "shoulders", "triceps", "back", "lats", "traps", "biceps", "rear delts"},
}

func appliesToSplitDay(entry catalog.Entry, day SplitDay) bool {
	muscles, ok := splitDayMuscles[day]
	if !ok {
		// Full-body days and unknown labels accept the whole catalog.
		return true
	}
	for _, muscle := range muscles {
		if entry.TargetsMuscle(muscle) {
			return true
		}
	}
	return false
}

// scorePool rates every candidate. The multipliers are independent and
// compound multiplicatively, so an in-library, emphasized, bodyweight
// exercise scores sharply higher than one satisfying a single criterion.
func scorePool(pool []catalog.Entry, req Request) []candidate {
	library := intSet(req.LibraryIDs)
	emphasized := stringSet(req.EmphasizedMuscles)

	candidates := make([]candidate, 0, len(pool))
	for _, entry := range pool {
		score := 1.0
		if library[entry.ID] {
			score *= libraryBoost
		}
		for _, muscle := range entry.MuscleGroups {
			if emphasized[muscle] {
				score *= emphasisBoost
				break
			}
		}
		if req.PreferBodyweight && entry.Equipment == catalog.EquipmentBodyweight {
			score *= bodyweightBoost
		}
		var overlap int
		for _, muscle := range req.TargetMuscles {
			if entry.TargetsMuscle(muscle) {
				overlap++
			}
		}
		score *= 1 + overlapBoost*float64(overlap)
		candidates = append(candidates, candidate{entry: entry, score: score})
	}
	sortByScore(candidates)
	return candidates
}

// selectCompounds takes compounds greedily by descending score while keeping
// movement patterns unique. If the diversity rule leaves the selection short
// it fills from the remainder, reporting that the rule had to bend.
func selectCompounds(compounds []candidate, count int) ([]candidate, bool) {
	var (
		selected []candidate
		skipped  []candidate
	)
	usedPatterns := map[catalog.MovementPattern]bool{}
	for _, c := range compounds {
		if len(selected) == count {
			break
		}
		if usedPatterns[c.entry.Pattern] {
			skipped = append(skipped, c)
			continue
		}
		usedPatterns[c.entry.Pattern] = true
		selected = append(selected, c)
	}

	var fallback bool
	for _, c := range skipped {
		if len(selected) == count {
			break
		}
		selected = append(selected, c)
		fallback = true
	}
	return selected, fallback
}

// selectIsolations boosts candidates whose primary muscle the compounds left
// uncovered, then takes the top scores. The boost corrects coverage gaps
// instead of scoring isolation work independently of what came before.
func selectIsolations(isolations, selectedCompounds []candidate, count int) []candidate {
	covered := map[string]bool{}
	for _, c := range selectedCompounds {
		for _, muscle := range c.entry.MuscleGroups {
			covered[muscle] = true
		}
	}

	boosted := make([]candidate, len(isolations))
	copy(boosted, isolations)
	for i := range boosted {
		if primary := boosted[i].entry.PrimaryMuscle(); primary != "" && !covered[primary] {
			boosted[i].score *= balanceBoost
		}
	}
	sortByScore(boosted)

	if len(boosted) > count {
		boosted = boosted[:count]
	}
	return boosted
}

// sortByScore orders by descending score with catalog id as the stable tie
// break, keeping selection deterministic.
func sortByScore(candidates []candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].entry.ID < candidates[j].entry.ID
	})
}

func intSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
