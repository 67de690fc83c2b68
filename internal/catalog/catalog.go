// Package catalog holds the canonical exercise reference data. The catalog is
// owned by an external catalog-management process; this engine only ever
// reads an immutable snapshot of it.
package catalog

import (
	"sort"
	"strings"
	"unicode"
)

// Equipment identifies what an exercise is performed with.
type Equipment string

const (
	EquipmentBarbell    Equipment = "barbell"
	EquipmentDumbbell   Equipment = "dumbbell"
	EquipmentCable      Equipment = "cable"
	EquipmentMachine    Equipment = "machine"
	EquipmentKettlebell Equipment = "kettlebell"
	EquipmentBodyweight Equipment = "bodyweight"
)

// Type distinguishes multi-joint compounds from single-joint isolation work.
type Type string

const (
	TypeCompound  Type = "compound"
	TypeIsolation Type = "isolation"
)

// Level is the experience level an exercise is appropriate for.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// MovementPattern classifies the biomechanical motion, e.g. horizontal_push
// or hinge. Selection uses it to keep workouts varied.
type MovementPattern string

// Entry is one canonical exercise.
type Entry struct {
	ID int
	// Slug is the stable snake_case identifier used across user records.
	Slug string
	Name string
	// BaseName groups variants, e.g. both barbell and dumbbell bench press
	// share the base name "Bench Press".
	BaseName            string
	Aliases             []string
	Equipment           Equipment
	Level               Level
	Pattern             MovementPattern
	MuscleGroups        []string
	Type                Type
	DescriptionMarkdown string
}

// TargetsMuscle reports whether the entry works the given muscle group.
func (e Entry) TargetsMuscle(group string) bool {
	for _, muscle := range e.MuscleGroups {
		if muscle == group {
			return true
		}
	}
	return false
}

// PrimaryMuscle returns the first listed muscle group, which by catalog
// convention is the primary mover.
func (e Entry) PrimaryMuscle() string {
	if len(e.MuscleGroups) == 0 {
		return ""
	}
	return e.MuscleGroups[0]
}

// Snapshot is an immutable, indexed view of the catalog taken at one point in
// time. All engine components receive a Snapshot rather than reaching for
// shared state, which keeps matching and selection deterministic and testable
// with synthetic catalogs.
type Snapshot struct {
	entries []Entry
	byID    map[int]Entry
	byName  map[string]int
	byAlias map[string]int
}

// NewSnapshot indexes the given entries. Entries are sorted by id so that
// every iteration order downstream is stable. When two entries share a
// display or base name, the lowest id wins the name index.
func NewSnapshot(entries []Entry) *Snapshot {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	snapshot := &Snapshot{
		entries: sorted,
		byID:    make(map[int]Entry, len(sorted)),
		byName:  make(map[string]int, len(sorted)),
		byAlias: make(map[string]int),
	}

	for _, entry := range sorted {
		snapshot.byID[entry.ID] = entry

		for _, name := range []string{entry.Name, entry.BaseName} {
			normalized := Normalize(name)
			if normalized == "" {
				continue
			}
			if _, taken := snapshot.byName[normalized]; !taken {
				snapshot.byName[normalized] = entry.ID
			}
		}

		for _, alias := range entry.Aliases {
			normalized := Normalize(alias)
			if normalized == "" {
				continue
			}
			if _, taken := snapshot.byAlias[normalized]; !taken {
				snapshot.byAlias[normalized] = entry.ID
			}
		}
	}

	return snapshot
}

// Entries returns all entries ordered by id. Callers must not mutate the
// returned slice.
func (s *Snapshot) Entries() []Entry {
	return s.entries
}

// Len returns the number of catalog entries.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Get looks up an entry by id.
func (s *Snapshot) Get(id int) (Entry, bool) {
	entry, ok := s.byID[id]
	return entry, ok
}

// IDByName looks up an entry id by normalized display or base name.
func (s *Snapshot) IDByName(name string) (int, bool) {
	id, ok := s.byName[Normalize(name)]
	return id, ok
}

// IDByAlias looks up an entry id in the alias table.
func (s *Snapshot) IDByAlias(name string) (int, bool) {
	id, ok := s.byAlias[Normalize(name)]
	return id, ok
}

// Normalize lowercases and collapses whitespace so that "Pull-Up" and
// "pull up" compare equal. Hyphens and underscores become spaces; other
// punctuation is dropped.
func Normalize(s string) string {
	var builder strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			builder.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			builder.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(builder.String()), " ")
}
