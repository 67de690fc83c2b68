package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkarvone/repsmith/internal/sqlite"
)

// Repository loads catalog snapshots from the database.
type Repository struct {
	db *sqlite.Database
}

// NewRepository creates a catalog repository.
func NewRepository(db *sqlite.Database) *Repository {
	return &Repository{db: db}
}

// Snapshot reads the full catalog into an immutable snapshot.
func (r *Repository) Snapshot(ctx context.Context) (_ *Snapshot, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, slug, name, base_name, equipment, experience_level, movement_pattern, exercise_type,
		       description_markdown
		FROM exercises
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err = rows.Scan(
			&entry.ID,
			&entry.Slug,
			&entry.Name,
			&entry.BaseName,
			&entry.Equipment,
			&entry.Level,
			&entry.Pattern,
			&entry.Type,
			&entry.DescriptionMarkdown,
		); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	aliases, err := r.fetchAliases(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch aliases: %w", err)
	}
	muscles, err := r.fetchMuscleGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch muscle groups: %w", err)
	}

	for i := range entries {
		entries[i].Aliases = aliases[entries[i].ID]
		entries[i].MuscleGroups = muscles[entries[i].ID]
	}

	return NewSnapshot(entries), nil
}

// fetchAliases loads the alias table keyed by exercise id.
func (r *Repository) fetchAliases(ctx context.Context) (_ map[int][]string, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_id, alias
		FROM exercise_aliases
		ORDER BY exercise_id, alias`)
	if err != nil {
		return nil, fmt.Errorf("query aliases: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	aliases := make(map[int][]string)
	for rows.Next() {
		var (
			exerciseID int
			alias      string
		)
		if err = rows.Scan(&exerciseID, &alias); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		aliases[exerciseID] = append(aliases[exerciseID], alias)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return aliases, nil
}

// fetchMuscleGroups loads muscle groups keyed by exercise id. Insertion order
// is preserved by rowid so the first listed muscle stays the primary mover.
func (r *Repository) fetchMuscleGroups(ctx context.Context) (_ map[int][]string, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_id, muscle_group
		FROM exercise_muscle_groups
		ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query muscle groups: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close rows: %w", closeErr))
		}
	}()

	muscles := make(map[int][]string)
	for rows.Next() {
		var (
			exerciseID  int
			muscleGroup string
		)
		if err = rows.Scan(&exerciseID, &muscleGroup); err != nil {
			return nil, fmt.Errorf("scan muscle group: %w", err)
		}
		muscles[exerciseID] = append(muscles[exerciseID], muscleGroup)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return muscles, nil
}
