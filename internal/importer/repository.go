package importer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mkarvone/repsmith/internal/catalog"
	"github.com/mkarvone/repsmith/internal/errors"
	"github.com/mkarvone/repsmith/internal/estimation"
	"github.com/mkarvone/repsmith/internal/sqlite"
)

const dateFormat = time.DateOnly

// repository persists the outcome of an import run. Every write of a run
// happens in a single transaction so a failed import leaves no partial state.
type repository struct {
	db *sqlite.Database
}

func newRepository(db *sqlite.Database) *repository {
	return &repository{db: db}
}

// exerciseEstimates are the dated one-rep-max estimates for one matched
// exercise, one point per session that trained it.
type exerciseEstimates struct {
	exerciseID int
	points     []estimation.Point
}

type persistStats struct {
	targetsCreated  int
	sessionsCreated int
	libraryAdded    int
}

// persistImport writes targets, library membership, optional historical
// sessions, and the import log row in one transaction. Re-running the same
// import is a no-op for every table: history rows dedupe on their unique
// constraint, current_max is recomputed from the full merged history, and
// sessions dedupe on (user, date, label).
func (r *repository) persistImport(
	ctx context.Context,
	userID int,
	runID string,
	sessions []TrainingSession,
	matches []MatchResult,
	estimates []exerciseEstimates,
	createSessions bool,
	now time.Time,
	duration time.Duration,
) (stats persistStats, err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return stats, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback transaction: %w", rollbackErr))
		}
	}()

	for _, est := range estimates {
		created, upsertErr := r.upsertTarget(ctx, tx, userID, est, now)
		if upsertErr != nil {
			return stats, fmt.Errorf("upsert target: %w", upsertErr)
		}
		if created {
			stats.targetsCreated++
		}

		added, libErr := r.addToLibrary(ctx, tx, userID, est.exerciseID, now)
		if libErr != nil {
			return stats, fmt.Errorf("add to library: %w", libErr)
		}
		if added {
			stats.libraryAdded++
		}
	}

	if createSessions {
		// Matches carry one spelling per distinct normalized name, so the
		// lookup has to normalize too or other spellings lose their link.
		matchedID := map[string]int{}
		for _, m := range matches {
			if m.Matched() {
				matchedID[catalog.Normalize(m.RawName)] = m.ExerciseID
			}
		}
		for _, session := range sessions {
			created, sessErr := r.insertSession(ctx, tx, userID, runID, session, matchedID)
			if sessErr != nil {
				return stats, fmt.Errorf("insert session: %w", sessErr)
			}
			if created {
				stats.sessionsCreated++
			}
		}
	}

	if err = r.insertImportLog(ctx, tx, userID, runID, sessions, matches, stats, now, duration); err != nil {
		return stats, fmt.Errorf("insert import log: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return stats, fmt.Errorf("commit transaction: %w", err)
	}
	return stats, nil
}

// upsertTarget merges the run's estimates into the exercise's target history
// and recomputes the cached current max over the full merged history, so the
// result is independent of how the history arrived.
func (r *repository) upsertTarget(ctx context.Context, tx *sql.Tx, userID int, est exerciseEstimates, now time.Time) (created bool, err error) {
	for _, point := range est.points {
		_, err = tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO exercise_target_history (user_id, exercise_id, recorded_at, value, source)
			VALUES (?, ?, ?, ?, 'import')`,
			userID, est.exerciseID, point.Date.Format(dateFormat), point.Value)
		if err != nil {
			return false, fmt.Errorf("insert history row: %w", err)
		}
	}

	points, err := r.targetHistoryPoints(ctx, tx, userID, est.exerciseID)
	if err != nil {
		return false, fmt.Errorf("load merged history: %w", err)
	}
	currentMax, err := estimation.RecencyWeightedAverage(points, estimation.DefaultHalfLifeDays, now)
	if err != nil {
		return false, fmt.Errorf("recompute current max: %w", err)
	}

	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM exercise_targets WHERE user_id = ? AND exercise_id = ?)`,
		userID, est.exerciseID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check existing target: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO exercise_targets (user_id, exercise_id, current_max, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, exercise_id) DO UPDATE SET
			current_max = excluded.current_max,
			updated_at = excluded.updated_at`,
		userID, est.exerciseID, currentMax, now.Format(time.RFC3339))
	if err != nil {
		return false, fmt.Errorf("write target: %w", err)
	}
	return !exists, nil
}

func (r *repository) targetHistoryPoints(ctx context.Context, tx *sql.Tx, userID, exerciseID int) (points []estimation.Point, err error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT recorded_at, value
		FROM exercise_target_history
		WHERE user_id = ? AND exercise_id = ?
		ORDER BY recorded_at`,
		userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	for rows.Next() {
		var (
			recordedAt string
			value      float64
		)
		if err = rows.Scan(&recordedAt, &value); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		date, parseErr := time.Parse(dateFormat, recordedAt)
		if parseErr != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", parseErr)
		}
		points = append(points, estimation.Point{Date: date, Value: value})
	}
	return points, rows.Err()
}

func (r *repository) addToLibrary(ctx context.Context, tx *sql.Tx, userID, exerciseID int, now time.Time) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO library_exercises (user_id, exercise_id, origin, added_at)
		VALUES (?, ?, 'import', ?)`,
		userID, exerciseID, now.Format(time.RFC3339))
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *repository) insertSession(ctx context.Context, tx *sql.Tx, userID int, runID string, session TrainingSession, matchedID map[string]int) (bool, error) {
	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO workout_sessions (user_id, workout_date, label, import_run_id)
		VALUES (?, ?, ?, ?)`,
		userID, session.Date.Format(dateFormat), session.Label, runID)
	if err != nil {
		return false, fmt.Errorf("insert session row: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	sessionID, err := result.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("last insert id: %w", err)
	}

	for _, exercise := range session.Exercises {
		var exerciseID any
		if id, ok := matchedID[catalog.Normalize(exercise.RawName)]; ok {
			exerciseID = id
		}
		for i, set := range exercise.Sets {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO workout_session_sets (session_id, exercise_id, raw_exercise_name, set_index, weight, reps)
				VALUES (?, ?, ?, ?, ?, ?)`,
				sessionID, exerciseID, exercise.RawName, i, set.Weight, set.Reps)
			if err != nil {
				return false, fmt.Errorf("insert set row: %w", err)
			}
		}
	}
	return true, nil
}

func (r *repository) insertImportLog(ctx context.Context, tx *sql.Tx, userID int, runID string, sessions []TrainingSession, matches []MatchResult, stats persistStats, now time.Time, duration time.Duration) error {
	var matched, unmatched int
	for _, m := range matches {
		if m.Matched() {
			matched++
		} else {
			unmatched++
		}
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO import_logs (run_id, user_id, created_at, status, sessions_imported, exercises_matched, exercises_unmatched, targets_created, sessions_created, duration_ms)
		VALUES (?, ?, ?, 'success', ?, ?, ?, ?, ?, ?)`,
		runID, userID, now.Format(time.RFC3339), len(sessions), matched, unmatched, stats.targetsCreated, stats.sessionsCreated, duration.Milliseconds())
	return err
}

// Targets returns the user's strength records with their full dated history,
// ordered by exercise id.
func (r *repository) Targets(ctx context.Context, userID int) (targets []Target, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_id, current_max
		FROM exercise_targets
		WHERE user_id = ?
		ORDER BY exercise_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query targets: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	for rows.Next() {
		var target Target
		if err = rows.Scan(&target.ExerciseID, &target.CurrentMax); err != nil {
			return nil, fmt.Errorf("scan target: %w", err)
		}
		targets = append(targets, target)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate targets: %w", err)
	}

	for i := range targets {
		targets[i].History, err = r.targetHistory(ctx, userID, targets[i].ExerciseID)
		if err != nil {
			return nil, fmt.Errorf("load target history: %w", err)
		}
	}
	return targets, nil
}

func (r *repository) targetHistory(ctx context.Context, userID, exerciseID int) (history []TargetHistoryEntry, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT recorded_at, value, source
		FROM exercise_target_history
		WHERE user_id = ? AND exercise_id = ?
		ORDER BY recorded_at`,
		userID, exerciseID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	for rows.Next() {
		var (
			entry      TargetHistoryEntry
			recordedAt string
		)
		if err = rows.Scan(&recordedAt, &entry.Value, &entry.Source); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entry.Date, err = time.Parse(dateFormat, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parse recorded_at: %w", err)
		}
		history = append(history, entry)
	}
	return history, rows.Err()
}

// LibraryExerciseIDs returns the ids of the user's library exercises.
func (r *repository) LibraryExerciseIDs(ctx context.Context, userID int) (ids []int, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT exercise_id FROM library_exercises WHERE user_id = ? ORDER BY exercise_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("query library: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	for rows.Next() {
		var id int
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan library row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
